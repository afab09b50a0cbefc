// Package m2 implements the cartridge M2 timer: a programmable down/up
// counter clocked by the CPU bus, with prescaler, reload, one-shot,
// auto-irq-disable and delayed-reload behaviors (spec.md §4.3).
package m2

// Flag is a bit in the timer's flag set (spec.md §4.3).
type Flag uint16

const (
	FlagAutoIRQDisable Flag = 1 << iota
	FlagOneShot
	FlagCountUp
	FlagReload
	FlagIRQOnReload // == FlagIRQOnWrap
	FlagDelayedReload
	FlagPrescaler
	FlagPrescalerReload
)

// CPU is the small interface the timer uses to (re)schedule, cancel, and
// acknowledge its interrupt line. A host CPU implements this; the timer
// package never imports a concrete CPU.
type CPU interface {
	ScheduleIRQ(line string, cycle uint32)
	CancelIRQ(line string)
	AckIRQ(line string)
}

const Line = "IRQ_M2_TIMER"

// Timer is one M2 timer instance. Every field mirrors spec.md §4.3's
// configuration surface; the timer is driven lazily — callers invoke Run
// to catch the timer up to the current CPU cycle before reading or
// mutating anything, matching the rest of this module's catch-up model.
type Timer struct {
	cpu CPU

	size              uint8 // counter width in bits, [1,32]
	mask              uint32
	reload            uint32
	counter           uint32
	prescaler         uint32
	prescalerReload   uint32
	prescalerDecr     uint32
	prescalerSize     uint8
	prescalerMask     uint32
	flags             Flag
	irqEnabled        bool
	counterEnabled    bool
	irqDelay          uint32
	forceReloadDelay  uint32
	reloadFlag        bool
	timestamp         uint32
	scheduledAssert   bool
	cpuClockDivider   uint32
}

// New creates an M2 timer. cpuClockDivider is the system's CPU clock
// divider used to convert counter clocks to CPU cycles (spec.md §4.3 step
// 4); 1 for systems where the CPU clock and the M2 line tick 1:1.
func New(cpu CPU, cpuClockDivider uint32) *Timer {
	if cpuClockDivider == 0 {
		cpuClockDivider = 1
	}
	t := &Timer{cpu: cpu, cpuClockDivider: cpuClockDivider}
	t.SetSize(16, 0)
	return t
}

func (t *Timer) maskFor(size uint8) uint32 {
	if size >= 32 {
		return 0xFFFFFFFF
	}
	return (1 << size) - 1
}

// SetSize sets the counter width in bits.
func (t *Timer) SetSize(size uint8, cycles uint32) {
	t.Run(cycles)
	t.size = size
	t.mask = t.maskFor(size)
	t.counter &= t.mask
	t.reload &= t.mask
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetPrescalerSize(size uint8, cycles uint32) {
	t.Run(cycles)
	t.prescalerSize = size
	t.prescalerMask = t.maskFor(size)
	t.prescaler &= t.prescalerMask
	t.scheduleIRQ(cycles)
}

func (t *Timer) Reset(hard bool) {
	if hard {
		t.counter = 0
		t.reload = 0
		t.prescaler = 0
		t.prescalerReload = 0
		t.prescalerDecr = 1
		t.flags = 0
		t.irqEnabled = false
		t.counterEnabled = false
		t.irqDelay = 0
		t.forceReloadDelay = 0
		t.reloadFlag = false
	}
	t.timestamp = 0
	t.cancel()
}

// EndFrame shifts the timer's timebase across a frame boundary, per
// spec.md §6's end_frame contract.
func (t *Timer) EndFrame(cycles uint32) {
	t.Run(cycles)
	if t.timestamp >= cycles {
		t.timestamp -= cycles
	} else {
		t.timestamp = 0
	}
}

func (t *Timer) countUp() bool      { return t.flags&FlagCountUp != 0 }
func (t *Timer) oneShot() bool      { return t.flags&FlagOneShot != 0 }
func (t *Timer) autoDisable() bool  { return t.flags&FlagAutoIRQDisable != 0 }
func (t *Timer) reloads() bool      { return t.flags&FlagReload != 0 }
func (t *Timer) irqOnReload() bool  { return t.flags&FlagIRQOnReload != 0 }
func (t *Timer) delayedReload() bool { return t.flags&FlagDelayedReload != 0 }
func (t *Timer) hasPrescaler() bool { return t.flags&FlagPrescaler != 0 }

// Run advances the timer's internal state to the given CPU cycle,
// asserting (and cancelling) interrupts exactly as a cycle-stepped
// reference implementation would. Called lazily by every mutator before
// it applies a change, and by EndFrame.
func (t *Timer) Run(cycles uint32) {
	if cycles <= t.timestamp {
		return
	}
	elapsed := cycles - t.timestamp
	t.timestamp = cycles

	if !t.counterEnabled {
		return
	}

	for c := uint32(0); c < elapsed; c++ {
		if !t.counterEnabled {
			break
		}
		clockCounter := true
		if t.hasPrescaler() && t.prescalerSize > 0 {
			clockCounter = false
			if t.prescaler == 0 {
				reloadTo := t.prescalerMask
				if t.flags&FlagPrescalerReload != 0 {
					reloadTo = t.prescalerReload
				}
				t.prescaler = reloadTo
				clockCounter = true
			} else {
				t.prescaler -= t.prescalerDecr & t.prescalerMask
			}
		}
		if !clockCounter {
			continue
		}
		t.clockOnce(t.timestamp-elapsed+c+1)
	}
}

// clockOnce applies exactly one counter clock (a prescaler wrap, or a
// direct CPU-cycle clock when no prescaler is configured) at the given
// absolute CPU cycle, handling wrap/reload/IRQ per spec.md §4.3.
func (t *Timer) clockOnce(atCycle uint32) {
	var wrapped bool
	if t.countUp() {
		t.counter = (t.counter + 1) & t.mask
		wrapped = t.counter == 0
	} else {
		if t.counter == 0 {
			t.counter = t.mask
			wrapped = true
		} else {
			t.counter--
		}
	}

	if !wrapped {
		return
	}

	if t.reloads() || t.reloadFlag {
		reload := t.reload
		if t.reloadFlag && t.delayedReload() {
			if t.countUp() {
				reload -= t.forceReloadDelay
			} else {
				reload += t.forceReloadDelay
			}
		}
		t.counter = reload & t.mask
	}
	t.reloadFlag = false

	if t.irqEnabled {
		assertAt := atCycle + t.irqDelay
		if t.irqOnReload() {
			assertAt++
		}
		t.cpu.ScheduleIRQ(Line, assertAt)
		t.scheduledAssert = true
		if t.autoDisable() {
			t.irqEnabled = false
		}
		if t.oneShot() {
			t.counterEnabled = false
		}
	}
}

func (t *Timer) cancel() {
	if t.scheduledAssert {
		t.cpu.CancelIRQ(Line)
		t.scheduledAssert = false
	}
}

// scheduleIRQ computes, in closed form, the CPU cycle at which the next
// IRQ would assert given the timer's current configuration, and hands
// that to the CPU's interrupt scheduler (spec.md §4.3 "the closed-form
// schedule_irq"). It supersedes any previously scheduled prediction.
func (t *Timer) scheduleIRQ(cycles uint32) {
	t.cancel()

	if !t.counterEnabled || !t.irqEnabled {
		return
	}

	remaining := t.remainingClocks()
	if remaining == ^uint32(0) {
		return
	}

	period := t.effectivePrescalerPeriod()
	cpuCycles := remaining * period
	if t.hasPrescaler() && t.prescalerSize > 0 {
		// The first counter clock comes when the prescaler, now at
		// t.prescaler, next reaches 0; later clocks are a full period apart.
		cpuCycles = (t.prescaler + 1) + (remaining-1)*period
	}
	cpuCycles += t.irqDelay
	if t.irqOnReload() {
		cpuCycles++
	}
	cpuCycles *= t.cpuClockDivider

	assertAt := cycles + cpuCycles
	t.cpu.ScheduleIRQ(Line, assertAt)
	t.scheduledAssert = true
}

// remainingClocks returns how many counter clocks remain before the next
// wrap, or ^uint32(0) if the counter can never reach the limit (e.g.
// counting up toward a mask of 0, which cannot happen with size>=1, so
// this is effectively always finite here).
func (t *Timer) remainingClocks() uint32 {
	if t.countUp() {
		return (t.mask - t.counter) + 1
	}
	return t.counter + 1
}

// effectivePrescalerPeriod returns how many CPU cycles pass per counter
// clock once the prescaler has reloaded; scheduleIRQ handles the shorter
// first clock, which depends on the prescaler's current position.
func (t *Timer) effectivePrescalerPeriod() uint32 {
	if !t.hasPrescaler() || t.prescalerSize == 0 {
		return 1
	}
	reloadTo := t.prescalerMask
	if t.flags&FlagPrescalerReload != 0 {
		reloadTo = t.prescalerReload
	}
	return reloadTo + 1
}

// --- mutators: each runs the timer forward, applies the change, then
// re-schedules, per spec.md §4.3's "Every mutator first runs the timer up
// to the current CPU cycle ... applies the mutation, then calls
// schedule_irq".

func (t *Timer) SetEnabled(enabled bool, cycles uint32) { t.SetCounterEnabled(enabled, cycles) }

func (t *Timer) SetCounterEnabled(enabled bool, cycles uint32) {
	t.Run(cycles)
	t.counterEnabled = enabled
	if !enabled {
		t.cancel()
		return
	}
	t.scheduleIRQ(cycles)
}

func (t *Timer) GetCounterEnabled() bool { return t.counterEnabled }

func (t *Timer) SetIRQEnabled(enabled bool, cycles uint32) {
	t.Run(cycles)
	t.irqEnabled = enabled
	if !enabled {
		t.cancel()
		return
	}
	t.scheduleIRQ(cycles)
}

func (t *Timer) GetIRQEnabled() bool { return t.irqEnabled }

func (t *Timer) SetFlags(flags Flag, cycles uint32) {
	t.Run(cycles)
	t.flags = flags
	t.scheduleIRQ(cycles)
}

func (t *Timer) GetFlags() Flag { return t.flags }

func (t *Timer) GetCounter(cycles uint32) uint32 {
	t.Run(cycles)
	return t.counter
}

func (t *Timer) SetCounter(counter uint32, cycles uint32) {
	t.Run(cycles)
	t.counter = counter & t.mask
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetCounterLo(lo uint8, cycles uint32) {
	t.Run(cycles)
	t.counter = (t.counter &^ 0xFF) | uint32(lo)
	t.counter &= t.mask
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetCounterHi(hi uint8, cycles uint32) {
	t.Run(cycles)
	t.counter = (t.counter &^ 0xFF00) | (uint32(hi) << 8)
	t.counter &= t.mask
	t.scheduleIRQ(cycles)
}

func (t *Timer) GetReload() uint32 { return t.reload }

func (t *Timer) SetReload(reload uint32, cycles uint32) {
	t.Run(cycles)
	t.reload = reload & t.mask
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetReloadLo(lo uint8, cycles uint32) {
	t.Run(cycles)
	t.reload = (t.reload &^ 0xFF) | uint32(lo)
	t.reload &= t.mask
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetReloadHi(hi uint8, cycles uint32) {
	t.Run(cycles)
	t.reload = (t.reload &^ 0xFF00) | (uint32(hi) << 8)
	t.reload &= t.mask
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetPrescaler(prescaler uint32, cycles uint32) {
	t.Run(cycles)
	t.prescaler = prescaler & t.prescalerMask
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetPrescalerReload(value uint32, cycles uint32) {
	t.Run(cycles)
	t.prescalerReload = value & t.prescalerMask
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetPrescalerDecrement(value uint32, cycles uint32) {
	t.Run(cycles)
	if value == 0 {
		value = 1
	}
	t.prescalerDecr = value
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetIRQDelay(value uint32, cycles uint32) {
	t.Run(cycles)
	t.irqDelay = value
	t.scheduleIRQ(cycles)
}

func (t *Timer) SetForceReloadDelay(value uint32, cycles uint32) {
	t.Run(cycles)
	t.forceReloadDelay = value
}

// ForceReload immediately reloads the counter (or, with
// FlagDelayedReload, arms a reload to take effect on the counter's next
// clock instead).
func (t *Timer) ForceReload(cycles uint32) {
	t.Run(cycles)
	if t.delayedReload() {
		t.reloadFlag = true
	} else {
		t.counter = t.reload & t.mask
	}
	t.scheduleIRQ(cycles)
}

func (t *Timer) Ack(cycles uint32) {
	t.Run(cycles)
	t.cpu.AckIRQ(Line)
	t.cancel()
}

func (t *Timer) Cancel(cycles uint32) {
	t.Run(cycles)
	t.cancel()
}

// State is the plain-data snapshot packed into the "M2 " save-state chunk
// by pkg/savestate.
type State struct {
	Size             uint8
	Reload           uint32
	Counter          uint32
	Prescaler        uint32
	PrescalerReload  uint32
	PrescalerDecr    uint32
	PrescalerSize    uint8
	Flags            uint16
	IRQEnabled       bool
	CounterEnabled   bool
	IRQDelay         uint32
	ForceReloadDelay uint32
	ReloadFlag       bool
	Timestamp        uint32
}

func (t *Timer) Snapshot() State {
	return State{
		Size: t.size, Reload: t.reload, Counter: t.counter,
		Prescaler: t.prescaler, PrescalerReload: t.prescalerReload,
		PrescalerDecr: t.prescalerDecr, PrescalerSize: t.prescalerSize,
		Flags: uint16(t.flags), IRQEnabled: t.irqEnabled,
		CounterEnabled: t.counterEnabled, IRQDelay: t.irqDelay,
		ForceReloadDelay: t.forceReloadDelay, ReloadFlag: t.reloadFlag,
		Timestamp: t.timestamp,
	}
}

func (t *Timer) Restore(s State) {
	t.size = s.Size
	t.mask = t.maskFor(s.Size)
	t.reload = s.Reload
	t.counter = s.Counter
	t.prescaler = s.Prescaler
	t.prescalerReload = s.PrescalerReload
	t.prescalerDecr = s.PrescalerDecr
	t.prescalerSize = s.PrescalerSize
	t.prescalerMask = t.maskFor(s.PrescalerSize)
	t.flags = Flag(s.Flags)
	t.irqEnabled = s.IRQEnabled
	t.counterEnabled = s.CounterEnabled
	t.irqDelay = s.IRQDelay
	t.forceReloadDelay = s.ForceReloadDelay
	t.reloadFlag = s.ReloadFlag
	t.timestamp = s.Timestamp
}
