// Package a12 implements the cartridge A12 timer: a counter clocked by
// rising edges of PPU address-bus line A12, used by MMC3-family boards to
// generate scanline IRQs (spec.md §4.4).
package a12

// Variant selects the per-board filter/delay behavior around an A12 rise.
type Variant uint8

const (
	VariantMMC3Std Variant = iota
	VariantMMC3Alt
	VariantRambo1
	VariantTaitoTC0190FMC
	VariantAcclaimMCAcc
)

// Flag mirrors the M2 timer's flag taxonomy, restricted to the subset the
// A12 timer uses (spec.md §4.4).
type Flag uint8

const (
	FlagWrap Flag = 1 << iota
	FlagIRQOnWrap
	FlagCountUp
	FlagDelayedReload
)

// CPU is the small interface the timer uses to (re)schedule, cancel, and
// acknowledge its interrupt line.
type CPU interface {
	ScheduleIRQ(line string, cycle uint32)
	CancelIRQ(line string)
	AckIRQ(line string)
}

const Line = "IRQ_A12_TIMER"

// riseDelta is the per-variant minimum rise-to-rise gap, in PPU clocks,
// below which a rise is treated as bus noise rather than a real edge
// (spec.md §4.4: "4 for standard MMC3, 11 for MC-ACC").
func riseDelta(v Variant) uint32 {
	switch v {
	case VariantAcclaimMCAcc:
		return 11
	default:
		return 4
	}
}

// ScanlineState is the uniform-case description of one frame's rendering
// configuration, as consulted by Predict. It intentionally does not model
// per-sprite OAM contents (the original's sprite_a12_table): games that
// keep every on-screen sprite in the same pattern table as the background
// (the common case, and the one spec.md §8 requires bit-for-bit parity
// for) are handled exactly; mixed-table sprite sets fall back to a
// per-scanline estimate rather than a cycle-exact simulation.
type ScanlineState struct {
	BGTable       uint8 // 0 or 1
	SpriteTable   uint8 // 0 or 1
	Sprite8x16    bool
	RenderingOn   bool
	CyclesPerLine uint32 // PPU cycles per scanline, 341 on NTSC
}

// Timer is one A12 timer instance.
type Timer struct {
	cpu     CPU
	variant Variant

	ppuClockDivider uint32
	cpuClockDivider uint32

	counter   uint32
	reload    uint32
	mask      uint32
	size      uint8
	prescaler uint32
	prescalerSize uint8
	prescalerMask uint32

	flags          Flag
	irqEnabled     bool
	counterEnabled bool
	reloadFlag     bool

	prevA12          bool
	nextClock        uint32
	a12RiseDelta     uint32
	delay            uint32
	forceReloadDelay uint32
	timestamp        uint32

	scheduledAssert bool

	frameStartCycle uint32
}

func New(cpu CPU, variant Variant, cpuClockDivider, ppuClockDivider uint32) *Timer {
	if cpuClockDivider == 0 {
		cpuClockDivider = 1
	}
	if ppuClockDivider == 0 {
		ppuClockDivider = 1
	}
	t := &Timer{
		cpu: cpu, variant: variant,
		cpuClockDivider: cpuClockDivider, ppuClockDivider: ppuClockDivider,
		a12RiseDelta: riseDelta(variant),
	}
	t.SetSize(8, 0)
	return t
}

func (t *Timer) maskFor(size uint8) uint32 {
	if size >= 32 {
		return 0xFFFFFFFF
	}
	return (1 << size) - 1
}

func (t *Timer) SetSize(size uint8, cycles uint32) {
	t.size = size
	t.mask = t.maskFor(size)
	t.counter &= t.mask
	t.reload &= t.mask
}

func (t *Timer) countUp() bool     { return t.flags&FlagCountUp != 0 }
func (t *Timer) wraps() bool       { return t.flags&FlagWrap != 0 }
func (t *Timer) irqOnWrap() bool   { return t.flags&FlagIRQOnWrap != 0 }
func (t *Timer) delayedReload() bool { return t.flags&FlagDelayedReload != 0 }

func (t *Timer) Reset(hard bool) {
	if hard {
		t.counter = 0
		t.reload = 0
		t.prescaler = 0
		t.prescalerSize = 0
		t.flags = 0
		t.irqEnabled = false
		t.counterEnabled = false
		t.reloadFlag = false
		t.delay = 0
		t.forceReloadDelay = 0
	}
	t.prevA12 = false
	t.nextClock = ^uint32(0)
	t.timestamp = 0
	t.cancel()
}

// EndFrame shifts the timer's timebase across a frame boundary.
func (t *Timer) EndFrame(cycles uint32) {
	t.frameStartCycle = 0
	if t.nextClock != ^uint32(0) && t.nextClock >= cycles {
		t.nextClock -= cycles
	}
	if t.timestamp >= cycles {
		t.timestamp -= cycles
	} else {
		t.timestamp = 0
	}
}

func (t *Timer) cancel() {
	if t.scheduledAssert {
		t.cpu.CancelIRQ(Line)
		t.scheduledAssert = false
	}
}

// Hook is the reactive path (spec.md §4.4 path 1): called by the PPU/board
// whenever a pattern-table address is driven onto the PPU bus outside of
// normal rendering (e.g. a CPU-driven $2006/$2007 access). addr's bit 12
// is the A12 line; cycle is the current CPU cycle; rendering must be false
// — a true value indicates this was called from inside the rendering
// pipeline, which should go through Predict instead, and is a no-op here.
func (t *Timer) Hook(addr uint16, cycle uint32, rendering bool) {
	if rendering {
		return
	}
	a12 := addr&0x1000 != 0
	prev := t.prevA12
	t.prevA12 = a12
	t.timestamp = cycle

	switch {
	case prev && !a12: // falling edge: arm the rise-gap filter
		t.nextClock = cycle + t.a12RiseDelta*t.ppuClockDivider
		return
	case prev == a12: // no edge
		return
	}

	// rising edge
	if cycle <= t.nextClock {
		t.nextClock = ^uint32(0)
		return
	}
	if !t.counterEnabled {
		return
	}

	clocked := true
	if t.prescalerSize > 0 {
		clocked = false
		if t.prescaler == 0 {
			t.prescaler = t.prescalerMask
			clocked = true
		} else {
			t.prescaler--
		}
	}
	if !clocked {
		return
	}

	t.clockOnce(cycle)
}

// clockOnce applies exactly one counter clock. The counter reloads from
// the latch (rather than advancing) when it's already at its terminal
// value or a reload was requested; it fires the IRQ line whenever the
// resulting value is the terminal one, whether it got there by reload or
// by advancing, matching the real chip's "clock, then test" order.
func (t *Timer) clockOnce(cycle uint32) {
	atTerminal := t.counter == t.mask
	if !t.countUp() {
		atTerminal = t.counter == 0
	}

	switch {
	case atTerminal || t.reloadFlag:
		reload := t.reload
		if t.wraps() {
			reload = t.mask
		}
		if t.reloadFlag && t.delayedReload() {
			if t.countUp() {
				reload -= t.forceReloadDelay
			} else {
				reload += t.forceReloadDelay
			}
		}
		t.counter = reload & t.mask
	case t.countUp():
		t.counter++
	default:
		t.counter--
	}
	t.reloadFlag = false

	final := t.counter == t.mask
	if !t.countUp() {
		final = t.counter == 0
	}
	if final && t.irqEnabled {
		assertAt := cycle + t.delay
		if t.irqOnWrap() {
			assertAt++
		}
		t.cpu.ScheduleIRQ(Line, assertAt)
		t.scheduledAssert = true
	}
}

// Predict implements the A12 timer's fast/scheduler path (spec.md §4.4
// path 2) for the uniform case documented on ScanlineState: it returns the
// CPU cycle of the next IRQ assertion without requiring per-dot Hook
// calls, or ok=false if, under this configuration, A12 never rises (most
// notably: bg and sprite tables identical with 8x8 sprites, which is the
// case spec.md §8 requires to match the hook path exactly — in that case
// neither path ever asserts, so they trivially agree).
func (t *Timer) Predict(s ScanlineState, cycles uint32) (assertCycle uint32, ok bool) {
	if !s.RenderingOn || !t.counterEnabled || !t.irqEnabled {
		return 0, false
	}
	if !s.Sprite8x16 && s.BGTable == s.SpriteTable {
		return 0, false
	}

	risesPerScanline := uint32(1)
	if s.Sprite8x16 && s.BGTable != s.SpriteTable {
		risesPerScanline = 2
	}

	remaining := t.counter
	if t.countUp() {
		remaining = t.mask - t.counter
	}
	if remaining == 0 {
		remaining = 1
	}
	scanlinesNeeded := (remaining + risesPerScanline - 1) / risesPerScanline

	cyclesPerLine := s.CyclesPerLine
	if cyclesPerLine == 0 {
		cyclesPerLine = 341
	}
	ppuCycles := scanlinesNeeded * cyclesPerLine
	cpuCycles := (ppuCycles * t.ppuClockDivider) / t.cpuClockDivider
	return cycles + cpuCycles + t.delay, true
}

// --- mutators ---

func (t *Timer) SetCounterEnabled(enabled bool, cycles uint32) {
	t.counterEnabled = enabled
	if !enabled {
		t.cancel()
	} else {
		t.reloadFlag = true
	}
}

func (t *Timer) GetCounterEnabled() bool { return t.counterEnabled }

func (t *Timer) SetIRQEnabled(enabled bool, cycles uint32) {
	t.irqEnabled = enabled
	if !enabled {
		t.cancel()
	}
}

func (t *Timer) GetIRQEnabled() bool { return t.irqEnabled }

func (t *Timer) SetFlags(flags Flag, cycles uint32) { t.flags = flags }
func (t *Timer) GetFlags() Flag                     { return t.flags }

func (t *Timer) GetCounter(cycles uint32) uint32 { return t.counter }
func (t *Timer) SetCounter(v uint32, cycles uint32) {
	t.counter = v & t.mask
}

func (t *Timer) SetReload(v uint32, cycles uint32) { t.reload = v & t.mask }
func (t *Timer) GetReload() uint32                 { return t.reload }

func (t *Timer) SetPrescalerSize(size uint8, cycles uint32) {
	t.prescalerSize = size
	t.prescalerMask = t.maskFor(size)
	t.prescaler &= t.prescalerMask
}
func (t *Timer) GetPrescalerSize() uint8 { return t.prescalerSize }

func (t *Timer) SetPrescaler(v uint32, cycles uint32) { t.prescaler = v & t.prescalerMask }
func (t *Timer) GetPrescaler() uint32                 { return t.prescaler }

func (t *Timer) SetForceReloadDelay(v uint32, cycles uint32) { t.forceReloadDelay = v }

func (t *Timer) SetDelta(delta uint32, cycles uint32) {
	if delta == 0 {
		return
	}
	t.a12RiseDelta = delta
	t.cancel()
}

func (t *Timer) ForceReload(cycles uint32) {
	if t.delayedReload() {
		t.reloadFlag = true
	} else {
		reload := t.reload
		if t.wraps() {
			reload = t.mask
		}
		t.counter = reload & t.mask
	}
}

func (t *Timer) Ack(cycles uint32) {
	t.cpu.AckIRQ(Line)
	t.cancel()
}

// State is the plain-data snapshot packed into the "A12 " save-state
// chunk by pkg/savestate.
type State struct {
	Counter          uint32
	Reload           uint32
	Size             uint8
	Prescaler        uint32
	PrescalerSize    uint8
	Flags            uint8
	IRQEnabled       bool
	CounterEnabled   bool
	ReloadFlag       bool
	PrevA12          bool
	NextClock        uint32
	A12RiseDelta     uint32
	Delay            uint32
	ForceReloadDelay uint32
	Timestamp        uint32
}

func (t *Timer) Snapshot() State {
	return State{
		Counter: t.counter, Reload: t.reload, Size: t.size,
		Prescaler: t.prescaler, PrescalerSize: t.prescalerSize,
		Flags: uint8(t.flags), IRQEnabled: t.irqEnabled,
		CounterEnabled: t.counterEnabled, ReloadFlag: t.reloadFlag,
		PrevA12: t.prevA12, NextClock: t.nextClock,
		A12RiseDelta: t.a12RiseDelta, Delay: t.delay,
		ForceReloadDelay: t.forceReloadDelay, Timestamp: t.timestamp,
	}
}

func (t *Timer) Restore(s State) {
	t.counter = s.Counter
	t.reload = s.Reload
	t.size = s.Size
	t.mask = t.maskFor(s.Size)
	t.prescaler = s.Prescaler
	t.prescalerSize = s.PrescalerSize
	t.prescalerMask = t.maskFor(s.PrescalerSize)
	t.flags = Flag(s.Flags)
	t.irqEnabled = s.IRQEnabled
	t.counterEnabled = s.CounterEnabled
	t.reloadFlag = s.ReloadFlag
	t.prevA12 = s.PrevA12
	t.nextClock = s.NextClock
	t.a12RiseDelta = s.A12RiseDelta
	t.delay = s.Delay
	t.forceReloadDelay = s.ForceReloadDelay
	t.timestamp = s.Timestamp
}
