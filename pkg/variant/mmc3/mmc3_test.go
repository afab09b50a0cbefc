package mmc3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewthecodertx/board-core/pkg/board"
	_ "github.com/andrewthecodertx/board-core/pkg/variant/mmc3"
)

type fakeBus struct {
	scheduled map[string]uint32
}

func newFakeBus() *fakeBus { return &fakeBus{scheduled: map[string]uint32{}} }

func (f *fakeBus) ScheduleIRQ(line string, cycle uint32) { f.scheduled[line] = cycle }
func (f *fakeBus) CancelIRQ(line string)                 { delete(f.scheduled, line) }
func (f *fakeBus) AckIRQ(line string)                    {}

// newTestPRG fills each 8 KiB bank with its own index, so a read anywhere
// in a window identifies which bank is currently mapped there.
func newTestPRG(banks int) []byte {
	prg := make([]byte, banks*0x2000)
	for i := range prg {
		prg[i] = byte(i / 0x2000)
	}
	return prg
}

func newMMC3Board(t *testing.T, prgBanks int) *board.Board {
	t.Helper()
	d, err := board.Lookup("TxROM")
	require.NoError(t, err)
	b, err := board.New(d, board.Config{
		PRGROM: newTestPRG(prgBanks), Mirroring: board.MirrorHorizontal,
		Bus: newFakeBus(), CPUClockDivider: 1, PPUClockDivider: 1,
	})
	require.NoError(t, err)
	return b
}

// TestBankSelectWritesSwitchableWindow is spec.md §8 scenario 1: selecting
// register 6 and writing a bank number must move the $8000 window (mode 0)
// to that bank.
func TestBankSelectWritesSwitchableWindow(t *testing.T) {
	b := newMMC3Board(t, 8)

	b.WriteCPU(0x8000, 0x06, 0) // select R6, PRG mode 0
	b.WriteCPU(0x8001, 0x03, 0) // R6 = bank 3

	assert.Equal(t, byte(3), b.ReadCPU(0x8000, 0))
}

// TestPRGModeToggleSwapsFixedAndSwitchableWindows is spec.md §8 scenario
// 2: flipping PRG mode moves the fixed "second to last bank" window from
// $C000 to $8000 and the R6-controlled window from $8000 to $C000.
func TestPRGModeToggleSwapsFixedAndSwitchableWindows(t *testing.T) {
	b := newMMC3Board(t, 8) // banks 0-7; bank 6 is "second to last"

	b.WriteCPU(0x8000, 0x06, 0)
	b.WriteCPU(0x8001, 0x03, 0)
	require.Equal(t, byte(3), b.ReadCPU(0x8000, 0))

	b.WriteCPU(0x8000, 0x46, 0) // same register select, PRG mode 1
	assert.Equal(t, byte(6), b.ReadCPU(0x8000, 0), "mode 1 fixes $8000 to the second-to-last bank")
	assert.Equal(t, byte(3), b.ReadCPU(0xC000, 0), "mode 1 moves R6's bank to $C000")
}

func TestIRQLatchAndEnableScheduleAnAssertion(t *testing.T) {
	b := newMMC3Board(t, 8)
	bus := b.Bus.(*fakeBus)

	b.WriteCPU(0xC000, 2, 100) // IRQ latch = 2
	b.WriteCPU(0xC001, 0, 100) // force reload
	b.WriteCPU(0xE001, 0, 100) // enable IRQ

	assert.True(t, b.A12.GetIRQEnabled())

	// Three A12 rises: reload to 2, then 1, then 0 asserts the IRQ.
	for cycle := uint32(2000); cycle <= 6000; cycle += 2000 {
		b.A12.Hook(0x0000, cycle, false)
		b.A12.Hook(0x1000, cycle+1000, false)
	}
	assert.Contains(t, bus.scheduled, "IRQ_A12_TIMER")
}

func TestIRQDisableAcknowledgesAndCancels(t *testing.T) {
	b := newMMC3Board(t, 8)
	bus := b.Bus.(*fakeBus)

	b.WriteCPU(0xC000, 1, 0)
	b.WriteCPU(0xC001, 0, 0)
	b.WriteCPU(0xE001, 0, 0)
	b.A12.Hook(0x0000, 0, false)
	b.A12.Hook(0x1000, 2000, false)
	b.A12.Hook(0x0000, 4000, false)
	b.A12.Hook(0x1000, 6000, false)

	b.WriteCPU(0xE000, 0, 7000) // disable + ack

	assert.False(t, b.A12.GetIRQEnabled())
	assert.NotContains(t, bus.scheduled, "IRQ_A12_TIMER")
}

func TestPRGRAMReadWriteGatedByEnableAndProtectBits(t *testing.T) {
	d, err := board.Lookup("TxROM")
	require.NoError(t, err)
	b, err := board.New(d, board.Config{
		PRGROM: newTestPRG(8), Mirroring: board.MirrorHorizontal,
		Bus: newFakeBus(), CPUClockDivider: 1, PPUClockDivider: 1,
	})
	require.NoError(t, err)

	b.WriteCPU(0x6000, 0x42, 0)
	assert.Equal(t, byte(0x42), b.ReadCPU(0x6000, 0), "PRG-RAM enabled by default")

	b.WriteCPU(0xA001, 0xC0, 0) // write-protect, still enabled
	b.WriteCPU(0x6000, 0xFF, 0)
	assert.Equal(t, byte(0x42), b.ReadCPU(0x6000, 0), "write-protected RAM ignores stores")

	b.WriteCPU(0xA001, 0x00, 0) // clears both enable and write-protect bits
	assert.Equal(t, byte(0), b.ReadCPU(0x6000, 0), "disabled RAM reads as 0")
}
