package rambo1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewthecodertx/board-core/pkg/board"
	_ "github.com/andrewthecodertx/board-core/pkg/variant/rambo1"
)

type fakeBus struct{ scheduled map[string]uint32 }

func newFakeBus() *fakeBus { return &fakeBus{scheduled: map[string]uint32{}} }

func (f *fakeBus) ScheduleIRQ(line string, cycle uint32) { f.scheduled[line] = cycle }
func (f *fakeBus) CancelIRQ(line string)                 { delete(f.scheduled, line) }
func (f *fakeBus) AckIRQ(line string)                    {}

func newTestPRG(banks int) []byte {
	prg := make([]byte, banks*0x2000)
	for i := range prg {
		prg[i] = byte(i / 0x2000)
	}
	return prg
}

func newRAMBO1Board(t *testing.T) *board.Board {
	t.Helper()
	d, err := board.Lookup("TENGEN-800032")
	require.NoError(t, err)
	b, err := board.New(d, board.Config{
		PRGROM: newTestPRG(8), Mirroring: board.MirrorHorizontal,
		Bus: newFakeBus(), CPUClockDivider: 1, PPUClockDivider: 1,
	})
	require.NoError(t, err)
	return b
}

// TestEightIndependentCHR1KiBBanks covers RAMBO-1's headline difference
// from stock MMC3: the low CHR half can be switched as four independent
// 1 KiB banks (ChrMode bit 0x20 set) instead of two 2 KiB pairs.
func TestEightIndependentCHR1KiBBanks(t *testing.T) {
	b := newRAMBO1Board(t)

	b.WriteCPU(0x8000, 0x20, 0) // select ext-register 0, bit 0x20 -> 1 KiB granularity
	b.WriteCPU(0x8001, 7, 0)
	b.WriteCPU(0x8000, 0x28, 0) // select ext-register index 8, which backs ExtRegs[1]
	b.WriteCPU(0x8001, 11, 0)

	assert.Equal(t, int32(7), b.CHRBanks0[0].BankIndex)
	assert.Equal(t, int32(11), b.CHRBanks0[1].BankIndex)
}

// TestIRQSourceSwitchesBetweenA12AndM2 is the maintainer-flagged
// regression: RAMBO-1 dynamically picks its scanline counter's clock
// source (A12 by default, M2 when $C001 bit 0 is set) per write, rather
// than using one or the other exclusively.
func TestIRQSourceSwitchesBetweenA12AndM2(t *testing.T) {
	b := newRAMBO1Board(t)

	assert.True(t, b.A12.GetCounterEnabled(), "A12 counting is the reset default")
	assert.False(t, b.M2.GetCounterEnabled())

	b.WriteCPU(0xC001, 0x01, 0) // switch to the M2-clocked mode
	assert.False(t, b.A12.GetCounterEnabled())
	assert.True(t, b.M2.GetCounterEnabled())

	b.WriteCPU(0xE001, 0, 0) // enable IRQ: must reach the currently-live timer (M2)
	assert.True(t, b.M2.GetIRQEnabled())
	assert.False(t, b.A12.GetIRQEnabled())

	b.WriteCPU(0xC001, 0x00, 0) // switch back to A12
	assert.True(t, b.A12.GetCounterEnabled())
	assert.False(t, b.M2.GetCounterEnabled())
}
