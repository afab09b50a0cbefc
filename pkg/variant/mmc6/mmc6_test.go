package mmc6_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewthecodertx/board-core/pkg/board"
	_ "github.com/andrewthecodertx/board-core/pkg/variant/mmc6"
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

func newHKROMBoard(t *testing.T) *board.Board {
	t.Helper()
	d, err := board.Lookup("HKROM")
	require.NoError(t, err)
	b, err := board.New(d, board.Config{
		PRGROM: newTestPRG(8), Mirroring: board.MirrorHorizontal,
		Bus: newFakeBus(), CPUClockDivider: 1, PPUClockDivider: 1,
	})
	require.NoError(t, err)
	return b
}

// TestWRAMHalvesAreIndependentlyProtected covers hkrom_wram_protect: the
// low and high 512-byte halves of the $7000-$7FFF window are gated by
// separate bit pairs of the protect register, and the register itself is
// only writable while bit 0x20 of the bank-select byte is set.
func TestWRAMHalvesAreIndependentlyProtected(t *testing.T) {
	b := newHKROMBoard(t)

	b.WriteCPU(0x8000, 0x20, 0) // bank-select bit 0x20 set, gates $A001 writes through
	b.WriteCPU(0xA001, 0xF0, 0) // both halves readable+writable (0x30 low, 0xc0 high)

	b.WriteCPU(0x7000, 0xAA, 0) // low half
	b.WriteCPU(0x7200, 0xBB, 0) // high half
	assert.Equal(t, byte(0xAA), b.ReadCPU(0x7000, 0))
	assert.Equal(t, byte(0xBB), b.ReadCPU(0x7200, 0))

	b.WriteCPU(0xA001, 0x20, 0) // only the 0x20 bit set -> high half's read-enable drops
	assert.Equal(t, byte(0xAA), b.ReadCPU(0x7000, 0), "low half still enabled")
	assert.Equal(t, byte(0), b.ReadCPU(0x7200, 0), "high half now disabled, reads as 0")
}

// TestProtectRegisterIgnoredWithoutGateBit confirms $A001 writes are
// dropped entirely unless the bank-select byte's bit 0x20 is set.
func TestProtectRegisterIgnoredWithoutGateBit(t *testing.T) {
	b := newHKROMBoard(t)

	b.WriteCPU(0x8000, 0x00, 0) // gate bit clear
	b.WriteCPU(0xA001, 0xF0, 0) // must be ignored

	b.WriteCPU(0x7000, 0x42, 0)
	assert.Equal(t, byte(0), b.ReadCPU(0x7000, 0), "protect register never took effect, so both halves stay disabled")
}
