package txsrom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewthecodertx/board-core/pkg/board"
	_ "github.com/andrewthecodertx/board-core/pkg/variant/txsrom"
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

func newTxSROMBoard(t *testing.T) *board.Board {
	t.Helper()
	d, err := board.Lookup("TxSROM")
	require.NoError(t, err)
	b, err := board.New(d, board.Config{
		PRGROM: newTestPRG(8), Mirroring: board.MirrorHorizontal,
		Bus: newFakeBus(), CPUClockDivider: 1, PPUClockDivider: 1,
	})
	require.NoError(t, err)
	return b
}

// TestNametablesFollowCHRRegistersInMode0 covers CHRMode=0, where the
// $0000/$0800 2 KiB registers (R0, R1) each drive two of the four slots.
func TestNametablesFollowCHRRegistersInMode0(t *testing.T) {
	b := newTxSROMBoard(t)

	b.WriteCPU(0x8000, 0x00, 0) // select R0, CHR mode 0
	b.WriteCPU(0x8001, 0x80, 0) // R0 top bit set -> nametables 0,1 = page 1
	b.WriteCPU(0x8000, 0x01, 0) // select R1
	b.WriteCPU(0x8001, 0x00, 0) // R1 top bit clear -> nametables 2,3 = page 0

	assert.Equal(t, int32(1), b.NTBanks[0].BankIndex)
	assert.Equal(t, int32(1), b.NTBanks[1].BankIndex)
	assert.Equal(t, int32(0), b.NTBanks[2].BankIndex)
	assert.Equal(t, int32(0), b.NTBanks[3].BankIndex)
}

// TestNametablesFollowCHRRegistersInMode1 is the maintainer-flagged
// regression: in CHRMode=1 each of the four 1 KiB registers (R2-R5)
// must drive exactly one nametable slot, not R0/R1.
func TestNametablesFollowCHRRegistersInMode1(t *testing.T) {
	b := newTxSROMBoard(t)

	b.WriteCPU(0x8000, 0x80, 0) // select R0, CHR mode 1
	b.WriteCPU(0x8001, 0xFF, 0) // R0 top bit set, must NOT affect nametables now

	b.WriteCPU(0x8000, 0x82, 0) // select R2, CHR mode 1
	b.WriteCPU(0x8001, 0x80, 0) // R2 top bit set -> nametable slot 0 = page 1
	b.WriteCPU(0x8000, 0x83, 0)
	b.WriteCPU(0x8001, 0x00, 0) // R3 top bit clear -> nametable slot 1 = page 0
	b.WriteCPU(0x8000, 0x84, 0)
	b.WriteCPU(0x8001, 0x80, 0) // R4 top bit set -> nametable slot 2 = page 1
	b.WriteCPU(0x8000, 0x85, 0)
	b.WriteCPU(0x8001, 0x00, 0) // R5 top bit clear -> nametable slot 3 = page 0

	assert.Equal(t, int32(1), b.NTBanks[0].BankIndex)
	assert.Equal(t, int32(0), b.NTBanks[1].BankIndex)
	assert.Equal(t, int32(1), b.NTBanks[2].BankIndex)
	assert.Equal(t, int32(0), b.NTBanks[3].BankIndex)
}
