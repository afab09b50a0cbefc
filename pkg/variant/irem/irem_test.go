package irem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewthecodertx/board-core/pkg/board"
	_ "github.com/andrewthecodertx/board-core/pkg/variant/irem"
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

func newTestCHR(banks int) []byte {
	chr := make([]byte, banks*0x400)
	for i := range chr {
		chr[i] = byte(i / 0x400)
	}
	return chr
}

func newIremBoard(t *testing.T) *board.Board {
	t.Helper()
	d, err := board.Lookup("IREM-H3001")
	require.NoError(t, err)
	b, err := board.New(d, board.Config{
		PRGROM: newTestPRG(4), CHRROM: newTestCHR(16), Mirroring: board.MirrorHorizontal,
		Bus: newFakeBus(), CPUClockDivider: 1, PPUClockDivider: 1,
	})
	require.NoError(t, err)
	return b
}

// TestCHRBankWritesUseB000Through8 is the maintainer-flagged regression:
// the eight 1 KiB CHR windows are switched by writes to $B000-$B007, not
// the $9000-range addresses the PRG/mirroring/IRQ registers occupy.
func TestCHRBankWritesUseB000Through8(t *testing.T) {
	b := newIremBoard(t)

	b.WriteCPU(0xB000, 5, 0)
	b.WriteCPU(0xB007, 9, 0)

	assert.Equal(t, byte(5), b.ReadCHR(0x0000))
	assert.Equal(t, byte(9), b.ReadCHR(0x1C00))
}

// TestIRQControlOnlyAcksAndEnables is the other maintainer-flagged
// regression: $9003 must ack and toggle the enable bit but never touch
// the counter, and $9004 must reload the counter but never touch the
// enable bit.
func TestIRQControlOnlyAcksAndEnables(t *testing.T) {
	b := newIremBoard(t)

	b.WriteCPU(0x9005, 0x12, 0) // reload hi
	b.WriteCPU(0x9006, 0x34, 0) // reload lo

	b.WriteCPU(0x9003, 0x80, 0) // enable only, no reload
	assert.True(t, b.M2.GetIRQEnabled())
	assert.NotEqual(t, uint32(0x1234), b.M2.GetCounter(0), "$9003 must not force-reload the counter")

	b.WriteCPU(0x9004, 0x00, 0) // force reload only
	assert.Equal(t, uint32(0x1234), b.M2.GetCounter(0))
	assert.True(t, b.M2.GetIRQEnabled(), "$9004 must not touch IRQ enable")
}
