package sunsoft3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewthecodertx/board-core/pkg/board"
	_ "github.com/andrewthecodertx/board-core/pkg/variant/sunsoft3"
)

type fakeBus struct{ scheduled map[string]uint32 }

func newFakeBus() *fakeBus { return &fakeBus{scheduled: map[string]uint32{}} }

func (f *fakeBus) ScheduleIRQ(line string, cycle uint32) { f.scheduled[line] = cycle }
func (f *fakeBus) CancelIRQ(line string)                 { delete(f.scheduled, line) }
func (f *fakeBus) AckIRQ(line string)                    {}

func newTestPRG(banks int) []byte {
	prg := make([]byte, banks*0x4000)
	for i := range prg {
		prg[i] = byte(i / 0x4000)
	}
	return prg
}

func newSunsoft3Board(t *testing.T) *board.Board {
	t.Helper()
	d, err := board.Lookup("SUNSOFT-3")
	require.NoError(t, err)
	b, err := board.New(d, board.Config{
		PRGROM: newTestPRG(4), Mirroring: board.MirrorHorizontal,
		Bus: newFakeBus(), CPUClockDivider: 1, PPUClockDivider: 1,
	})
	require.NoError(t, err)
	return b
}

// TestIRQCounterLoadOrderIsHighByteFirst is the maintainer-flagged
// regression: the toggling load latch starts pointing at the high byte,
// so the first write after reset (or after an IRQ-control write resets
// the toggle) lands in the counter's upper 8 bits and the second in the
// lower 8 bits.
func TestIRQCounterLoadOrderIsHighByteFirst(t *testing.T) {
	b := newSunsoft3Board(t)

	b.WriteCPU(0xC800, 0x12, 0) // first write -> high byte
	b.WriteCPU(0xC800, 0x34, 0) // second write -> low byte

	assert.Equal(t, uint32(0x1234), b.M2.GetCounter(0))
}

// TestIRQControlWriteResetsTheLoadToggle confirms a control-register write
// (which also re-arms the toggle) is followed by another high-then-low pair.
func TestIRQControlWriteResetsTheLoadToggle(t *testing.T) {
	b := newSunsoft3Board(t)

	b.WriteCPU(0xC800, 0xAB, 0)
	b.WriteCPU(0xC800, 0xCD, 0)
	b.WriteCPU(0xC800, 0xEF, 0) // high byte again; toggle now points at the low byte

	b.WriteCPU(0xD800, 0x10, 0) // IRQ control write resets toggle to high-first

	b.WriteCPU(0xC800, 0x56, 0) // high byte
	b.WriteCPU(0xC800, 0x78, 0) // low byte

	assert.Equal(t, uint32(0x5678), b.M2.GetCounter(0))
}
