package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBankIndexNegativeWrapsFromEnd(t *testing.T) {
	// An 8-slot chip, last bank requested via -1 resolves to slot 7.
	assert.Equal(t, int32(7), resolveBankIndex(-1, -1, 0, 0, 8))
	assert.Equal(t, int32(6), resolveBankIndex(-2, -1, 0, 0, 8))
	assert.Equal(t, int32(3), resolveBankIndex(3, -1, 0, 0, 8))
}

func TestResolveBankIndexEmptyChipAlwaysZero(t *testing.T) {
	assert.Equal(t, int32(0), resolveBankIndex(5, -1, 0, 0, 0))
}

// nromLikeDescriptor builds a minimal fixed-bank descriptor (no write
// handlers) matching NROM's shape: two fixed 16 KiB PRG windows and one
// fixed 8 KiB CHR window, so board-core's reads can be exercised without
// depending on any pkg/variant package.
func nromLikeDescriptor() *Descriptor {
	return &Descriptor{
		Tag:           "TEST-NROM",
		MaxPRGROMSize: 32 * 1024,
		MaxCHRROMSize: 8 * 1024,
		InitPRG: []Bank{
			{BankIndex: 0, Size: 0x4000, Address: 0x8000, Type: ChipROM, Perm: PermRead},
			{BankIndex: -1, Size: 0x4000, Address: 0xC000, Type: ChipROM, Perm: PermRead},
		},
		InitCHR0: []Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x0000, Type: ChipAuto, Perm: PermReadWrite},
		},
	}
}

func newTestPRG(banks int) []byte {
	prg := make([]byte, banks*0x4000)
	for i := range prg {
		prg[i] = byte(i / 0x4000)
	}
	return prg
}

func TestNewBoardResolvesFixedPRGBanksWithoutAnExplicitReset(t *testing.T) {
	d := nromLikeDescriptor()
	b, err := New(d, Config{PRGROM: newTestPRG(1), Mirroring: MirrorHorizontal})
	require.NoError(t, err)

	// Both the $8000 and $C000 windows must read through to bank 0 (the
	// only bank present); this is the regression test for New() leaving
	// PRGAnd/PRGOr at their zero value until a variant happened to call
	// Reset(true) from its own Init hook.
	assert.Equal(t, byte(0), b.ReadCPU(0x8000, 0))
	assert.Equal(t, byte(0), b.ReadCPU(0xC000, 0))
}

func TestNewBoardMirrorsLastBankForNegativeIndex(t *testing.T) {
	d := nromLikeDescriptor()
	b, err := New(d, Config{PRGROM: newTestPRG(2), Mirroring: MirrorHorizontal})
	require.NoError(t, err)

	assert.Equal(t, byte(0), b.ReadCPU(0x8000, 0))
	assert.Equal(t, byte(1), b.ReadCPU(0xC000, 0)) // -1 resolves to the last (second) bank
}

func TestWriteCPUToReadOnlyWindowIsIgnored(t *testing.T) {
	d := nromLikeDescriptor()
	b, err := New(d, Config{PRGROM: newTestPRG(1), Mirroring: MirrorHorizontal})
	require.NoError(t, err)

	before := b.ReadCPU(0x8000, 0)
	b.WriteCPU(0x8000, 0xFF, 0)
	assert.Equal(t, before, b.ReadCPU(0x8000, 0))
}

// switchableDescriptor adds one write handler selecting the first PRG
// window's bank, the same shape UxROM uses.
func switchableDescriptor() *Descriptor {
	d := nromLikeDescriptor()
	d.Tag = "TEST-UXROM"
	d.MaxPRGROMSize = 256 * 1024
	d.WriteHandlers = []HandlerEntry{
		{Fn: func(b *Board, addr uint16, value uint8, cycle uint32) {
			b.PRGBanks[0].BankIndex = int32(value)
			b.SyncPRG()
		}, Base: 0x8000, Size: 0x8000},
	}
	return d
}

func TestBankSelectWriteHandlerChangesResolvedBank(t *testing.T) {
	d := switchableDescriptor()
	b, err := New(d, Config{PRGROM: newTestPRG(4), Mirroring: MirrorHorizontal})
	require.NoError(t, err)

	assert.Equal(t, byte(0), b.ReadCPU(0x8000, 0))
	b.WriteCPU(0x8000, 2, 0)
	assert.Equal(t, byte(2), b.ReadCPU(0x8000, 0))
}

func TestSyncNametablesHorizontalAndVertical(t *testing.T) {
	d := nromLikeDescriptor()
	b, err := New(d, Config{PRGROM: newTestPRG(1), Mirroring: MirrorHorizontal})
	require.NoError(t, err)

	b.NTTable.Slots[0].Ptr[0] = 0xAB
	assert.Same(t, &b.NTTable.Slots[0].Ptr[0], &b.NTTable.Slots[1].Ptr[0])
	assert.NotSame(t, &b.NTTable.Slots[0].Ptr[0], &b.NTTable.Slots[2].Ptr[0])

	b.Mirroring = MirrorVertical
	b.SyncNametables()
	assert.Same(t, &b.NTTable.Slots[0].Ptr[0], &b.NTTable.Slots[2].Ptr[0])
	assert.NotSame(t, &b.NTTable.Slots[0].Ptr[0], &b.NTTable.Slots[1].Ptr[0])
}

func TestRecordModifiedRangeMergesOverlappingAndAdjacent(t *testing.T) {
	b := &Board{}
	b.RecordModifiedRange(0, 10)
	b.RecordModifiedRange(10, 5) // adjacent, should merge
	b.RecordModifiedRange(100, 4)

	require.Len(t, b.ModifiedRanges, 2)
	assert.Equal(t, Range{Offset: 0, Length: 15}, b.ModifiedRanges[0])
	assert.Equal(t, Range{Offset: 100, Length: 4}, b.ModifiedRanges[1])

	b.RecordModifiedRange(14, 90) // bridges the two existing ranges
	require.Len(t, b.ModifiedRanges, 1)
	assert.Equal(t, Range{Offset: 0, Length: 104}, b.ModifiedRanges[0])
}

func TestOversizedPRGROMIsClampedNotRejected(t *testing.T) {
	d := nromLikeDescriptor()
	b, err := New(d, Config{PRGROM: newTestPRG(10), Mirroring: MirrorHorizontal})
	require.NoError(t, err)
	assert.Equal(t, d.MaxPRGROMSize, b.PRGROM.Size())
}
