// Package txsrom implements the TxSROM board: an MMC3 derivative whose
// nametable assignment comes from the top bit of its CHR bank registers
// rather than a dedicated mirroring register, grounded on
// spec.md §11's supplemented MMC3-family list and the teacher's MMC3
// core (reused via pkg/variant/mmc3's exported handlers).
package txsrom

import (
	"github.com/andrewthecodertx/board-core/pkg/board"
	"github.com/andrewthecodertx/board-core/pkg/variant/mmc3"
)

// bankSelectOrData wraps mmc3.BankSelectOrData to additionally re-derive
// nametable assignment, since on this board every CHR bank write can
// change mirroring.
func bankSelectOrData(b *board.Board, addr uint16, value uint8, cycle uint32) {
	mmc3.BankSelectOrData(b, addr, value, cycle)
	applyNametables(b)
}

// applyNametables derives each of the four nametable slots' CIRAM page
// from the top bit of a CHR register, per original_source/boards/mmc3.c's
// mmc3_txsrom_mirroring: in CHR mode 0 the $0000/$0800 2 KiB registers
// (R0, R1) each cover two slots; in CHR mode 1 the four 1 KiB registers
// (R2-R5) each cover exactly one.
func applyNametables(b *board.Board) {
	s := mmc3.State(b)
	var nt0, nt1, nt2, nt3 uint8
	if s.CHRMode == 0 {
		nt0 = (s.Registers[0] >> 7) & 1
		nt1 = nt0
		nt2 = (s.Registers[1] >> 7) & 1
		nt3 = nt2
	} else {
		nt0 = (s.Registers[2] >> 7) & 1
		nt1 = (s.Registers[3] >> 7) & 1
		nt2 = (s.Registers[4] >> 7) & 1
		nt3 = (s.Registers[5] >> 7) & 1
	}
	b.NTBanks[0] = board.Bank{BankIndex: int32(nt0), Size: 0x400}
	b.NTBanks[1] = board.Bank{BankIndex: int32(nt1), Size: 0x400}
	b.NTBanks[2] = board.Bank{BankIndex: int32(nt2), Size: 0x400}
	b.NTBanks[3] = board.Bank{BankIndex: int32(nt3), Size: 0x400}
	b.SyncNametables()
}

func reset(b *board.Board, hard bool) {
	mmc3.Reset(b, hard)
	b.Mirroring = board.MirrorMapperControlled
	applyNametables(b)
}

func init() {
	board.Register(&board.Descriptor{
		Tag:             "TxSROM",
		Name:            "TxSROM",
		MapperName:      "MMC3 family (TxSROM)",
		MaxPRGROMSize:   512 * 1024,
		MaxCHRROMSize:   256 * 1024,
		MaxWRAMSize:     8 * 1024,
		NewVariantState: mmc3.NewVariantState,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: 1, Size: 0x2000, Address: 0xA000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -2, Size: 0x2000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x2000, Address: 0xE000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x0800, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x0800, Address: 0x0800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x0400, Address: 0x1000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x0400, Address: 0x1400, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x0400, Address: 0x1800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x0400, Address: 0x1C00, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		Flags:      board.FlagUsesA12Timer | board.FlagMapperControlledMirroring,
		A12Variant: 0,
		WriteHandlers: []board.HandlerEntry{
			{Fn: mmc3.WritePRGRAM, Base: 0x6000, Size: 0x2000},
			{Fn: bankSelectOrData, Base: 0x8000, Size: 0x2000},
			{Fn: mmc3.MirroringOrProtect, Base: 0xA000, Size: 0x2000},
			{Fn: mmc3.IRQLatchOrReload, Base: 0xC000, Size: 0x2000},
			{Fn: mmc3.IRQDisableOrEnable, Base: 0xE000, Size: 0x2000},
		},
		ReadHandlers: mmc3.ReadHandlers(),
		Funcs: board.Funcs{
			Init:  func(b *board.Board) error { reset(b, true); return nil },
			Reset: reset,
		},
	})
}
