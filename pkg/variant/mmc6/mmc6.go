// Package mmc6 implements the HKROM board (MMC6): an MMC3 derivative that
// swaps standard 8 KiB PRG-RAM for 1 KiB of mapper-internal, always
// battery-backed RAM split into two independently write-protectable
// 512-byte pages, grounded on original_source/boards/mmc3.c's
// board_hkrom/hkrom_bank_select/hkrom_wram_protect/mmc6_wram_*_handler.
//
// The raw bank-select byte and the WRAM-protect register are kept in
// Board.Data[0]/[1], the same board->data[N] scratch array
// original_source/include/mmc3.h's _bank_select/_wram_protect macros
// alias, rather than in mmc3.VariantState: MMC6 needs bit 0x20 of the
// bank-select write, which mmc3.BankSelectOrData already masks away.
package mmc6

import (
	"github.com/andrewthecodertx/board-core/pkg/board"
	"github.com/andrewthecodertx/board-core/pkg/timer/a12"
	"github.com/andrewthecodertx/board-core/pkg/variant/mmc3"
)

// bankSelectOrData wraps mmc3.BankSelectOrData to additionally track the
// raw bank-select byte and clear WRAM protection when bit 0x20 drops,
// per hkrom_bank_select.
func bankSelectOrData(b *board.Board, addr uint16, value uint8, cycle uint32) {
	mmc3.BankSelectOrData(b, addr, value, cycle)
	if addr&1 == 0 {
		b.Data[0] = value
		if value&0x20 == 0 {
			b.Data[1] = 0
		}
	}
}

// mirroringOrProtect splits $A000/$A001 the way mmc3.MirroringOrProtect
// does, but routes the odd address to MMC6's own gated protect register
// instead of mmc3's PRG-RAM enable bits (HKROM has no PRG-RAM there).
func mirroringOrProtect(b *board.Board, addr uint16, value uint8, cycle uint32) {
	if addr&1 == 0 {
		mmc3.MirroringOrProtect(b, addr, value, cycle)
		return
	}
	if b.Data[0]&0x20 != 0 {
		b.Data[1] = value
	}
}

// readWRAM services the $7000-$7FFF mapper-RAM window, mirrored every
// 1 KiB. Each 512-byte half is independently gated by two bits of the
// protect register; a half with neither bit set reads as open bus,
// approximated here as 0 per this board package's ReadCPU contract.
func readWRAM(b *board.Board, addr uint16, cycle uint32) uint8 {
	a := addr & 0x3FF
	protect := b.Data[1]
	if protect&0xA0 == 0 {
		return 0
	}
	if (a < 0x200 && protect&0xA0 == 0x80) || (a >= 0x200 && protect&0xA0 == 0x20) {
		return 0
	}
	return b.MapperRAM.Data[a]
}

func writeWRAM(b *board.Board, addr uint16, value uint8, cycle uint32) {
	a := addr & 0x3FF
	protect := b.Data[1]
	if (a < 0x200 && protect&0x30 == 0x30) || (a >= 0x200 && protect&0xc0 == 0xc0) {
		b.MapperRAM.Data[a] = value
	}
}

func init() {
	board.Register(&board.Descriptor{
		Tag:             "HKROM",
		Name:            "MMC6",
		MapperName:      "iNES Mapper 4 (MMC6)",
		MaxPRGROMSize:   512 * 1024,
		MaxCHRROMSize:   256 * 1024,
		MapperRAMSize:   0x400,
		NewVariantState: mmc3.NewVariantState,
		InitPRG:         mmc3.InitPRG(),
		InitCHR0:        mmc3.InitCHR(),
		Flags:           board.FlagUsesA12Timer | board.FlagHasMapperNVRAM,
		A12Variant:      int(a12.VariantMMC3Std),
		WriteHandlers: []board.HandlerEntry{
			{Fn: bankSelectOrData, Base: 0x8000, Size: 0x2000},
			{Fn: writeWRAM, Base: 0x7000, Size: 0x1000},
			{Fn: mirroringOrProtect, Base: 0xA000, Size: 0x2000},
			{Fn: mmc3.IRQLatchOrReload, Base: 0xC000, Size: 0x2000},
			{Fn: mmc3.IRQDisableOrEnable, Base: 0xE000, Size: 0x2000},
		},
		ReadHandlers: []board.HandlerEntry{
			{ReadFn: readWRAM, Base: 0x7000, Size: 0x1000},
		},
		Funcs: board.Funcs{
			Init:  func(b *board.Board) error { mmc3.Reset(b, true); return nil },
			Reset: mmc3.Reset,
		},
	})
}
