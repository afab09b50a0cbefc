// Package mmc1 implements the MMC1 board: a 5-bit serial shift register
// feeding four internal registers (control, CHR bank 0, CHR bank 1, PRG
// bank), grounded on the teacher's pkg/cartridge/mapper1.go. Consecutive-
// cycle writes (the "two writes on one instruction" quirk real MMC1 chips
// ignore) are not modeled; nothing in this pack's examples models it
// either.
package mmc1

import "github.com/andrewthecodertx/board-core/pkg/board"

// variantState is MMC1's per-board scratch, replacing the teacher's bare
// struct fields with a typed value hung off board.Board.VariantState
// (spec.md §9).
type variantState struct {
	shiftRegister uint8
	shiftCount    uint8
	control       uint8 // mirroring(2) | prgMode(2) | chrMode(1)
	chrBank0      uint8
	chrBank1      uint8
	prgBank       uint8
	ramEnabled    bool
}

func newVariantState() any {
	return &variantState{shiftRegister: 0x10, control: 0x0C, ramEnabled: true}
}

func state(b *board.Board) *variantState { return b.VariantState.(*variantState) }

func applyControl(b *board.Board, s *variantState) {
	switch s.control & 0x03 {
	case 0:
		b.Mirroring = board.MirrorSingleLow
	case 1:
		b.Mirroring = board.MirrorSingleHigh
	case 2:
		b.Mirroring = board.MirrorVertical
	case 3:
		b.Mirroring = board.MirrorHorizontal
	}
	b.SyncNametables()
}

func applyBanks(b *board.Board, s *variantState) {
	prgMode := (s.control >> 2) & 0x03
	switch prgMode {
	case 0, 1: // 32 KiB mode: ignore low bit
		b.PRGBanks[0].BankIndex = int32(s.prgBank & 0xFE)
		b.PRGBanks[1].BankIndex = int32(s.prgBank&0xFE) | 1
	case 2: // fix first bank, switch second
		b.PRGBanks[0].BankIndex = 0
		b.PRGBanks[1].BankIndex = int32(s.prgBank)
	case 3: // switch first, fix last
		b.PRGBanks[0].BankIndex = int32(s.prgBank)
		b.PRGBanks[1].BankIndex = -1
	}

	if s.control&0x10 != 0 { // CHR 4 KiB mode
		b.CHRBanks0[0].BankIndex = int32(s.chrBank0)
		b.CHRBanks0[1].BankIndex = int32(s.chrBank1)
	} else { // 8 KiB mode: ignore low bit of chrBank0
		base := int32(s.chrBank0 &^ 1)
		b.CHRBanks0[0].BankIndex = base
		b.CHRBanks0[1].BankIndex = base + 1
	}
	b.SyncPRG()
	b.SyncCHR()
}

func writeRegister(b *board.Board, addr uint16, value uint8) {
	s := state(b)
	switch {
	case addr < 0xA000:
		s.control = value & 0x1F
		applyControl(b, s)
		applyBanks(b, s)
	case addr < 0xC000:
		s.chrBank0 = value & 0x1F
		applyBanks(b, s)
	case addr < 0xE000:
		s.chrBank1 = value & 0x1F
		applyBanks(b, s)
	default:
		s.prgBank = value & 0x0F
		s.ramEnabled = value&0x10 == 0
		applyBanks(b, s)
	}
}

func readPRGRAM(b *board.Board, addr uint16, cycle uint32) uint8 {
	if !state(b).ramEnabled || b.WRAM == nil {
		return 0
	}
	return b.WRAM.Data[addr-0x6000]
}

func writePRGRAM(b *board.Board, addr uint16, value uint8, cycle uint32) {
	if !state(b).ramEnabled || b.WRAM == nil {
		return
	}
	b.WRAM.Data[addr-0x6000] = value
}

func writeShift(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := state(b)
	if value&0x80 != 0 {
		s.shiftRegister = 0x10
		s.shiftCount = 0
		s.control |= 0x0C
		applyControl(b, s)
		applyBanks(b, s)
		return
	}
	s.shiftRegister = (s.shiftRegister >> 1) | ((value & 1) << 4)
	s.shiftCount++
	if s.shiftCount == 5 {
		writeRegister(b, addr, s.shiftRegister)
		s.shiftRegister = 0x10
		s.shiftCount = 0
	}
}

func reset(b *board.Board, hard bool) {
	if !hard {
		return
	}
	b.VariantState = newVariantState()
	s := state(b)
	applyControl(b, s)
	applyBanks(b, s)
}

func init() {
	board.Register(&board.Descriptor{
		Tag:             "MMC1",
		Name:            "MMC1",
		MapperName:      "iNES Mapper 1",
		MaxPRGROMSize:   512 * 1024,
		MaxCHRROMSize:   128 * 1024,
		MaxWRAMSize:     8 * 1024,
		NewVariantState: newVariantState,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x4000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x4000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x1000, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 1, Size: 0x1000, Address: 0x1000, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		WriteHandlers: []board.HandlerEntry{
			{Fn: writePRGRAM, Base: 0x6000, Size: 0x2000},
			{Fn: writeShift, Base: 0x8000, Size: 0x8000},
		},
		ReadHandlers: []board.HandlerEntry{
			{ReadFn: readPRGRAM, Base: 0x6000, Size: 0x2000},
		},
		Funcs: board.Funcs{Reset: reset},
	})
}
