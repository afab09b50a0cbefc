// Package mmc3 implements the MMC3 board: bank-select/bank-data register
// pairs driving four 8 KiB PRG windows and six CHR windows, a PRG-RAM
// gate, and an A12-timer-driven scanline IRQ, grounded on the teacher's
// pkg/cartridge/mapper4.go. The scanline counter itself is pkg/timer/a12
// rather than the teacher's per-scanline Scanline() hook: spec.md §4.4
// replaces that call with A12.Hook/Predict, fed by whatever drives the
// PPU address bus.
//
// Exported helpers are reused by TxSROM (pkg/variant/txsrom), which
// shares every MMC3 register except nametable control.
package mmc3

import (
	"github.com/andrewthecodertx/board-core/pkg/board"
	"github.com/andrewthecodertx/board-core/pkg/timer/a12"
)

// VariantState is MMC3's per-board scratch (spec.md §9).
type VariantState struct {
	BankSelect         uint8
	PRGMode            uint8
	CHRMode            uint8
	Registers          [8]uint8
	PRGRAMEnabled      bool
	PRGRAMWriteProtect bool
}

func NewVariantState() any {
	return &VariantState{PRGRAMEnabled: true}
}

func State(b *board.Board) *VariantState { return b.VariantState.(*VariantState) }

// ApplyPRG rewrites the four 8 KiB PRG windows from the current bank
// registers and PRG mode.
func ApplyPRG(b *board.Board) {
	s := State(b)
	if s.PRGMode == 0 {
		b.PRGBanks[0].BankIndex = int32(s.Registers[6])
		b.PRGBanks[1].BankIndex = int32(s.Registers[7])
		b.PRGBanks[2].BankIndex = -2
		b.PRGBanks[3].BankIndex = -1
	} else {
		b.PRGBanks[0].BankIndex = -2
		b.PRGBanks[1].BankIndex = int32(s.Registers[7])
		b.PRGBanks[2].BankIndex = int32(s.Registers[6])
		b.PRGBanks[3].BankIndex = -1
	}
	b.SyncPRG()
}

// ApplyCHR rewrites the six CHR windows' address/size partition and bank
// indices from CHRMode (spec.md §4.1's slot table is itself mutable, not
// just its bank indices, for exactly this reason).
func ApplyCHR(b *board.Board) {
	s := State(b)
	r0, r1 := int32(s.Registers[0]&0xFE), int32(s.Registers[1]&0xFE)
	r2, r3, r4, r5 := int32(s.Registers[2]), int32(s.Registers[3]), int32(s.Registers[4]), int32(s.Registers[5])

	type slot struct {
		addr uint16
		size uint16
		bank int32
	}
	var slots [6]slot
	if s.CHRMode == 0 {
		slots = [6]slot{
			{0x0000, 0x0800, r0 / 2}, {0x0800, 0x0800, r1 / 2},
			{0x1000, 0x0400, r2}, {0x1400, 0x0400, r3},
			{0x1800, 0x0400, r4}, {0x1C00, 0x0400, r5},
		}
	} else {
		slots = [6]slot{
			{0x0000, 0x0400, r2}, {0x0400, 0x0400, r3},
			{0x0800, 0x0400, r4}, {0x0C00, 0x0400, r5},
			{0x1000, 0x0800, r0 / 2}, {0x1800, 0x0800, r1 / 2},
		}
	}
	for i, sl := range slots {
		b.CHRBanks0[i] = board.Bank{
			BankIndex: sl.bank, Size: sl.size, Address: sl.addr,
			Type: board.ChipAuto, Perm: board.PermReadWrite,
		}
	}
	b.SyncCHR()
}

func BankSelectOrData(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := State(b)
	if addr&1 == 0 {
		s.BankSelect = value & 0x07
		s.PRGMode = (value >> 6) & 0x01
		s.CHRMode = (value >> 7) & 0x01
	} else {
		s.Registers[s.BankSelect] = value
	}
	ApplyPRG(b)
	ApplyCHR(b)
}

func MirroringOrProtect(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := State(b)
	if addr&1 == 0 {
		if b.Descriptor.Flags.Has(board.FlagMapperControlledMirroring) {
			return // TxSROM and similar: mirroring register doesn't exist
		}
		if value&1 == 0 {
			b.Mirroring = board.MirrorVertical
		} else {
			b.Mirroring = board.MirrorHorizontal
		}
		b.SyncNametables()
	} else {
		s.PRGRAMWriteProtect = value&0x40 != 0
		s.PRGRAMEnabled = value&0x80 != 0
	}
}

func IRQLatchOrReload(b *board.Board, addr uint16, value uint8, cycle uint32) {
	if addr&1 == 0 {
		b.A12.SetReload(uint32(value), cycle)
	} else {
		b.A12.ForceReload(cycle)
	}
}

func IRQDisableOrEnable(b *board.Board, addr uint16, value uint8, cycle uint32) {
	if addr&1 == 0 {
		b.A12.SetIRQEnabled(false, cycle)
		b.A12.Ack(cycle)
	} else {
		b.A12.SetIRQEnabled(true, cycle)
	}
}

func ReadPRGRAM(b *board.Board, addr uint16, cycle uint32) uint8 {
	s := State(b)
	if !s.PRGRAMEnabled || b.WRAM == nil {
		return 0
	}
	return b.WRAM.Data[addr-0x6000]
}

func WritePRGRAM(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := State(b)
	if !s.PRGRAMEnabled || s.PRGRAMWriteProtect || b.WRAM == nil {
		return
	}
	b.WRAM.Data[addr-0x6000] = value
}

func Reset(b *board.Board, hard bool) {
	if hard {
		b.VariantState = NewVariantState()
	}
	// The A12 IRQ counter reloads on its next clock, never mid-write
	// (the real chip's documented "delayed reload" behavior). Unlike M2,
	// the A12 counter is always clocked by every qualifying PPU A12 rise;
	// there's no separate "start counting" register, only the IRQ
	// enable/disable pair that gates whether a terminal count asserts
	// the interrupt line.
	b.A12.SetFlags(b.A12.GetFlags()|a12.FlagDelayedReload, 0)
	b.A12.SetCounterEnabled(true, 0)
	ApplyPRG(b)
	ApplyCHR(b)
}

func WriteHandlers() []board.HandlerEntry {
	return []board.HandlerEntry{
		{Fn: WritePRGRAM, Base: 0x6000, Size: 0x2000},
		{Fn: BankSelectOrData, Base: 0x8000, Size: 0x2000},
		{Fn: MirroringOrProtect, Base: 0xA000, Size: 0x2000},
		{Fn: IRQLatchOrReload, Base: 0xC000, Size: 0x2000},
		{Fn: IRQDisableOrEnable, Base: 0xE000, Size: 0x2000},
	}
}

func ReadHandlers() []board.HandlerEntry {
	return []board.HandlerEntry{
		{ReadFn: ReadPRGRAM, Base: 0x6000, Size: 0x2000},
	}
}

// InitPRG and InitCHR are the stock MMC3 bank layout, reused as-is by
// derivatives (MMC6/HKROM) whose only differences are in WRAM handling.
func InitPRG() []board.Bank {
	return []board.Bank{
		{BankIndex: 0, Size: 0x2000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
		{BankIndex: 1, Size: 0x2000, Address: 0xA000, Type: board.ChipROM, Perm: board.PermRead},
		{BankIndex: -2, Size: 0x2000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
		{BankIndex: -1, Size: 0x2000, Address: 0xE000, Type: board.ChipROM, Perm: board.PermRead},
	}
}

func InitCHR() []board.Bank {
	return []board.Bank{
		{BankIndex: 0, Size: 0x0800, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
		{BankIndex: 0, Size: 0x0800, Address: 0x0800, Type: board.ChipAuto, Perm: board.PermReadWrite},
		{BankIndex: 0, Size: 0x0400, Address: 0x1000, Type: board.ChipAuto, Perm: board.PermReadWrite},
		{BankIndex: 0, Size: 0x0400, Address: 0x1400, Type: board.ChipAuto, Perm: board.PermReadWrite},
		{BankIndex: 0, Size: 0x0400, Address: 0x1800, Type: board.ChipAuto, Perm: board.PermReadWrite},
		{BankIndex: 0, Size: 0x0400, Address: 0x1C00, Type: board.ChipAuto, Perm: board.PermReadWrite},
	}
}

func init() {
	board.Register(&board.Descriptor{
		Tag:             "TxROM",
		Name:            "MMC3",
		MapperName:      "iNES Mapper 4",
		MaxPRGROMSize:   512 * 1024,
		MaxCHRROMSize:   256 * 1024,
		MaxWRAMSize:     8 * 1024,
		NewVariantState: NewVariantState,
		InitPRG:         InitPRG(),
		InitCHR0:        InitCHR(),
		Flags:           board.FlagUsesA12Timer,
		A12Variant:      0, // a12.VariantMMC3Std
		WriteHandlers:   WriteHandlers(),
		ReadHandlers:    ReadHandlers(),
		Funcs: board.Funcs{
			Init:  func(b *board.Board) error { Reset(b, true); return nil },
			Reset: Reset,
		},
	})
}
