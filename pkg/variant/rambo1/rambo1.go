// Package rambo1 implements the Tengen RAMBO-1 board (iNES mapper 64,
// board TENGEN-800032): an MMC3 derivative with four independently
// 1 KiB/2 KiB-switchable low CHR banks instead of MMC3's fixed 2 KiB
// pair, an extra direct PRG bank register, and a scanline IRQ counter
// that can be driven by either the A12 timer (stock MMC3 behavior) or
// the M2 timer (a CPU-cycle counting mode Tengen's games use instead),
// selected per write to the reload-control register. Grounded on
// original_source/boards/rambo1.c; the A12 filter timing itself reuses
// pkg/timer/a12's previously-unconsumed VariantRambo1 constant.
//
// TENGEN-800037 (mapper 158), RAMBO-1's TxSROM-style sibling that also
// derives nametables from CHR register bits, is not given its own
// package: the dual-IRQ-source mechanism below is the part of RAMBO-1
// spec.md's supplemented-features list actually calls out, and grafting
// on a second nametable-control path would double this package's size
// for a board family sharing no example ROM in the retrieval pack.
package rambo1

import (
	"github.com/andrewthecodertx/board-core/pkg/board"
	"github.com/andrewthecodertx/board-core/pkg/timer/a12"
	"github.com/andrewthecodertx/board-core/pkg/timer/m2"
)

// VariantState is RAMBO-1's per-board scratch (spec.md §9). BankSelect
// holds the full 4-bit register index (0-9, 15), not just the 3-bit
// range of stock MMC3, and ExtRegs backs the low CHR banks one register
// index maps to a 2-bit half-register pair (original_source's
// _ext_regs[4]).
type VariantState struct {
	BankSelect uint8
	PRGMode    uint8
	ChrMode    uint8 // raw 0xA0 bits: 0x80 address-half swap, 0x20 1 KiB granularity
	Registers  [8]uint8
	ExtRegs    [4]uint8

	PRGRAMEnabled      bool
	PRGRAMWriteProtect bool
}

func newVariantState() any { return &VariantState{PRGRAMEnabled: true} }
func state(b *board.Board) *VariantState { return b.VariantState.(*VariantState) }

func applyPRG(b *board.Board) {
	s := state(b)
	if s.PRGMode == 0 {
		b.PRGBanks[0].BankIndex = int32(s.Registers[6])
		b.PRGBanks[1].BankIndex = int32(s.Registers[7])
		b.PRGBanks[2].BankIndex = -2
	} else {
		b.PRGBanks[0].BankIndex = -2
		b.PRGBanks[1].BankIndex = int32(s.Registers[6])
		b.PRGBanks[2].BankIndex = int32(s.Registers[7])
	}
	b.SyncPRG()
}

// applyCHR rewrites all eight 1 KiB CHR windows from ExtRegs (banks
// 0-3) and Registers (banks 4-7), per rambo1_bank_select: bit 0x20
// picks between four independent 1 KiB registers and two 2 KiB-paired
// ones for the low half, and bit 0x80 swaps which half of $0000-$1FFF
// the low group occupies.
func applyCHR(b *board.Board) {
	s := state(b)
	var c0, c1, c2, c3 int32
	if s.ChrMode&0x20 == 0 {
		c0, c1 = int32(s.ExtRegs[0]&0xFE), int32(s.ExtRegs[0]|0x01)
		c2, c3 = int32(s.ExtRegs[1]&0xFE), int32(s.ExtRegs[1]|0x01)
	} else {
		c0, c1, c2, c3 = int32(s.ExtRegs[0]), int32(s.ExtRegs[1]), int32(s.ExtRegs[2]), int32(s.ExtRegs[3])
	}
	c4, c5, c6, c7 := int32(s.Registers[2]), int32(s.Registers[3]), int32(s.Registers[4]), int32(s.Registers[5])

	lowAddr, highAddr := uint16(0x0000), uint16(0x1000)
	if s.ChrMode&0x80 != 0 {
		lowAddr, highAddr = 0x1000, 0x0000
	}
	banks := [8]int32{c0, c1, c2, c3, c4, c5, c6, c7}
	addrs := [8]uint16{
		lowAddr + 0x000, lowAddr + 0x400, lowAddr + 0x800, lowAddr + 0xC00,
		highAddr + 0x000, highAddr + 0x400, highAddr + 0x800, highAddr + 0xC00,
	}
	for i := range banks {
		b.CHRBanks0[i] = board.Bank{
			BankIndex: banks[i], Size: 0x400, Address: addrs[i],
			Type: board.ChipAuto, Perm: board.PermReadWrite,
		}
	}
	b.SyncCHR()
}

// bankSelectOrData handles both $8000 (register select/mode) and $8001
// (register data), per rambo1_bank_select/rambo1_bank_data.
func bankSelectOrData(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := state(b)
	if addr&1 == 0 {
		s.BankSelect = value & 0x0F
		s.PRGMode = (value >> 6) & 1
		s.ChrMode = value & 0xA0
	} else {
		bank := s.BankSelect
		switch {
		case bank >= 2 && bank <= 7:
			s.Registers[bank] = value
		case bank == 0 || bank == 1 || bank == 8 || bank == 9:
			idx := ((bank & 1) << 1) | ((bank & 0x08) >> 3)
			s.ExtRegs[idx] = value
		case bank == 15:
			b.PRGBanks[3].BankIndex = int32(value)
		}
	}
	applyPRG(b)
	applyCHR(b)
}

func mirroringOrProtect(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := state(b)
	if addr&1 == 0 {
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

func readPRGRAM(b *board.Board, addr uint16, cycle uint32) uint8 {
	s := state(b)
	if !s.PRGRAMEnabled || b.WRAM == nil {
		return 0
	}
	return b.WRAM.Data[addr-0x6000]
}

func writePRGRAM(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := state(b)
	if !s.PRGRAMEnabled || s.PRGRAMWriteProtect || b.WRAM == nil {
		return
	}
	b.WRAM.Data[addr-0x6000] = value
}

// irqLatchOrReload handles $C000 (reload latch, fed to both timers so
// whichever is active already holds the right value) and $C001 (the
// control bit that actually picks which timer is live), per
// rambo1_irq_latch/rambo1_irq_reload.
func irqLatchOrReload(b *board.Board, addr uint16, value uint8, cycle uint32) {
	if addr&1 == 0 {
		b.IRQReload = value
		b.M2.SetReload(uint32(value), cycle)
		b.A12.SetReload(uint32(value), cycle)
		return
	}
	newControl := value & 1
	if b.IRQControl != newControl {
		b.IRQControl = newControl
		b.M2.SetCounterEnabled(newControl != 0, cycle)
		b.A12.SetCounterEnabled(newControl == 0, cycle)
	}
	if b.IRQControl != 0 {
		b.M2.ForceReload(cycle)
		b.M2.SetPrescaler(3, cycle)
		delay := uint32(0)
		if b.IRQReload != 0 {
			delay = 2
		}
		b.M2.SetForceReloadDelay(delay, cycle)
	} else {
		b.A12.ForceReload(cycle)
	}
}

// irqDisableOrEnable routes $E000/$E001 to whichever timer IRQControl
// currently names as the live counter.
func irqDisableOrEnable(b *board.Board, addr uint16, value uint8, cycle uint32) {
	enabled := addr&1 != 0
	if b.IRQControl != 0 {
		b.M2.SetIRQEnabled(enabled, cycle)
	} else {
		b.A12.SetIRQEnabled(enabled, cycle)
	}
}

func reset(b *board.Board, hard bool) {
	if hard {
		b.VariantState = newVariantState()
		b.IRQControl = 0
		b.IRQReload = 0
		b.M2.SetPrescaler(3, 0)
		b.M2.SetPrescalerReload(3, 0)
		b.M2.SetIRQDelay(2, 0)
		b.M2.SetSize(8, 0)
		b.M2.SetFlags(m2.FlagReload|m2.FlagDelayedReload|m2.FlagPrescaler|m2.FlagPrescalerReload, 0)
		b.M2.SetCounterEnabled(false, 0)
	}
	b.A12.SetFlags(b.A12.GetFlags()|a12.FlagDelayedReload, 0)
	b.A12.SetCounterEnabled(b.IRQControl == 0, 0)
	applyPRG(b)
	applyCHR(b)
}

func init() {
	board.Register(&board.Descriptor{
		Tag:             "TENGEN-800032",
		Name:            "RAMBO-1",
		MapperName:      "iNES Mapper 64",
		MaxPRGROMSize:   512 * 1024,
		MaxCHRROMSize:   256 * 1024,
		MaxWRAMSize:     8 * 1024,
		NewVariantState: newVariantState,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: 1, Size: 0x2000, Address: 0xA000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -2, Size: 0x2000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x2000, Address: 0xE000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x400, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x400, Address: 0x0400, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x400, Address: 0x0800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x400, Address: 0x0C00, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x400, Address: 0x1000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x400, Address: 0x1400, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x400, Address: 0x1800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 0, Size: 0x400, Address: 0x1C00, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		Flags:      board.FlagUsesA12Timer | board.FlagUsesM2Timer,
		A12Variant: int(a12.VariantRambo1),
		WriteHandlers: []board.HandlerEntry{
			{Fn: writePRGRAM, Base: 0x6000, Size: 0x2000},
			{Fn: bankSelectOrData, Base: 0x8000, Size: 0x2000},
			{Fn: mirroringOrProtect, Base: 0xA000, Size: 0x2000},
			{Fn: irqLatchOrReload, Base: 0xC000, Size: 0x2000},
			{Fn: irqDisableOrEnable, Base: 0xE000, Size: 0x2000},
		},
		ReadHandlers: []board.HandlerEntry{
			{ReadFn: readPRGRAM, Base: 0x6000, Size: 0x2000},
		},
		Funcs: board.Funcs{
			Init:  func(b *board.Board) error { reset(b, true); return nil },
			Reset: reset,
		},
	})
}
