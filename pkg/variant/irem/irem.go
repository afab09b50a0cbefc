// Package irem implements the Irem H3001 board (iNES mapper 65): three
// switchable 8 KiB PRG windows with the last bank fixed, eight switchable
// 1 KiB CHR windows, mapper-selected mirroring, and a 16-bit M2-clocked
// one-shot IRQ counter, grounded on original_source/boards/irem_h3001.c.
package irem

import (
	"github.com/andrewthecodertx/board-core/pkg/board"
	"github.com/andrewthecodertx/board-core/pkg/timer/m2"
)

func writePRGBank(slot int) board.WriteHandlerFunc {
	return func(b *board.Board, addr uint16, value uint8, cycle uint32) {
		b.PRGBanks[slot].BankIndex = int32(value)
		b.SyncPRG()
	}
}

func writeCHRBank(slot int) board.WriteHandlerFunc {
	return func(b *board.Board, addr uint16, value uint8, cycle uint32) {
		b.CHRBanks0[slot].BankIndex = int32(value)
		b.SyncCHR()
	}
}

func writeIRQCounterHi(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.SetReloadHi(value, cycle)
}

func writeIRQCounterLo(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.SetReloadLo(value, cycle)
}

// writeIRQControl acks any pending IRQ and sets the enable bit, which also
// starts or stops the counter (original_source/boards/irem_h3001.c's case
// 0x9003). The reload itself is a separate write to $9004.
func writeIRQControl(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.Ack(cycle)
	b.M2.SetIRQEnabled(value&0x80 != 0, cycle)
	b.M2.SetCounterEnabled(value&0x80 != 0, cycle)
}

// resetIRQ makes the counter one-shot: it stops after asserting the IRQ.
func resetIRQ(b *board.Board, hard bool) {
	if b.M2 != nil {
		b.M2.SetFlags(m2.FlagOneShot, 0)
	}
}

// forceReloadIRQ reloads the counter from its latch (case 0x9004).
func forceReloadIRQ(b *board.Board, addr uint16, value uint8, cycle uint32) {
	b.M2.ForceReload(cycle)
}

func writeMirroring(b *board.Board, addr uint16, value uint8, cycle uint32) {
	if value&0x01 != 0 {
		b.Mirroring = board.MirrorHorizontal
	} else {
		b.Mirroring = board.MirrorVertical
	}
	b.SyncNametables()
}

func init() {
	board.Register(&board.Descriptor{
		Tag:           "IREM-H3001",
		Name:          "Irem H3001",
		MapperName:    "iNES Mapper 65",
		MaxPRGROMSize: 512 * 1024,
		MaxCHRROMSize: 256 * 1024,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: 1, Size: 0x2000, Address: 0xA000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: 2, Size: 0x2000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x2000, Address: 0xE000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x400, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 1, Size: 0x400, Address: 0x0400, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 2, Size: 0x400, Address: 0x0800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 3, Size: 0x400, Address: 0x0C00, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 4, Size: 0x400, Address: 0x1000, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 5, Size: 0x400, Address: 0x1400, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 6, Size: 0x400, Address: 0x1800, Type: board.ChipAuto, Perm: board.PermReadWrite},
			{BankIndex: 7, Size: 0x400, Address: 0x1C00, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		Flags: board.FlagUsesM2Timer,
		Funcs: board.Funcs{
			Init:  func(b *board.Board) error { resetIRQ(b, true); return nil },
			Reset: resetIRQ,
		},
		WriteHandlers: []board.HandlerEntry{
			{Fn: writePRGBank(0), Base: 0x8000, Size: 0x0001},
			{Fn: writeMirroring, Base: 0x9001, Size: 0x0001},
			{Fn: writeIRQControl, Base: 0x9003, Size: 0x0001},
			{Fn: forceReloadIRQ, Base: 0x9004, Size: 0x0001},
			{Fn: writeIRQCounterHi, Base: 0x9005, Size: 0x0001},
			{Fn: writeIRQCounterLo, Base: 0x9006, Size: 0x0001},
			{Fn: writeCHRBank(0), Base: 0xB000, Size: 0x0001},
			{Fn: writeCHRBank(1), Base: 0xB001, Size: 0x0001},
			{Fn: writeCHRBank(2), Base: 0xB002, Size: 0x0001},
			{Fn: writeCHRBank(3), Base: 0xB003, Size: 0x0001},
			{Fn: writeCHRBank(4), Base: 0xB004, Size: 0x0001},
			{Fn: writeCHRBank(5), Base: 0xB005, Size: 0x0001},
			{Fn: writeCHRBank(6), Base: 0xB006, Size: 0x0001},
			{Fn: writeCHRBank(7), Base: 0xB007, Size: 0x0001},
			{Fn: writePRGBank(1), Base: 0xA000, Size: 0x0001},
			{Fn: writePRGBank(2), Base: 0xC000, Size: 0x0001},
		},
	})
}
