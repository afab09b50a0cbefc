// Package flashrom implements a UNROM-512-style board whose PRG chip is
// an SST39SF040 NOR flash rather than a mask ROM (spec.md §4.5): a
// register write selects the active 16 KiB PRG window and one of two 8
// KiB CHR-RAM pages exactly like UxROM, but CPU writes to $8000-$FFFF
// are first offered to a JEDEC unlock-sequence state machine so software
// can reprogram the cartridge in place. Every byte actually programmed
// is recorded via Board.RecordModifiedRange, feeding the IPS journal
// pkg/patch produces at save time.
package flashrom

import "github.com/andrewthecodertx/board-core/pkg/board"

const sectorSize = 0x1000

type stage uint8

const (
	stageIdle stage = iota
	stageUnlock1
	stageUnlock2
	stageEraseUnlock1
	stageEraseUnlock2
)

type variantState struct {
	stage        stage
	prgBank      uint8
	chrBank      uint8
	eraseArmed   bool
	programArmed bool
}

func newVariantState() any { return &variantState{} }
func state(b *board.Board) *variantState { return b.VariantState.(*variantState) }

func applyBanks(b *board.Board, s *variantState) {
	b.PRGBanks[0].BankIndex = int32(s.prgBank)
	b.CHRBanks0[0].BankIndex = int32(s.chrBank)
	b.SyncPRG()
	b.SyncCHR()
}

func flashOffset(s *variantState, addr uint16) int {
	return int(s.prgBank)*0x4000 + int(addr-0x8000)
}

func eraseSector(b *board.Board, from int) {
	end := from + sectorSize
	if end > len(b.PRGROM.Data) {
		end = len(b.PRGROM.Data)
	}
	if from < 0 || from >= len(b.PRGROM.Data) {
		return
	}
	for i := from; i < end; i++ {
		b.PRGROM.Data[i] = 0xFF
	}
	b.RecordModifiedRange(from, end-from)
}

func eraseChip(b *board.Board) {
	for i := range b.PRGROM.Data {
		b.PRGROM.Data[i] = 0xFF
	}
	b.RecordModifiedRange(0, len(b.PRGROM.Data))
}

// programByte performs an SST39SF040 program cycle: the target bit can
// only go from 1 to 0 (spec.md §4.5's "can only clear bits"), so the
// write ANDs into the existing flash contents rather than overwriting.
func programByte(b *board.Board, s *variantState, addr uint16, value uint8) {
	offset := flashOffset(s, addr)
	if offset < 0 || offset >= len(b.PRGROM.Data) {
		return
	}
	b.PRGROM.Data[offset] &= value
	b.RecordModifiedRange(offset, 1)
}

// writeCPU is the combined bank-select-register / flash-command-byte
// handler: most writes select a bank exactly as on UxROM; the JEDEC
// 0x5555/0x2AAA unlock addresses are distinguished only by their value
// sequence (AA then 55), matching how real software addresses them
// through whatever bank happens to be mapped there rather than by a
// fixed absolute address.
func writeCPU(b *board.Board, addr uint16, value uint8, cycle uint32) {
	s := state(b)

	if s.programArmed {
		s.programArmed = false
		programByte(b, s, addr, value)
		return
	}

	switch s.stage {
	case stageIdle:
		if value == 0xAA {
			s.stage = stageUnlock1
			return
		}
	case stageUnlock1:
		if value == 0x55 {
			s.stage = stageUnlock2
			return
		}
		s.stage = stageIdle
	case stageUnlock2:
		s.stage = stageIdle
		switch value {
		case 0xA0: // program: the next write is the data byte
			s.programArmed = true
			return
		case 0x80: // erase prefix: expects a second AA/55/command
			s.stage = stageEraseUnlock1
			return
		case 0x10: // chip erase
			eraseChip(b)
			return
		}
	case stageEraseUnlock1:
		if value == 0xAA {
			s.stage = stageEraseUnlock2
			return
		}
		s.stage = stageIdle
	case stageEraseUnlock2:
		s.stage = stageIdle
		if value == 0x55 {
			s.eraseArmed = true
			return
		}
	}

	if s.eraseArmed {
		s.eraseArmed = false
		switch value {
		case 0x10:
			eraseChip(b)
			return
		case 0x30:
			eraseSector(b, flashOffset(s, addr)&^(sectorSize-1))
			return
		}
	}

	// Ordinary bank-select write (spec.md §4.5 register format: low bits
	// select the 16 KiB PRG window, bit 7 selects an 8 KiB CHR-RAM page).
	s.prgBank = value & 0x0F
	s.chrBank = (value >> 7) & 0x01
	applyBanks(b, s)
}

func init() {
	board.Register(&board.Descriptor{
		Tag:             "UNROM-512-FLASH",
		Name:            "UNROM-512 (SST39SF040 flash)",
		MapperName:      "supplemented: flash-backed UxROM",
		MaxPRGROMSize:   512 * 1024,
		MaxCHRROMSize:   0x4000, // two switchable 8 KiB CHR-RAM pages (chrBank bit)
		NewVariantState: newVariantState,
		InitPRG: []board.Bank{
			{BankIndex: 0, Size: 0x4000, Address: 0x8000, Type: board.ChipROM, Perm: board.PermRead},
			{BankIndex: -1, Size: 0x4000, Address: 0xC000, Type: board.ChipROM, Perm: board.PermRead},
		},
		InitCHR0: []board.Bank{
			{BankIndex: 0, Size: 0x2000, Address: 0x0000, Type: board.ChipAuto, Perm: board.PermReadWrite},
		},
		WriteHandlers: []board.HandlerEntry{
			{Fn: writeCPU, Base: 0x8000, Size: 0x8000},
		},
	})
}
