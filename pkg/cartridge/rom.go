// Package cartridge loads iNES ROM images and binds them to a registered
// board variant. Loading is an external collaborator relative to the
// board subsystem itself (spec.md §1 lists ROM-file loaders as out of
// scope for the core), but a minimal loader is kept here, adapted from
// the teacher's pkg/cartridge/cartridge.go, so the board registry has
// something to construct boards from and so tests can exercise full ROMs.
package cartridge

import (
	"fmt"
	"os"

	"github.com/andrewthecodertx/board-core/pkg/board"
)

const (
	inesHeaderSize = 16
	prgROMBankSize = 16384
	chrROMBankSize = 8192
	inesMagic      = "NES\x1a"
)

// ROM is a parsed iNES image, not yet bound to a board instance.
type ROM struct {
	PRGROM     []byte
	CHRROM     []byte
	MapperID   uint8
	Mirroring  board.Mirroring
	HasSaveRAM bool
	HasTrainer bool
}

// LoadFromFile reads and parses an iNES (.nes) file.
func LoadFromFile(filename string) (*ROM, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cartridge: read ROM file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses an iNES image already in memory.
func LoadFromBytes(data []byte) (*ROM, error) {
	if len(data) < inesHeaderSize {
		return nil, fmt.Errorf("cartridge: file too small to be a valid iNES ROM")
	}
	if string(data[0:4]) != inesMagic {
		return nil, fmt.Errorf("cartridge: invalid iNES header magic: expected %q, got %q", inesMagic, string(data[0:4]))
	}

	prgBanks, chrBanks := data[4], data[5]
	flags6, flags7 := data[6], data[7]

	mirroring := board.MirrorHorizontal
	if flags6&0x01 != 0 {
		mirroring = board.MirrorVertical
	}
	hasSaveRAM := flags6&0x02 != 0
	hasTrainer := flags6&0x04 != 0
	fourScreen := flags6&0x08 != 0
	if fourScreen {
		mirroring = board.MirrorFourScreen
	}
	mapperID := (flags7 & 0xF0) | ((flags6 & 0xF0) >> 4)

	offset := inesHeaderSize
	if hasTrainer {
		offset += 512
	}

	prgSize := int(prgBanks) * prgROMBankSize
	if len(data) < offset+prgSize {
		return nil, fmt.Errorf("cartridge: file too small for PRG-ROM data")
	}
	prgROM := data[offset : offset+prgSize]
	offset += prgSize

	chrSize := int(chrBanks) * chrROMBankSize
	var chrROM []byte
	if chrSize > 0 {
		if len(data) < offset+chrSize {
			return nil, fmt.Errorf("cartridge: file too small for CHR-ROM data")
		}
		chrROM = data[offset : offset+chrSize]
	}

	return &ROM{
		PRGROM: prgROM, CHRROM: chrROM, MapperID: mapperID,
		Mirroring: mirroring, HasSaveRAM: hasSaveRAM, HasTrainer: hasTrainer,
	}, nil
}

// mapperTags maps an iNES mapper number to the board tag registered for
// it (spec.md §7's "Invalid descriptor": a mapper id with no entry here,
// or whose tag isn't registered, is reported by Bind rather than the
// core). Only mapper ids with an actual registered pkg/variant package
// appear here; see DESIGN.md for families considered and left out.
var mapperTags = map[uint8]string{
	0:   "NROM",
	1:   "MMC1",
	2:   "UxROM",
	3:   "CNROM",
	4:   "TxROM", // MMC3; family members differ by sub-variant, not mapper id
	7:   "AxROM",
	16:  "BANDAI-FCG",
	21:  "VRC4",
	30:  "UNROM-512-FLASH",
	64:  "TENGEN-800032",
	65:  "IREM-H3001",
	67:  "SUNSOFT-3",
	118: "TxSROM",
}

// Bind resolves r's mapper id to a board tag and constructs a board
// instance for it.
func (r *ROM) Bind(bus board.Bus, cpuClockDivider, ppuClockDivider uint32) (*board.Board, error) {
	tag, ok := mapperTags[r.MapperID]
	if !ok {
		return nil, fmt.Errorf("cartridge: unsupported mapper id %d", r.MapperID)
	}
	d, err := board.Lookup(tag)
	if err != nil {
		return nil, err
	}
	return board.New(d, board.Config{
		PRGROM: r.PRGROM, CHRROM: r.CHRROM, Mirroring: r.Mirroring,
		HasBatteryWRAM: r.HasSaveRAM, Bus: bus,
		CPUClockDivider: cpuClockDivider, PPUClockDivider: ppuClockDivider,
	})
}
