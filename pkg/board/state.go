package board

import (
	"fmt"
	"log/slog"

	"github.com/andrewthecodertx/board-core/pkg/timer/a12"
	"github.com/andrewthecodertx/board-core/pkg/timer/m2"
)

// Range is one (offset, length) entry in a flash-ROM board's journal of
// bytes written into PRG since the last save (spec.md §3 modified_ranges,
// §4.5 Flash-ROM).
type Range struct {
	Offset int
	Length int
}

// logger is the package-level structured logger used for the
// warning-level ambient-error reporting of spec.md §7. The only warnings
// this package emits are the oversized-ROM clamps in New; the package does
// no NVRAM file I/O, so it logs no NVRAM failures. No example repo in the
// retrieval pack imports a third-party logging library directly, so this
// is a deliberate standard-library choice (SPEC_FULL.md §7).
var logger = slog.Default()

// SetLogger overrides the package-level logger.
func SetLogger(l *slog.Logger) { logger = l }

// Board is one mutable board instance: C3. It owns its chip buffers and
// register state exclusively; the CPU and PPU only ever see resolved
// page-table entries (spec.md §3 Ownership).
type Board struct {
	Descriptor *Descriptor
	Bus        Bus

	PRGBanks  [6]Bank
	CHRBanks0 [10]Bank
	CHRBanks1 [10]Bank
	NTBanks   [4]Bank

	PRGAnd, PRGOr   int32
	CHRAnd, CHROr   int32
	WRAMAnd, WRAMOr int32

	PRGMode, CHRMode           uint8
	IRQControl                 uint8
	IRQCounter, IRQReload      uint8
	Mirroring                  Mirroring
	DIPSwitches                uint8

	// Data/Timestamps are the spec's literal 16-byte/8-entry scratch
	// area (spec.md §3); kept for data-model fidelity. Variants needing
	// more than a handful of scratch bytes use VariantState instead, per
	// spec.md §9's replacement for board->data[N] macro aliasing.
	Data       [16]byte
	Timestamps [8]uint32

	ModifiedRanges []Range

	PRGROM     *Chip
	CHRMem     *Chip // ROM or RAM depending on the cartridge
	CHRIsRAM   bool
	WRAM       *Chip
	MapperRAM  *Chip
	CIRAM      *Chip // 2 KiB console-provided nametable RAM
	FourScreen *Chip // extra 2 KiB on four-screen boards
	Fill       *Chip // constant-fill 1 KiB source for FILL-type slots

	VariantState any

	M2  *m2.Timer
	A12 *a12.Timer

	CPUPages  *PageTable
	CHRPages0 *PageTable
	CHRPages1 *PageTable
	NTTable   NametableTable

	cpuClockDivider uint32
}

// Config bundles the values a host supplies when binding a ROM image to a
// descriptor (spec.md §3 Lifecycle: "created when a ROM is loaded, given a
// descriptor via board-type lookup").
type Config struct {
	PRGROM          []byte
	CHRROM          []byte // empty means CHR-RAM
	Mirroring       Mirroring
	HasBatteryWRAM  bool
	Bus             Bus
	CPUClockDivider uint32
	PPUClockDivider uint32
}

// New allocates a board instance for descriptor d bound to cfg's ROM
// image. It returns an error for a nil descriptor or when the variant's
// Init hook fails; oversized ROM images are clamped with a logged warning
// rather than rejected (spec.md §7).
func New(d *Descriptor, cfg Config) (*Board, error) {
	if d == nil {
		return nil, fmt.Errorf("board: nil descriptor")
	}

	b := &Board{Descriptor: d, Bus: cfg.Bus, Mirroring: cfg.Mirroring}
	b.PRGAnd, b.PRGOr = -1, 0
	b.CHRAnd, b.CHROr = -1, 0
	b.WRAMAnd, b.WRAMOr = -1, 0
	b.cpuClockDivider = cfg.CPUClockDivider
	if b.cpuClockDivider == 0 {
		b.cpuClockDivider = 1
	}

	prg := cfg.PRGROM
	if d.MaxPRGROMSize > 0 && len(prg) > d.MaxPRGROMSize {
		logger.Warn("board: PRG-ROM exceeds descriptor maximum, clamping",
			"tag", d.Tag, "size", len(prg), "max", d.MaxPRGROMSize)
		prg = prg[:d.MaxPRGROMSize]
	}
	b.PRGROM = &Chip{Data: prg, Kind: KindROM}

	if len(cfg.CHRROM) > 0 {
		chr := cfg.CHRROM
		if d.MaxCHRROMSize > 0 && len(chr) > d.MaxCHRROMSize {
			logger.Warn("board: CHR-ROM exceeds descriptor maximum, clamping",
				"tag", d.Tag, "size", len(chr), "max", d.MaxCHRROMSize)
			chr = chr[:d.MaxCHRROMSize]
		}
		b.CHRMem = &Chip{Data: chr, Kind: KindROM}
	} else {
		size := d.MaxCHRROMSize
		if size == 0 {
			size = 0x2000
		}
		b.CHRMem = NewChip(size, KindVRAM)
		b.CHRIsRAM = true
	}

	if d.MaxWRAMSize > 0 {
		kind := KindWRAM
		if cfg.HasBatteryWRAM {
			kind = KindWRAMNV
		}
		b.WRAM = NewChip(d.MaxWRAMSize, kind)
	}

	if d.Flags.Has(FlagHasMapperNVRAM) && d.MapperRAMSize > 0 {
		b.MapperRAM = NewChip(d.MapperRAMSize, KindMapperRAMNV)
	}

	b.CIRAM = NewChip(0x800, KindCIRAM)
	if cfg.Mirroring == MirrorFourScreen {
		b.FourScreen = NewChip(0x800, KindCIRAM)
	}
	b.Fill = NewChip(0x400, KindCIRAM)

	if d.NewVariantState != nil {
		b.VariantState = d.NewVariantState()
	}

	copy(b.PRGBanks[:], d.InitPRG)
	copy(b.CHRBanks0[:], d.InitCHR0)
	copy(b.CHRBanks1[:], d.InitCHR1)

	b.CPUPages = newPageTable(cpuPageCount, CPUPageSize)
	b.CHRPages0 = newPageTable(ppuPageCount, PPUPageSize)
	b.CHRPages1 = newPageTable(ppuPageCount, PPUPageSize)

	if d.Flags.Has(FlagUsesM2Timer) && cfg.Bus != nil {
		b.M2 = m2.New(cfg.Bus, cfg.CPUClockDivider)
	}
	if d.Flags.Has(FlagUsesA12Timer) && cfg.Bus != nil {
		b.A12 = a12.New(cfg.Bus, a12.Variant(d.A12Variant), cfg.CPUClockDivider, cfg.PPUClockDivider)
	}

	b.SyncPRG()
	b.SyncCHR()
	b.SyncNametables()

	if d.Funcs.Init != nil {
		if err := d.Funcs.Init(b); err != nil {
			return nil, fmt.Errorf("board: init %s: %w", d.Tag, err)
		}
	}
	return b, nil
}

// Reset reinitializes the board. On hard reset the bank tables, masks,
// Data scratch bytes and volatile WRAM are reset; CHR-RAM, CIRAM, mapper
// RAM and battery-backed WRAM keep their contents. On both hard and soft
// reset the M2/A12 timers and the variant's Reset hook are notified, and
// the page tables are resynced.
func (b *Board) Reset(hard bool) {
	if hard {
		copy(b.PRGBanks[:], b.Descriptor.InitPRG)
		copy(b.CHRBanks0[:], b.Descriptor.InitCHR0)
		copy(b.CHRBanks1[:], b.Descriptor.InitCHR1)
		b.PRGAnd, b.PRGOr = -1, 0
		b.CHRAnd, b.CHROr = -1, 0
		b.WRAMAnd, b.WRAMOr = -1, 0
		for i := range b.Data {
			b.Data[i] = 0
		}
		if b.WRAM != nil && b.WRAM.Kind == KindWRAM {
			for i := range b.WRAM.Data {
				b.WRAM.Data[i] = 0
			}
		}
	}
	if b.M2 != nil {
		b.M2.Reset(hard)
	}
	if b.A12 != nil {
		b.A12.Reset(hard)
	}
	if b.Descriptor.Funcs.Reset != nil {
		b.Descriptor.Funcs.Reset(b, hard)
	}
	b.SyncPRG()
	b.SyncCHR()
	b.SyncNametables()
}

// EndFrame rolls the board's timers forward to the frame boundary and
// shifts their timebases (spec.md §6 end_frame contract).
func (b *Board) EndFrame(cycle uint32) {
	if b.M2 != nil {
		b.M2.EndFrame(cycle)
	}
	if b.A12 != nil {
		b.A12.EndFrame(cycle)
	}
	if b.Descriptor.Funcs.EndFrame != nil {
		b.Descriptor.Funcs.EndFrame(b, cycle)
	}
}

// RecordModifiedRange inserts (offset,length) into ModifiedRanges,
// merging with any existing overlapping or adjacent range (spec.md §3:
// "an ordered, merge-on-insert list").
func (b *Board) RecordModifiedRange(offset, length int) {
	if length <= 0 {
		return
	}
	newStart, newEnd := offset, offset+length
	out := make([]Range, 0, len(b.ModifiedRanges)+1)
	inserted := false
	for _, r := range b.ModifiedRanges {
		rStart, rEnd := r.Offset, r.Offset+r.Length
		if newEnd < rStart || newStart > rEnd {
			if !inserted && newEnd < rStart {
				out = append(out, Range{newStart, newEnd - newStart})
				inserted = true
			}
			out = append(out, r)
			continue
		}
		// overlap or adjacency: merge into the pending new range
		if rStart < newStart {
			newStart = rStart
		}
		if rEnd > newEnd {
			newEnd = rEnd
		}
	}
	if !inserted {
		out = append(out, Range{newStart, newEnd - newStart})
	}
	b.ModifiedRanges = out
}

// WriteCPU dispatches a CPU store to the handler whose (base, size, mask)
// window matches addr, if any, per spec.md §4.2. Stores that hit the
// direct page table but have no handler write through the resolved
// pointer when permissions allow; writes to unmapped or read-only
// addresses are silently ignored (spec.md §4.2 Failure semantics).
func (b *Board) WriteCPU(addr uint16, value uint8, cycle uint32) {
	for _, h := range b.Descriptor.WriteHandlers {
		if h.Fn != nil && h.matches(addr) {
			h.Fn(b, addr, value, cycle)
			return
		}
	}
	entry := b.CPUPages.Entry(addr)
	if entry.Ptr == nil || !entry.Perm.CanWrite() {
		return
	}
	offset := int(addr) % CPUPageSize
	entry.Ptr[offset] = value
}

// ReadCPU mirrors WriteCPU for reads; an unmapped address returns 0,
// matching "open bus" being handled outside this core (spec.md §4.2).
func (b *Board) ReadCPU(addr uint16, cycle uint32) uint8 {
	for _, h := range b.Descriptor.ReadHandlers {
		if h.ReadFn != nil && h.matches(addr) {
			return h.ReadFn(b, addr, cycle)
		}
	}
	entry := b.CPUPages.Entry(addr)
	if entry.Ptr == nil || !entry.Perm.CanRead() {
		return 0
	}
	return entry.Ptr[int(addr)%CPUPageSize]
}

// ReadCHR/WriteCHR access the primary PPU pagemap ($0000-$1FFF).
func (b *Board) ReadCHR(addr uint16) uint8 {
	entry := b.CHRPages0.Entry(addr)
	if entry.Ptr == nil || !entry.Perm.CanRead() {
		return 0
	}
	return entry.Ptr[int(addr)%PPUPageSize]
}

func (b *Board) WriteCHR(addr uint16, value uint8) {
	entry := b.CHRPages0.Entry(addr)
	if entry.Ptr == nil || !entry.Perm.CanWrite() {
		return
	}
	entry.Ptr[int(addr)%PPUPageSize] = value
}

// ReadNametable/WriteNametable access $2000-$2FFF through the four
// logical nametable slots, independent of the physical CIRAM layout
// mirroring has resolved them to.
func (b *Board) nametableSlot(addr uint16) int {
	return int((addr >> 10) & 3)
}

func (b *Board) ReadNametable(addr uint16) uint8 {
	entry := b.NTTable.Slots[b.nametableSlot(addr)]
	if entry.Ptr == nil {
		return 0
	}
	return entry.Ptr[addr&0x3FF]
}

func (b *Board) WriteNametable(addr uint16, value uint8) {
	entry := b.NTTable.Slots[b.nametableSlot(addr)]
	if entry.Ptr == nil || !entry.Perm.CanWrite() {
		return
	}
	entry.Ptr[addr&0x3FF] = value
}
