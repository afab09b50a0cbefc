package board

const (
	// CPUPageSize is the CPU-page-size window spec.md §4.1 syncs against;
	// slots narrower than this are installed as handler-dispatch (nil
	// pointer) entries instead of direct pointers.
	CPUPageSize  = 0x100
	cpuPageCount = 0x10000 / CPUPageSize

	// PPUPageSize is the PPU pagemap granularity (1 KiB), used for both
	// the CHR pagemap and nametable slots.
	PPUPageSize  = 0x400
	ppuPageCount = 0x2000 / PPUPageSize

	NametableSlots = 4
)

// PageEntry is a page-table entry: either a direct pointer+perm pair
// installed by a sync, or a nil Ptr that forces dispatch through a
// handler (spec.md §4.1 step 5).
type PageEntry struct {
	Ptr  []byte
	Perm Perm
}

// PageTable is the CPU- or PPU-visible array of page entries that the
// board is the sole mutator of (spec.md §3 Ownership).
type PageTable struct {
	entries []PageEntry
	pageLog int // log2(page size)
}

func newPageTable(pageCount, pageSize int) *PageTable {
	log := 0
	for (1 << log) < pageSize {
		log++
	}
	return &PageTable{entries: make([]PageEntry, pageCount), pageLog: log}
}

func (pt *PageTable) Entry(addr uint16) PageEntry {
	return pt.entries[int(addr)>>pt.pageLog]
}

// install writes pointer+perm into every page overlapped by [addr, addr+size).
// Slot windows narrower than one page are installed nil (handler dispatch).
func (pt *PageTable) install(addr, size int, chip *Chip, offset int, perm Perm) {
	if size < (1 << pt.pageLog) {
		page := addr >> pt.pageLog
		pt.entries[page] = PageEntry{Ptr: nil, Perm: perm}
		return
	}
	pageSize := 1 << pt.pageLog
	for o := 0; o < size; o += pageSize {
		page := (addr + o) >> pt.pageLog
		if page >= len(pt.entries) {
			break
		}
		var ptr []byte
		if chip != nil && chip.Size() > 0 {
			base := (offset + o) % chip.Size()
			end := base + pageSize
			if end > chip.Size() {
				// Oversized/unaligned wrap: fall back to handler
				// dispatch rather than slicing past the chip.
				pt.entries[page] = PageEntry{Ptr: nil, Perm: perm}
				continue
			}
			ptr = chip.Data[base:end]
		}
		pt.entries[page] = PageEntry{Ptr: ptr, Perm: perm}
	}
}

// NametableTable holds the four logical 1 KiB nametable slots (spec.md §3).
type NametableTable struct {
	Slots [NametableSlots]PageEntry
}
