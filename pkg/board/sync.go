package board

// resolvePRGChip returns the chip and and/or mask pair a PRG bank slot
// should resolve against (spec.md §4.1 step 1).
func (b *Board) resolvePRGChip(bank Bank) (*Chip, int32, int32) {
	t := resolveChipType(bank.Type, b.PRGROM.Size() > 0, b.WRAM.Size() > 0)
	switch t {
	case ChipRAM0:
		return b.WRAM, b.WRAMAnd, b.WRAMOr
	case ChipMapperRAM:
		return b.MapperRAM, b.WRAMAnd, b.WRAMOr
	case ChipNone:
		return nil, b.PRGAnd, b.PRGOr
	default: // ROM and anything else defaults to PRG-ROM
		return b.PRGROM, b.PRGAnd, b.PRGOr
	}
}

func (b *Board) resolveCHRChip(bank Bank) (*Chip, int32, int32) {
	t := resolveChipType(bank.Type, !b.CHRIsRAM && b.CHRMem.Size() > 0, b.CHRIsRAM && b.CHRMem.Size() > 0)
	switch t {
	case ChipRAM0:
		return b.CHRMem, b.CHRAnd, b.CHROr
	case ChipCIRAM:
		return b.CIRAM, b.CHRAnd, b.CHROr
	case ChipNone:
		return nil, b.CHRAnd, b.CHROr
	default:
		return b.CHRMem, b.CHRAnd, b.CHROr
	}
}

// syncSlot installs one resolved bank descriptor's window into a page
// table, implementing spec.md §4.1 steps 3-5.
func syncSlot(pt *PageTable, bank Bank, chip *Chip, and, or int32) {
	if bank.Disabled() {
		return
	}
	if chip == nil || chip.Size() == 0 {
		pt.install(int(bank.Address), int(bank.Size), nil, 0, bank.Perm)
		return
	}
	slotsInChip := int32(chip.Size()) / int32(bank.Size)
	idx := resolveBankIndex(bank.BankIndex, and, or, bank.Shift, slotsInChip)
	offset := int(idx) * int(bank.Size)
	if chip.Size() > 0 {
		offset %= chip.Size()
	}
	pt.install(int(bank.Address), int(bank.Size), chip, offset, bank.Perm)
}

// SyncPRG re-walks every PRG bank descriptor and rewrites the CPU page
// table (spec.md §4.1 "PRG sync").
func (b *Board) SyncPRG() {
	for _, bank := range b.PRGBanks {
		if bank.Disabled() {
			continue
		}
		chip, and, or := b.resolvePRGChip(bank)
		syncSlot(b.CPUPages, bank, chip, and, or)
	}
}

// SyncCHR re-walks the primary (and, if in use, secondary) PPU CHR bank
// descriptors and rewrites the corresponding PPU pagemap (spec.md §4.1
// "CHR sync... mirrors this against the PPU's pagemap with 1 KiB
// granularity").
func (b *Board) SyncCHR() {
	for _, bank := range b.CHRBanks0 {
		if bank.Disabled() {
			continue
		}
		chip, and, or := b.resolveCHRChip(bank)
		syncSlot(b.CHRPages0, bank, chip, and, or)
	}
	for _, bank := range b.CHRBanks1 {
		if bank.Disabled() {
			continue
		}
		chip, and, or := b.resolveCHRChip(bank)
		syncSlot(b.CHRPages1, bank, chip, and, or)
	}
}

// standardMirroringSlots gives the four CIRAM-page indices for each of
// the non-mapper-controlled Mirroring values (GLOSSARY: horizontal,
// vertical, single-A, single-B, four-screen).
func standardMirroringSlots(m Mirroring) [4]int {
	switch m {
	case MirrorHorizontal:
		return [4]int{0, 0, 1, 1}
	case MirrorVertical:
		return [4]int{0, 1, 0, 1}
	case MirrorSingleLow:
		return [4]int{0, 0, 0, 0}
	case MirrorSingleHigh:
		return [4]int{1, 1, 1, 1}
	case MirrorFourScreen:
		return [4]int{0, 1, 2, 3}
	default:
		return [4]int{0, 0, 1, 1}
	}
}

// SyncNametables installs the four logical nametable slots (spec.md §4.1
// "Nametable sync"). When mirroring is board-fixed, it derives the four
// slots directly from b.Mirroring; a mapper-controlled board instead
// resolves b.NTBanks (which variant handlers populate, e.g. TxSROM's
// per-CHR-bit derivation) against CIRAM/FourScreen. Writes attempting to
// change a board-fixed mirroring are simply never routed here by the
// variant, per spec.md §4.1's "writes attempting to change mirroring are
// ignored".
func (b *Board) SyncNametables() {
	if b.Mirroring == MirrorMapperControlled {
		for i, bank := range b.NTBanks {
			chip := b.CIRAM
			if b.FourScreen != nil && bank.BankIndex >= 2 {
				chip = b.FourScreen
			}
			idx := bank.BankIndex % 2
			if idx < 0 {
				idx += 2
			}
			b.NTTable.Slots[i] = PageEntry{
				Ptr:  chip.Data[int(idx)*0x400 : int(idx)*0x400+0x400],
				Perm: PermReadWrite,
			}
		}
		return
	}

	slots := standardMirroringSlots(b.Mirroring)
	for i, page := range slots {
		chip := b.CIRAM
		p := page
		if b.Mirroring == MirrorFourScreen && b.FourScreen != nil && page >= 2 {
			chip = b.FourScreen
			p -= 2
		}
		if p*0x400+0x400 > chip.Size() {
			p = p % (chip.Size() / 0x400)
		}
		b.NTTable.Slots[i] = PageEntry{
			Ptr:  chip.Data[p*0x400 : p*0x400+0x400],
			Perm: PermReadWrite,
		}
	}
}
