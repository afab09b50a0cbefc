package board

import (
	"fmt"

	"github.com/andrewthecodertx/board-core/pkg/savestate"
	"github.com/andrewthecodertx/board-core/pkg/timer/a12"
	"github.com/andrewthecodertx/board-core/pkg/timer/m2"
)

func packBank(w *savestate.Writer, b Bank) {
	w.I32(b.BankIndex)
	w.U16(b.Size)
	w.U16(b.Address)
	w.U8(b.Shift)
	w.U8(uint8(b.Perm))
	w.U8(uint8(b.Type))
}

func unpackBank(r *savestate.Reader) Bank {
	return Bank{
		BankIndex: r.I32(), Size: r.U16(), Address: r.U16(),
		Shift: r.U8(), Perm: Perm(r.U8()), Type: ChipType(r.U8()),
	}
}

func packM2(t *m2.Timer) []byte {
	s := t.Snapshot()
	w := savestate.NewWriter()
	w.U8(s.Size)
	w.U32(s.Reload)
	w.U32(s.Counter)
	w.U32(s.Prescaler)
	w.U32(s.PrescalerReload)
	w.U32(s.PrescalerDecr)
	w.U8(s.PrescalerSize)
	w.U16(s.Flags)
	w.Bool(s.IRQEnabled)
	w.Bool(s.CounterEnabled)
	w.U32(s.IRQDelay)
	w.U32(s.ForceReloadDelay)
	w.Bool(s.ReloadFlag)
	w.U32(s.Timestamp)
	return w.Done()
}

func unpackM2(t *m2.Timer, data []byte) {
	r := savestate.NewReader(data)
	var s m2.State
	s.Size = r.U8()
	s.Reload = r.U32()
	s.Counter = r.U32()
	s.Prescaler = r.U32()
	s.PrescalerReload = r.U32()
	s.PrescalerDecr = r.U32()
	s.PrescalerSize = r.U8()
	s.Flags = r.U16()
	s.IRQEnabled = r.Bool()
	s.CounterEnabled = r.Bool()
	s.IRQDelay = r.U32()
	s.ForceReloadDelay = r.U32()
	s.ReloadFlag = r.Bool()
	s.Timestamp = r.U32()
	t.Restore(s)
}

func packA12(t *a12.Timer) []byte {
	s := t.Snapshot()
	w := savestate.NewWriter()
	w.U32(s.Counter)
	w.U32(s.Reload)
	w.U8(s.Size)
	w.U32(s.Prescaler)
	w.U8(s.PrescalerSize)
	w.U8(s.Flags)
	w.Bool(s.IRQEnabled)
	w.Bool(s.CounterEnabled)
	w.Bool(s.ReloadFlag)
	w.Bool(s.PrevA12)
	w.U32(s.NextClock)
	w.U32(s.A12RiseDelta)
	w.U32(s.Delay)
	w.U32(s.ForceReloadDelay)
	w.U32(s.Timestamp)
	return w.Done()
}

func unpackA12(t *a12.Timer, data []byte) {
	r := savestate.NewReader(data)
	var s a12.State
	s.Counter = r.U32()
	s.Reload = r.U32()
	s.Size = r.U8()
	s.Prescaler = r.U32()
	s.PrescalerSize = r.U8()
	s.Flags = r.U8()
	s.IRQEnabled = r.Bool()
	s.CounterEnabled = r.Bool()
	s.ReloadFlag = r.Bool()
	s.PrevA12 = r.Bool()
	s.NextClock = r.U32()
	s.A12RiseDelta = r.U32()
	s.Delay = r.U32()
	s.ForceReloadDelay = r.U32()
	s.Timestamp = r.U32()
	t.Restore(s)
}

// SaveState packs the board's own state plus its timers and volatile/NV
// chips into the named chunks spec.md §6 lists ("BRD ", "PRGB", "CHB0",
// "CHB1", "CIRM", "MPRM", "WRM0", "VRM0", "M2 ", "A12 "), plus "PTCH" for
// the modified-range journal and "VART" for a variant's own SaveState blob.
func (b *Board) SaveState() []byte {
	c := &savestate.Container{}

	w := savestate.NewWriter()
	w.I32(b.PRGAnd)
	w.I32(b.PRGOr)
	w.I32(b.CHRAnd)
	w.I32(b.CHROr)
	w.I32(b.WRAMAnd)
	w.I32(b.WRAMOr)
	w.U8(b.PRGMode)
	w.U8(b.CHRMode)
	w.U8(b.IRQControl)
	w.U8(b.IRQCounter)
	w.U8(b.IRQReload)
	w.U8(uint8(b.Mirroring))
	w.U8(b.DIPSwitches)
	w.Bytes(b.Data[:])
	for _, ts := range b.Timestamps {
		w.U32(ts)
	}
	c.AddChunk("BRD ", w.Done())

	pw := savestate.NewWriter()
	for _, bank := range b.PRGBanks {
		packBank(pw, bank)
	}
	c.AddChunk("PRGB", pw.Done())

	c0 := savestate.NewWriter()
	for _, bank := range b.CHRBanks0 {
		packBank(c0, bank)
	}
	c.AddChunk("CHB0", c0.Done())

	c1 := savestate.NewWriter()
	for _, bank := range b.CHRBanks1 {
		packBank(c1, bank)
	}
	c.AddChunk("CHB1", c1.Done())

	c.AddChunk("CIRM", append([]byte{}, b.CIRAM.Data...))
	if b.MapperRAM != nil {
		c.AddChunk("MPRM", append([]byte{}, b.MapperRAM.Data...))
	}
	if b.WRAM != nil && b.WRAM.Kind.NonVolatile() {
		c.AddChunk("WRM0", append([]byte{}, b.WRAM.Data...))
	}
	if b.CHRIsRAM && b.CHRMem.Kind.NonVolatile() {
		c.AddChunk("VRM0", append([]byte{}, b.CHRMem.Data...))
	}

	pr := savestate.NewWriter()
	pr.U32(uint32(len(b.ModifiedRanges)))
	for _, r := range b.ModifiedRanges {
		pr.U32(uint32(r.Offset))
		pr.U32(uint32(r.Length))
	}
	c.AddChunk("PTCH", pr.Done())

	if b.M2 != nil {
		c.AddChunk("M2 ", packM2(b.M2))
	}
	if b.A12 != nil {
		c.AddChunk("A12 ", packA12(b.A12))
	}

	if b.Descriptor.Funcs.SaveState != nil {
		c.AddChunk("VART", b.Descriptor.Funcs.SaveState(b))
	}

	return savestate.Marshal(c)
}

// LoadState parses a SaveState-produced blob and restores it. Failure is
// atomic: on any error the board is left untouched (spec.md §7 "Save-
// state chunk mismatch ... load fails atomically; prior state is
// retained").
func (b *Board) LoadState(blob []byte) error {
	c, err := savestate.Unmarshal(blob)
	if err != nil {
		return fmt.Errorf("board: load state: %w", err)
	}

	const bankLen = 11 // packBank: I32, two U16, three U8
	brd, err := c.FindExact("BRD ", 6*4+7+len(b.Data)+4*len(b.Timestamps))
	if err != nil {
		return err
	}
	prgb, err := c.FindExact("PRGB", bankLen*len(b.PRGBanks))
	if err != nil {
		return err
	}
	chb0, err := c.FindExact("CHB0", bankLen*len(b.CHRBanks0))
	if err != nil {
		return err
	}
	chb1, err := c.FindExact("CHB1", bankLen*len(b.CHRBanks1))
	if err != nil {
		return err
	}
	ciram, err := c.FindExact("CIRM", len(b.CIRAM.Data))
	if err != nil {
		return err
	}

	var m2Data, a12Data []byte
	if b.M2 != nil {
		if m2Data, err = c.FindExact("M2 ", len(packM2(b.M2))); err != nil {
			return err
		}
	}
	if b.A12 != nil {
		if a12Data, err = c.FindExact("A12 ", len(packA12(b.A12))); err != nil {
			return err
		}
	}

	ptch, ptchErr := c.Find("PTCH")
	if ptchErr == nil && (len(ptch) < 4 || len(ptch) != 4+8*int(savestate.NewReader(ptch).U32())) {
		return fmt.Errorf("board: load state: %w: %q", savestate.ErrChunkSize, "PTCH")
	}

	if vart, err := c.Find("VART"); err == nil && b.Descriptor.Funcs.LoadState != nil {
		if err := b.Descriptor.Funcs.LoadState(b, vart); err != nil {
			return fmt.Errorf("board: load variant state: %w", err)
		}
	}

	// All required chunks present and well-formed: commit.
	r := savestate.NewReader(brd)
	b.PRGAnd = r.I32()
	b.PRGOr = r.I32()
	b.CHRAnd = r.I32()
	b.CHROr = r.I32()
	b.WRAMAnd = r.I32()
	b.WRAMOr = r.I32()
	b.PRGMode = r.U8()
	b.CHRMode = r.U8()
	b.IRQControl = r.U8()
	b.IRQCounter = r.U8()
	b.IRQReload = r.U8()
	b.Mirroring = Mirroring(r.U8())
	b.DIPSwitches = r.U8()
	copy(b.Data[:], r.Bytes(len(b.Data)))
	for i := range b.Timestamps {
		b.Timestamps[i] = r.U32()
	}

	pr := savestate.NewReader(prgb)
	for i := range b.PRGBanks {
		b.PRGBanks[i] = unpackBank(pr)
	}
	r0 := savestate.NewReader(chb0)
	for i := range b.CHRBanks0 {
		b.CHRBanks0[i] = unpackBank(r0)
	}
	r1 := savestate.NewReader(chb1)
	for i := range b.CHRBanks1 {
		b.CHRBanks1[i] = unpackBank(r1)
	}
	copy(b.CIRAM.Data, ciram)

	if mprm, err := c.Find("MPRM"); err == nil && b.MapperRAM != nil {
		copy(b.MapperRAM.Data, mprm)
	}
	if wrm0, err := c.Find("WRM0"); err == nil && b.WRAM != nil {
		copy(b.WRAM.Data, wrm0)
	}
	if vrm0, err := c.Find("VRM0"); err == nil && b.CHRIsRAM {
		copy(b.CHRMem.Data, vrm0)
	}

	if ptchErr == nil {
		pr := savestate.NewReader(ptch)
		n := pr.U32()
		ranges := make([]Range, 0, n)
		for i := uint32(0); i < n; i++ {
			ranges = append(ranges, Range{Offset: int(pr.U32()), Length: int(pr.U32())})
		}
		b.ModifiedRanges = ranges
	}

	if b.M2 != nil {
		unpackM2(b.M2, m2Data)
	}
	if b.A12 != nil {
		unpackA12(b.A12, a12Data)
	}

	b.SyncPRG()
	b.SyncCHR()
	b.SyncNametables()
	return nil
}
