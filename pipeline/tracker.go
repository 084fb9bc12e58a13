package pipeline

// record is one in-flight writing instruction, per spec.md §3/§4.5.
type record struct {
	Reg    uint8
	PC     uint32
	Stage  Stage
	Opcode string // mnemonic; descriptive only, not used by hazard checks
}

// Tracker is the Dependency Tracker (C6): a flat, linearly-scanned list
// of records for in-flight writing instructions. spec.md §9 notes that
// at five in-flight instructions maximum an index-by-rd array would
// eliminate the scan, but a flat slice is explicitly called out as
// "acceptable" — grounded on original_source/src/simulator.hpp's
// registerDependencies/RegisterDependency vector, kept as the slice the
// teacher's own five-entry-max hazard data never needed to outgrow.
type Tracker struct {
	records []record
}

// NewTracker returns an empty dependency tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Create adds a record when a writing instruction (rd != 0) enters
// Decode. Instructions that don't write a register, or write x0, never
// get a record (spec.md §4.5).
func (t *Tracker) Create(reg uint8, pc uint32, opcode string) {
	if reg == 0 {
		return
	}
	t.records = append(t.records, record{Reg: reg, PC: pc, Stage: StageDecode, Opcode: opcode})
}

// Advance updates the stage field of the record for the instruction at
// pc, called as that instruction moves to Execute or Memory.
func (t *Tracker) Advance(pc uint32, stage Stage) {
	for i := range t.records {
		if t.records[i].PC == pc {
			t.records[i].Stage = stage
			return
		}
	}
}

// Remove deletes the record for the instruction at pc, called after its
// Writeback completes.
func (t *Tracker) Remove(pc uint32) {
	for i, r := range t.records {
		if r.PC == pc {
			t.records = append(t.records[:i], t.records[i+1:]...)
			return
		}
	}
}

// HasRAWWithoutForwarding answers spec.md §4.5's query 1: true if any
// in-flight record's destination matches rs1, or (when readsRS2) rs2,
// and that record's current stage is Execute or Memory. Used only when
// forwarding is disabled.
func (t *Tracker) HasRAWWithoutForwarding(rs1, rs2 uint8, readsRS2 bool) bool {
	for _, r := range t.records {
		if r.Stage != StageExecute && r.Stage != StageMemory {
			continue
		}
		if r.Reg == rs1 || (readsRS2 && r.Reg == rs2) {
			return true
		}
	}
	return false
}

// Len reports how many writers are currently tracked, for tests.
func (t *Tracker) Len() int {
	return len(t.records)
}
