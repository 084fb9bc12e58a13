package pipeline

import (
	"github.com/sarchlab/rv32pipe/core"
	"github.com/sarchlab/rv32pipe/decode"
	"github.com/sarchlab/rv32pipe/execute"
	"github.com/sarchlab/rv32pipe/isa"
)

// memoryAccess performs the Memory stage's load/store per spec.md
// §4.3/§4.4, shared between the pipelined Memory stage and the
// non-pipelined oracle's sequential stepper.
func memoryAccess(mem *core.Memory, inst decode.Instruction, effectiveAddr, storeValue uint32) (uint32, error) {
	switch inst.Mnemonic {
	case "lb":
		v, err := mem.ReadByte(effectiveAddr)
		return uint32(int32(int8(v))), err
	case "lbu":
		v, err := mem.ReadByte(effectiveAddr)
		return uint32(v), err
	case "lh":
		v, err := mem.ReadHalf(effectiveAddr)
		return uint32(int32(int16(v))), err
	case "lhu":
		v, err := mem.ReadHalf(effectiveAddr)
		return uint32(v), err
	case "lw":
		return mem.ReadWord(effectiveAddr)
	case "sb":
		return effectiveAddr, mem.WriteByte(effectiveAddr, uint8(storeValue))
	case "sh":
		return effectiveAddr, mem.WriteHalf(effectiveAddr, uint16(storeValue))
	case "sw":
		return effectiveAddr, mem.WriteWord(effectiveAddr, storeValue)
	default:
		// Store instructions' RZ leaves RY unconditionally before the
		// S-type branch per spec.md §9 (harmless, since stores don't
		// write registers); non-memory instructions pass RY through.
		return effectiveAddr, nil
	}
}

// decodeOperands resolves RA/RB/RM for a decoded instruction directly
// from the register file, with no forwarding applied — used by both
// the non-pipelined oracle and as the pipelined Decode stage's
// register-file baseline before forwarding overrides are applied.
func decodeOperands(rf *core.RegFile, inst decode.Instruction) (ra, rb, rm uint32) {
	ra = rf.Read(inst.RS1)
	if inst.Format == isa.FormatR {
		rb = rf.Read(inst.RS2)
	} else {
		rb = uint32(inst.Imm)
	}
	if inst.Format.ReadsRS2() {
		rm = rf.Read(inst.RS2)
	}
	return ra, rb, rm
}

// doWriteback applies the Writeback stage for the node currently in the
// mwLatch (pre-cycle content), per spec.md §4.7 step 1.
func (e *Engine) doWriteback() {
	if !e.mwLatch.Valid {
		return
	}
	node := e.mwLatch.Node
	if node.Decoded.Format.WritesRegister() && node.Decoded.RD != 0 {
		e.regFile.Write(node.Decoded.RD, node.RZ)
	}
	e.tracker.Remove(node.PC)
	e.stats.InstructionsExecuted++
	e.stats.bucket(node.Decoded)
	if node.Halt {
		e.haltedCleanly = true
		e.running = false
	}
}

// doMemory applies the Memory stage for the node currently in the
// emLatch (pre-cycle content), producing the next mwLatch.
func (e *Engine) doMemory() {
	if !e.emLatch.Valid {
		e.nextMwLatch = Latch{}
		return
	}
	node := e.emLatch.Node
	rz, err := memoryAccess(e.memory, node.Decoded, node.RY, node.RM)
	if err != nil {
		e.fatal = err
		e.running = false
		e.nextMwLatch = Latch{}
		return
	}
	node.RZ = rz
	e.tracker.Advance(node.PC, StageMemory)
	e.nextMwLatch = Latch{Valid: true, Node: node}
}

// doExecute applies the Execute stage for the node currently in the
// deLatch (pre-cycle content), producing the next emLatch. Returns
// whether a misprediction/unconditional-jump flush must happen and the
// corrected PC to flush to.
func (e *Engine) doExecute() (flush bool, flushTarget uint32) {
	if !e.deLatch.Valid {
		e.nextEmLatch = Latch{}
		return false, 0
	}
	node := e.deLatch.Node
	res, err := execute.Execute(execute.Input{
		Mnemonic: node.Decoded.Mnemonic,
		PC:       node.PC,
		RA:       node.RA,
		RB:       node.RB,
		RS2Value: node.RM,
	})
	if err != nil {
		e.fatal = err
		e.running = false
		e.nextEmLatch = Latch{}
		return false, 0
	}

	node.RY = res.RY
	node.Halt = res.Halt
	node.BranchTaken = res.BranchTaken
	node.NextPC = res.NextPC

	switch node.Decoded.Format {
	case isa.FormatB:
		e.predictor.Update(node.PC, res.BranchTaken, res.NextPC)
		mispredicted := res.BranchTaken != node.Predicted
		if mispredicted {
			e.stats.ControlHazards++
			target := node.PC + 4
			if res.BranchTaken {
				target = res.NextPC
			}
			flush, flushTarget = true, target
		}
	default:
		if node.Decoded.Mnemonic == "jal" || node.Decoded.Mnemonic == "jalr" {
			e.predictor.Update(node.PC, true, res.NextPC)
			// spec.md §9's deliberate open-question resolution: jumps
			// always flush in pipelined mode, regardless of prediction.
			e.stats.ControlHazards++
			flush, flushTarget = true, res.NextPC
		}
	}

	e.tracker.Advance(node.PC, StageExecute)
	e.nextEmLatch = Latch{Valid: true, Node: node}
	return flush, flushTarget
}

// forwardValue looks up a forwarded value for register reg from the
// producers currently occupying Execute (deLatch) or Memory (emLatch),
// per spec.md §4.7's Data forwarding rule. Execute-stage producers that
// are loads never forward here — the load-use stall handles them
// instead.
func (e *Engine) forwardValue(reg uint8) (uint32, bool) {
	if reg == 0 {
		return 0, false
	}
	if e.deLatch.Valid {
		d := e.deLatch.Node.Decoded
		if d.Format.WritesRegister() && d.RD == reg && !execute.IsLoad(d.Mnemonic) {
			return e.nextEmLatch.Node.RY, true
		}
	}
	if e.emLatch.Valid {
		d := e.emLatch.Node.Decoded
		if d.Format.WritesRegister() && d.RD == reg {
			return e.nextMwLatch.Node.RZ, true
		}
	}
	return 0, false
}

// loadUseHazard reports whether the instruction currently occupying
// Execute (deLatch, pre-cycle) is a load whose destination collides
// with the about-to-decode instruction's rs1/rs2 — spec.md §4.5's
// Load-use? query, checked unconditionally when forwarding is enabled.
func (e *Engine) loadUseHazard(inst decode.Instruction) bool {
	if !e.deLatch.Valid {
		return false
	}
	d := e.deLatch.Node.Decoded
	if !execute.IsLoad(d.Mnemonic) || d.RD == 0 {
		return false
	}
	if d.RD == inst.RS1 {
		return true
	}
	if inst.Format.ReadsRS2() && d.RD == inst.RS2 {
		return true
	}
	return false
}

// doDecode applies the Decode stage for the node currently in the
// fdLatch (pre-cycle content), producing the next deLatch. Returns
// whether a stall must hold this cycle's Fetch and Decode in place.
func (e *Engine) doDecode() bool {
	if !e.fdLatch.Valid {
		e.nextDeLatch = Latch{}
		return false
	}
	node := e.fdLatch.Node
	inst := node.Decoded

	if e.config.Forwarding {
		if e.loadUseHazard(inst) {
			e.stats.DataHazards++
			e.nextDeLatch = Latch{}
			return true
		}
	} else if e.tracker.HasRAWWithoutForwarding(inst.RS1, inst.RS2, inst.Format.ReadsRS2()) {
		e.stats.DataHazards++
		e.nextDeLatch = Latch{}
		return true
	}

	ra, rb, rm := decodeOperands(e.regFile, inst)
	if e.config.Forwarding {
		if v, ok := e.forwardValue(inst.RS1); ok {
			ra = v
		}
		if inst.Format == isa.FormatR {
			if v, ok := e.forwardValue(inst.RS2); ok {
				rb = v
			}
		}
		if inst.Format.ReadsRS2() {
			if v, ok := e.forwardValue(inst.RS2); ok {
				rm = v
			}
		}
	}
	node.RA, node.RB, node.RM = ra, rb, rm

	if inst.Format.WritesRegister() && inst.RD != 0 {
		e.tracker.Create(inst.RD, node.PC, inst.Mnemonic)
	}

	e.nextDeLatch = Latch{Valid: true, Node: node}
	return false
}

// doFetch applies the Fetch stage at the current PC, producing the next
// fdLatch and this cycle's default next-PC (pc+4, or the predicted
// branch target on a BTB hit). Decoding happens here so the Instruction
// node carries its decoded fields for its entire lifetime, per spec.md
// §3's node definition.
func (e *Engine) doFetch() {
	word, ok := e.textMap[e.pc]
	if !ok {
		e.nextFdLatch = Latch{}
		e.noMoreFetch = true
		e.nextPC = e.pc
		return
	}

	inst, err := decode.Decode(word)
	if err != nil {
		e.fatal = err
		e.running = false
		e.nextFdLatch = Latch{}
		return
	}

	node := Node{Raw: word, PC: e.pc, Decoded: inst}

	isBranchOrJump := inst.Format == isa.FormatB || inst.Mnemonic == "jal" || inst.Mnemonic == "jalr"
	if isBranchOrJump && e.config.BranchPredict {
		if e.predictor.Predict(e.pc) {
			if target, hit := e.predictor.BTBTarget(e.pc); hit {
				node.Predicted = true
				e.nextFdLatch = Latch{Valid: true, Node: node}
				e.nextPC = target
				return
			}
		}
	}

	node.Predicted = false
	e.nextFdLatch = Latch{Valid: true, Node: node}
	e.nextPC = e.pc + 4
}
