package pipeline

import (
	"github.com/sarchlab/rv32pipe/core"
	"github.com/sarchlab/rv32pipe/decode"
	"github.com/sarchlab/rv32pipe/execute"
)

// Engine is the Pipeline Engine (C8): it drives one cycle at a time,
// advancing each stage in reverse order, inserting bubbles on hazards,
// flushing on mispredict, and updating the Statistics Collector.
//
// Grounded on the teacher's timing/pipeline.Pipeline (latch fields,
// Tick()'s reverse-order stage calls, Run()/RunCycles() driver methods),
// folding in the teacher's timing/core.Core wrapper directly (that type
// added no behaviour of its own, see DESIGN.md).
type Engine struct {
	regFile *core.RegFile
	memory  *core.Memory
	textMap map[uint32]uint32

	tracker   *Tracker
	predictor *BranchPredictor

	fdLatch, deLatch, emLatch, mwLatch             Latch
	nextFdLatch, nextDeLatch, nextEmLatch, nextMwLatch Latch

	pc     uint32
	nextPC uint32

	config Config
	stats  Stats

	running       bool
	haltedCleanly bool
	noMoreFetch   bool
	fatal         error
}

// NewEngine builds a pipeline engine over the given text map (address
// to 32-bit word) and architectural state. The register file and
// memory must already carry their spec.md §3 initial values (core.NewRegFile
// / the artifact's data segment load).
func NewEngine(regFile *core.RegFile, memory *core.Memory, textMap map[uint32]uint32, config Config) *Engine {
	if config.MaxSteps == 0 {
		config.MaxSteps = DefaultMaxSteps
	}
	return &Engine{
		regFile:   regFile,
		memory:    memory,
		textMap:   textMap,
		tracker:   NewTracker(),
		predictor: NewBranchPredictor(),
		config:    config,
		running:   true,
		pc:        core.TextBase,
	}
}

// PC returns the current program counter.
func (e *Engine) PC() uint32 { return e.pc }

// Running reports whether the engine can still accept Step() calls.
func (e *Engine) Running() bool { return e.running }

// FatalError returns the error that halted the engine, if any.
func (e *Engine) FatalError() error { return e.fatal }

// Stats returns a snapshot of the run counters, safe to read at any
// point regardless of pipeline state (spec.md §5's "snapshot the
// current counters" requirement).
func (e *Engine) Stats() Stats { return e.stats }

// RegFile exposes the register file for -r/--registers dumps.
func (e *Engine) RegFile() *core.RegFile { return e.regFile }

// FetchSlot, DecodeSlot, ExecuteSlot, MemorySlot return the current
// (pre-next-cycle) contents of each pipeline slot, for --follow tracing.
func (e *Engine) FetchSlot() Latch   { return e.fdLatch }
func (e *Engine) DecodeSlot() Latch  { return e.deLatch }
func (e *Engine) ExecuteSlot() Latch { return e.emLatch }
func (e *Engine) MemorySlot() Latch  { return e.mwLatch }

// Step advances the engine by exactly one cycle. Invoking Step on a
// halted engine is itself the spec.md §7 fatal condition "step invoked
// on a halted simulator".
func (e *Engine) Step() error {
	if !e.running {
		return core.NewFatalError("step invoked on a halted simulator")
	}
	if e.config.Pipelined {
		e.tickPipelined()
	} else {
		e.tickNonPipelined()
	}
	return e.fatal
}

// Run executes cycles until the engine halts or MAX_STEPS is reached
// (spec.md §5's cooperative-cancellation safety bound — here a plain
// bound on the cycle counter, since there is no concurrency to
// cooperatively cancel).
func (e *Engine) Run() error {
	for e.running && e.stats.Cycles < e.config.MaxSteps {
		if err := e.Step(); err != nil {
			return err
		}
	}
	return e.fatal
}

// tickPipelined runs one cycle of the five-stage pipelined mode, per
// spec.md §4.7: stages advance in reverse order (Writeback → Memory →
// Execute → Decode → Fetch) against a *new* latch set, swapped in
// atomically at the end of the cycle.
func (e *Engine) tickPipelined() {
	e.stats.Cycles++

	e.doWriteback()
	e.doMemory()
	flush, flushTarget := e.doExecute()
	stall := e.doDecode()
	e.doFetch()

	if stall {
		e.stats.StallBubbles++
		e.nextDeLatch = Latch{}
		e.nextFdLatch = e.fdLatch
		e.nextPC = e.pc
	}

	if flush {
		e.stats.PipelineFlushes++
		e.stats.BranchMispredictions++
		e.stats.StallBubbles += 2
		e.nextFdLatch = Latch{}
		e.nextDeLatch = Latch{}
		e.nextPC = flushTarget
	}

	e.fdLatch, e.deLatch, e.emLatch, e.mwLatch = e.nextFdLatch, e.nextDeLatch, e.nextEmLatch, e.nextMwLatch
	e.pc = e.nextPC

	if e.fatal != nil {
		e.running = false
		return
	}
	if e.haltedCleanly {
		e.running = false
		return
	}
	if e.noMoreFetch && !e.fdLatch.Valid && !e.deLatch.Valid && !e.emLatch.Valid && !e.mwLatch.Valid {
		e.running = false
	}
}

// tickNonPipelined runs the entire fetch-through-writeback sequence for
// a single instruction, five cycles at a time, with no overlap. This is
// the correctness oracle spec.md §4.7 calls for: at most one instruction
// in flight, ever.
func (e *Engine) tickNonPipelined() {
	word, ok := e.textMap[e.pc]
	if !ok {
		e.running = false
		return
	}
	inst, err := decode.Decode(word)
	if err != nil {
		e.fatal = err
		e.running = false
		return
	}
	pcNow := e.pc
	e.stats.Cycles++ // Fetch

	e.stats.Cycles++ // Decode
	ra, rb, rm := decodeOperands(e.regFile, inst)

	e.stats.Cycles++ // Execute
	res, err := execute.Execute(execute.Input{Mnemonic: inst.Mnemonic, PC: pcNow, RA: ra, RB: rb, RS2Value: rm})
	if err != nil {
		e.fatal = err
		e.running = false
		return
	}

	e.stats.Cycles++ // Memory
	rz, err := memoryAccess(e.memory, inst, res.RY, rm)
	if err != nil {
		e.fatal = err
		e.running = false
		return
	}

	e.stats.Cycles++ // Writeback
	if inst.Format.WritesRegister() && inst.RD != 0 {
		e.regFile.Write(inst.RD, rz)
	}
	e.stats.InstructionsExecuted++
	e.stats.bucket(inst)

	if res.Halt {
		e.running = false
		e.haltedCleanly = true
		return
	}
	if res.BranchTaken {
		e.pc = res.NextPC
	} else {
		e.pc += 4
	}
}
