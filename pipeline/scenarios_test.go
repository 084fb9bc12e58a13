package pipeline_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/asm"
	"github.com/sarchlab/rv32pipe/asm/parse"
	"github.com/sarchlab/rv32pipe/core"
	"github.com/sarchlab/rv32pipe/pipeline"
)

// assembleProgram runs the real front end (Parser -> Encoder) over src,
// the same path rvasm uses, so these scenario tests exercise the whole
// toolchain end to end rather than hand-built text maps.
func assembleProgram(src string) map[uint32]uint32 {
	instrs, symbols, errs := parse.Parse(strings.NewReader(src))
	Expect(errs).To(BeEmpty())
	program, encErrs := asm.Assemble(instrs, symbols)
	Expect(encErrs).To(BeEmpty())
	return program.Text
}

func newEngine(src string, config pipeline.Config) *pipeline.Engine {
	text := assembleProgram(src)
	return pipeline.NewEngine(core.NewRegFile(), core.NewMemory(), text, config)
}

var _ = Describe("End-to-end scenarios", func() {
	// S1: addi x1,x0,5 ; addi x2,x0,7 ; add x3,x1,x2 ; ecall
	const s1 = `
.text
    addi x1, x0, 5
    addi x2, x0, 7
    add  x3, x1, x2
    ecall
`

	It("S1: pipelined with forwarding takes 8 cycles, x3=12, retired=4", func() {
		e := newEngine(s1, pipeline.Config{Pipelined: true, Forwarding: true, MaxSteps: 1000})
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().Read(3)).To(Equal(uint32(12)))
		Expect(e.Stats().InstructionsExecuted).To(Equal(uint64(4)))
		Expect(e.Stats().Cycles).To(Equal(uint64(8)))
	})

	It("S1: pipelined without forwarding takes 10 cycles", func() {
		e := newEngine(s1, pipeline.Config{Pipelined: true, MaxSteps: 1000})
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().Read(3)).To(Equal(uint32(12)))
		Expect(e.Stats().Cycles).To(Equal(uint64(10)))
	})

	// S2: addi x1,x0,1 ; lw x2,0(x1) ; add x3,x2,x1 ; ecall, memory[1..4]=0
	const s2 = `
.text
    addi x1, x0, 1
    lw   x2, 0(x1)
    add  x3, x2, x1
    ecall
`

	It("S2: forwarding gives exactly one load-use stall, cycles=9", func() {
		e := newEngine(s2, pipeline.Config{Pipelined: true, Forwarding: true, MaxSteps: 1000})
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().Read(3)).To(Equal(uint32(1)))
		Expect(e.Stats().DataHazards).To(Equal(uint64(1)))
		Expect(e.Stats().Cycles).To(Equal(uint64(9)))
	})

	It("S2: without forwarding there are more stall cycles than with it", func() {
		withFwd := newEngine(s2, pipeline.Config{Pipelined: true, Forwarding: true, MaxSteps: 1000})
		Expect(withFwd.Run()).To(Succeed())

		withoutFwd := newEngine(s2, pipeline.Config{Pipelined: true, MaxSteps: 1000})
		Expect(withoutFwd.Run()).To(Succeed())

		Expect(withoutFwd.Stats().Cycles).To(BeNumerically(">", withFwd.Stats().Cycles))
	})

	// S3: addi x1,x0,1 ; addi x2,x0,2 ; beq x1,x2,L ; addi x3,x0,99 ; L: ecall
	const s3 = `
.text
    addi x1, x0, 1
    addi x2, x0, 2
    beq  x1, x2, L
    addi x3, x0, 99
L:
    ecall
`

	It("S3: branch not taken, x3=99, no mispredict on first encounter", func() {
		e := newEngine(s3, pipeline.Config{Pipelined: true, Forwarding: true, BranchPredict: true, MaxSteps: 1000})
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().Read(3)).To(Equal(uint32(99)))
		Expect(e.Stats().BranchMispredictions).To(Equal(uint64(0)))
	})

	// S4: a backward-branch loop whose predictor warms up to "taken"
	// after two observations (the PHT saturates to weakly-taken only
	// after two taken updates from its cold not-taken default), predicts
	// correctly for every steady-state iteration, then mispredicts
	// exactly once more when the loop finally exits.
	const s4 = `
.text
    addi x1, x0, 6
L:
    addi x1, x1, -1
    bne  x1, x0, L
    addi x2, x0, 99
    ecall
`

	It("S4: loop predictor mispredicts twice while warming up and exactly once on loop exit", func() {
		e := newEngine(s4, pipeline.Config{Pipelined: true, Forwarding: true, BranchPredict: true, MaxSteps: 1000})
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().Read(1)).To(Equal(uint32(0)))
		Expect(e.RegFile().Read(2)).To(Equal(uint32(99)))
		// Two cold-start mispredictions (the PHT needs two taken
		// updates to cross from strongly-not-taken to weakly-taken)
		// plus exactly one more when the loop exits and the by-then
		// taken-predicting counter is wrong: three total, no more.
		Expect(e.Stats().BranchMispredictions).To(Equal(uint64(3)))
		Expect(e.Stats().PipelineFlushes).To(Equal(uint64(3)))
	})

	// S5: lui x1,0x12345 ; addi x1,x1,0x678
	const s5 = `
.text
    lui  x1, 0x12345
    addi x1, x1, 0x678
`

	It("S5: lui+addi reconstructs x1 = 0x12345678", func() {
		e := newEngine(s5, pipeline.Config{Pipelined: true, Forwarding: true, MaxSteps: 1000})
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().Read(1)).To(Equal(uint32(0x12345678)))
	})

	// S6: jal x1,8 ; addi x2,x0,1 (skipped) ; addi x3,x0,2
	const s6 = `
.text
    jal  x1, 8
    addi x2, x0, 1
    addi x3, x0, 2
`

	It("S6: jal always flushes, skips the delay-slot instruction", func() {
		e := newEngine(s6, pipeline.Config{Pipelined: true, Forwarding: true, MaxSteps: 1000})
		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().Read(1)).To(Equal(uint32(4)))
		Expect(e.RegFile().Read(2)).To(Equal(uint32(0)))
		Expect(e.RegFile().Read(3)).To(Equal(uint32(2)))
		Expect(e.Stats().PipelineFlushes).To(Equal(uint64(1)))
		Expect(e.Stats().StallBubbles).To(BeNumerically(">=", 2))
	})

	It("non-pipelined oracle mode agrees with pipelined mode on final register state", func() {
		oracle := newEngine(s1, pipeline.Config{MaxSteps: 1000})
		Expect(oracle.Run()).To(Succeed())
		Expect(oracle.RegFile().Read(3)).To(Equal(uint32(12)))
		Expect(oracle.Stats().Cycles).To(Equal(uint64(4 * 5)))
	})
})
