package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/pipeline"
)

var _ = Describe("BranchPredictor", func() {
	var bp *pipeline.BranchPredictor

	BeforeEach(func() {
		bp = pipeline.NewBranchPredictor()
	})

	It("predicts not-taken for a PC it has never seen", func() {
		Expect(bp.Predict(0x100)).To(BeFalse())
		_, hit := bp.BTBTarget(0x100)
		Expect(hit).To(BeFalse())
	})

	It("saturates towards taken after repeated taken outcomes", func() {
		pc := uint32(0x200)
		bp.Update(pc, true, 0x300) // 0 -> 1 (weakly-NT)
		Expect(bp.Predict(pc)).To(BeFalse())
		bp.Update(pc, true, 0x300) // 1 -> 2 (weakly-T)
		Expect(bp.Predict(pc)).To(BeTrue())
		bp.Update(pc, true, 0x300) // 2 -> 3 (strongly-T)
		Expect(bp.Predict(pc)).To(BeTrue())
	})

	It("records the BTB target only once taken", func() {
		pc := uint32(0x400)
		bp.Update(pc, false, 0)
		_, hit := bp.BTBTarget(pc)
		Expect(hit).To(BeFalse())

		bp.Update(pc, true, 0x500)
		target, hit := bp.BTBTarget(pc)
		Expect(hit).To(BeTrue())
		Expect(target).To(Equal(uint32(0x500)))
	})

	It("tracks prediction accuracy", func() {
		pc := uint32(0x600)
		bp.Update(pc, true, 0x700)  // counter 0->1, predicted NT, actual T: incorrect
		bp.Update(pc, true, 0x700)  // counter 1->2, predicted NT, actual T: incorrect
		bp.Update(pc, true, 0x700)  // counter 2->3, predicted T, actual T: correct
		stats := bp.Stats()
		Expect(stats.Predictions).To(Equal(uint64(0)), "Update doesn't count as a prediction")
		Expect(stats.Correct).To(Equal(uint64(1)))
		Expect(stats.Mispredictions).To(Equal(uint64(2)))
	})
})
