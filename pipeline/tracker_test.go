package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/pipeline"
)

var _ = Describe("Tracker", func() {
	var t *pipeline.Tracker

	BeforeEach(func() {
		t = pipeline.NewTracker()
	})

	It("never tracks a write to x0", func() {
		t.Create(0, 4, "addi")
		Expect(t.Len()).To(Equal(0))
	})

	It("tracks a writer and reports RAW hazards only while it's in Execute or Memory", func() {
		t.Create(5, 8, "addi")
		Expect(t.HasRAWWithoutForwarding(5, 0, false)).To(BeFalse(), "still in Decode, not yet a hazard")

		t.Advance(8, pipeline.StageExecute)
		Expect(t.HasRAWWithoutForwarding(5, 0, false)).To(BeTrue())

		t.Advance(8, pipeline.StageMemory)
		Expect(t.HasRAWWithoutForwarding(5, 0, false)).To(BeTrue())

		t.Advance(8, pipeline.StageWriteback)
		Expect(t.HasRAWWithoutForwarding(5, 0, false)).To(BeFalse())
	})

	It("checks rs2 only when the format reads it", func() {
		t.Create(6, 12, "add")
		t.Advance(12, pipeline.StageExecute)
		Expect(t.HasRAWWithoutForwarding(0, 6, false)).To(BeFalse())
		Expect(t.HasRAWWithoutForwarding(0, 6, true)).To(BeTrue())
	})

	It("removes the record after Writeback", func() {
		t.Create(7, 16, "addi")
		t.Advance(16, pipeline.StageExecute)
		t.Remove(16)
		Expect(t.Len()).To(Equal(0))
		Expect(t.HasRAWWithoutForwarding(7, 0, false)).To(BeFalse())
	})
})
