package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/core"
)

var _ = Describe("RegFile", func() {
	var rf *core.RegFile

	BeforeEach(func() {
		rf = core.NewRegFile()
	})

	It("initialises sp, gp, a0, a1 per the architectural reset state", func() {
		Expect(rf.Read(2)).To(Equal(uint32(0x7FFF_FFDC)))
		Expect(rf.Read(3)).To(Equal(uint32(0x1000_0000)))
		Expect(rf.Read(10)).To(Equal(uint32(1)))
		Expect(rf.Read(11)).To(Equal(uint32(0x7FFF_FFDC)))
	})

	It("initialises all other registers to zero", func() {
		for i := uint8(1); i < 32; i++ {
			if i == 2 || i == 3 || i == 10 || i == 11 {
				continue
			}
			Expect(rf.Read(i)).To(Equal(uint32(0)), "x%d should be zero", i)
		}
	})

	It("always reads x0 as zero", func() {
		Expect(rf.Read(0)).To(Equal(uint32(0)))
	})

	It("drops writes to x0", func() {
		rf.Write(0, 0xDEADBEEF)
		Expect(rf.Read(0)).To(Equal(uint32(0)))
	})

	It("reads x0 as zero even immediately after a write targeting it", func() {
		rf.Write(5, 42)
		rf.Write(0, 99)
		Expect(rf.Read(0)).To(Equal(uint32(0)))
		Expect(rf.Read(5)).To(Equal(uint32(42)))
	})

	It("round-trips writes on ordinary registers", func() {
		rf.Write(15, 0x12345678)
		Expect(rf.Read(15)).To(Equal(uint32(0x12345678)))
	})

	It("snapshot forces slot 0 to zero regardless of storage", func() {
		snap := rf.Snapshot()
		Expect(snap[0]).To(Equal(uint32(0)))
		Expect(snap[2]).To(Equal(uint32(0x7FFF_FFDC)))
	})
})
