package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/core"
)

var _ = Describe("Memory", func() {
	var m *core.Memory

	BeforeEach(func() {
		m = core.NewMemory()
	})

	It("reads absent addresses as zero", func() {
		v, err := m.ReadByte(0x1000_0000)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint8(0)))
	})

	It("round-trips a byte", func() {
		Expect(m.WriteByte(0x1000_0000, 0xAB)).To(Succeed())
		v, err := m.ReadByte(0x1000_0000)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint8(0xAB)))
	})

	It("round-trips a little-endian word", func() {
		Expect(m.WriteWord(0x1000_0000, 0x01020304)).To(Succeed())
		b0, _ := m.ReadByte(0x1000_0000)
		b3, _ := m.ReadByte(0x1000_0003)
		Expect(b0).To(Equal(uint8(0x04)))
		Expect(b3).To(Equal(uint8(0x01)))

		v, err := m.ReadWord(0x1000_0000)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(0x01020304)))
	})

	It("round-trips a little-endian halfword", func() {
		Expect(m.WriteHalf(0x1000_0000, 0xBEEF)).To(Succeed())
		v, err := m.ReadHalf(0x1000_0000)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint16(0xBEEF)))
	})

	It("allows a word load from the highest valid address", func() {
		addr := core.MemLimit - 4
		Expect(m.WriteWord(addr, 0xCAFEBABE)).To(Succeed())
		v, err := m.ReadWord(addr)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(0xCAFEBABE)))
	})

	It("fails a word load one byte past the highest valid address", func() {
		addr := core.MemLimit - 3
		_, err := m.ReadWord(addr)
		Expect(err).To(HaveOccurred())
		var fatal *core.FatalError
		Expect(err).To(BeAssignableToTypeOf(fatal))
	})

	It("writes only the bytes a store touches", func() {
		Expect(m.WriteWord(0x1000_0000, 0xFFFFFFFF)).To(Succeed())
		Expect(m.WriteByte(0x1000_0000, 0x00)).To(Succeed())
		v, _ := m.ReadWord(0x1000_0000)
		Expect(v).To(Equal(uint32(0xFFFFFF00)))
	})
})
