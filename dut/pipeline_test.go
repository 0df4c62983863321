package dut

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/nftest/sim"
)

var _ = Describe("Lookup pipeline", func() {
	var (
		out sim.Buffer
		p   *lookupPipeline
	)

	BeforeEach(func() {
		out = sim.NewBuffer("Out", 1)
		p = newLookupPipeline(3, out)
	})

	It("should hold a frame for the latency", func() {
		f := &Frame{ID: "a"}

		Expect(p.canAccept()).To(BeTrue())
		p.accept(f)
		Expect(p.canAccept()).To(BeFalse())
		Expect(p.len()).To(Equal(1))

		ticks := 0
		for out.Size() == 0 {
			Expect(p.tick()).To(BeTrue())
			ticks++
		}

		Expect(ticks).To(Equal(3))
		Expect(out.Pop()).To(BeIdenticalTo(f))
		Expect(p.len()).To(Equal(0))
	})

	It("should accept a new frame every cycle", func() {
		p.accept(&Frame{ID: "a"})
		p.tick()
		Expect(p.canAccept()).To(BeTrue())

		p.accept(&Frame{ID: "b"})
		Expect(p.len()).To(Equal(2))
	})

	It("should stall when the output is full", func() {
		out.Push(&Frame{ID: "blocker"})
		p.accept(&Frame{ID: "a"})

		p.tick()
		p.tick()

		Expect(p.tick()).To(BeFalse())
		Expect(p.len()).To(Equal(1))
	})

	It("should pass frames straight through without latency", func() {
		p = newLookupPipeline(0, out)

		p.accept(&Frame{ID: "a"})

		Expect(out.Size()).To(Equal(1))
		Expect(p.canAccept()).To(BeFalse())
		Expect(p.tick()).To(BeFalse())
	})
})
