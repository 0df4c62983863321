package dut

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/sim"
)

type crossLookup struct {
	routed int
	resets int
	drop   bool
}

func (l *crossLookup) Route(f *Frame) {
	l.routed++

	if l.drop {
		return
	}

	if f.Source.Path == packet.PHY {
		f.DstOneHot = OneHot(f.Source.Port, packet.DMA)
		return
	}

	f.DstOneHot = OneHot(f.Source.Port, packet.PHY)
}

func (l *crossLookup) ReadReg(off regmap.Addr) (regmap.Value, bool) {
	if off == 0x100 {
		return regmap.Value(l.routed), true
	}

	return 0, false
}

func (l *crossLookup) WriteReg(regmap.Addr, regmap.Value) bool {
	return false
}

func (l *crossLookup) Reset() {
	l.resets++
}

type egressed struct {
	time sim.VTimeInSec
	dest Dest
	id   string
}

var _ = Describe("Datapath", func() {
	var (
		engine *sim.SerialEngine
		lookup *crossLookup
		dp     *Datapath
		out    []egressed
	)

	readReg := func(a regmap.Addr) regmap.Value {
		v, err := dp.RegRead(a)
		Expect(err).NotTo(HaveOccurred())

		return v
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		lookup = &crossLookup{}
		out = nil

		cfg := DefaultConfig()
		cfg.InputBufferDepth = 2

		dp = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithConfig(cfg).
			WithLookup(lookup).
			WithDesignID(0xda01).
			Build("Device")
		dp.SetEgress(func(now sim.VTimeInSec, d Dest, f *Frame) {
			out = append(out, egressed{time: now, dest: d, id: f.ID})
		})
	})

	It("should map one-hot bits", func() {
		Expect(OneHot(0, packet.PHY)).To(Equal(uint32(0x1)))
		Expect(OneHot(0, packet.DMA)).To(Equal(uint32(0x2)))
		Expect(OneHot(3, packet.PHY)).To(Equal(uint32(0x40)))
		Expect(Destinations(0x14)).To(Equal([]Dest{
			{Port: 1, Path: packet.PHY},
			{Port: 2, Path: packet.PHY},
		}))
		Expect(Dest{Port: 2, Path: packet.DMA}.Queue()).To(Equal(DMAQueue))
	})

	It("should forward frames in order and count them", func() {
		src := Dest{Port: 0, Path: packet.PHY}
		Expect(dp.Inject(src, "a", []byte{1})).To(BeTrue())
		Expect(dp.Inject(src, "b", []byte{2})).To(BeTrue())
		Expect(dp.Busy()).To(BeTrue())

		Expect(engine.Run()).To(Succeed())

		Expect(dp.Busy()).To(BeFalse())
		Expect(out).To(HaveLen(2))
		Expect(out[0].id).To(Equal("a"))
		Expect(out[1].id).To(Equal("b"))
		Expect(out[0].dest).To(Equal(Dest{Port: 0, Path: packet.DMA}))
		Expect(out[1].time).To(BeNumerically(">", out[0].time))

		Expect(readReg(regmap.InputArbiterBase + regmap.OffPktIn)).
			To(Equal(regmap.Value(2)))
		Expect(readReg(regmap.InputArbiterBase + regmap.OffPktOut)).
			To(Equal(regmap.Value(2)))
		Expect(readReg(regmap.OutputPortLookupBase + regmap.OffPktOut)).
			To(Equal(regmap.Value(2)))
		Expect(readReg(regmap.OutputQueuesBase + regmap.OffPktStoredPort0 + 16)).
			To(Equal(regmap.Value(2)))
		Expect(readReg(regmap.OutputQueuesBase + regmap.OffPktRemovedPort0 + 16)).
			To(Equal(regmap.Value(2)))
		Expect(readReg(regmap.Interface0Base + regmap.OffPktIn)).
			To(Equal(regmap.Value(2)))
		Expect(readReg(regmap.DMABase + regmap.OffPktOut)).
			To(Equal(regmap.Value(2)))
		Expect(readReg(regmap.OutputPortLookupBase + 0x100)).
			To(Equal(regmap.Value(2)))
	})

	It("should refuse frames when the input buffer is full", func() {
		src := Dest{Port: 1, Path: packet.DMA}
		Expect(dp.Inject(src, "a", nil)).To(BeTrue())
		Expect(dp.Inject(src, "b", nil)).To(BeTrue())
		Expect(dp.CanInject(src)).To(BeFalse())
		Expect(dp.Inject(src, "c", nil)).To(BeFalse())

		Expect(dp.CanInject(Dest{Port: 7, Path: packet.PHY})).To(BeFalse())
	})

	It("should drop frames without destination", func() {
		lookup.drop = true
		Expect(dp.Inject(Dest{Port: 2, Path: packet.PHY}, "a", nil)).To(BeTrue())

		Expect(engine.Run()).To(Succeed())

		Expect(out).To(BeEmpty())
		Expect(readReg(regmap.OutputPortLookupBase + regmap.OffPktIn)).
			To(Equal(regmap.Value(1)))
		Expect(readReg(regmap.OutputPortLookupBase + regmap.OffPktOut)).
			To(Equal(regmap.Value(0)))
	})

	It("should clear counters on reset", func() {
		Expect(dp.Inject(Dest{Port: 0, Path: packet.PHY}, "a", nil)).To(BeTrue())
		Expect(engine.Run()).To(Succeed())

		Expect(dp.RegWrite(regmap.InputArbiterBase+regmap.OffReset, 1)).
			To(Succeed())
		Expect(dp.RegWrite(regmap.OutputPortLookupBase+regmap.OffReset, 1)).
			To(Succeed())

		Expect(readReg(regmap.InputArbiterBase + regmap.OffPktIn)).
			To(BeZero())
		Expect(lookup.resets).To(Equal(1))
	})

	It("should expose identity and flip registers", func() {
		Expect(readReg(regmap.OutputQueuesBase + regmap.OffID)).
			To(Equal(regmap.Value(0xda01)))

		Expect(dp.RegWrite(regmap.DMABase+regmap.OffFlip, 0x0f)).To(Succeed())
		Expect(readReg(regmap.DMABase + regmap.OffFlip)).
			To(Equal(regmap.Value(0xfffffff0)))
	})

	It("should reject unmapped addresses", func() {
		_, err := dp.RegRead(0x12345678)
		Expect(err).To(MatchError(ErrNoRegister))

		err = dp.RegWrite(regmap.InputArbiterBase+0x400, 1)
		Expect(err).To(MatchError(ErrNoRegister))
	})
})
