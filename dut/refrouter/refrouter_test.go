package refrouter

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/nftest/dut"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
)

const (
	routerMAC0 = "00:ca:fe:00:00:01"
	routerMAC1 = "00:ca:fe:00:00:02"
	hostMAC    = "aa:bb:cc:dd:ee:ff"
	nextHopMAC = "dd:55:dd:66:dd:77"
)

func ip(s string) regmap.Value {
	return regmap.Value(ipToUint32(net.ParseIP(s)))
}

func writeMAC(l *Lookup, hiOff regmap.Addr, s string) {
	mac, err := net.ParseMAC(s)
	Expect(err).NotTo(HaveOccurred())
	Expect(l.WriteReg(hiOff, regmap.Value(macHi(mac)))).To(BeTrue())
	Expect(l.WriteReg(hiOff+4, regmap.Value(macLo(mac)))).To(BeTrue())
}

func readReg(l *Lookup, off regmap.Addr) regmap.Value {
	v, ok := l.ReadReg(off)
	Expect(ok).To(BeTrue())

	return v
}

var _ = Describe("Lookup", func() {
	var l *Lookup

	frame := func(dstMAC, dstIP string, ttl uint8) *dut.Frame {
		p, err := packet.MakeIPPacket(packet.IPPacketOptions{
			DstMAC: dstMAC,
			SrcMAC: hostMAC,
			DstIP:  dstIP,
			SrcIP:  "192.168.0.1",
			TTL:    ttl,
			Len:    100,
		})
		Expect(err).NotTo(HaveOccurred())

		return &dut.Frame{
			ID:     p.ID,
			Data:   p.Data,
			Source: dut.Dest{Port: 0, Path: packet.PHY},
		}
	}

	cpu := dut.OneHot(0, packet.DMA)

	BeforeEach(func() {
		l = NewLookup(nil)

		writeMAC(l, regmap.MACHiOffset(0), routerMAC0)
		writeMAC(l, regmap.MACHiOffset(1), routerMAC1)

		Expect(l.WriteReg(regmap.OffFilterIP, ip("192.168.0.40"))).To(BeTrue())
		Expect(l.WriteReg(regmap.OffFilterWrAddr, 0)).To(BeTrue())

		Expect(l.WriteReg(regmap.OffLPMIP, ip("192.168.1.0"))).To(BeTrue())
		Expect(l.WriteReg(regmap.OffLPMMask, ip("255.255.255.0"))).To(BeTrue())
		Expect(l.WriteReg(regmap.OffLPMNextHopIP, ip("192.168.1.54"))).To(BeTrue())
		Expect(l.WriteReg(regmap.OffLPMOutputPort, 0x4)).To(BeTrue())
		Expect(l.WriteReg(regmap.OffLPMWrAddr, 0)).To(BeTrue())
	})

	It("should send to the host on an ARP miss", func() {
		f := frame(routerMAC0, "192.168.1.1", 64)
		orig := append([]byte(nil), f.Data...)

		l.Route(f)

		Expect(f.DstOneHot).To(Equal(cpu))
		Expect(f.Data).To(Equal(orig))
		Expect(readReg(l, regmap.OffARPMissCntr)).To(Equal(regmap.Value(1)))
	})

	It("should forward and rewrite on an ARP hit", func() {
		Expect(l.WriteReg(regmap.OffARPIP, ip("192.168.1.54"))).To(BeTrue())
		writeMAC(l, regmap.OffARPMACHi, nextHopMAC)
		Expect(l.WriteReg(regmap.OffARPWrAddr, 3)).To(BeTrue())

		f := frame(routerMAC0, "192.168.1.1", 64)
		l.Route(f)

		Expect(f.DstOneHot).To(Equal(uint32(0x4)))
		Expect(net.HardwareAddr(f.Data[0:6]).String()).To(Equal(nextHopMAC))
		Expect(net.HardwareAddr(f.Data[6:12]).String()).To(Equal(routerMAC1))
		Expect(f.Data[ttlOffset]).To(Equal(uint8(63)))
		Expect(headerChecksumOK(f.Data)).To(BeTrue())
		Expect(readReg(l, regmap.OffForwardedCntr)).To(Equal(regmap.Value(1)))
	})

	It("should drop frames for another MAC", func() {
		f := frame(routerMAC1, "192.168.1.1", 64)
		l.Route(f)

		Expect(f.DstOneHot).To(BeZero())
		Expect(readReg(l, regmap.OffDroppedWrongDstMAC)).
			To(Equal(regmap.Value(1)))
	})

	It("should send local, expiring and unroutable frames to the host", func() {
		for _, f := range []*dut.Frame{
			frame(routerMAC0, "192.168.0.40", 64),
			frame(routerMAC0, "192.168.1.1", 1),
			frame(routerMAC0, "10.0.0.1", 64),
		} {
			l.Route(f)
			Expect(f.DstOneHot).To(Equal(cpu))
		}

		Expect(readReg(l, regmap.OffDestIPHitCntr)).To(Equal(regmap.Value(1)))
		Expect(readReg(l, regmap.OffBadTTLCntr)).To(Equal(regmap.Value(1)))
		Expect(readReg(l, regmap.OffLPMMissCntr)).To(Equal(regmap.Value(1)))
	})

	It("should send non-IP frames to the host", func() {
		f := frame(routerMAC0, "192.168.1.1", 64)
		f.Data[12], f.Data[13] = 0x08, 0x06

		l.Route(f)

		Expect(f.DstOneHot).To(Equal(cpu))
		Expect(readReg(l, regmap.OffNonIPCntr)).To(Equal(regmap.Value(1)))
	})

	It("should drop frames with a bad header checksum", func() {
		f := frame(routerMAC0, "192.168.1.1", 64)
		f.Data[csumOffset] ^= 0xff

		l.Route(f)

		Expect(f.DstOneHot).To(BeZero())
		Expect(readReg(l, regmap.OffDroppedChecksumCntr)).
			To(Equal(regmap.Value(1)))
	})

	It("should pass host frames to the phy side", func() {
		f := &dut.Frame{Source: dut.Dest{Port: 2, Path: packet.DMA}}
		l.Route(f)

		Expect(f.DstOneHot).To(Equal(dut.OneHot(2, packet.PHY)))
	})

	It("should read table entries back", func() {
		Expect(l.WriteReg(regmap.OffLPMIP, 0)).To(BeTrue())
		Expect(l.WriteReg(regmap.OffLPMRdAddr, 0)).To(BeTrue())

		Expect(readReg(l, regmap.OffLPMNextHopIP)).
			To(Equal(ip("192.168.1.54")))
	})

	It("should clear counters but keep tables on reset", func() {
		l.Route(frame(routerMAC0, "192.168.1.1", 64))
		l.Reset()

		Expect(readReg(l, regmap.OffARPMissCntr)).To(BeZero())

		f := frame(routerMAC0, "192.168.1.1", 64)
		l.Route(f)
		Expect(readReg(l, regmap.OffARPMissCntr)).To(Equal(regmap.Value(1)))
	})
})
