package regress

import (
	"context"
	"fmt"

	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/session"
)

// Addresses shared by the reference test traffic.
const (
	testSrcMAC = "aa:bb:cc:dd:ee:ff"
	testDstIP  = "192.168.1.1"
	testSrcIP  = "192.168.0.1"
	testTTL    = 64
)

const (
	minsizePackets  = 5
	minsizeInterval = 1e-8
)

var nicResets = []string{
	regmap.InputArbiterReset,
	regmap.OutputPortLookupReset,
	regmap.OutputQueuesReset,
	regmap.Interface0Reset,
	regmap.Interface1Reset,
	regmap.Interface2Reset,
	regmap.Interface3Reset,
	regmap.DMAReset,
}

func init() {
	register(Test{
		Name:   "both_loopback_minsize",
		Design: "reference_nic",
		Description: "minimum size frames loop through the NIC back to the " +
			"host and every pipeline counter sees them",
		Loopback: []string{"nf0", "nf1", "nf2", "nf3"},
		Script:   LoopbackMinsize,
	})
}

func minsizePacket(dstMAC string) (*packet.Packet, error) {
	return packet.MakeIPPacket(packet.IPPacketOptions{
		DstMAC: dstMAC,
		SrcMAC: testSrcMAC,
		DstIP:  testDstIP,
		SrcIP:  testSrcIP,
		TTL:    testTTL,
		Len:    packet.MinFrameLen,
	})
}

// LoopbackMinsize pushes minimum size frames through the reference NIC.
//
// When the host drives PHY nf0, frames enter there and must reach DMA nf0.
// On a rig whose PHY sides are only cabled back onto themselves, the host
// sends on DMA of every port instead and each frame crosses the pipeline
// twice before returning on DMA of the same port.
func LoopbackMinsize(Options) session.Script {
	return func(ctx context.Context, s *session.Session) error {
		if err := ResetCounters(ctx, s, nicResets...); err != nil {
			return err
		}

		if s.Topology().Validate(packet.PHYPort("nf0")) == nil {
			return minsizeFromPHY(ctx, s)
		}

		return minsizeThroughCables(ctx, s)
	}
}

func minsizeFromPHY(ctx context.Context, s *session.Session) error {
	pkts := make([]*packet.Packet, 0, minsizePackets)

	for i := 0; i < minsizePackets; i++ {
		p, err := minsizePacket("00:ca:fe:00:00:00")
		if err != nil {
			return err
		}

		pkts = append(pkts, p.At(float64(i)*minsizeInterval))
	}

	if err := s.SendPHY(ctx, "nf0", pkts...); err != nil {
		return err
	}

	if err := s.ExpectDMA("nf0", pkts...); err != nil {
		return err
	}

	if err := s.Barrier(ctx); err != nil {
		return err
	}

	return expectCounters(ctx, s, minsizePackets,
		regmap.InputArbiterPktIn,
		regmap.InputArbiterPktOut,
		regmap.PktStoredPort(4),
		regmap.PktRemovedPort(4),
		regmap.OutputPortLookupPktIn,
		regmap.OutputPortLookupPktOut,
	)
}

func minsizeThroughCables(ctx context.Context, s *session.Session) error {
	var ports []string

	for _, p := range s.Topology().Ports() {
		if s.Topology().Validate(packet.DMAPort(p.Name)) == nil {
			ports = append(ports, p.Name)
		}
	}

	if len(ports) == 0 {
		return fault.Configf("loopback minsize", "no port reachable over DMA")
	}

	for i := 0; i < minsizePackets; i++ {
		for n, port := range ports {
			p, err := minsizePacket(fmt.Sprintf("00:ca:fe:00:00:%02x", n))
			if err != nil {
				return err
			}

			if err := s.SendDMA(ctx, port, p); err != nil {
				return err
			}

			if err := s.ExpectDMA(port, p); err != nil {
				return err
			}
		}
	}

	if err := s.Barrier(ctx); err != nil {
		return err
	}

	// Out through the PHY and back in again.
	want := regmap.Value(2 * minsizePackets * len(ports))

	return expectCounters(ctx, s, want,
		regmap.InputArbiterPktIn,
		regmap.InputArbiterPktOut,
		regmap.OutputPortLookupPktIn,
		regmap.OutputPortLookupPktOut,
		regmap.OutputQueuesPktIn,
		regmap.OutputQueuesPktOut,
	)
}
