package regress

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/session"
)

var (
	routerMACs = []string{
		"00:ca:fe:00:00:01",
		"00:ca:fe:00:00:02",
		"00:ca:fe:00:00:03",
		"00:ca:fe:00:00:04",
	}
	routerIPs = []string{
		"192.168.0.40",
		"192.168.1.40",
		"192.168.2.40",
		"192.168.3.40",
	}
)

var routerResets = []string{
	regmap.OutputPortLookupReset,
	regmap.InputArbiterReset,
	regmap.OutputQueuesReset,
	regmap.Interface0Reset,
	regmap.Interface1Reset,
	regmap.Interface2Reset,
	regmap.Interface3Reset,
}

const (
	arpMissPackets  = 30
	arpMissInterval = 1e-8
	arpMissStart    = 2e-6

	// tableSettleCycles gives the router time to come out of reset before
	// its tables are programmed.
	tableSettleCycles = 2000
)

func init() {
	register(Test{
		Name:   "both_arp_misses",
		Design: "reference_router",
		Description: "routed packets without an ARP entry for the next hop " +
			"go to the host and bump the ARP miss counter",
		Script: ARPMisses,
	})
}

// ProgramRouter gives each router port its MAC address and accepts the
// port's own IP address as a local destination.
func ProgramRouter(ctx context.Context, w RegisterWriter) error {
	for port := range routerMACs {
		if err := AddDstIPFilterEntry(ctx, w, port, routerIPs[port]); err != nil {
			return err
		}

		if err := SetRouterMAC(ctx, w, fmt.Sprintf("nf%d", port), routerMACs[port]); err != nil {
			return err
		}
	}

	return nil
}

// ARPMisses routes packets toward a next hop that has no ARP entry. The
// router must hand every packet to the host on DMA nf0.
func ARPMisses(opts Options) session.Script {
	return func(ctx context.Context, s *session.Session) error {
		if err := ResetCounters(ctx, s, routerResets...); err != nil {
			return err
		}

		if err := InvalidateAllTables(ctx, s); err != nil {
			return err
		}

		if err := s.Delay(ctx, tableSettleCycles); err != nil {
			return err
		}

		if err := ProgramRouter(ctx, s); err != nil {
			return err
		}

		err := AddLPMEntry(ctx, s, 0,
			"192.168.1.0", "255.255.255.0", "192.168.1.54", 0x4)
		if err != nil {
			return err
		}

		if err := s.Barrier(ctx); err != nil {
			return err
		}

		pkts, err := randomLengthPackets(opts.Seed, routerMACs[0])
		if err != nil {
			return err
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

		return expectCounters(ctx, s, arpMissPackets, regmap.ARPMissCntr)
	}
}

func randomLengthPackets(seed uint64, dstMAC string) ([]*packet.Packet, error) {
	rng := rand.New(rand.NewPCG(seed, seed))
	pkts := make([]*packet.Packet, 0, arpMissPackets)

	for i := 0; i < arpMissPackets; i++ {
		p, err := packet.MakeIPPacket(packet.IPPacketOptions{
			DstMAC: dstMAC,
			SrcMAC: testSrcMAC,
			DstIP:  testDstIP,
			SrcIP:  testSrcIP,
			TTL:    testTTL,
			Len:    packet.MinFrameLen + rng.IntN(packet.MaxFrameLen-packet.MinFrameLen+1),
		})
		if err != nil {
			return nil, err
		}

		pkts = append(pkts, p.At(float64(i)*arpMissInterval+arpMissStart))
	}

	return pkts, nil
}
