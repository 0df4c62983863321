package channel

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/result"
	"github.com/sarchlab/nftest/topology"
)

func frame(n int, fill byte) *packet.Packet {
	data := make([]byte, n)
	for i := range data {
		data[i] = fill
	}

	return packet.New(data)
}

var _ = Describe("Manager", func() {
	var (
		ctx      context.Context
		mockCtrl *gomock.Controller
		be       *MockBackend
		results  *result.Set
		m        *Manager
		nf0phy   = packet.PHYPort("nf0")
		nf0dma   = packet.DMAPort("nf0")
		nf1phy   = packet.PHYPort("nf1")
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockCtrl = gomock.NewController(GinkgoT())
		be = NewMockBackend(mockCtrl)
		results = result.NewSet()

		topo, err := topology.New(topology.Standard(2)...)
		Expect(err).NotTo(HaveOccurred())

		m = MakeBuilder().
			WithBackend(be).
			WithTopology(topo).
			WithResults(results).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should reject unknown ports before touching the backend", func() {
		err := m.Send(ctx, packet.PHYPort("nf7"), frame(60, 1))
		Expect(err).To(MatchError(fault.ErrConfiguration))

		err = m.Expect(packet.DMAPort("nf7"), frame(60, 1))
		Expect(err).To(MatchError(fault.ErrConfiguration))
	})

	Context("on a clocked backend", func() {
		BeforeEach(func() {
			be.EXPECT().Clocked().Return(true).AnyTimes()
		})

		It("should queue sends until flush", func() {
			Expect(m.Send(ctx, nf0phy, frame(60, 1).At(0), frame(60, 2).At(1e-8))).
				To(Succeed())
			Expect(m.Pending()).To(BeTrue())
			Expect(m.Stats()[0].Queued).To(Equal(2))
		})

		It("should reject decreasing times on one endpoint", func() {
			Expect(m.Send(ctx, nf0phy, frame(60, 1).At(2e-8))).To(Succeed())

			err := m.Send(ctx, nf0phy, frame(60, 2).At(1e-8))
			Expect(err).To(MatchError(fault.ErrConfiguration))
		})

		It("should allow any time on another endpoint", func() {
			Expect(m.Send(ctx, nf0phy, frame(60, 1).At(2e-8))).To(Succeed())
			Expect(m.Send(ctx, nf1phy, frame(60, 2).At(0))).To(Succeed())
		})

		It("should flush one interleaved schedule", func() {
			a := frame(60, 1).At(0)
			b := frame(60, 2).At(2e-8)
			c := frame(60, 3).At(1e-8)

			Expect(m.Send(ctx, nf0phy, a, b)).To(Succeed())
			Expect(m.Send(ctx, nf1phy, c)).To(Succeed())

			be.EXPECT().Submit(ctx, gomock.Any()).
				DoAndReturn(func(_ context.Context, s *packet.Schedule) error {
					entries := s.Entries()
					Expect(entries).To(HaveLen(3))
					Expect(entries[0].Packet).To(BeIdenticalTo(a))
					Expect(entries[1].Packet).To(BeIdenticalTo(c))
					Expect(entries[1].Endpoint).To(Equal(nf1phy))
					Expect(entries[2].Packet).To(BeIdenticalTo(b))
					return nil
				})

			Expect(m.Flush(ctx)).To(Succeed())
			Expect(m.Pending()).To(BeFalse())

			stats := m.Stats()
			Expect(stats[0].Queued).To(Equal(0))
			Expect(stats[0].Sent).To(Equal(2))
			Expect(stats[2].Sent).To(Equal(1))
		})

		It("should not submit an empty schedule", func() {
			Expect(m.Flush(ctx)).To(Succeed())
		})

		It("should keep the queue when submit fails", func() {
			Expect(m.Send(ctx, nf0phy, frame(60, 1))).To(Succeed())

			be.EXPECT().Submit(ctx, gomock.Any()).
				Return(fault.Transportf("submit", "link down"))

			Expect(m.Flush(ctx)).To(MatchError(fault.ErrTransport))
			Expect(m.Pending()).To(BeTrue())
		})
	})

	Context("on an unclocked backend", func() {
		BeforeEach(func() {
			be.EXPECT().Clocked().Return(false).AnyTimes()
		})

		It("should submit each packet immediately", func() {
			a, b := frame(60, 1), frame(60, 2)

			gomock.InOrder(
				be.EXPECT().Submit(ctx, gomock.Any()).
					DoAndReturn(func(_ context.Context, s *packet.Schedule) error {
						Expect(s.Len()).To(Equal(1))
						Expect(s.Entries()[0].Packet).To(BeIdenticalTo(a))
						return nil
					}),
				be.EXPECT().Submit(ctx, gomock.Any()).
					DoAndReturn(func(_ context.Context, s *packet.Schedule) error {
						Expect(s.Entries()[0].Packet).To(BeIdenticalTo(b))
						return nil
					}),
			)

			Expect(m.Send(ctx, nf0phy, a, b)).To(Succeed())
			Expect(m.Pending()).To(BeFalse())
			Expect(m.Stats()[0].Sent).To(Equal(2))
		})
	})

	Context("when collecting", func() {
		var captured map[packet.Endpoint][]*packet.Packet

		BeforeEach(func() {
			captured = make(map[packet.Endpoint][]*packet.Packet)

			be.EXPECT().Receive(ctx, gomock.Any()).
				DoAndReturn(func(_ context.Context, ep packet.Endpoint) (*packet.Packet, error) {
					q := captured[ep]
					if len(q) == 0 {
						return nil, backend.ErrNoPacket
					}

					captured[ep] = q[1:]

					return q[0], nil
				}).AnyTimes()
		})

		It("should pass packets received in order", func() {
			a, b := frame(60, 1), frame(60, 2)
			Expect(m.Expect(nf0dma, a, b)).To(Succeed())
			captured[nf0dma] = []*packet.Packet{a.Clone(), b.Clone()}

			Expect(m.Collect(ctx)).To(Succeed())

			Expect(results.Summary()).To(Equal(result.Summary{Total: 2, Passed: 2}))
			Expect(m.Pending()).To(BeFalse())
			Expect(m.Stats()[1].Matched).To(Equal(2))
		})

		It("should fail packets received out of order", func() {
			a, b := frame(60, 1), frame(60, 2)
			Expect(m.Expect(nf0dma, a, b)).To(Succeed())
			captured[nf0dma] = []*packet.Packet{b.Clone(), a.Clone()}

			Expect(m.Collect(ctx)).To(Succeed())

			Expect(results.Summary().Failed).To(Equal(2))
			Expect(results.Failures()[0].Description).To(ContainSubstring("differs"))
		})

		It("should fail missing packets", func() {
			Expect(m.Expect(nf0dma, frame(60, 1))).To(Succeed())

			Expect(m.Collect(ctx)).To(Succeed())

			failures := results.Failures()
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].Actual).To(Equal("none"))
		})

		It("should fail unexpected packets", func() {
			captured[nf1phy] = []*packet.Packet{frame(60, 9)}

			Expect(m.Collect(ctx)).To(Succeed())

			failures := results.Failures()
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].Description).To(ContainSubstring("unexpected"))
			Expect(m.Stats()[2].Unexpected).To(Equal(1))
		})

		It("should produce unique result ids across rounds", func() {
			a := frame(60, 1)
			Expect(m.Expect(nf0dma, a)).To(Succeed())
			captured[nf0dma] = []*packet.Packet{a.Clone()}
			Expect(m.Collect(ctx)).To(Succeed())

			Expect(m.Expect(nf0dma, a)).To(Succeed())
			captured[nf0dma] = []*packet.Packet{a.Clone()}
			Expect(m.Collect(ctx)).To(Succeed())

			Expect(results.Summary().Total).To(Equal(2))
		})
	})

	It("should tolerate padding when asked", func() {
		topo, _ := topology.New(topology.Standard(1)...)
		m = MakeBuilder().
			WithBackend(be).
			WithTopology(topo).
			WithResults(results).
			WithIgnorePadding(true).
			Build()

		short := packet.New([]byte{1, 2, 3, 4})
		padded := packet.New(make([]byte, packet.MinFrameLen))
		copy(padded.Data, short.Data)

		served := false
		be.EXPECT().Receive(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, ep packet.Endpoint) (*packet.Packet, error) {
				if ep == nf0dma && !served {
					served = true
					return padded, nil
				}

				return nil, backend.ErrNoPacket
			}).AnyTimes()

		Expect(m.Expect(nf0dma, short)).To(Succeed())
		Expect(m.Collect(ctx)).To(Succeed())
		Expect(results.Summary().OK()).To(BeTrue())
	})

	It("should treat receive failures as transport errors", func() {
		be.EXPECT().Receive(ctx, gomock.Any()).Return(nil, errors.New("socket closed"))

		Expect(m.Collect(ctx)).To(MatchError(fault.ErrTransport))
	})
})
