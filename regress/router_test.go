package regress

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/regmap"
)

type regWrite struct {
	Name  string
	Value regmap.Value
}

var _ = Describe("Router helpers", func() {
	var (
		ctx      context.Context
		mockCtrl *gomock.Controller
		w        *MockRegisterWriter
		regs     *regmap.Map
		writes   []regWrite
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockCtrl = gomock.NewController(GinkgoT())
		w = NewMockRegisterWriter(mockCtrl)
		regs = regmap.ReferenceRouter()
		writes = nil

		w.EXPECT().Addr(gomock.Any()).DoAndReturn(regs.Addr).AnyTimes()
		w.EXPECT().RegWrite(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a regmap.Addr, v regmap.Value) error {
				writes = append(writes, regWrite{regs.Describe(a), v})
				return nil
			}).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should stage an LPM entry before committing it", func() {
		err := AddLPMEntry(ctx, w, 3,
			"192.168.1.0", "255.255.255.0", "192.168.1.54", 0x4)

		Expect(err).NotTo(HaveOccurred())
		Expect(writes).To(Equal([]regWrite{
			{LPMIP, 0xc0a80100},
			{LPMIPMask, 0xffffff00},
			{LPMNextHopIP, 0xc0a80136},
			{LPMOutputPort, 0x4},
			{LPMWrAddr, 3},
		}))
	})

	It("should split a router MAC into high and low words", func() {
		Expect(SetRouterMAC(ctx, w, "nf2", "00:ca:fe:00:00:03")).To(Succeed())

		Expect(writes).To(Equal([]regWrite{
			{"SUME_OUTPUT_PORT_LOOKUP_0_MAC_2_HI", 0x00ca},
			{"SUME_OUTPUT_PORT_LOOKUP_0_MAC_2_LOW", 0xfe000003},
		}))
	})

	It("should write ARP entries", func() {
		Expect(AddARPEntry(ctx, w, 1, "192.168.1.54", "dd:55:dd:66:dd:77")).
			To(Succeed())

		Expect(writes).To(Equal([]regWrite{
			{ARPIP, 0xc0a80136},
			{ARPMACHi, 0xdd55},
			{ARPMACLow, 0xdd66dd77},
			{ARPWrAddr, 1},
		}))
	})

	It("should write filter entries", func() {
		Expect(AddDstIPFilterEntry(ctx, w, 0, "192.168.0.40")).To(Succeed())

		Expect(writes).To(Equal([]regWrite{
			{DstIPFilterIP, 0xc0a80028},
			{DstIPFilterWrAddr, 0},
		}))
	})

	It("should zero every table entry", func() {
		Expect(InvalidateAllTables(ctx, w)).To(Succeed())

		Expect(writes).To(HaveLen(11 * regmap.RouterTableDepth))
		Expect(writes[len(writes)-1]).To(Equal(
			regWrite{DstIPFilterWrAddr, regmap.RouterTableDepth - 1}))
	})

	DescribeTable("should reject bad arguments without writing",
		func(call func() error) {
			Expect(call()).To(MatchError(fault.ErrConfiguration))
			Expect(writes).To(BeEmpty())
		},
		Entry("index past the table", func() error {
			return AddDstIPFilterEntry(ctx, w, regmap.RouterTableDepth, "1.2.3.4")
		}),
		Entry("IPv6 subnet", func() error {
			return AddLPMEntry(ctx, w, 0, "::1", "255.0.0.0", "1.2.3.4", 1)
		}),
		Entry("bad MAC", func() error {
			return AddARPEntry(ctx, w, 0, "1.2.3.4", "not-a-mac")
		}),
		Entry("unknown port", func() error {
			return SetRouterMAC(ctx, w, "eth0", "00:ca:fe:00:00:01")
		}),
		Entry("port past the router", func() error {
			return SetRouterMAC(ctx, w, "nf4", "00:ca:fe:00:00:01")
		}),
	)
})
