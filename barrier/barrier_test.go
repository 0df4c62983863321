package barrier

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/nftest/fault"
)

var _ = Describe("Synchronizer", func() {
	var (
		ctx      context.Context
		mockCtrl *gomock.Controller
		drainer  *MockDrainer
		channel  *MockChannel
		s        *Synchronizer
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockCtrl = gomock.NewController(GinkgoT())
		drainer = NewMockDrainer(mockCtrl)
		channel = NewMockChannel(mockCtrl)
		s = New(drainer, channel, nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start idle and refuse verification", func() {
		Expect(s.State()).To(Equal(Idle))
		Expect(s.MustBeSettled("verify")).To(MatchError(fault.ErrUsage))
	})

	It("should flush, drain and collect in order", func() {
		s.MarkSending()
		Expect(s.State()).To(Equal(Sending))

		gomock.InOrder(
			channel.EXPECT().Flush(ctx).Return(nil),
			drainer.EXPECT().Drain(ctx).DoAndReturn(func(context.Context) error {
				Expect(s.State()).To(Equal(Draining))
				return nil
			}),
			channel.EXPECT().Collect(ctx).Return(nil),
		)

		Expect(s.Barrier(ctx)).To(Succeed())
		Expect(s.State()).To(Equal(Settled))
		Expect(s.MustBeSettled("verify")).To(Succeed())
		Expect(s.Rounds()).To(Equal(1))
	})

	It("should settle from idle", func() {
		channel.EXPECT().Flush(ctx).Return(nil)
		drainer.EXPECT().Drain(ctx).Return(nil)
		channel.EXPECT().Collect(ctx).Return(nil)

		Expect(s.Barrier(ctx)).To(Succeed())
		Expect(s.State()).To(Equal(Settled))
	})

	It("should be idempotent once settled", func() {
		channel.EXPECT().Flush(ctx).Return(nil)
		drainer.EXPECT().Drain(ctx).Return(nil)
		channel.EXPECT().Collect(ctx).Return(nil)

		Expect(s.Barrier(ctx)).To(Succeed())
		Expect(s.Barrier(ctx)).To(Succeed())
		Expect(s.Rounds()).To(Equal(1))
	})

	It("should leave settled on new traffic", func() {
		channel.EXPECT().Flush(ctx).Return(nil).Times(2)
		drainer.EXPECT().Drain(ctx).Return(nil).Times(2)
		channel.EXPECT().Collect(ctx).Return(nil).Times(2)

		Expect(s.Barrier(ctx)).To(Succeed())
		s.MarkSending()
		Expect(s.MustBeSettled("verify")).NotTo(Succeed())
		Expect(s.Barrier(ctx)).To(Succeed())
		Expect(s.Rounds()).To(Equal(2))
	})

	It("should stay draining when the drain fails", func() {
		s.MarkSending()
		timeout := fault.Timeoutf("drain", "did not drain")

		channel.EXPECT().Flush(ctx).Return(nil)
		drainer.EXPECT().Drain(ctx).Return(timeout)

		Expect(s.Barrier(ctx)).To(MatchError(fault.ErrTimeout))
		Expect(s.State()).To(Equal(Draining))
		Expect(s.MustBeSettled("verify")).To(MatchError(fault.ErrUsage))
	})
})
