package simulated

import (
	"github.com/sarchlab/nftest/dut"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/sim"
)

// injector feeds the packets of one endpoint into the device in arrival
// order, waiting while the ingress buffer is full.
type injector struct {
	backend      *Backend
	src          dut.Dest
	pending      []*packet.Packet
	retryPlanned bool
}

func (i *injector) arrive(now sim.VTimeInSec, p *packet.Packet) {
	i.pending = append(i.pending, p)
	i.push(now)
}

func (i *injector) push(now sim.VTimeInSec) {
	for len(i.pending) > 0 {
		p := i.pending[0]
		if !i.backend.device.Inject(i.src, p.ID, p.Data) {
			break
		}

		i.pending = i.pending[1:]
	}

	if len(i.pending) == 0 || i.retryPlanned {
		return
	}

	i.retryPlanned = true
	next := i.backend.freq.NextTick(now)

	i.backend.engine.Schedule(sim.NewCallbackEvent(next,
		func(now sim.VTimeInSec) error {
			i.retryPlanned = false
			i.push(now)

			return nil
		}))
}
