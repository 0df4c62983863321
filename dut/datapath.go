package dut

import (
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/sim"
	"go.uber.org/zap"
)

// A Lookup is the design specific part of the output port lookup stage.
type Lookup interface {
	// Route decides where a frame goes by setting f.DstOneHot. It may
	// rewrite f.Data.
	Route(f *Frame)

	// ReadReg reads a lookup register by its offset in the output port
	// lookup module. It returns false if the offset is not mapped.
	ReadReg(off regmap.Addr) (regmap.Value, bool)

	// WriteReg writes a lookup register.
	WriteReg(off regmap.Addr, v regmap.Value) bool

	// Reset clears the lookup counters.
	Reset()
}

// EgressFunc receives frames that leave the device.
type EgressFunc func(now sim.VTimeInSec, d Dest, f *Frame)

// Datapath is the shared reference pipeline.
type Datapath struct {
	*sim.TickingComponent

	logger *zap.Logger
	lookup Lookup
	egress EgressFunc

	inputs     []sim.Buffer
	nextInput  int
	arbiterOut sim.Buffer
	pipeline   *lookupPipeline
	lookupOut  sim.Buffer
	queues     []sim.Buffer

	regs    *registerFile
	ia      *counterModule
	opl     *counterModule
	oq      *counterModule
	ifaces  []*counterModule
	dma     *counterModule
	stored  [NumPorts + 1]regmap.Value
	removed [NumPorts + 1]regmap.Value
	dropped [NumPorts + 1]regmap.Value
}

func inputIndex(d Dest) int {
	if d.Path == packet.DMA {
		return 2*d.Port + 1
	}

	return 2 * d.Port
}

// SetEgress sets where departing frames are delivered.
func (d *Datapath) SetEgress(fn EgressFunc) {
	d.egress = fn
}

// CanInject reports whether the ingress buffer of a port side has room.
func (d *Datapath) CanInject(src Dest) bool {
	if src.Port < 0 || src.Port >= NumPorts {
		return false
	}

	return d.inputs[inputIndex(src)].CanPush()
}

// Inject delivers a frame to the device. It returns false when the ingress
// buffer is full.
func (d *Datapath) Inject(src Dest, id string, data []byte) bool {
	if !d.CanInject(src) {
		return false
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	d.inputs[inputIndex(src)].Push(&Frame{ID: id, Data: buf, Source: src})
	d.countIngress(src)
	d.ia.pktIn++

	d.Wake()

	return true
}

func (d *Datapath) countIngress(src Dest) {
	if src.Path == packet.DMA {
		d.dma.pktIn++
		return
	}

	d.ifaces[src.Port].pktIn++
}

func (d *Datapath) countEgress(dst Dest) {
	if dst.Path == packet.DMA {
		d.dma.pktOut++
		return
	}

	d.ifaces[dst.Port].pktOut++
}

// Busy reports whether any frame is still inside the device.
func (d *Datapath) Busy() bool {
	for _, b := range d.inputs {
		if b.Size() > 0 {
			return true
		}
	}

	if d.arbiterOut.Size() > 0 || d.pipeline.len() > 0 ||
		d.lookupOut.Size() > 0 {
		return true
	}

	for _, q := range d.queues {
		if q.Size() > 0 {
			return true
		}
	}

	return false
}

// RegRead reads a device register.
func (d *Datapath) RegRead(a regmap.Addr) (regmap.Value, error) {
	return d.regs.read(a)
}

// RegWrite writes a device register.
func (d *Datapath) RegWrite(a regmap.Addr, v regmap.Value) error {
	return d.regs.write(a, v)
}

// Tick moves frames one step through every stage, last stage first.
func (d *Datapath) Tick(now sim.VTimeInSec) bool {
	madeProgress := false

	madeProgress = d.sendOut(now) || madeProgress
	madeProgress = d.enqueue() || madeProgress
	madeProgress = d.pipeline.tick() || madeProgress
	madeProgress = d.doLookup() || madeProgress
	madeProgress = d.arbitrate() || madeProgress

	return madeProgress
}

func (d *Datapath) sendOut(now sim.VTimeInSec) bool {
	madeProgress := false

	for i, q := range d.queues {
		item := q.Pop()
		if item == nil {
			continue
		}

		qf := item.(queuedFrame)
		d.removed[i]++
		d.oq.pktOut++
		d.countEgress(qf.dest)

		d.logger.Debug("egress",
			zap.Float64("time", float64(now)),
			zap.Stringer("dest", qf.dest),
			zap.Int("len", len(qf.frame.Data)))

		if d.egress != nil {
			d.egress(now, qf.dest, qf.frame)
		}

		madeProgress = true
	}

	return madeProgress
}

func (d *Datapath) enqueue() bool {
	item := d.lookupOut.Peek()
	if item == nil {
		return false
	}

	f := item.(*Frame)
	d.lookupOut.Pop()
	d.opl.pktOut++
	d.oq.pktIn++

	for _, dest := range Destinations(f.DstOneHot) {
		q := dest.Queue()
		if !d.queues[q].CanPush() {
			d.dropped[q]++
			d.logger.Debug("output queue full",
				zap.String("frame", f.ID), zap.Int("queue", q))

			continue
		}

		d.queues[q].Push(queuedFrame{frame: f, dest: dest})
		d.stored[q]++
	}

	return true
}

func (d *Datapath) doLookup() bool {
	item := d.arbiterOut.Peek()
	if item == nil || !d.pipeline.canAccept() {
		return false
	}

	f := item.(*Frame)
	d.arbiterOut.Pop()
	d.opl.pktIn++

	d.lookup.Route(f)
	if f.DstOneHot == 0 {
		d.logger.Debug("dropped by lookup", zap.String("frame", f.ID))
		return true
	}

	d.pipeline.accept(f)

	return true
}

func (d *Datapath) arbitrate() bool {
	if !d.arbiterOut.CanPush() {
		return false
	}

	for i := 0; i < len(d.inputs); i++ {
		idx := (d.nextInput + i) % len(d.inputs)

		item := d.inputs[idx].Pop()
		if item == nil {
			continue
		}

		d.arbiterOut.Push(item)
		d.ia.pktOut++
		d.nextInput = (idx + 1) % len(d.inputs)

		return true
	}

	return false
}

func (d *Datapath) readOutputQueue(off regmap.Addr) (regmap.Value, bool) {
	for n := 0; n <= NumPorts; n++ {
		step := regmap.Addr(4 * n)

		switch off {
		case regmap.OffPktStoredPort0 + step:
			return d.stored[n], true
		case regmap.OffPktRemovedPort0 + step:
			return d.removed[n], true
		case regmap.OffPktDroppedPort0 + step:
			return d.dropped[n], true
		}
	}

	return 0, false
}

func (d *Datapath) resetOutputQueues() {
	d.stored = [NumPorts + 1]regmap.Value{}
	d.removed = [NumPorts + 1]regmap.Value{}
	d.dropped = [NumPorts + 1]regmap.Value{}
}
