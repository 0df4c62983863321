package dut

import (
	"log"

	"github.com/sarchlab/nftest/sim"
)

// lookupPipeline models the latency of the output port lookup. It has one
// slot per cycle of latency. A frame enters the first slot, moves one slot
// per cycle, and leaves the last slot into out when out has room. A blocked
// frame stalls the frames behind it.
type lookupPipeline struct {
	slots []*Frame
	out   sim.Buffer
}

func newLookupPipeline(latency int, out sim.Buffer) *lookupPipeline {
	if latency < 0 {
		log.Panicf("lookup latency must not be negative, got %d", latency)
	}

	return &lookupPipeline{
		slots: make([]*Frame, latency),
		out:   out,
	}
}

func (p *lookupPipeline) canAccept() bool {
	if len(p.slots) == 0 {
		return p.out.CanPush()
	}

	return p.slots[0] == nil
}

func (p *lookupPipeline) accept(f *Frame) {
	if len(p.slots) == 0 {
		p.out.Push(f)
		return
	}

	if p.slots[0] != nil {
		log.Panicf("lookup pipeline busy, cannot take frame %s", f.ID)
	}

	p.slots[0] = f
}

// tick advances every frame that can move and reports whether any moved.
func (p *lookupPipeline) tick() bool {
	n := len(p.slots)
	if n == 0 {
		return false
	}

	moved := false

	if p.slots[n-1] != nil && p.out.CanPush() {
		p.out.Push(p.slots[n-1])
		p.slots[n-1] = nil
		moved = true
	}

	for i := n - 2; i >= 0; i-- {
		if p.slots[i] != nil && p.slots[i+1] == nil {
			p.slots[i+1] = p.slots[i]
			p.slots[i] = nil
			moved = true
		}
	}

	return moved
}

func (p *lookupPipeline) len() int {
	n := 0

	for _, f := range p.slots {
		if f != nil {
			n++
		}
	}

	return n
}
