package sim

import "log"

// A Buffer is a bounded FIFO between two stages of a device model. Pushing
// into a full buffer is a modelling bug and panics.
type Buffer interface {
	Name() string
	CanPush() bool
	Push(e any)
	Pop() any
	Peek() any
	Capacity() int
	Size() int
	Clear()
}

// NewBuffer creates a buffer that holds up to capacity elements.
func NewBuffer(name string, capacity int) Buffer {
	if capacity <= 0 {
		log.Panicf("buffer %s must have a positive capacity", name)
	}

	return &ringBuffer{
		name:  name,
		slots: make([]any, capacity),
	}
}

// ringBuffer stores elements in a fixed ring of slots.
type ringBuffer struct {
	name  string
	slots []any
	head  int
	size  int
}

func (b *ringBuffer) Name() string {
	return b.name
}

func (b *ringBuffer) CanPush() bool {
	return b.size < len(b.slots)
}

func (b *ringBuffer) Push(e any) {
	if !b.CanPush() {
		log.Panicf("buffer %s overflow", b.name)
	}

	b.slots[(b.head+b.size)%len(b.slots)] = e
	b.size++
}

func (b *ringBuffer) Pop() any {
	if b.size == 0 {
		return nil
	}

	e := b.slots[b.head]
	b.slots[b.head] = nil
	b.head = (b.head + 1) % len(b.slots)
	b.size--

	return e
}

func (b *ringBuffer) Peek() any {
	if b.size == 0 {
		return nil
	}

	return b.slots[b.head]
}

func (b *ringBuffer) Capacity() int {
	return len(b.slots)
}

func (b *ringBuffer) Size() int {
	return b.size
}

func (b *ringBuffer) Clear() {
	clear(b.slots)
	b.head = 0
	b.size = 0
}
