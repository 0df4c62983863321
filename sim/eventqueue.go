package sim

import "container/heap"

// eventQueue orders events by time. Events at the same time leave in the
// order they arrived so that equal schedules replay identically.
type eventQueue struct {
	items   []queuedEvent
	nextSeq uint64
}

type queuedEvent struct {
	evt Event
	seq uint64
}

func (q *eventQueue) push(evt Event) {
	heap.Push(q, queuedEvent{evt: evt, seq: q.nextSeq})
	q.nextSeq++
}

func (q *eventQueue) pop() Event {
	return heap.Pop(q).(queuedEvent).evt
}

// peek returns the earliest event, or nil when the queue is empty.
func (q *eventQueue) peek() Event {
	if len(q.items) == 0 {
		return nil
	}

	return q.items[0].evt
}

func (q *eventQueue) Len() int {
	return len(q.items)
}

func (q *eventQueue) Less(i, j int) bool {
	ti, tj := q.items[i].evt.Time(), q.items[j].evt.Time()
	if ti != tj {
		return ti < tj
	}

	return q.items[i].seq < q.items[j].seq
}

func (q *eventQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *eventQueue) Push(x any) {
	q.items = append(q.items, x.(queuedEvent))
}

func (q *eventQueue) Pop() any {
	last := len(q.items) - 1
	e := q.items[last]
	q.items[last] = queuedEvent{}
	q.items = q.items[:last]

	return e
}
