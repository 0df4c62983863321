package hardware

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sarchlab/nftest/packet"
)

const maxFrameLen = 9216

// frameQueue is the capture FIFO of one endpoint. The capture goroutine
// pushes and the driver goroutine pops.
type frameQueue struct {
	mu     sync.Mutex
	frames []*packet.Packet
	notify chan struct{}
}

func newFrameQueue() *frameQueue {
	return &frameQueue{notify: make(chan struct{}, 1)}
}

func (q *frameQueue) push(p *packet.Packet) {
	q.mu.Lock()
	q.frames = append(q.frames, p)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *frameQueue) pop() (*packet.Packet, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) == 0 {
		return nil, false
	}

	p := q.frames[0]
	q.frames = q.frames[1:]

	return p, true
}

// echoFilter remembers frames the harness wrote on a link so that the copy
// the socket sees on transmit is not reported as captured.
type echoFilter struct {
	mu   sync.Mutex
	sent map[string]int
}

func newEchoFilter() *echoFilter {
	return &echoFilter{sent: make(map[string]int)}
}

func (f *echoFilter) record(frame []byte) {
	f.mu.Lock()
	f.sent[string(frame)]++
	f.mu.Unlock()
}

func (f *echoFilter) suppress(frame []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := string(frame)
	if f.sent[key] == 0 {
		return false
	}

	f.sent[key]--
	if f.sent[key] == 0 {
		delete(f.sent, key)
	}

	return true
}

// port binds an endpoint to its link.
type port struct {
	ep     packet.Endpoint
	link   Link
	queue  *frameQueue
	echoes *echoFilter
}

// capture reads frames from the link until ctx is done.
func (b *Backend) capture(ctx context.Context, p *port) error {
	buf := make([]byte, maxFrameLen)
	logger := b.logger.With(zap.Stringer("endpoint", p.ep))

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := p.link.SetReadDeadline(time.Now().Add(b.cfg.PollInterval)); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		n, err := p.link.Recv(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		frame := make([]byte, n)
		copy(frame, buf[:n])

		if p.echoes.suppress(frame) {
			continue
		}

		b.lastCapture.Store(time.Now().UnixNano())

		pkt := packet.New(frame)
		pkt.Time = time.Since(b.openedAt).Seconds()
		p.queue.push(pkt)

		logger.Debug("captured", zap.Int("len", n))
	}
}
