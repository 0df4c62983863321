package channel

import (
	"log"

	"go.uber.org/zap"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/result"
	"github.com/sarchlab/nftest/topology"
)

// Builder creates channel managers.
type Builder struct {
	backend       backend.Backend
	topo          *topology.Topology
	results       *result.Set
	ignorePadding bool
	logger        *zap.Logger
}

// MakeBuilder creates a Builder with padding-sensitive comparison.
func MakeBuilder() Builder {
	return Builder{logger: zap.NewNop()}
}

// WithBackend sets the backend that packets are submitted to.
func (b Builder) WithBackend(be backend.Backend) Builder {
	b.backend = be
	return b
}

// WithTopology sets the ports that endpoints are validated against.
func (b Builder) WithTopology(t *topology.Topology) Builder {
	b.topo = t
	return b
}

// WithResults sets where packet checks are recorded.
func (b Builder) WithResults(s *result.Set) Builder {
	b.results = s
	return b
}

// WithIgnorePadding makes comparison tolerate zero padding up to the minimum
// frame length.
func (b Builder) WithIgnorePadding(ignore bool) Builder {
	b.ignorePadding = ignore
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l *zap.Logger) Builder {
	b.logger = l
	return b
}

// Build creates the manager.
func (b Builder) Build() *Manager {
	if b.backend == nil || b.topo == nil {
		log.Panic("channel manager needs a backend and a topology")
	}

	results := b.results
	if results == nil {
		results = result.NewSet()
	}

	return &Manager{
		logger:  b.logger.Named("channel"),
		backend: b.backend,
		topo:    b.topo,
		results: results,
		opts:    packet.CompareOptions{IgnorePadding: b.ignorePadding},
		sends:   make(map[packet.Endpoint][]*packet.Packet),
		expects: make(map[packet.Endpoint][]*packet.Packet),
		stats:   make(map[packet.Endpoint]*Stats),
	}
}
