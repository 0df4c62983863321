// Package session drives one test run: it selects the backend once, owns the
// ports and the result set, and exposes the operations a test script uses.
package session

import (
	"context"
	"io"
	"os"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/barrier"
	"github.com/sarchlab/nftest/channel"
	"github.com/sarchlab/nftest/config"
	"github.com/sarchlab/nftest/datarecording"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/monitoring"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/result"
	"github.com/sarchlab/nftest/topology"
	"github.com/sarchlab/nftest/verify"
)

// Session is one test run. It is driven from a single goroutine. The
// accessors used by monitoring may be called from anywhere.
type Session struct {
	id     string
	name   string
	cfg    config.Config
	logger *zap.Logger

	backend  backend.Backend
	topo     *topology.Topology
	regs     *regmap.Map
	results  *result.Set
	channel  *channel.Manager
	sync     *barrier.Synchronizer
	verifier *verify.Verifier

	recorder *datarecording.ResultRecorder
	monitor  *monitoring.Monitor

	stdout  io.Writer
	stderr  io.Writer
	colored bool
	verbose bool

	started  bool
	finished bool
	fatal    error
	code     int
}

// An Option customizes a session.
type Option func(s *Session)

// WithBackend replaces the backend selected from the configuration.
func WithBackend(b backend.Backend) Option {
	return func(s *Session) { s.backend = b }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithOutput redirects the report and the fatal diagnostics.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Session) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithName names the session in the report and the recording.
func WithName(name string) Option {
	return func(s *Session) { s.name = name }
}

// WithColor colors the report.
func WithColor(on bool) Option {
	return func(s *Session) { s.colored = on }
}

// WithVerbose lists passing checks in the report too.
func WithVerbose(on bool) Option {
	return func(s *Session) { s.verbose = on }
}

// New validates the configuration, builds the port topology and selects the
// backend. Nothing touches the device until Start.
func New(cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:      xid.New().String(),
		cfg:     cfg,
		logger:  zap.NewNop(),
		results: result.NewSet(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	for _, o := range opts {
		o(s)
	}

	s.logger = s.logger.With(zap.String("session", s.id))

	var err error

	if s.topo, err = buildTopology(cfg); err != nil {
		return nil, err
	}

	if s.regs, err = loadRegisters(cfg); err != nil {
		return nil, err
	}

	if s.backend == nil {
		if s.backend, err = newBackend(cfg, s.regs, s.logger); err != nil {
			return nil, err
		}
	}

	s.channel = channel.MakeBuilder().
		WithBackend(s.backend).
		WithTopology(s.topo).
		WithResults(s.results).
		WithIgnorePadding(cfg.IgnorePadding).
		WithLogger(s.logger).
		Build()
	s.sync = barrier.New(s.backend, s.channel, s.logger)
	s.verifier = verify.New(s.backend, s.sync, s.regs, s.results, s.logger)

	return s, nil
}

// Start opens the backend and starts recording and monitoring.
func (s *Session) Start(ctx context.Context) error {
	if s.started {
		return fault.Usagef("start", "session already started")
	}

	s.started = true

	s.logger.Info("starting",
		zap.String("mode", string(s.backend.Mode())),
		zap.String("design", s.cfg.Design),
		zap.Int("ports", len(s.topo.Ports())))

	if err := s.backend.Open(ctx, s.topo); err != nil {
		return fault.Classify(fault.Transport, "start", err)
	}

	if s.cfg.Record.Enabled {
		if err := s.startRecording(); err != nil {
			return err
		}
	}

	if s.cfg.Monitor.Enabled {
		if err := s.startMonitor(); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) startRecording() error {
	target := s.cfg.Record.Path
	if s.cfg.Record.Driver == datarecording.ClickHouse {
		target = s.cfg.Record.DSN
	}

	db, err := datarecording.New(s.cfg.Record.Driver, target)
	if err != nil {
		return fault.New(fault.Configuration, "record", err)
	}

	rec, err := datarecording.NewResultRecorder(db)
	if err != nil {
		_ = db.Close()
		return fault.New(fault.Transport, "record", err)
	}

	rec.Start(datarecording.SessionInfo{
		ID:     s.id,
		Name:   s.name,
		Mode:   string(s.backend.Mode()),
		Design: s.cfg.Design,
	})

	s.recorder = rec

	return nil
}

func (s *Session) startMonitor() error {
	m := monitoring.NewMonitor(s).
		WithPortNumber(s.cfg.Monitor.Port).
		WithLogger(s.logger)

	url, err := m.StartServer()
	if err != nil {
		return fault.New(fault.Configuration, "monitor", err)
	}

	if s.cfg.Monitor.OpenBrowser {
		if err := m.OpenBrowser(url); err != nil {
			s.logger.Warn("cannot open browser", zap.Error(err))
		}
	}

	s.monitor = m

	return nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the backend kind. Scripts should rarely need it.
func (s *Session) Mode() backend.Mode {
	return s.backend.Mode()
}

// Design returns the design under test.
func (s *Session) Design() string {
	return s.cfg.Design
}

// State returns the barrier state.
func (s *Session) State() barrier.State {
	return s.sync.State()
}

// Rounds returns how many barriers settled the device.
func (s *Session) Rounds() int {
	return s.sync.Rounds()
}

// Topology returns the ports.
func (s *Session) Topology() *topology.Topology {
	return s.topo
}

// Registers returns the register map of the design.
func (s *Session) Registers() *regmap.Map {
	return s.regs
}

// Stats returns the per-endpoint packet counters.
func (s *Session) Stats() []channel.Stats {
	return s.channel.Stats()
}

// Results returns the checks recorded so far.
func (s *Session) Results() []result.Result {
	return s.results.Results()
}

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger {
	return s.logger
}
