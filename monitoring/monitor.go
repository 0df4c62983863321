// Package monitoring serves a read-only HTTP view of a running test session.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/barrier"
	"github.com/sarchlab/nftest/channel"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/result"
	"github.com/sarchlab/nftest/topology"
)

// A Source is what the monitor looks at. Every method must be safe to call
// from the server goroutines.
type Source interface {
	ID() string
	Mode() backend.Mode
	Design() string
	State() barrier.State
	Rounds() int
	Topology() *topology.Topology
	Stats() []channel.Stats
	Results() []result.Result
}

// Monitor turns a session into an HTTP server.
type Monitor struct {
	source     Source
	portNumber int
	logger     *zap.Logger

	server   *http.Server
	listener net.Listener
}

// NewMonitor creates a new Monitor.
func NewMonitor(source Source) *Monitor {
	return &Monitor{
		source: source,
		logger: zap.NewNop(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(logger *zap.Logger) *Monitor {
	m.logger = logger.Named("monitor")
	return m
}

// Router returns the API routes.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/session", m.session).Methods(http.MethodGet)
	r.HandleFunc("/api/ports", m.ports).Methods(http.MethodGet)
	r.HandleFunc("/api/port/{name}", m.port).Methods(http.MethodGet)
	r.HandleFunc("/api/results", m.results).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts serving in the background and returns the base URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", "localhost:"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", err
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring session %s with %s\n",
		m.source.ID(), url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitoring server stopped", zap.Error(err))
		}
	}()

	return url, nil
}

// OpenBrowser shows the session page in the default browser.
func (m *Monitor) OpenBrowser(url string) error {
	return browser.OpenURL(url + "/api/session")
}

// Stop shuts the server down.
func (m *Monitor) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.logger.Warn("write response", zap.Error(err))
	}
}

func (m *Monitor) fail(w http.ResponseWriter, code int, err error) {
	http.Error(w, err.Error(), code)
}

type sessionRsp struct {
	ID     string `json:"id"`
	Mode   string `json:"mode"`
	Design string `json:"design"`
	State  string `json:"state"`
	Rounds int    `json:"rounds"`
	Total  int    `json:"total"`
	Failed int    `json:"failed"`
}

func (m *Monitor) session(w http.ResponseWriter, _ *http.Request) {
	rsp := sessionRsp{
		ID:     m.source.ID(),
		Mode:   string(m.source.Mode()),
		Design: m.source.Design(),
		State:  m.source.State().String(),
		Rounds: m.source.Rounds(),
	}

	for _, r := range m.source.Results() {
		rsp.Total++
		if !r.Pass {
			rsp.Failed++
		}
	}

	m.writeJSON(w, rsp)
}

type statsRsp struct {
	Endpoint   string `json:"endpoint"`
	Queued     int    `json:"queued"`
	Sent       int    `json:"sent"`
	Expected   int    `json:"expected"`
	Received   int    `json:"received"`
	Matched    int    `json:"matched"`
	Mismatched int    `json:"mismatched"`
	Unexpected int    `json:"unexpected"`
}

func toStatsRsp(s channel.Stats) statsRsp {
	return statsRsp{
		Endpoint:   s.Endpoint.String(),
		Queued:     s.Queued,
		Sent:       s.Sent,
		Expected:   s.Expected,
		Received:   s.Received,
		Matched:    s.Matched,
		Mismatched: s.Mismatched,
		Unexpected: s.Unexpected,
	}
}

func (m *Monitor) ports(w http.ResponseWriter, _ *http.Request) {
	stats := m.source.Stats()

	rsp := make([]statsRsp, 0, len(stats))
	for _, s := range stats {
		rsp = append(rsp, toStatsRsp(s))
	}

	m.writeJSON(w, rsp)
}

// portView is what /api/port/{name} serializes.
type portView struct {
	Port topology.Port
	PHY  channel.Stats
	DMA  channel.Stats
}

func (m *Monitor) port(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	p, ok := m.source.Topology().Port(name)
	if !ok {
		m.fail(w, http.StatusNotFound, fmt.Errorf("port %s not found", name))
		return
	}

	view := &portView{Port: p}

	for _, s := range m.source.Stats() {
		switch s.Endpoint {
		case packet.PHYPort(name):
			view.PHY = s
		case packet.DMAPort(name):
			view.DMA = s
		}
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(view)
	serializer.SetMaxDepth(3)

	w.Header().Set("Content-Type", "application/json")

	if err := serializer.Serialize(w); err != nil {
		m.logger.Warn("serialize port", zap.Error(err))
	}
}

func (m *Monitor) results(w http.ResponseWriter, r *http.Request) {
	onlyFailed := r.URL.Query().Get("failed") == "true"

	rsp := []result.Result{}
	for _, res := range m.source.Results() {
		if onlyFailed && res.Pass {
			continue
		}

		rsp = append(rsp, res)
	}

	m.writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: mem.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second

	if s := r.URL.Query().Get("seconds"); s != "" {
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil || secs <= 0 {
			m.fail(w, http.StatusBadRequest,
				fmt.Errorf("invalid seconds %q", s))
			return
		}

		duration = time.Duration(secs * float64(time.Second))
	}

	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		m.fail(w, http.StatusConflict, err)
		return
	}

	time.Sleep(duration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.fail(w, http.StatusInternalServerError, err)
		return
	}

	m.writeJSON(w, prof)
}
