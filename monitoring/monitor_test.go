package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/barrier"
	"github.com/sarchlab/nftest/channel"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/result"
	"github.com/sarchlab/nftest/topology"
)

type fakeSource struct {
	topo    *topology.Topology
	stats   []channel.Stats
	results []result.Result
}

func (s *fakeSource) ID() string                   { return "s1" }
func (s *fakeSource) Mode() backend.Mode           { return backend.Sim }
func (s *fakeSource) Design() string               { return "reference_nic" }
func (s *fakeSource) State() barrier.State         { return barrier.Settled }
func (s *fakeSource) Rounds() int                  { return 2 }
func (s *fakeSource) Topology() *topology.Topology { return s.topo }
func (s *fakeSource) Stats() []channel.Stats       { return s.stats }
func (s *fakeSource) Results() []result.Result     { return s.results }

var _ = Describe("Monitor", func() {
	var (
		src *fakeSource
		srv *httptest.Server
	)

	get := func(path string) *http.Response {
		rsp, err := http.Get(srv.URL + path)
		Expect(err).NotTo(HaveOccurred())
		return rsp
	}

	BeforeEach(func() {
		topo, err := topology.New(topology.Standard(2)...)
		Expect(err).NotTo(HaveOccurred())

		src = &fakeSource{
			topo: topo,
			stats: []channel.Stats{
				{Endpoint: packet.PHYPort("nf0"), Sent: 5},
				{Endpoint: packet.DMAPort("nf0"), Expected: 5, Received: 5, Matched: 5},
			},
			results: []result.Result{
				{ID: "a", Kind: result.Packet, Pass: true},
				{ID: "b", Kind: result.Register, Pass: false},
			},
		}

		srv = httptest.NewServer(NewMonitor(src).Router())
	})

	AfterEach(func() {
		srv.Close()
	})

	It("should report the session", func() {
		rsp := get("/api/session")
		defer rsp.Body.Close()

		var body sessionRsp
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body).To(Equal(sessionRsp{
			ID:     "s1",
			Mode:   "sim",
			Design: "reference_nic",
			State:  "SETTLED",
			Rounds: 2,
			Total:  2,
			Failed: 1,
		}))
	})

	It("should list port stats", func() {
		rsp := get("/api/ports")
		defer rsp.Body.Close()

		var body []statsRsp
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveLen(2))
		Expect(body[0].Endpoint).To(Equal("nf0/phy"))
		Expect(body[1].Matched).To(Equal(5))
	})

	It("should serialize one port", func() {
		rsp := get("/api/port/nf0")
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should 404 on unknown ports", func() {
		rsp := get("/api/port/nf9")
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should filter failed results", func() {
		rsp := get("/api/results?failed=true")
		defer rsp.Body.Close()

		var body []result.Result
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveLen(1))
		Expect(body[0].ID).To(Equal("b"))
	})

	It("should reject a bad profile duration", func() {
		rsp := get("/api/profile?seconds=abc")
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("should fall back to a random port for privileged ports", func() {
		m := NewMonitor(src).WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))
	})
})
