// Package topology describes the logical ports a test session may use and
// which paths each port supports.
package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/packet"
)

// Caps is the set of paths a port supports.
type Caps uint8

// Capabilities.
const (
	CapPHY Caps = 1 << iota
	CapDMA
	CapBoth = CapPHY | CapDMA
)

// Has reports whether the capability set includes the path.
func (c Caps) Has(p packet.Path) bool {
	switch p {
	case packet.PHY:
		return c&CapPHY != 0
	case packet.DMA:
		return c&CapDMA != 0
	default:
		return false
	}
}

func (c Caps) String() string {
	var parts []string
	if c&CapPHY != 0 {
		parts = append(parts, "phy")
	}

	if c&CapDMA != 0 {
		parts = append(parts, "dma")
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "+")
}

// A Port is a logical device port such as nf0.
type Port struct {
	Name string
	Caps Caps

	// Loopback ports reflect PHY egress back into PHY ingress. Only the
	// simulation backend honors it.
	Loopback bool

	// PHYIface is the host interface cabled to the port's PHY side.
	PHYIface string

	// DMAIface is the host network device of the port's DMA side.
	DMAIface string
}

// A Topology is the immutable set of ports of one session.
type Topology struct {
	ports []Port
	index map[string]int
}

// New validates and assembles a topology. Port order is kept.
func New(ports ...Port) (*Topology, error) {
	t := &Topology{index: make(map[string]int)}

	for _, p := range ports {
		if p.Name == "" {
			return nil, fault.Configf("topology", "port without a name")
		}

		if _, dup := t.index[p.Name]; dup {
			return nil, fault.Configf("topology", "duplicate port %s", p.Name)
		}

		if p.Caps == 0 {
			return nil, fault.Configf("topology",
				"port %s supports neither phy nor dma", p.Name)
		}

		if p.Loopback && !p.Caps.Has(packet.PHY) {
			return nil, fault.Configf("topology",
				"loopback port %s has no phy path", p.Name)
		}

		t.index[p.Name] = len(t.ports)
		t.ports = append(t.ports, p)
	}

	return t, nil
}

// Standard returns ports nf0..nf(n-1), each supporting both paths, with the
// DMA side bound to the netdev of the same name.
func Standard(n int) []Port {
	ports := make([]Port, n)
	for i := range ports {
		name := fmt.Sprintf("nf%d", i)
		ports[i] = Port{Name: name, Caps: CapBoth, DMAIface: name}
	}

	return ports
}

// Ports returns the ports in declaration order.
func (t *Topology) Ports() []Port {
	out := make([]Port, len(t.ports))
	copy(out, t.ports)

	return out
}

// Port returns the named port.
func (t *Topology) Port(name string) (Port, bool) {
	i, ok := t.index[name]
	if !ok {
		return Port{}, false
	}

	return t.ports[i], true
}

// Index returns the position of the port, which is also its device port
// number.
func (t *Topology) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Validate checks that the endpoint names a known port and a supported path.
func (t *Topology) Validate(ep packet.Endpoint) error {
	p, ok := t.Port(ep.Port)
	if !ok {
		return fault.Configf("endpoint", "unknown port %s", ep.Port)
	}

	if !p.Caps.Has(ep.Path) {
		return fault.Configf("endpoint", "port %s does not support %s (has %s)",
			ep.Port, ep.Path, p.Caps)
	}

	return nil
}

// Endpoints returns every supported endpoint, port by port, PHY first.
func (t *Topology) Endpoints() []packet.Endpoint {
	var eps []packet.Endpoint

	for _, p := range t.ports {
		for _, path := range []packet.Path{packet.PHY, packet.DMA} {
			if p.Caps.Has(path) {
				eps = append(eps, packet.Endpoint{Port: p.Name, Path: path})
			}
		}
	}

	return eps
}

// Loopback returns the names of loopback ports, sorted.
func (t *Topology) Loopback() []string {
	var names []string

	for _, p := range t.ports {
		if p.Loopback {
			names = append(names, p.Name)
		}
	}

	sort.Strings(names)

	return names
}

// IsLoopback reports whether the named port loops PHY egress back.
func (t *Topology) IsLoopback(name string) bool {
	p, ok := t.Port(name)
	return ok && p.Loopback
}
