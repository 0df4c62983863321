package topology

import "github.com/sarchlab/nftest/fault"

// A Builder assembles a topology from configuration pieces.
type Builder struct {
	ports       []Port
	loopback    []string
	connections map[string]string
	requirePHY  bool
}

// MakeBuilder creates a Builder with no ports.
func MakeBuilder() Builder {
	return Builder{}
}

// WithPorts sets the ports.
func (b Builder) WithPorts(ports ...Port) Builder {
	b.ports = ports
	return b
}

// WithLoopback marks ports as loopback ports.
func (b Builder) WithLoopback(names ...string) Builder {
	b.loopback = names
	return b
}

// WithConnections binds PHY sides to host interfaces, as read from a
// connections file.
func (b Builder) WithConnections(conn map[string]string) Builder {
	b.connections = conn
	return b
}

// WithConnectedPHYOnly removes the PHY capability from ports that have no
// host interface cabled to them.
func (b Builder) WithConnectedPHYOnly() Builder {
	b.requirePHY = true
	return b
}

// Build validates the configuration and creates the topology.
func (b Builder) Build() (*Topology, error) {
	ports := make([]Port, len(b.ports))
	copy(ports, b.ports)

	index := make(map[string]int, len(ports))
	for i, p := range ports {
		index[p.Name] = i
	}

	for _, name := range b.loopback {
		i, ok := index[name]
		if !ok {
			return nil, fault.Configf("topology",
				"loopback names unknown port %s", name)
		}

		ports[i].Loopback = true
	}

	for name, iface := range b.connections {
		i, ok := index[name]
		if !ok {
			return nil, fault.Configf("topology",
				"connection names unknown port %s", name)
		}

		ports[i].PHYIface = iface
	}

	if b.requirePHY {
		for i := range ports {
			if ports[i].PHYIface == "" {
				ports[i].Caps &^= CapPHY
			}
		}
	}

	return New(ports...)
}
