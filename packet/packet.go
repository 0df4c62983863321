// Package packet defines the packets, endpoints, and schedules that flow
// between test scripts and device backends.
package packet

import (
	"fmt"

	"github.com/rs/xid"
)

// Path selects which side of a device port a packet enters or leaves.
type Path int

const (
	// PHY is the external network side of a port.
	PHY Path = iota
	// DMA is the host side of a port.
	DMA
)

func (p Path) String() string {
	switch p {
	case PHY:
		return "phy"
	case DMA:
		return "dma"
	default:
		return fmt.Sprintf("path(%d)", int(p))
	}
}

// An Endpoint is one side of a logical port.
type Endpoint struct {
	Port string
	Path Path
}

// PHYPort returns the external side of the named port.
func PHYPort(name string) Endpoint {
	return Endpoint{Port: name, Path: PHY}
}

// DMAPort returns the host side of the named port.
func DMAPort(name string) Endpoint {
	return Endpoint{Port: name, Path: DMA}
}

func (e Endpoint) String() string {
	return e.Port + "/" + e.Path.String()
}

// A Packet is an opaque frame. Time is a virtual-time offset in seconds and is
// only honored by backends that have a virtual clock.
type Packet struct {
	ID   string
	Data []byte
	Time float64
}

// New wraps a frame into a packet.
func New(data []byte) *Packet {
	return &Packet{
		ID:   xid.New().String(),
		Data: data,
	}
}

// Len returns the frame length in bytes.
func (p *Packet) Len() int {
	return len(p.Data)
}

// At returns a copy of the packet scheduled at the given offset.
func (p *Packet) At(t float64) *Packet {
	c := p.Clone()
	c.Time = t

	return c
}

// Clone returns a deep copy of the packet that keeps the same ID.
func (p *Packet) Clone() *Packet {
	data := make([]byte, len(p.Data))
	copy(data, p.Data)

	return &Packet{
		ID:   p.ID,
		Data: data,
		Time: p.Time,
	}
}
