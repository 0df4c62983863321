// Package dut models the reference NetFPGA datapath on the virtual-time
// engine: input arbitration, an output port lookup stage, and output queues.
// Designs plug their own lookup logic into the shared datapath.
package dut

import (
	"fmt"

	"github.com/sarchlab/nftest/packet"
)

// NumPorts is the number of physical ports of the device.
const NumPorts = 4

// DMAQueue is the output queue index shared by all DMA destinations.
const DMAQueue = NumPorts

// OneHot returns the NetFPGA one-hot bit of a port side. PHY port i is bit
// 2i and DMA port i is bit 2i+1.
func OneHot(port int, path packet.Path) uint32 {
	if path == packet.DMA {
		return 1 << (2*port + 1)
	}

	return 1 << (2 * port)
}

// Destinations expands a one-hot bitmap into port sides.
func Destinations(oneHot uint32) []Dest {
	var dests []Dest

	for port := 0; port < NumPorts; port++ {
		if oneHot&OneHot(port, packet.PHY) != 0 {
			dests = append(dests, Dest{Port: port, Path: packet.PHY})
		}

		if oneHot&OneHot(port, packet.DMA) != 0 {
			dests = append(dests, Dest{Port: port, Path: packet.DMA})
		}
	}

	return dests
}

// A Dest is one port side of the device.
type Dest struct {
	Port int
	Path packet.Path
}

// Queue returns the output queue a destination is stored in.
func (d Dest) Queue() int {
	if d.Path == packet.DMA {
		return DMAQueue
	}

	return d.Port
}

func (d Dest) String() string {
	return fmt.Sprintf("nf%d/%s", d.Port, d.Path)
}

// A Frame is a packet travelling through the datapath.
type Frame struct {
	ID     string
	Data   []byte
	Source Dest

	// DstOneHot is set by the lookup stage. Zero drops the frame.
	DstOneHot uint32
}

type queuedFrame struct {
	frame *Frame
	dest  Dest
}
