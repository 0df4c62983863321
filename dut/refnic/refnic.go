// Package refnic implements the lookup of the reference NIC: every frame
// crosses from the PHY side of a port to the DMA side of the same port and
// back.
package refnic

import (
	"github.com/sarchlab/nftest/dut"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
)

// DesignID is the value of the reference NIC ID registers.
const DesignID regmap.Value = 0x0000da01

// Lookup is the reference NIC output port lookup.
type Lookup struct{}

// NewLookup creates a reference NIC lookup.
func NewLookup() *Lookup {
	return &Lookup{}
}

// Route sends PHY ingress to DMA and DMA ingress to PHY of the same port.
func (l *Lookup) Route(f *dut.Frame) {
	if f.Source.Path == packet.PHY {
		f.DstOneHot = dut.OneHot(f.Source.Port, packet.DMA)
		return
	}

	f.DstOneHot = dut.OneHot(f.Source.Port, packet.PHY)
}

// ReadReg maps no registers beyond the common module set.
func (l *Lookup) ReadReg(regmap.Addr) (regmap.Value, bool) {
	return 0, false
}

// WriteReg maps no registers beyond the common module set.
func (l *Lookup) WriteReg(regmap.Addr, regmap.Value) bool {
	return false
}

// Reset does nothing since the lookup keeps no counters.
func (l *Lookup) Reset() {}
