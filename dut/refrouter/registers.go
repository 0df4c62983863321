package refrouter

import (
	"github.com/sarchlab/nftest/regmap"
)

// ReadReg reads a router register by its offset in the output port lookup
// module.
func (l *Lookup) ReadReg(off regmap.Addr) (regmap.Value, bool) {
	if v, ok := l.readCounter(off); ok {
		return regmap.Value(v), true
	}

	if port, hi, ok := macRegister(off); ok {
		mac := l.tables.macs[port]
		if hi {
			return regmap.Value(macHi(mac)), true
		}

		return regmap.Value(macLo(mac)), true
	}

	switch off {
	case regmap.OffLPMIP:
		return regmap.Value(l.lpmStage.IP), true
	case regmap.OffLPMMask:
		return regmap.Value(l.lpmStage.Mask), true
	case regmap.OffLPMNextHopIP:
		return regmap.Value(l.lpmStage.NextHop), true
	case regmap.OffLPMOutputPort:
		return regmap.Value(l.lpmStage.OutputPort), true
	case regmap.OffARPIP:
		return regmap.Value(l.arpStage.IP), true
	case regmap.OffARPMACHi:
		return regmap.Value(macHi(l.arpStage.MAC)), true
	case regmap.OffARPMACLo:
		return regmap.Value(macLo(l.arpStage.MAC)), true
	case regmap.OffFilterIP:
		return regmap.Value(l.filterStage), true
	case regmap.OffLPMWrAddr, regmap.OffLPMRdAddr,
		regmap.OffARPWrAddr, regmap.OffARPRdAddr,
		regmap.OffFilterWrAddr, regmap.OffFilterRdAddr:
		return 0, true
	}

	return 0, false
}

func (l *Lookup) readCounter(off regmap.Addr) (uint32, bool) {
	switch off {
	case regmap.OffARPMissCntr:
		return l.cnt.arpMiss, true
	case regmap.OffLPMMissCntr:
		return l.cnt.lpmMiss, true
	case regmap.OffNonIPCntr:
		return l.cnt.nonIP, true
	case regmap.OffBadTTLCntr:
		return l.cnt.badTTL, true
	case regmap.OffDestIPHitCntr:
		return l.cnt.destIPHit, true
	case regmap.OffForwardedCntr:
		return l.cnt.forwarded, true
	case regmap.OffDroppedChecksumCntr:
		return l.cnt.droppedChecksum, true
	case regmap.OffDroppedWrongDstMAC:
		return l.cnt.droppedWrongDstMAC, true
	}

	return 0, false
}

func macRegister(off regmap.Addr) (port int, hi bool, ok bool) {
	for i := 0; i < regmap.RouterPortCount; i++ {
		switch off {
		case regmap.MACHiOffset(i):
			return i, true, true
		case regmap.MACHiOffset(i) + 4:
			return i, false, true
		}
	}

	return 0, false, false
}

// WriteReg writes a router register. Table entries are staged in the data
// registers and committed by writing the entry index to a WR_ADDR register.
// Writing an index to a RD_ADDR register loads the entry back into the data
// registers.
func (l *Lookup) WriteReg(off regmap.Addr, v regmap.Value) bool {
	if _, ok := l.readCounter(off); ok {
		return true
	}

	if port, hi, ok := macRegister(off); ok {
		if hi {
			setMACHi(l.tables.macs[port], uint32(v))
		} else {
			setMACLo(l.tables.macs[port], uint32(v))
		}

		return true
	}

	return l.writeTableRegister(off, uint32(v))
}

func (l *Lookup) writeTableRegister(off regmap.Addr, v uint32) bool {
	switch off {
	case regmap.OffLPMIP:
		l.lpmStage.IP = v
	case regmap.OffLPMMask:
		l.lpmStage.Mask = v
	case regmap.OffLPMNextHopIP:
		l.lpmStage.NextHop = v
	case regmap.OffLPMOutputPort:
		l.lpmStage.OutputPort = v
	case regmap.OffLPMWrAddr:
		if i, ok := l.index(v); ok {
			l.tables.lpm[i] = l.lpmStage
		}
	case regmap.OffLPMRdAddr:
		if i, ok := l.index(v); ok {
			l.lpmStage = l.tables.lpm[i]
		}
	case regmap.OffARPIP:
		l.arpStage.IP = v
	case regmap.OffARPMACHi:
		setMACHi(l.arpStage.MAC, v)
	case regmap.OffARPMACLo:
		setMACLo(l.arpStage.MAC, v)
	case regmap.OffARPWrAddr:
		if i, ok := l.index(v); ok {
			entry := l.arpStage
			entry.MAC = append(entry.MAC[:0:0], l.arpStage.MAC...)
			l.tables.arp[i] = entry
		}
	case regmap.OffARPRdAddr:
		if i, ok := l.index(v); ok {
			l.arpStage.IP = l.tables.arp[i].IP
			copy(l.arpStage.MAC, l.tables.arp[i].MAC)
		}
	case regmap.OffFilterIP:
		l.filterStage = v
	case regmap.OffFilterWrAddr:
		if i, ok := l.index(v); ok {
			l.tables.filter[i] = l.filterStage
		}
	case regmap.OffFilterRdAddr:
		if i, ok := l.index(v); ok {
			l.filterStage = l.tables.filter[i]
		}
	default:
		return false
	}

	return true
}

func (l *Lookup) index(v uint32) (int, bool) {
	if v >= regmap.RouterTableDepth {
		return 0, false
	}

	return int(v), true
}
