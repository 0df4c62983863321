package refrouter

import (
	"encoding/binary"
	"net"
)

// LPMEntry is one longest prefix match route. An entry with a zero output
// port is unused.
type LPMEntry struct {
	IP         uint32
	Mask       uint32
	NextHop    uint32
	OutputPort uint32
}

func (e LPMEntry) valid() bool {
	return e.OutputPort != 0
}

func (e LPMEntry) matches(ip uint32) bool {
	return e.valid() && ip&e.Mask == e.IP&e.Mask
}

// ARPEntry maps a next hop address to a MAC address. An entry with a zero IP
// is unused.
type ARPEntry struct {
	IP  uint32
	MAC net.HardwareAddr
}

type tables struct {
	lpm    []LPMEntry
	arp    []ARPEntry
	filter []uint32
	macs   []net.HardwareAddr
}

func newTables(depth, ports int) *tables {
	t := &tables{
		lpm:    make([]LPMEntry, depth),
		arp:    make([]ARPEntry, depth),
		filter: make([]uint32, depth),
		macs:   make([]net.HardwareAddr, ports),
	}

	for i := range t.macs {
		t.macs[i] = make(net.HardwareAddr, 6)
	}

	for i := range t.arp {
		t.arp[i].MAC = make(net.HardwareAddr, 6)
	}

	return t
}

// route returns the longest matching entry.
func (t *tables) route(ip uint32) (LPMEntry, bool) {
	var (
		best  LPMEntry
		found bool
	)

	for _, e := range t.lpm {
		if !e.matches(ip) {
			continue
		}

		if !found || e.Mask > best.Mask {
			best = e
			found = true
		}
	}

	return best, found
}

func (t *tables) resolve(ip uint32) (net.HardwareAddr, bool) {
	if ip == 0 {
		return nil, false
	}

	for _, e := range t.arp {
		if e.IP == ip {
			return e.MAC, true
		}
	}

	return nil, false
}

func (t *tables) isLocal(ip uint32) bool {
	if ip == 0 {
		return false
	}

	for _, f := range t.filter {
		if f == ip {
			return true
		}
	}

	return false
}

func ipToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}

	return binary.BigEndian.Uint32(v4)
}

func macHi(mac net.HardwareAddr) uint32 {
	return uint32(mac[0])<<8 | uint32(mac[1])
}

func macLo(mac net.HardwareAddr) uint32 {
	return binary.BigEndian.Uint32(mac[2:6])
}

func setMACHi(mac net.HardwareAddr, v uint32) {
	mac[0] = byte(v >> 8)
	mac[1] = byte(v)
}

func setMACLo(mac net.HardwareAddr, v uint32) {
	binary.BigEndian.PutUint32(mac[2:6], v)
}
