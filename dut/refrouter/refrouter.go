// Package refrouter implements the lookup of the reference IPv4 router. The
// router forwards IPv4 frames by longest prefix match and ARP, and sends
// everything it cannot forward to the host over the DMA side of the ingress
// port.
package refrouter

import (
	"bytes"
	"encoding/binary"
	"net"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"go.uber.org/zap"

	"github.com/sarchlab/nftest/dut"
	"github.com/sarchlab/nftest/packet"
	"github.com/sarchlab/nftest/regmap"
)

// DesignID is the value of the reference router ID registers.
const DesignID regmap.Value = 0x0000da02

const (
	ethHeaderLen = 14
	ttlOffset    = ethHeaderLen + 8
	csumOffset   = ethHeaderLen + 10
)

type counters struct {
	arpMiss            uint32
	lpmMiss            uint32
	nonIP              uint32
	badTTL             uint32
	destIPHit          uint32
	forwarded          uint32
	droppedChecksum    uint32
	droppedWrongDstMAC uint32
}

// Lookup is the reference router output port lookup.
type Lookup struct {
	logger *zap.Logger
	tables *tables
	cnt    counters

	lpmStage    LPMEntry
	arpStage    ARPEntry
	filterStage uint32

	eth     layers.Ethernet
	ip      layers.IPv4
	parser  *gopacket.DecodingLayerParser
	decoded []gopacket.LayerType
}

// NewLookup creates a router lookup with empty tables.
func NewLookup(logger *zap.Logger) *Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Lookup{
		logger: logger,
		tables: newTables(regmap.RouterTableDepth, regmap.RouterPortCount),
		arpStage: ARPEntry{
			MAC: make(net.HardwareAddr, 6),
		},
	}

	l.parser = gopacket.NewDecodingLayerParser(
		layers.LayerTypeEthernet, &l.eth, &l.ip)
	l.parser.IgnoreUnsupported = true

	return l
}

// Route applies the router forwarding rules to a frame.
func (l *Lookup) Route(f *dut.Frame) {
	if f.Source.Path == packet.DMA {
		f.DstOneHot = dut.OneHot(f.Source.Port, packet.PHY)
		return
	}

	cpu := dut.OneHot(f.Source.Port, packet.DMA)

	l.decoded = l.decoded[:0]
	err := l.parser.DecodeLayers(f.Data, &l.decoded)

	if !l.hasLayer(layers.LayerTypeEthernet) {
		l.logger.Debug("undecodable frame", zap.String("frame", f.ID),
			zap.Error(err))
		l.cnt.nonIP++
		f.DstOneHot = cpu

		return
	}

	if !l.addressedToUs(f.Source.Port) {
		l.cnt.droppedWrongDstMAC++
		return
	}

	if !l.hasLayer(layers.LayerTypeIPv4) ||
		l.eth.EthernetType != layers.EthernetTypeIPv4 {
		l.cnt.nonIP++
		f.DstOneHot = cpu

		return
	}

	if !headerChecksumOK(f.Data) {
		l.cnt.droppedChecksum++
		return
	}

	dst := ipToUint32(l.ip.DstIP)

	switch {
	case l.tables.isLocal(dst):
		l.cnt.destIPHit++
		f.DstOneHot = cpu
	case l.ip.TTL <= 1:
		l.cnt.badTTL++
		f.DstOneHot = cpu
	default:
		l.forward(f, dst, cpu)
	}
}

func (l *Lookup) forward(f *dut.Frame, dst, cpu uint32) {
	route, ok := l.tables.route(dst)
	if !ok {
		l.cnt.lpmMiss++
		f.DstOneHot = cpu

		return
	}

	nextHop := route.NextHop
	if nextHop == 0 {
		nextHop = dst
	}

	mac, ok := l.tables.resolve(nextHop)
	if !ok {
		l.cnt.arpMiss++
		f.DstOneHot = cpu

		return
	}

	l.rewrite(f, mac, route.OutputPort)
	l.cnt.forwarded++
	f.DstOneHot = route.OutputPort
}

func (l *Lookup) rewrite(f *dut.Frame, dstMAC net.HardwareAddr, oneHot uint32) {
	copy(f.Data[0:6], dstMAC)

	for _, d := range dut.Destinations(oneHot) {
		if d.Path == packet.PHY {
			copy(f.Data[6:12], l.tables.macs[d.Port])
			break
		}
	}

	f.Data[ttlOffset]--

	binary.BigEndian.PutUint16(f.Data[csumOffset:], 0)
	hdrLen := int(f.Data[ethHeaderLen]&0x0f) * 4
	csum := checksum(f.Data[ethHeaderLen : ethHeaderLen+hdrLen])
	binary.BigEndian.PutUint16(f.Data[csumOffset:], csum)
}

func (l *Lookup) hasLayer(t gopacket.LayerType) bool {
	for _, d := range l.decoded {
		if d == t {
			return true
		}
	}

	return false
}

func (l *Lookup) addressedToUs(port int) bool {
	if bytes.Equal(l.eth.DstMAC, layers.EthernetBroadcast) {
		return true
	}

	return bytes.Equal(l.eth.DstMAC, l.tables.macs[port])
}

func headerChecksumOK(frame []byte) bool {
	if len(frame) < ethHeaderLen+20 {
		return false
	}

	hdrLen := int(frame[ethHeaderLen]&0x0f) * 4
	if hdrLen < 20 || len(frame) < ethHeaderLen+hdrLen {
		return false
	}

	return checksum(frame[ethHeaderLen:ethHeaderLen+hdrLen]) == 0
}

// checksum returns the ones' complement of the ones' complement sum of hdr.
func checksum(hdr []byte) uint16 {
	var sum uint32

	for i := 0; i+1 < len(hdr); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(hdr[i:]))
	}

	for sum > 0xffff {
		sum = sum>>16 + sum&0xffff
	}

	return ^uint16(sum)
}

// Reset clears the router counters. Tables are kept.
func (l *Lookup) Reset() {
	l.cnt = counters{}
}
