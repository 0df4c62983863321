package packet

import (
	"fmt"
	"net"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

const (
	ethHeaderLen = 14
	ipHeaderLen  = 20
	tcpHeaderLen = 20
	headersLen   = ethHeaderLen + ipHeaderLen + tcpHeaderLen
)

// IPPacketOptions describes an Ethernet/IPv4/TCP frame.
type IPPacketOptions struct {
	DstMAC string
	SrcMAC string
	DstIP  string
	SrcIP  string
	TTL    uint8

	// Len is the frame length without FCS. Zero means MinFrameLen.
	Len int

	// Payload fills the TCP payload. The default fill is an incrementing
	// byte pattern.
	Payload func(n int) []byte
}

// MakeIPPacket builds an Ethernet/IPv4/TCP frame with valid checksums.
func MakeIPPacket(opts IPPacketOptions) (*Packet, error) {
	dstMAC, err := net.ParseMAC(opts.DstMAC)
	if err != nil {
		return nil, fmt.Errorf("dst MAC: %w", err)
	}

	srcMAC, err := net.ParseMAC(opts.SrcMAC)
	if err != nil {
		return nil, fmt.Errorf("src MAC: %w", err)
	}

	dstIP := net.ParseIP(opts.DstIP).To4()
	if dstIP == nil {
		return nil, fmt.Errorf("dst IP %q is not IPv4", opts.DstIP)
	}

	srcIP := net.ParseIP(opts.SrcIP).To4()
	if srcIP == nil {
		return nil, fmt.Errorf("src IP %q is not IPv4", opts.SrcIP)
	}

	length := opts.Len
	if length == 0 {
		length = MinFrameLen
	}

	if length < headersLen {
		return nil, fmt.Errorf("length %d is shorter than headers (%d)",
			length, headersLen)
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = 64
	}

	fill := opts.Payload
	if fill == nil {
		fill = incrementingPayload
	}

	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      ttl,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    srcIP,
		DstIP:    dstIP,
	}
	tcp := &layers.TCP{
		SrcPort: 20,
		DstPort: 80,
		SYN:     true,
		Window:  8192,
	}

	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}

	buf := gopacket.NewSerializeBuffer()
	serializeOpts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}

	err = gopacket.SerializeLayers(buf, serializeOpts,
		eth, ip, tcp, gopacket.Payload(fill(length-headersLen)))
	if err != nil {
		return nil, fmt.Errorf("serializing packet: %w", err)
	}

	return New(buf.Bytes()), nil
}

func incrementingPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i)
	}

	return p
}
