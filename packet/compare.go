package packet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

// MinFrameLen is the shortest Ethernet frame without FCS. Shorter frames are
// zero-padded to this length by real MACs.
const MinFrameLen = 60

// MaxFrameLen is the longest standard Ethernet frame without FCS.
const MaxFrameLen = 1514

// CompareOptions tunes packet comparison.
type CompareOptions struct {
	// IgnorePadding treats zero bytes appended to reach MinFrameLen as
	// insignificant.
	IgnorePadding bool
}

// Equal reports whether got matches want byte for byte.
func Equal(want, got []byte, opts CompareOptions) bool {
	if bytes.Equal(want, got) {
		return true
	}

	if !opts.IgnorePadding {
		return false
	}

	short, long := want, got
	if len(short) > len(long) {
		short, long = long, short
	}

	if len(long) > MinFrameLen || !bytes.Equal(short, long[:len(short)]) {
		return false
	}

	for _, b := range long[len(short):] {
		if b != 0 {
			return false
		}
	}

	return true
}

// Diff returns a human-readable byte diff between two frames.
func Diff(want, got []byte) string {
	return cmp.Diff(want, got)
}

// Summary decodes a frame and returns a one-line description of its layers.
func Summary(data []byte) string {
	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)

	parts := []string{fmt.Sprintf("len=%d", len(data))}

	if eth, ok := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet); ok {
		parts = append(parts, fmt.Sprintf("eth %s>%s", eth.SrcMAC, eth.DstMAC))
	}

	if ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
		parts = append(parts,
			fmt.Sprintf("ip %s>%s ttl=%d", ip.SrcIP, ip.DstIP, ip.TTL))
	}

	if tcp, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP); ok {
		parts = append(parts, fmt.Sprintf("tcp %d>%d", tcp.SrcPort, tcp.DstPort))
	}

	return strings.Join(parts, " ")
}
