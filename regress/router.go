package regress

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/regmap"
)

// A RegisterWriter writes named registers of the device under test.
type RegisterWriter interface {
	Addr(name string) (regmap.Addr, error)
	RegWrite(ctx context.Context, addr regmap.Addr, v regmap.Value) error
}

const routerPrefix = "SUME_OUTPUT_PORT_LOOKUP_0_"

// Router table registers. Entries are staged in the data registers and
// committed by writing the index to the WR_ADDR register.
const (
	LPMIP             = routerPrefix + "LPM_IP"
	LPMIPMask         = routerPrefix + "LPM_IP_MASK"
	LPMNextHopIP      = routerPrefix + "LPM_NEXT_HOP_IP"
	LPMOutputPort     = routerPrefix + "LPM_OQ"
	LPMWrAddr         = routerPrefix + "LPM_WR_ADDR"
	ARPIP             = routerPrefix + "ARP_IP"
	ARPMACHi          = routerPrefix + "ARP_MAC_HI"
	ARPMACLow         = routerPrefix + "ARP_MAC_LOW"
	ARPWrAddr         = routerPrefix + "ARP_WR_ADDR"
	DstIPFilterIP     = routerPrefix + "DEST_IP_FILTER_IP"
	DstIPFilterWrAddr = routerPrefix + "DEST_IP_FILTER_WR_ADDR"
)

type write struct {
	name  string
	value regmap.Value
}

func writeAll(ctx context.Context, w RegisterWriter, writes ...write) error {
	for _, wr := range writes {
		addr, err := w.Addr(wr.name)
		if err != nil {
			return err
		}

		if err := w.RegWrite(ctx, addr, wr.value); err != nil {
			return err
		}
	}

	return nil
}

func checkIndex(op string, index int) error {
	if index < 0 || index >= regmap.RouterTableDepth {
		return fault.Configf(op, "index %d outside table of %d entries",
			index, regmap.RouterTableDepth)
	}

	return nil
}

func parseIPv4(op, s string) (regmap.Value, error) {
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return 0, fault.Configf(op, "%q is not an IPv4 address", s)
	}

	return regmap.Value(binary.BigEndian.Uint32(ip)), nil
}

func parseMAC(op, s string) (hi, lo regmap.Value, err error) {
	mac, err := net.ParseMAC(s)
	if err != nil || len(mac) != 6 {
		return 0, 0, fault.Configf(op, "%q is not a MAC address", s)
	}

	hi = regmap.Value(uint32(mac[0])<<8 | uint32(mac[1]))
	lo = regmap.Value(binary.BigEndian.Uint32(mac[2:]))

	return hi, lo, nil
}

// portIndex turns an interface name such as "nf2" into its index.
func portIndex(op, port string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(port, "nf"))
	if err != nil || !strings.HasPrefix(port, "nf") ||
		n < 0 || n >= regmap.RouterPortCount {
		return 0, fault.Configf(op, "unknown router port %q", port)
	}

	return n, nil
}

// AddDstIPFilterEntry makes the router deliver packets addressed to ip to
// the host.
func AddDstIPFilterEntry(ctx context.Context, w RegisterWriter, index int, ip string) error {
	const op = "add dst ip filter entry"

	if err := checkIndex(op, index); err != nil {
		return err
	}

	v, err := parseIPv4(op, ip)
	if err != nil {
		return err
	}

	return writeAll(ctx, w,
		write{DstIPFilterIP, v},
		write{DstIPFilterWrAddr, regmap.Value(index)},
	)
}

// SetRouterMAC sets the MAC address of a router port.
func SetRouterMAC(ctx context.Context, w RegisterWriter, port, mac string) error {
	const op = "set router mac"

	n, err := portIndex(op, port)
	if err != nil {
		return err
	}

	hi, lo, err := parseMAC(op, mac)
	if err != nil {
		return err
	}

	return writeAll(ctx, w,
		write{fmt.Sprintf("%sMAC_%d_HI", routerPrefix, n), hi},
		write{fmt.Sprintf("%sMAC_%d_LOW", routerPrefix, n), lo},
	)
}

// AddLPMEntry installs a route. outPort is the one-hot output queue mask.
func AddLPMEntry(
	ctx context.Context,
	w RegisterWriter,
	index int,
	subnet, mask, nextHop string,
	outPort regmap.Value,
) error {
	const op = "add lpm entry"

	if err := checkIndex(op, index); err != nil {
		return err
	}

	ip, err := parseIPv4(op, subnet)
	if err != nil {
		return err
	}

	m, err := parseIPv4(op, mask)
	if err != nil {
		return err
	}

	hop, err := parseIPv4(op, nextHop)
	if err != nil {
		return err
	}

	return writeAll(ctx, w,
		write{LPMIP, ip},
		write{LPMIPMask, m},
		write{LPMNextHopIP, hop},
		write{LPMOutputPort, outPort},
		write{LPMWrAddr, regmap.Value(index)},
	)
}

// AddARPEntry maps a next hop address to a MAC address.
func AddARPEntry(ctx context.Context, w RegisterWriter, index int, ip, mac string) error {
	const op = "add arp entry"

	if err := checkIndex(op, index); err != nil {
		return err
	}

	v, err := parseIPv4(op, ip)
	if err != nil {
		return err
	}

	hi, lo, err := parseMAC(op, mac)
	if err != nil {
		return err
	}

	return writeAll(ctx, w,
		write{ARPIP, v},
		write{ARPMACHi, hi},
		write{ARPMACLow, lo},
		write{ARPWrAddr, regmap.Value(index)},
	)
}

// InvalidateAllTables zeroes every LPM, ARP, and filter entry.
func InvalidateAllTables(ctx context.Context, w RegisterWriter) error {
	for i := 0; i < regmap.RouterTableDepth; i++ {
		err := writeAll(ctx, w,
			write{LPMIP, 0},
			write{LPMIPMask, 0},
			write{LPMNextHopIP, 0},
			write{LPMOutputPort, 0},
			write{LPMWrAddr, regmap.Value(i)},
			write{ARPIP, 0},
			write{ARPMACHi, 0},
			write{ARPMACLow, 0},
			write{ARPWrAddr, regmap.Value(i)},
			write{DstIPFilterIP, 0},
			write{DstIPFilterWrAddr, regmap.Value(i)},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// ResetCounters pulses the reset register of each named module.
func ResetCounters(ctx context.Context, w RegisterWriter, names ...string) error {
	writes := make([]write, 0, len(names))
	for _, n := range names {
		writes = append(writes, write{n, 1})
	}

	return writeAll(ctx, w, writes...)
}
