package hardware

import (
	"net"
	"time"

	"github.com/mdlayher/packet"
	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// A Link sends and captures raw Ethernet frames on one host interface.
type Link interface {
	Name() string
	Send(frame []byte) error
	Recv(buf []byte) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// LinkOpener opens the link of a host interface.
type LinkOpener func(iface string) (Link, error)

type rawLink struct {
	name string
	conn *packet.Conn
}

// OpenRawLink opens an AF_PACKET socket on a host interface. The interface
// must be up.
func OpenRawLink(iface string) (Link, error) {
	nl, err := netlink.LinkByName(iface)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up interface %s", iface)
	}

	attrs := nl.Attrs()
	if attrs.Flags&net.FlagUp == 0 {
		return nil, errors.Errorf("interface %s is down", iface)
	}

	ifi, err := net.InterfaceByIndex(attrs.Index)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving interface %s", iface)
	}

	conn, err := packet.Listen(ifi, packet.Raw, unix.ETH_P_ALL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening raw socket on %s", iface)
	}

	if err := conn.SetPromiscuous(true); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "enabling promiscuous mode on %s", iface)
	}

	return &rawLink{name: iface, conn: conn}, nil
}

func (l *rawLink) Name() string {
	return l.name
}

func (l *rawLink) Send(frame []byte) error {
	if len(frame) < 6 {
		return errors.Errorf("frame of %d bytes has no destination", len(frame))
	}

	dst := &packet.Addr{HardwareAddr: net.HardwareAddr(frame[:6])}
	_, err := l.conn.WriteTo(frame, dst)

	return err
}

func (l *rawLink) Recv(buf []byte) (int, error) {
	n, _, err := l.conn.ReadFrom(buf)
	return n, err
}

func (l *rawLink) SetReadDeadline(t time.Time) error {
	return l.conn.SetReadDeadline(t)
}

func (l *rawLink) Close() error {
	return l.conn.Close()
}
