package topology

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/nftest/fault"
)

// ParseConnections reads a connections file. Each non-comment line has the
// form "nfX:ethY" and states that the PHY side of nfX is cabled to host
// interface ethY. Text after '#' is ignored.
func ParseConnections(r io.Reader) (map[string]string, error) {
	conn := make(map[string]string)
	ifaces := make(map[string]string)

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		port, iface, ok := strings.Cut(line, ":")
		port = strings.TrimSpace(port)
		iface = strings.TrimSpace(iface)

		if !ok || port == "" || iface == "" {
			return nil, fault.Configf("connections",
				"line %d: expected port:iface, got %q", lineNo, line)
		}

		if _, dup := conn[port]; dup {
			return nil, fault.Configf("connections",
				"line %d: port %s connected twice", lineNo, port)
		}

		if other, dup := ifaces[iface]; dup {
			return nil, fault.Configf("connections",
				"line %d: interface %s already connected to %s",
				lineNo, iface, other)
		}

		conn[port] = iface
		ifaces[iface] = port
	}

	if err := scanner.Err(); err != nil {
		return nil, fault.New(fault.Configuration, "connections", err)
	}

	return conn, nil
}

// LoadConnections reads a connections file from disk.
func LoadConnections(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.New(fault.Configuration, "connections", err)
	}
	defer f.Close()

	return ParseConnections(f)
}
