package hardware

import (
	"time"

	"github.com/sarchlab/nftest/regmap"
)

// Config holds the hardware backend parameters.
type Config struct {
	// ResourcePath is the PCIe BAR resource file of the register window.
	ResourcePath string

	// WindowSize is the number of bytes to map. Zero maps the whole file.
	WindowSize int

	// BaseAddr is the bus address of the first byte of the window.
	BaseAddr regmap.Addr

	// ClockHz is the device clock used to convert cycle delays to wall time.
	ClockHz float64

	// ReadRetries bounds the re-reads of a register that returns all ones
	// or a busy status.
	ReadRetries   int
	RetryInterval time.Duration

	// VerifyWrites reads back every non reset write and reissues it until it
	// sticks or ReadRetries is exhausted.
	VerifyWrites bool

	// VerifyRetries and VerifyInterval control re-reads of counters that do
	// not match their expected value yet.
	VerifyRetries  int
	VerifyInterval time.Duration

	// QuietPeriod is how long the links must stay silent before the device
	// is considered drained.
	QuietPeriod  time.Duration
	DrainTimeout time.Duration

	// IdleRegister, when set, must read IdleValue before the device is
	// considered drained.
	IdleRegister *regmap.Addr
	IdleValue    regmap.Value

	// ReceiveTimeout is how long Receive waits for a frame.
	ReceiveTimeout time.Duration

	// PollInterval is the read deadline of the capture loop.
	PollInterval time.Duration
}

// DefaultConfig returns the parameters of a NetFPGA SUME board.
func DefaultConfig() Config {
	return Config{
		ResourcePath:   "/sys/bus/pci/devices/0000:01:00.0/resource0",
		BaseAddr:       0x44000000,
		ClockHz:        200e6,
		ReadRetries:    10,
		RetryInterval:  time.Millisecond,
		VerifyWrites:   true,
		VerifyRetries:  5,
		VerifyInterval: 100 * time.Millisecond,
		QuietPeriod:    200 * time.Millisecond,
		DrainTimeout:   10 * time.Second,
		ReceiveTimeout: 50 * time.Millisecond,
		PollInterval:   20 * time.Millisecond,
	}
}
