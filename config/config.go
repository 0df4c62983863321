// Package config loads the harness configuration from a file, NFTEST_*
// environment variables, and command line flags, in increasing priority.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/logging"
)

// EnvPrefix prefixes every environment variable, e.g. NFTEST_SIM_LOOP_LATENCY.
const EnvPrefix = "NFTEST"

// Config is the complete harness configuration.
type Config struct {
	Mode          string         `mapstructure:"mode"`
	Design        string         `mapstructure:"design"`
	Ports         int            `mapstructure:"ports"`
	IgnorePadding bool           `mapstructure:"ignore_padding"`
	RegisterMap   string         `mapstructure:"register_map"`
	Sim           Sim            `mapstructure:"sim"`
	HW            HW             `mapstructure:"hw"`
	Log           logging.Config `mapstructure:"log"`
	Record        Record         `mapstructure:"record"`
	Monitor       Monitor        `mapstructure:"monitor"`
}

// Sim configures the simulation backend.
type Sim struct {
	Loopback     []string `mapstructure:"loopback"`
	ModelConfig  string   `mapstructure:"model_config"`
	FreqMHz      float64  `mapstructure:"freq_mhz"`
	LoopLatency  uint64   `mapstructure:"loop_latency"`
	DrainMargin  uint64   `mapstructure:"drain_margin"`
	SettleBudget uint64   `mapstructure:"settle_budget"`
	TraceEvents  bool     `mapstructure:"trace_events"`
}

// HW configures the hardware backend.
type HW struct {
	Connections    string            `mapstructure:"connections"`
	DMAIfaces      map[string]string `mapstructure:"dma_ifaces"`
	Resource       string            `mapstructure:"resource"`
	WindowSize     int               `mapstructure:"window_size"`
	BaseAddr       uint32            `mapstructure:"base_addr"`
	ClockHz        float64           `mapstructure:"clock_hz"`
	ReadRetries    int               `mapstructure:"read_retries"`
	RetryInterval  time.Duration     `mapstructure:"retry_interval"`
	VerifyWrites   bool              `mapstructure:"verify_writes"`
	VerifyRetries  int               `mapstructure:"verify_retries"`
	VerifyInterval time.Duration     `mapstructure:"verify_interval"`
	QuietPeriod    time.Duration     `mapstructure:"quiet_period"`
	DrainTimeout   time.Duration     `mapstructure:"drain_timeout"`
	IdleRegister   string            `mapstructure:"idle_register"`
	IdleValue      uint32            `mapstructure:"idle_value"`
	ReceiveTimeout time.Duration     `mapstructure:"receive_timeout"`
	PollInterval   time.Duration     `mapstructure:"poll_interval"`
}

// Record configures result recording.
type Record struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
}

// Monitor configures the introspection server.
type Monitor struct {
	Enabled     bool `mapstructure:"enabled"`
	Port        int  `mapstructure:"port"`
	OpenBrowser bool `mapstructure:"open_browser"`
}

// Default returns a configuration that runs the reference NIC in simulation.
func Default() Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	log := logging.DefaultConfig()

	defaults := map[string]any{
		"mode":           string(backend.Sim),
		"design":         "reference_nic",
		"ports":          4,
		"ignore_padding": false,
		"register_map":   "",

		"sim.loopback":      []string{},
		"sim.model_config":  "",
		"sim.freq_mhz":      200.0,
		"sim.loop_latency":  10,
		"sim.drain_margin":  100,
		"sim.settle_budget": 1_000_000,
		"sim.trace_events":  false,

		"hw.connections":     "",
		"hw.dma_ifaces":      map[string]string{},
		"hw.resource":        "/sys/bus/pci/devices/0000:01:00.0/resource0",
		"hw.window_size":     0,
		"hw.base_addr":       0x44000000,
		"hw.clock_hz":        200e6,
		"hw.read_retries":    10,
		"hw.retry_interval":  time.Millisecond,
		"hw.verify_writes":   true,
		"hw.verify_retries":  5,
		"hw.verify_interval": 100 * time.Millisecond,
		"hw.quiet_period":    200 * time.Millisecond,
		"hw.drain_timeout":   10 * time.Second,
		"hw.idle_register":   "",
		"hw.idle_value":      0,
		"hw.receive_timeout": 50 * time.Millisecond,
		"hw.poll_interval":   20 * time.Millisecond,

		"log.level":       log.Level,
		"log.format":      log.Format,
		"log.development": log.Development,
		"log.output":      log.Output,

		"record.enabled": false,
		"record.driver":  "sqlite",
		"record.path":    "",
		"record.dsn":     "",

		"monitor.enabled":      false,
		"monitor.port":         0,
		"monitor.open_browser": false,
	}

	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Options control where Load looks.
type Options struct {
	// File is an optional configuration file. Its type follows the
	// extension.
	File string

	// EnvFile is loaded into the environment before variables are read. A
	// missing file is ignored.
	EnvFile string

	// Flags, when set, override every other source for the flags that were
	// changed on the command line.
	Flags *pflag.FlagSet
}

// Load reads the configuration and validates it.
func Load(opts Options) (Config, error) {
	var cfg Config

	if opts.EnvFile != "" {
		err := godotenv.Load(opts.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fault.New(fault.Configuration, "config", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)

		if err := v.ReadInConfig(); err != nil {
			return cfg, fault.New(fault.Configuration, "config", err)
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return cfg, fault.New(fault.Configuration, "config", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fault.New(fault.Configuration, "config", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the values that do not depend on the selected design.
func (c Config) Validate() error {
	mode, err := backend.ParseMode(c.Mode)
	if err != nil {
		return fault.New(fault.Configuration, "config", err)
	}

	if c.Design == "" {
		return fault.Configf("config", "design is required")
	}

	if c.Ports < 1 {
		return fault.Configf("config", "ports must be positive, got %d", c.Ports)
	}

	switch mode {
	case backend.Sim:
		if c.Sim.FreqMHz <= 0 {
			return fault.Configf("config", "sim.freq_mhz must be positive")
		}
	case backend.HW:
		if c.HW.Resource == "" {
			return fault.Configf("config", "hw.resource is required in hw mode")
		}

		if c.HW.ClockHz <= 0 {
			return fault.Configf("config", "hw.clock_hz must be positive")
		}
	}

	switch c.Record.Driver {
	case "sqlite", "clickhouse":
	default:
		return fault.Configf("config",
			"record.driver %q, want sqlite or clickhouse", c.Record.Driver)
	}

	return nil
}

// BackendMode returns the validated mode.
func (c Config) BackendMode() backend.Mode {
	return backend.Mode(c.Mode)
}
