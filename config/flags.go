package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"mode":           "mode",
	"design":         "design",
	"ports":          "ports",
	"ignore-padding": "ignore_padding",
	"loopback":       "sim.loopback",
	"model-config":   "sim.model_config",
	"connections":    "hw.connections",
	"resource":       "hw.resource",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"record":         "record.enabled",
	"record-path":    "record.path",
	"monitor":        "monitor.enabled",
	"monitor-port":   "monitor.port",
	"open-browser":   "monitor.open_browser",
}

// RegisterFlags adds the configuration flags to a flag set. Flag defaults are
// zero values, only flags changed on the command line take effect.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("mode", "", "backend: sim or hw")
	fs.String("design", "", "device design, e.g. reference_nic")
	fs.Int("ports", 0, "number of nf ports")
	fs.Bool("ignore-padding", false, "ignore zero padding when comparing packets")
	fs.StringSlice("loopback", nil, "ports whose PHY egress loops back in simulation")
	fs.String("model-config", "", "device model YAML file")
	fs.String("connections", "", "hardware connections file (nfX:ethY lines)")
	fs.String("resource", "", "PCIe resource file of the register window")
	fs.String("log-level", "", "log level")
	fs.String("log-format", "", "log format: console or json")
	fs.Bool("record", false, "record results into a database")
	fs.String("record-path", "", "database file name")
	fs.Bool("monitor", false, "serve the monitoring API")
	fs.Int("monitor-port", 0, "monitoring port, 0 picks a free one")
	fs.Bool("open-browser", false, "open the monitoring page in a browser")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}

	return nil
}
