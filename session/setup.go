package session

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/sarchlab/nftest/backend"
	"github.com/sarchlab/nftest/backend/hardware"
	"github.com/sarchlab/nftest/backend/simulated"
	"github.com/sarchlab/nftest/config"
	"github.com/sarchlab/nftest/dut"
	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/sim"
	"github.com/sarchlab/nftest/topology"
)

func buildTopology(cfg config.Config) (*topology.Topology, error) {
	ports := topology.Standard(cfg.Ports)

	b := topology.MakeBuilder()

	switch cfg.BackendMode() {
	case backend.Sim:
		if cfg.Ports > dut.NumPorts {
			return nil, fault.Configf("topology",
				"the simulated device has %d ports, %d configured",
				dut.NumPorts, cfg.Ports)
		}

		b = b.WithLoopback(cfg.Sim.Loopback...)
	case backend.HW:
		for i := range ports {
			if iface, ok := cfg.HW.DMAIfaces[ports[i].Name]; ok {
				ports[i].DMAIface = iface
			}
		}

		if cfg.HW.Connections != "" {
			conn, err := topology.LoadConnections(cfg.HW.Connections)
			if err != nil {
				return nil, fault.Classify(fault.Configuration, "topology", err)
			}

			b = b.WithConnections(conn).WithConnectedPHYOnly()
		}
	}

	return b.WithPorts(ports...).Build()
}

func loadRegisters(cfg config.Config) (*regmap.Map, error) {
	var (
		m   *regmap.Map
		err error
	)

	if cfg.RegisterMap != "" {
		m, err = regmap.LoadFile(cfg.RegisterMap)
	} else {
		m, err = regmap.ForDesign(cfg.Design)
	}

	if err != nil {
		return nil, fault.New(fault.Configuration, "registers", err)
	}

	return m, nil
}

func newBackend(
	cfg config.Config,
	regs *regmap.Map,
	logger *zap.Logger,
) (backend.Backend, error) {
	switch cfg.BackendMode() {
	case backend.Sim:
		return newSimBackend(cfg, logger)
	case backend.HW:
		hw, err := hardwareConfig(cfg.HW, regs)
		if err != nil {
			return nil, err
		}

		return hardware.MakeBuilder().
			WithConfig(hw).
			WithRegisters(regs).
			WithLogger(logger).
			Build(), nil
	default:
		return nil, fault.Configf("backend", "unknown mode %q", cfg.Mode)
	}
}

func newSimBackend(cfg config.Config, logger *zap.Logger) (backend.Backend, error) {
	model := dut.DefaultConfig()

	if cfg.Sim.ModelConfig != "" {
		var err error

		model, err = dut.LoadConfig(cfg.Sim.ModelConfig)
		if err != nil {
			return nil, fault.New(fault.Configuration, "model config", err)
		}
	}

	b, err := simulated.MakeBuilder().
		WithDesign(cfg.Design).
		WithFreq(sim.Freq(cfg.Sim.FreqMHz) * sim.MHz).
		WithModelConfig(model).
		WithLoopLatency(cfg.Sim.LoopLatency).
		WithDrainMargin(cfg.Sim.DrainMargin).
		WithSettleBudget(cfg.Sim.SettleBudget).
		WithEventTracing(cfg.Sim.TraceEvents).
		WithLogger(logger).
		Build()
	if err != nil {
		return nil, fault.New(fault.Configuration, "backend", err)
	}

	return b, nil
}

func hardwareConfig(c config.HW, regs *regmap.Map) (hardware.Config, error) {
	hw := hardware.Config{
		ResourcePath:   c.Resource,
		WindowSize:     c.WindowSize,
		BaseAddr:       regmap.Addr(c.BaseAddr),
		ClockHz:        c.ClockHz,
		ReadRetries:    c.ReadRetries,
		RetryInterval:  c.RetryInterval,
		VerifyWrites:   c.VerifyWrites,
		VerifyRetries:  c.VerifyRetries,
		VerifyInterval: c.VerifyInterval,
		QuietPeriod:    c.QuietPeriod,
		DrainTimeout:   c.DrainTimeout,
		IdleValue:      regmap.Value(c.IdleValue),
		ReceiveTimeout: c.ReceiveTimeout,
		PollInterval:   c.PollInterval,
	}

	if c.IdleRegister != "" {
		addr, err := resolveAddr(c.IdleRegister, regs)
		if err != nil {
			return hw, err
		}

		hw.IdleRegister = &addr
	}

	return hw, nil
}

// resolveAddr accepts a register name or a numeric address.
func resolveAddr(s string, regs *regmap.Map) (regmap.Addr, error) {
	if addr, err := regs.Addr(s); err == nil {
		return addr, nil
	}

	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fault.Configf("registers", "unknown register %q", s)
	}

	return regmap.Addr(n), nil
}
