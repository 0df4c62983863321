package dut

import (
	"fmt"
	"log"

	"github.com/sarchlab/nftest/regmap"
	"github.com/sarchlab/nftest/sim"
	"go.uber.org/zap"
)

// Builder can build datapaths.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	cfg      Config
	lookup   Lookup
	logger   *zap.Logger
	designID regmap.Value
	version  regmap.Value
}

// MakeBuilder creates a builder with default sizes.
func MakeBuilder() Builder {
	return Builder{
		freq:    200 * sim.MHz,
		cfg:     DefaultConfig(),
		logger:  zap.NewNop(),
		version: 0x0100,
	}
}

// WithEngine sets the engine the datapath runs on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the device clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithConfig sets buffer sizes and lookup latency.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithLookup sets the design specific lookup logic.
func (b Builder) WithLookup(l Lookup) Builder {
	b.lookup = l
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	b.logger = logger
	return b
}

// WithDesignID sets the value of the ID registers.
func (b Builder) WithDesignID(id regmap.Value) Builder {
	b.designID = id
	return b
}

// Build creates a datapath.
func (b Builder) Build(name string) *Datapath {
	if b.engine == nil {
		log.Panic("datapath needs an engine")
	}

	if b.lookup == nil {
		log.Panic("datapath needs a lookup")
	}

	if err := b.cfg.Validate(); err != nil {
		log.Panic(err)
	}

	d := &Datapath{
		logger: b.logger.Named(name),
		lookup: b.lookup,
	}
	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)

	for i := 0; i < 2*NumPorts; i++ {
		d.inputs = append(d.inputs, sim.NewBuffer(
			fmt.Sprintf("%s.Input[%d]", name, i), b.cfg.InputBufferDepth))
	}

	d.arbiterOut = sim.NewBuffer(name+".ArbiterOut", 1)
	d.lookupOut = sim.NewBuffer(name+".LookupOut", 1)
	d.pipeline = newLookupPipeline(b.cfg.LookupLatency, d.lookupOut)

	for i := 0; i <= NumPorts; i++ {
		d.queues = append(d.queues, sim.NewBuffer(
			fmt.Sprintf("%s.OutputQueue[%d]", name, i), b.cfg.OutputQueueDepth))
	}

	b.buildRegisters(d)

	return d
}

func (b Builder) module(name string, base regmap.Addr) *counterModule {
	return &counterModule{
		name:    name,
		base:    base,
		id:      b.designID,
		version: b.version,
	}
}

func (b Builder) buildRegisters(d *Datapath) {
	d.regs = newRegisterFile()

	d.ia = b.module("input_arbiter", regmap.InputArbiterBase)

	d.opl = b.module("output_port_lookup", regmap.OutputPortLookupBase)
	d.opl.extraRead = d.lookup.ReadReg
	d.opl.extraWrite = d.lookup.WriteReg
	d.opl.onReset = d.lookup.Reset

	d.oq = b.module("output_queues", regmap.OutputQueuesBase)
	d.oq.extraRead = d.readOutputQueue
	d.oq.onReset = d.resetOutputQueues

	ifaceBases := []regmap.Addr{
		regmap.Interface0Base,
		regmap.Interface1Base,
		regmap.Interface2Base,
		regmap.Interface3Base,
	}
	for i, base := range ifaceBases {
		d.ifaces = append(d.ifaces,
			b.module(fmt.Sprintf("nf_10g_interface_%d", i), base))
	}

	d.dma = b.module("nf_riffa_dma", regmap.DMABase)

	d.regs.add(d.ia)
	d.regs.add(d.opl)
	d.regs.add(d.oq)

	for _, m := range d.ifaces {
		d.regs.add(m)
	}

	d.regs.add(d.dma)
}
