package regmap

import "fmt"

// Base addresses of the reference pipeline modules on the AXI-lite bus.
const (
	InputArbiterBase     Addr = 0x44010000
	OutputPortLookupBase Addr = 0x44020000
	OutputQueuesBase     Addr = 0x44030000
	Interface0Base       Addr = 0x44040000
	Interface1Base       Addr = 0x44050000
	Interface2Base       Addr = 0x44060000
	Interface3Base       Addr = 0x44070000
	DMABase              Addr = 0x44080000
)

// Offsets shared by every module.
const (
	OffID      Addr = 0x00
	OffVersion Addr = 0x04
	OffReset   Addr = 0x08
	OffFlip    Addr = 0x0c
	OffDebug   Addr = 0x10
	OffPktIn   Addr = 0x14
	OffPktOut  Addr = 0x18
)

// Output queue counter offsets. Port n of each group is at base + 4*n.
const (
	OffPktStoredPort0  Addr = 0x1c
	OffPktRemovedPort0 Addr = 0x30
	OffPktDroppedPort0 Addr = 0x44
)

// OutputQueuesPortCount is the number of output queues: four PHY and one DMA.
const OutputQueuesPortCount = 5

// Reference router output port lookup registers.
const (
	OffARPMissCntr         Addr = 0x1c
	OffLPMMissCntr         Addr = 0x20
	OffNonIPCntr           Addr = 0x24
	OffBadTTLCntr          Addr = 0x28
	OffDestIPHitCntr       Addr = 0x2c
	OffForwardedCntr       Addr = 0x30
	OffDroppedChecksumCntr Addr = 0x34
	OffDroppedWrongDstMAC  Addr = 0x38
	OffMACBase             Addr = 0x40
	OffLPMIP               Addr = 0x60
	OffLPMMask             Addr = 0x64
	OffLPMNextHopIP        Addr = 0x68
	OffLPMOutputPort       Addr = 0x6c
	OffLPMWrAddr           Addr = 0x70
	OffLPMRdAddr           Addr = 0x74
	OffARPIP               Addr = 0x80
	OffARPMACHi            Addr = 0x84
	OffARPMACLo            Addr = 0x88
	OffARPWrAddr           Addr = 0x8c
	OffARPRdAddr           Addr = 0x90
	OffFilterIP            Addr = 0xa0
	OffFilterWrAddr        Addr = 0xa4
	OffFilterRdAddr        Addr = 0xa8
)

// Router table sizes.
const (
	RouterTableDepth = 32
	RouterPortCount  = 4
)

// Register names used by the regression scripts.
const (
	InputArbiterPktIn      = "SUME_INPUT_ARBITER_0_PKTIN"
	InputArbiterPktOut     = "SUME_INPUT_ARBITER_0_PKTOUT"
	InputArbiterReset      = "SUME_INPUT_ARBITER_0_RESET"
	OutputPortLookupPktIn  = "SUME_OUTPUT_PORT_LOOKUP_0_PKTIN"
	OutputPortLookupPktOut = "SUME_OUTPUT_PORT_LOOKUP_0_PKTOUT"
	OutputPortLookupReset  = "SUME_OUTPUT_PORT_LOOKUP_0_RESET"
	OutputQueuesPktIn      = "SUME_OUTPUT_QUEUES_0_PKTIN"
	OutputQueuesPktOut     = "SUME_OUTPUT_QUEUES_0_PKTOUT"
	OutputQueuesReset      = "SUME_OUTPUT_QUEUES_0_RESET"
	Interface0Reset        = "SUME_NF_10G_INTERFACE_SHARED_0_RESET"
	Interface1Reset        = "SUME_NF_10G_INTERFACE_1_RESET"
	Interface2Reset        = "SUME_NF_10G_INTERFACE_2_RESET"
	Interface3Reset        = "SUME_NF_10G_INTERFACE_3_RESET"
	DMAReset               = "SUME_NF_RIFFA_DMA_0_RESET"
	ARPMissCntr            = "SUME_OUTPUT_PORT_LOOKUP_0_PKT_SENT_TO_CPU_ARP_MISS_CNTR"
)

// PktStoredPort names the output queue stored counter of port n.
func PktStoredPort(n int) string {
	return fmt.Sprintf("SUME_OUTPUT_QUEUES_0_PKTSTOREDPORT%d", n)
}

// PktRemovedPort names the output queue removed counter of port n.
func PktRemovedPort(n int) string {
	return fmt.Sprintf("SUME_OUTPUT_QUEUES_0_PKTREMOVEDPORT%d", n)
}

// PktDroppedPort names the output queue dropped counter of port n.
func PktDroppedPort(n int) string {
	return fmt.Sprintf("SUME_OUTPUT_QUEUES_0_PKTDROPPEDPORT%d", n)
}

type module struct {
	prefix string
	base   Addr
}

var commonModules = []module{
	{"SUME_INPUT_ARBITER_0", InputArbiterBase},
	{"SUME_OUTPUT_PORT_LOOKUP_0", OutputPortLookupBase},
	{"SUME_OUTPUT_QUEUES_0", OutputQueuesBase},
	{"SUME_NF_10G_INTERFACE_SHARED_0", Interface0Base},
	{"SUME_NF_10G_INTERFACE_1", Interface1Base},
	{"SUME_NF_10G_INTERFACE_2", Interface2Base},
	{"SUME_NF_10G_INTERFACE_3", Interface3Base},
	{"SUME_NF_RIFFA_DMA_0", DMABase},
}

func commonRegisters() []Register {
	var regs []Register

	for _, m := range commonModules {
		regs = append(regs,
			Register{Name: m.prefix + "_ID", Addr: m.base + OffID},
			Register{Name: m.prefix + "_VERSION", Addr: m.base + OffVersion},
			Register{Name: m.prefix + "_RESET", Addr: m.base + OffReset,
				ClearOnWrite: true},
			Register{Name: m.prefix + "_FLIP", Addr: m.base + OffFlip},
			Register{Name: m.prefix + "_DEBUG", Addr: m.base + OffDebug},
			Register{Name: m.prefix + "_PKTIN", Addr: m.base + OffPktIn},
			Register{Name: m.prefix + "_PKTOUT", Addr: m.base + OffPktOut},
		)
	}

	for n := 0; n < OutputQueuesPortCount; n++ {
		off := Addr(4 * n)
		regs = append(regs,
			Register{Name: PktStoredPort(n),
				Addr: OutputQueuesBase + OffPktStoredPort0 + off},
			Register{Name: PktRemovedPort(n),
				Addr: OutputQueuesBase + OffPktRemovedPort0 + off},
			Register{Name: PktDroppedPort(n),
				Addr: OutputQueuesBase + OffPktDroppedPort0 + off},
		)
	}

	return regs
}

func routerRegisters() []Register {
	opl := func(name string, off Addr) Register {
		return Register{
			Name: "SUME_OUTPUT_PORT_LOOKUP_0_" + name,
			Addr: OutputPortLookupBase + off,
		}
	}

	// Writing an index to a WR_ADDR or RD_ADDR register triggers a table
	// transfer. The register does not hold the value.
	trigger := func(name string, off Addr) Register {
		r := opl(name, off)
		r.ClearOnWrite = true

		return r
	}

	regs := []Register{
		opl("PKT_SENT_TO_CPU_ARP_MISS_CNTR", OffARPMissCntr),
		opl("PKT_SENT_TO_CPU_LPM_MISS_CNTR", OffLPMMissCntr),
		opl("PKT_SENT_TO_CPU_NON_IP_CNTR", OffNonIPCntr),
		opl("PKT_SENT_TO_CPU_BAD_TTL_CNTR", OffBadTTLCntr),
		opl("PKT_SENT_TO_CPU_DEST_IP_HIT_CNTR", OffDestIPHitCntr),
		opl("PKT_FORWARDED_CNTR", OffForwardedCntr),
		opl("PKT_DROPPED_CHECKSUM_CNTR", OffDroppedChecksumCntr),
		opl("PKT_DROPPED_WRONG_DST_MAC_CNTR", OffDroppedWrongDstMAC),
		opl("LPM_IP", OffLPMIP),
		opl("LPM_IP_MASK", OffLPMMask),
		opl("LPM_NEXT_HOP_IP", OffLPMNextHopIP),
		opl("LPM_OQ", OffLPMOutputPort),
		trigger("LPM_WR_ADDR", OffLPMWrAddr),
		trigger("LPM_RD_ADDR", OffLPMRdAddr),
		opl("ARP_IP", OffARPIP),
		opl("ARP_MAC_HI", OffARPMACHi),
		opl("ARP_MAC_LOW", OffARPMACLo),
		trigger("ARP_WR_ADDR", OffARPWrAddr),
		trigger("ARP_RD_ADDR", OffARPRdAddr),
		opl("DEST_IP_FILTER_IP", OffFilterIP),
		trigger("DEST_IP_FILTER_WR_ADDR", OffFilterWrAddr),
		trigger("DEST_IP_FILTER_RD_ADDR", OffFilterRdAddr),
	}

	for i := 0; i < RouterPortCount; i++ {
		regs = append(regs,
			opl(fmt.Sprintf("MAC_%d_HI", i), MACHiOffset(i)),
			opl(fmt.Sprintf("MAC_%d_LOW", i), MACHiOffset(i)+4),
		)
	}

	return regs
}

// MACHiOffset returns the offset of the upper half of router port i's MAC.
// The lower four bytes follow at the next word.
func MACHiOffset(i int) Addr {
	return OffMACBase + Addr(8*i)
}

// ReferenceNIC returns the register map of the reference NIC design.
func ReferenceNIC() *Map {
	return MustNew("reference_nic", commonRegisters()...)
}

// ReferenceRouter returns the register map of the reference router design.
func ReferenceRouter() *Map {
	return MustNew("reference_router",
		append(commonRegisters(), routerRegisters()...)...)
}

// ForDesign returns the built-in map of a design.
func ForDesign(design string) (*Map, error) {
	switch design {
	case "reference_nic":
		return ReferenceNIC(), nil
	case "reference_router":
		return ReferenceRouter(), nil
	default:
		return nil, fmt.Errorf("no built-in register map for design %q", design)
	}
}
