package dut

import (
	"errors"
	"fmt"

	"github.com/sarchlab/nftest/regmap"
)

// ErrNoRegister is returned for accesses to unmapped addresses.
var ErrNoRegister = errors.New("no register at address")

const moduleMask regmap.Addr = 0xffff

// counterModule holds the registers every pipeline module exposes.
type counterModule struct {
	name    string
	base    regmap.Addr
	id      regmap.Value
	version regmap.Value
	flip    regmap.Value
	debug   regmap.Value
	pktIn   regmap.Value
	pktOut  regmap.Value

	// extra handles module specific offsets. It returns false when the
	// offset is not mapped.
	extraRead  func(off regmap.Addr) (regmap.Value, bool)
	extraWrite func(off regmap.Addr, v regmap.Value) bool
	onReset    func()
}

func (m *counterModule) read(off regmap.Addr) (regmap.Value, bool) {
	switch off {
	case regmap.OffID:
		return m.id, true
	case regmap.OffVersion:
		return m.version, true
	case regmap.OffReset:
		return 0, true
	case regmap.OffFlip:
		return ^m.flip, true
	case regmap.OffDebug:
		return m.debug, true
	case regmap.OffPktIn:
		return m.pktIn, true
	case regmap.OffPktOut:
		return m.pktOut, true
	}

	if m.extraRead != nil {
		return m.extraRead(off)
	}

	return 0, false
}

func (m *counterModule) write(off regmap.Addr, v regmap.Value) bool {
	switch off {
	case regmap.OffReset:
		if v != 0 {
			m.reset()
		}

		return true
	case regmap.OffFlip:
		m.flip = v
		return true
	case regmap.OffDebug:
		m.debug = v
		return true
	case regmap.OffID, regmap.OffVersion, regmap.OffPktIn, regmap.OffPktOut:
		return true
	}

	if m.extraWrite != nil {
		return m.extraWrite(off, v)
	}

	return false
}

func (m *counterModule) reset() {
	m.pktIn = 0
	m.pktOut = 0

	if m.onReset != nil {
		m.onReset()
	}
}

// registerFile dispatches accesses to the module that owns the address.
type registerFile struct {
	modules map[regmap.Addr]*counterModule
}

func newRegisterFile() *registerFile {
	return &registerFile{modules: make(map[regmap.Addr]*counterModule)}
}

func (f *registerFile) add(m *counterModule) {
	if _, dup := f.modules[m.base]; dup {
		panic(fmt.Sprintf("module base %s mapped twice", m.base))
	}

	f.modules[m.base] = m
}

func (f *registerFile) read(a regmap.Addr) (regmap.Value, error) {
	m, ok := f.modules[a&^moduleMask]
	if !ok {
		return 0, fmt.Errorf("%w %s", ErrNoRegister, a)
	}

	v, ok := m.read(a & moduleMask)
	if !ok {
		return 0, fmt.Errorf("%w %s", ErrNoRegister, a)
	}

	return v, nil
}

func (f *registerFile) write(a regmap.Addr, v regmap.Value) error {
	m, ok := f.modules[a&^moduleMask]
	if !ok {
		return fmt.Errorf("%w %s", ErrNoRegister, a)
	}

	if !m.write(a&moduleMask, v) {
		return fmt.Errorf("%w %s", ErrNoRegister, a)
	}

	return nil
}
