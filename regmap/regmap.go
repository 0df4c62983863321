// Package regmap resolves symbolic register names to the opaque addresses the
// harness passes to backends.
package regmap

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Addr is a register address in the device register space.
type Addr uint32

func (a Addr) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}

// Value is the content of a 32-bit register.
type Value uint32

func (v Value) String() string {
	return fmt.Sprintf("0x%x", uint32(v))
}

// A Register is a named address. ClearOnWrite marks reset and trigger
// registers whose write is an event rather than a stored value.
type Register struct {
	Name         string `yaml:"name"`
	Addr         Addr   `yaml:"addr"`
	ClearOnWrite bool   `yaml:"clear_on_write"`
}

// A Map is a symbolic register table.
type Map struct {
	name   string
	byName map[string]Register
	byAddr map[Addr]Register
}

// New creates a map from registers. Duplicate names or addresses are errors.
func New(name string, regs ...Register) (*Map, error) {
	m := &Map{
		name:   name,
		byName: make(map[string]Register),
		byAddr: make(map[Addr]Register),
	}

	for _, r := range regs {
		if err := m.add(r); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// MustNew is like New but panics on error. It is meant for static tables.
func MustNew(name string, regs ...Register) *Map {
	m, err := New(name, regs...)
	if err != nil {
		panic(err)
	}

	return m
}

func (m *Map) add(r Register) error {
	if r.Name == "" {
		return fmt.Errorf("register map %s: register at %s has no name",
			m.name, r.Addr)
	}

	if _, dup := m.byName[r.Name]; dup {
		return fmt.Errorf("register map %s: duplicate register %s", m.name, r.Name)
	}

	if other, dup := m.byAddr[r.Addr]; dup {
		return fmt.Errorf("register map %s: %s and %s share address %s",
			m.name, other.Name, r.Name, r.Addr)
	}

	m.byName[r.Name] = r
	m.byAddr[r.Addr] = r

	return nil
}

// Name returns the name of the map.
func (m *Map) Name() string {
	return m.name
}

// Addr resolves a register name.
func (m *Map) Addr(name string) (Addr, error) {
	r, ok := m.byName[name]
	if !ok {
		return 0, fmt.Errorf("register map %s: unknown register %s", m.name, name)
	}

	return r.Addr, nil
}

// MustAddr resolves a register name and panics if it does not exist.
func (m *Map) MustAddr(name string) Addr {
	a, err := m.Addr(name)
	if err != nil {
		panic(err)
	}

	return a
}

// Lookup returns the register at an address.
func (m *Map) Lookup(a Addr) (Register, bool) {
	r, ok := m.byAddr[a]
	return r, ok
}

// Describe returns the register name at an address, or the address itself.
func (m *Map) Describe(a Addr) string {
	if m == nil {
		return a.String()
	}

	if r, ok := m.byAddr[a]; ok {
		return r.Name
	}

	return a.String()
}

// IsClearOnWrite reports whether writes to the address are reset events.
func (m *Map) IsClearOnWrite(a Addr) bool {
	if m == nil {
		return false
	}

	return m.byAddr[a].ClearOnWrite
}

// Registers returns all registers ordered by address.
func (m *Map) Registers() []Register {
	regs := make([]Register, 0, len(m.byAddr))
	for _, r := range m.byAddr {
		regs = append(regs, r)
	}

	sort.Slice(regs, func(i, j int) bool { return regs[i].Addr < regs[j].Addr })

	return regs
}

type mapFile struct {
	Name      string     `yaml:"name"`
	Registers []Register `yaml:"registers"`
}

// LoadFile reads a register map from a YAML file of the form
//
//	name: reference_nic
//	registers:
//	  - name: SUME_INPUT_ARBITER_0_PKTIN
//	    addr: 0x44010014
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f mapFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing register map %s: %w", path, err)
	}

	if f.Name == "" {
		f.Name = path
	}

	return New(f.Name, f.Registers...)
}
