package hardware

import (
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// A RegisterBus performs 32-bit accesses at byte offsets into the device
// register window.
type RegisterBus interface {
	Read32(off uint32) (uint32, error)
	Write32(off uint32, v uint32) error
	Close() error
}

// A BusOpener maps the register window of a BAR resource file.
type BusOpener func(path string, size int) (RegisterBus, error)

func openMmapBus(path string, size int) (RegisterBus, error) {
	return OpenMmapBus(path, size)
}

// MmapBus accesses registers through a memory mapped PCIe BAR.
type MmapBus struct {
	file *os.File
	mem  []byte
}

// OpenMmapBus maps size bytes of a BAR resource file such as
// /sys/bus/pci/devices/0000:01:00.0/resource0.
func OpenMmapBus(path string, size int) (*MmapBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "opening register window %s", path)
	}

	if size <= 0 {
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "sizing register window %s", path)
		}

		size = int(st.Size())
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "mapping register window %s", path)
	}

	return &MmapBus{file: f, mem: mem}, nil
}

func (b *MmapBus) word(off uint32) (*uint32, error) {
	if off%4 != 0 || int(off)+4 > len(b.mem) {
		return nil, errors.Errorf("offset 0x%x outside register window of %d bytes",
			off, len(b.mem))
	}

	return (*uint32)(unsafe.Pointer(&b.mem[off])), nil
}

// Read32 reads one register.
func (b *MmapBus) Read32(off uint32) (uint32, error) {
	w, err := b.word(off)
	if err != nil {
		return 0, err
	}

	return atomic.LoadUint32(w), nil
}

// Write32 writes one register.
func (b *MmapBus) Write32(off uint32, v uint32) error {
	w, err := b.word(off)
	if err != nil {
		return err
	}

	atomic.StoreUint32(w, v)

	return nil
}

// Close unmaps the window.
func (b *MmapBus) Close() error {
	err := unix.Munmap(b.mem)
	if cerr := b.file.Close(); err == nil {
		err = cerr
	}

	return err
}
