package vm

// devices.go has the MMIO device set: a shared VTTY framebuffer and the reserved
// legacy control byte.

import (
	"fmt"
	"sync"

	"github.com/larksim/lark/internal/log"
)

// VTTYBuffer is the shared 80x24 byte framebuffer. It is externally owned: the CPU's
// memory subsystem borrows it by contract (a non-owning handle passed in at
// construction), and a terminal renderer reads through the same cells. Access is
// serialized by the single-threaded execution loop; the mutex only guards the renderer
// reading concurrently with the CPU writing.
type VTTYBuffer struct {
	mu   sync.Mutex
	Cell [VTTYSize]byte
}

// NewVTTYBuffer allocates a zeroed framebuffer.
func NewVTTYBuffer() *VTTYBuffer {
	return &VTTYBuffer{}
}

// Snapshot copies the framebuffer contents out for rendering.
func (v *VTTYBuffer) Snapshot() [VTTYSize]byte {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.Cell
}

// MMIO dispatches accesses within the MMIO segment to the VTTY framebuffer or the
// reserved control byte. Addresses outside those ranges are unimplemented.
type MMIO struct {
	vtty    *VTTYBuffer
	control byte

	log *log.Logger
}

// NewMMIO builds an MMIO dispatcher backed by the given framebuffer.
func NewMMIO(vtty *VTTYBuffer) *MMIO {
	return &MMIO{
		vtty: vtty,
		log:  log.DefaultLogger(),
	}
}

// ReadByte reads a single MMIO byte.
func (m *MMIO) ReadByte(addr Word) (byte, error) {
	switch {
	case addr >= VTTYStart && addr <= VTTYEnd:
		m.vtty.mu.Lock()
		defer m.vtty.mu.Unlock()

		return m.vtty.Cell[addr-VTTYStart], nil
	case addr == ControlByteAddr:
		return m.control, nil
	default:
		return 0, fmt.Errorf("%w: read addr=%s", ErrUnimplemented, addr)
	}
}

// WriteByte writes a single MMIO byte. A write to the reserved control byte is stored and
// can be read back with ReadByte; it produces no character output.
func (m *MMIO) WriteByte(addr Word, v byte) error {
	switch {
	case addr >= VTTYStart && addr <= VTTYEnd:
		m.vtty.mu.Lock()
		defer m.vtty.mu.Unlock()

		m.vtty.Cell[addr-VTTYStart] = v

		return nil
	case addr == ControlByteAddr:
		m.control = v
		return nil
	default:
		return fmt.Errorf("%w: write addr=%s", ErrUnimplemented, addr)
	}
}

// ReadWord reads a big-endian MMIO word, except within VTTY where the device contract
// calls for a little-endian byte pair (see WriteWord).
func (m *MMIO) ReadWord(addr Word) (Word, error) {
	if addr >= VTTYStart && addr+1 <= VTTYEnd {
		lo, err := m.ReadByte(addr)
		if err != nil {
			return 0, err
		}

		hi, err := m.ReadByte(addr + 1)
		if err != nil {
			return 0, err
		}

		return Word(hi)<<8 | Word(lo), nil
	}

	hi, err := m.ReadByte(addr)
	if err != nil {
		return 0, err
	}

	lo, err := m.ReadByte(addr + 1)
	if err != nil {
		return 0, err
	}

	return Word(hi)<<8 | Word(lo), nil
}

// WriteWord writes a 16-bit value to an MMIO address. Within the VTTY range the device
// contract is little-endian: the low byte lands at addr, the high byte at addr+1. This
// is the opposite of main memory's big-endian word order and is a deliberate device
// quirk, not a bug.
func (m *MMIO) WriteWord(addr Word, w Word) error {
	if addr >= VTTYStart && addr+1 <= VTTYEnd {
		if err := m.WriteByte(addr, byte(w)); err != nil {
			return err
		}

		return m.WriteByte(addr+1, byte(w>>8))
	}

	if err := m.WriteByte(addr, byte(w>>8)); err != nil {
		return err
	}

	return m.WriteByte(addr+1, byte(w))
}
