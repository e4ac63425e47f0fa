package vm

// mem.go is the segmented, byte-addressable memory controller.

import (
	"errors"
	"fmt"

	"github.com/larksim/lark/internal/log"
)

// Segment boundaries of the fixed 64 KiB address space. Each segment begins where the
// previous one ends and is sized exactly as the memory map in the machine's data model.
const (
	MMIOStart Word = 0x0000
	MMIOEnd   Word = 0x07FF // 2 KiB

	ROMStart Word = MMIOEnd + 1
	ROMEnd   Word = ROMStart + 0x0FFF // 4 KiB
	ROMSize       = int(ROMEnd) - int(ROMStart) + 1

	UserStart Word = ROMEnd + 1
	UserEnd   Word = UserStart + 0xD7FF // 54 KiB

	KernelStart Word = UserEnd + 1
	KernelEnd   Word = 0xFFFF // 4 KiB

	// ControlByteAddr is the single reserved legacy character-out control byte, at MMIO
	// address 1.
	ControlByteAddr Word = MMIOStart + 1

	// VTTYStart..VTTYEnd is the 80x24 shared framebuffer within the MMIO segment,
	// immediately following the reserved control byte.
	VTTYStart Word = ControlByteAddr + 1
	VTTYCols       = 80
	VTTYRows       = 24
	VTTYSize       = VTTYCols * VTTYRows
	VTTYEnd   Word = VTTYStart + VTTYSize - 1
)

// Interrupt vector table addresses, at the top of kernel memory.
const (
	VectorIllegalInstr Word = 0xFFFE
	VectorDivByZero    Word = 0xFFFC
	VectorKeyboard     Word = 0xFFFA
	VectorTimer        Word = 0xFFF8
)

var (
	ErrAccessOverflow = errors.New("address overflow")
	ErrUnimplemented  = errors.New("unimplemented mmio")
)

// Memory dispatches byte and word accesses across the MMIO, ROM, user RAM, and kernel RAM
// segments. ROM is immutable after load; the other segments are mutable. Words are stored
// big-endian: the byte at address N is the high 8 bits, N+1 the low 8 bits.
type Memory struct {
	rom    [ROMSize]byte
	user   [int(UserEnd) - int(UserStart) + 1]byte
	kernel [int(KernelEnd) - int(KernelStart) + 1]byte

	Devices *MMIO

	log *log.Logger
}

// NewMemory builds a memory controller with an empty ROM and the given MMIO device set.
func NewMemory(devices *MMIO) *Memory {
	return &Memory{
		Devices: devices,
		log:     log.DefaultLogger(),
	}
}

// LoadROM copies a program image into the ROM segment. The image must fit within
// ROMSize bytes; the loader (loader.go) enforces this before calling LoadROM.
func (m *Memory) LoadROM(image []byte) {
	copy(m.rom[:], image)
}

// ReadU8 reads a single byte at addr.
func (m *Memory) ReadU8(addr Word) (byte, error) {
	switch {
	case addr <= MMIOEnd:
		return m.Devices.ReadByte(addr)
	case addr <= ROMEnd:
		return m.rom[addr-ROMStart], nil
	case addr <= UserEnd:
		return m.user[addr-UserStart], nil
	default:
		return m.kernel[addr-KernelStart], nil
	}
}

// WriteU8 writes a single byte at addr. Writes into ROM are silently discarded, since ROM
// is immutable after load and no instruction in the ISA can target it as a store
// destination under normal program flow.
func (m *Memory) WriteU8(addr Word, v byte) error {
	switch {
	case addr <= MMIOEnd:
		return m.Devices.WriteByte(addr, v)
	case addr <= ROMEnd:
		return nil
	case addr <= UserEnd:
		m.user[addr-UserStart] = v
		return nil
	default:
		m.kernel[addr-KernelStart] = v
		return nil
	}
}

// ReadWord reads the big-endian word at addr, addr+1.
func (m *Memory) ReadWord(addr Word) (Word, error) {
	if addr <= MMIOEnd && addr+1 <= MMIOEnd {
		return m.Devices.ReadWord(addr)
	}

	hi, err := m.ReadU8(addr)
	if err != nil {
		return 0, fmt.Errorf("read word %s: %w", addr, err)
	}

	lo, err := m.ReadU8(addr + 1)
	if err != nil {
		return 0, fmt.Errorf("read word %s: %w", addr, err)
	}

	return Word(hi)<<8 | Word(lo), nil
}

// WriteWord writes w as a big-endian pair of bytes at addr, addr+1.
func (m *Memory) WriteWord(addr Word, w Word) error {
	if addr <= MMIOEnd && addr+1 <= MMIOEnd {
		return m.Devices.WriteWord(addr, w)
	}

	if err := m.WriteU8(addr, byte(w>>8)); err != nil {
		return fmt.Errorf("write word %s: %w", addr, err)
	}

	if err := m.WriteU8(addr+1, byte(w)); err != nil {
		return fmt.Errorf("write word %s: %w", addr, err)
	}

	return nil
}

// EffectiveAddress computes base + sign-extend(offset) as 32-bit arithmetic and requires
// the result fit in 16 bits. An out-of-range result is a programming error at this level
// and is reported as ErrAccessOverflow, which the engine treats as fatal.
func EffectiveAddress(base Word, offset Word) (Word, error) {
	ea := int32(base) + int32(int16(offset))

	if ea < 0 || ea > 0xFFFF {
		return 0, fmt.Errorf("%w: base=%s offset=%s", ErrAccessOverflow, base, offset)
	}

	return Word(ea), nil
}
