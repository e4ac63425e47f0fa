package vm

// loader.go loads a flat ROM image into the CPU's ROM segment.

import (
	"errors"
	"fmt"
)

var ErrROMTooLarge = errors.New("rom too large")

// LoadROM loads a flat byte image into ROM, starting at ROMStart. The image must be no
// larger than ROMSize; a larger image fails before the engine starts running.
func (cpu *CPU) LoadROM(image []byte) error {
	if len(image) > ROMSize {
		return fmt.Errorf("%w: image is %d bytes, rom has %d bytes", ErrROMTooLarge, len(image), ROMSize)
	}

	cpu.Mem.LoadROM(image)
	cpu.PC = ROMStart

	return nil
}
