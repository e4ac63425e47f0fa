package vm

import (
	"errors"
	"testing"
)

func TestLoadROMSetsPC(t *testing.T) {
	th := NewTestHarness(t)
	cpu := th.Make()

	rom := asm(nil, LI, T0, Zero, Zero, 7)
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	if err := cpu.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	if cpu.PC != ROMStart {
		t.Errorf("pc = %s, want %s", cpu.PC, ROMStart)
	}
}

func TestLoadROMTooLargeFails(t *testing.T) {
	th := NewTestHarness(t)
	cpu := th.Make()

	image := make([]byte, ROMSize+1)

	err := cpu.LoadROM(image)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, ErrROMTooLarge) {
		t.Errorf("got %v, want wrapping %v", err, ErrROMTooLarge)
	}
}

func TestLoadROMExactSizeSucceeds(t *testing.T) {
	th := NewTestHarness(t)
	cpu := th.Make()

	image := make([]byte, ROMSize)

	if err := cpu.LoadROM(image); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
}
