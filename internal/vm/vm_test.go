package vm

import "testing"

func run(t *testing.T, rom []byte, maxSteps int) *CPU {
	t.Helper()

	th := NewTestHarness(t)
	cpu := th.Make()

	if err := cpu.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	for i := 0; i < maxSteps; i++ {
		if cpu.Mode() == Halted {
			return cpu
		}

		if err := cpu.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	t.Fatalf("program did not halt within %d steps", maxSteps)

	return nil
}

// LI t0, 19; LI t1, 23; ADD t2, t0, t1; HALT.
func TestAddTwoImmediatesTo42(t *testing.T) {
	rom := asm(nil, LI, T0, Zero, Zero, 19)
	rom = asm(rom, LI, T1, Zero, Zero, 23)
	rom = asm(rom, ADD, T2, T0, T1, 0)
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	cpu := run(t, rom, 10)

	if got := cpu.Regs.Get(T2); got.Signed() != 42 {
		t.Errorf("t2 = %s (%d), want 42", got, got.Signed())
	}
}

// LI t0, 32767; ADDI t0, t0, 1 wraps to -32768.
func TestSignedAddWrapsTwosComplement(t *testing.T) {
	rom := asm(nil, LI, T0, Zero, Zero, Word(int16(32767)))
	rom = asm(rom, ADDI, T0, T0, Zero, 1)
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	cpu := run(t, rom, 10)

	got := cpu.Regs.Get(T0)
	if got.Signed() != -32768 {
		t.Errorf("t0 signed = %d, want -32768", got.Signed())
	}

	if got.Unsigned() != 0x8000 {
		t.Errorf("t0 = %s, want 0x8000", got)
	}
}

// Store a word into user RAM, confirm the two bytes land big-endian, and load it back.
func TestLoadStoreRoundTripIsBigEndian(t *testing.T) {
	rom := asm(nil, LI, T0, Zero, Zero, UserStart)
	rom = asm(rom, LI, T1, Zero, Zero, 0x1234)
	rom = asm(rom, SW, T0, T1, Zero, 0)
	rom = asm(rom, LBU, T2, T0, Zero, 0)
	rom = asm(rom, LBU, S0, T0, Zero, 1)
	rom = asm(rom, LW, S1, T0, Zero, 0)
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	cpu := run(t, rom, 20)

	if got := cpu.Regs.Get(T2); got.Unsigned() != 0x12 {
		t.Errorf("high byte = %s, want 0x12", got)
	}

	if got := cpu.Regs.Get(S0); got.Unsigned() != 0x34 {
		t.Errorf("low byte = %s, want 0x34", got)
	}

	if got := cpu.Regs.Get(S1); got.Unsigned() != 0x1234 {
		t.Errorf("reloaded word = %s, want 0x1234", got)
	}
}

// Writes targeting the zero register are discarded; it always reads zero.
func TestZeroRegisterIsImmutable(t *testing.T) {
	rom := asm(nil, LI, T0, Zero, Zero, 9)
	rom = asm(rom, ADD, Zero, T0, T0, 0)
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	cpu := run(t, rom, 10)

	if got := cpu.Regs.Get(Zero); got != ZeroWord {
		t.Errorf("zero = %s, want 0", got)
	}
}

// LI a0, 7; EXN DEBUG_BREAKPOINT emits a breakpoint signal carrying the line.
func TestDebugBreakpointExceptionEmitsSignal(t *testing.T) {
	rom := asm(nil, LI, A0, Zero, Zero, 7)
	rom = asm(rom, EXN, Zero, Zero, Zero, ExnDebugBreakpoint)
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	cpu := run(t, rom, 10)

	var found *Signal

	for {
		select {
		case sig := <-cpu.Signals():
			if sig.Kind == SigBreakpoint {
				s := sig
				found = &s
			}

			continue
		default:
		}

		break
	}

	if found == nil {
		t.Fatal("no breakpoint signal observed")
	}

	if found.Line != 7 {
		t.Errorf("line = %d, want 7", found.Line)
	}
}

// An EXN with a code outside the defined exception table is a fatal execution error.
func TestReservedExceptionCodeFails(t *testing.T) {
	th := NewTestHarness(t)
	cpu := th.Make()

	rom := asm(nil, EXN, Zero, Zero, Zero, 0x3FF)
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	if err := cpu.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	if err := cpu.Step(); err == nil {
		t.Fatal("expected error for reserved exception code, got nil")
	}
}

// Dividing by zero does not halt the engine or disturb Hi/Lo; it emits a log signal and
// execution continues.
func TestDivideByZeroIsNonFatal(t *testing.T) {
	rom := asm(nil, LI, T0, Zero, Zero, 10)
	rom = asm(rom, DIV, T0, Zero, Zero, 0) // rs=t0=10, rt=zero=0
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	cpu := run(t, rom, 10)

	if cpu.Hi != ZeroWord || cpu.Lo != ZeroWord {
		t.Errorf("hi/lo = %s/%s, want both zero", cpu.Hi, cpu.Lo)
	}
}

// HALT leaves pc unchanged and emits exactly one halt signal.
func TestHaltLeavesPCUnchanged(t *testing.T) {
	th := NewTestHarness(t)
	cpu := th.Make()

	rom := asm(nil, HALT, Zero, Zero, Zero, 0)
	if err := cpu.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	pc := cpu.PC

	if err := cpu.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if cpu.PC != pc {
		t.Errorf("pc = %s, want unchanged %s", cpu.PC, pc)
	}

	if cpu.Mode() != Halted {
		t.Errorf("mode = %s, want halted", cpu.Mode())
	}

	halts := 0

drain:
	for {
		select {
		case sig := <-cpu.Signals():
			if sig.Kind == SigHalt {
				halts++
			}
		default:
			break drain
		}
	}

	if halts != 1 {
		t.Errorf("halt signals = %d, want 1", halts)
	}
}

// Comparisons yield only the canonical 0/1 words.
func TestComparisonsYieldCanonicalBool(t *testing.T) {
	rom := asm(nil, LI, T0, Zero, Zero, 3)
	rom = asm(rom, LI, T1, Zero, Zero, 5)
	rom = asm(rom, TLT, T2, T0, T1, 0)
	rom = asm(rom, TGE, S0, T0, T1, 0)
	rom = asm(rom, HALT, Zero, Zero, Zero, 0)

	cpu := run(t, rom, 10)

	if got := cpu.Regs.Get(T2); got != Word(1) {
		t.Errorf("3 < 5 = %s, want 1", got)
	}

	if got := cpu.Regs.Get(S0); got != Word(0) {
		t.Errorf("3 >= 5 = %s, want 0", got)
	}
}

// A dispatched interrupt consumes the whole step: pc lands exactly on the vector target,
// with the handler's first instruction not yet fetched, decoded, or executed.
func TestInterruptDispatchConsumesStep(t *testing.T) {
	th := NewTestHarness(t)
	cpu := th.Make()

	const handler = UserStart + 0x200

	if err := cpu.Mem.WriteWord(VectorIllegalInstr, handler); err != nil {
		t.Fatalf("write vector: %v", err)
	}

	rom := asm(nil, HALT, Zero, Zero, Zero, 0)
	if err := cpu.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	cpu.IntrEnabled = true
	pc := cpu.PC
	cpu.Interrupt(IntrIllegalInstr)

	if err := cpu.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if cpu.PC != handler {
		t.Errorf("pc = %s, want vector target %s", cpu.PC, Word(handler))
	}

	if cpu.IntrEnabled {
		t.Error("interrupts should be disabled immediately after dispatch")
	}

	if got := cpu.Regs.Get(K0); got != pc {
		t.Errorf("k0 = %s, want pre-step pc %s", got, pc)
	}
}

// Instruction size is determined solely by shape, independent of operand values, so pc
// advances by exactly the decoded size for non-control-flow opcodes.
func TestStepAdvancesPCByDecodedSize(t *testing.T) {
	th := NewTestHarness(t)
	cpu := th.Make()

	rom := asm(nil, LI, T0, Zero, Zero, 1)
	rom = asm(rom, NOP, Zero, Zero, Zero, 0)

	if err := cpu.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	start := cpu.PC

	if err := cpu.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	liSize := Word(byteSize(opcodeShapes[LI]))
	if cpu.PC != start+liSize {
		t.Errorf("pc after LI = %s, want %s", cpu.PC, start+liSize)
	}
}
