package debugger_test

import (
	"errors"
	"testing"

	. "github.com/larksim/lark/internal/debugger"
	"github.com/larksim/lark/internal/vm"
)

func TestEvaluatorRvalueRegister(t *testing.T) {
	cpu := vm.New()
	cpu.Regs.Set(vm.T0, 99)

	ev := Evaluator{CPU: cpu}

	got, err := ev.Rvalue(ValReg{Name: "t0"})
	if err != nil {
		t.Fatalf("Rvalue: %v", err)
	}

	if got != 99 {
		t.Errorf("got %s, want 99", got)
	}
}

func TestEvaluatorRvalueMemory(t *testing.T) {
	cpu := vm.New()
	if err := cpu.Mem.WriteWord(vm.UserStart, 0xBEEF); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}

	ev := Evaluator{CPU: cpu}

	got, err := ev.Rvalue(ValMem{Base: ValUint(uint16(vm.UserStart)), Offset: ValUint(0)})
	if err != nil {
		t.Fatalf("Rvalue: %v", err)
	}

	if got != 0xBEEF {
		t.Errorf("got %s, want 0xbeef", got)
	}
}

func TestEvaluatorRvalueNegation(t *testing.T) {
	ev := Evaluator{CPU: vm.New()}

	got, err := ev.Rvalue(ValNeg{Operand: ValUint(1)})
	if err != nil {
		t.Fatalf("Rvalue: %v", err)
	}

	if got.Signed() != -1 {
		t.Errorf("got %d, want -1", got.Signed())
	}
}

func TestEvaluatorSetReturnsPreviousValue(t *testing.T) {
	cpu := vm.New()
	cpu.Regs.Set(vm.T0, 5)

	ev := Evaluator{CPU: cpu}

	prev, next, err := ev.Set(ValReg{Name: "t0"}, ValUint(9))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	if prev != 5 || next != 9 {
		t.Errorf("prev=%s next=%s, want 5, 9", prev, next)
	}

	if cpu.Regs.Get(vm.T0) != 9 {
		t.Errorf("register not updated: %s", cpu.Regs.Get(vm.T0))
	}
}

func TestEvaluatorIRIsNotAddressable(t *testing.T) {
	ev := Evaluator{CPU: vm.New()}

	if _, err := ev.Rvalue(ValReg{Name: "ir"}); !errors.Is(err, ErrIRNotAddressable) {
		t.Errorf("got %v, want wrapping %v", err, ErrIRNotAddressable)
	}

	if _, _, err := ev.Set(ValReg{Name: "ir"}, ValUint(0)); !errors.Is(err, ErrIRNotAddressable) {
		t.Errorf("got %v, want wrapping %v", err, ErrIRNotAddressable)
	}
}

func TestEvaluatorIRFormatsAsBinary(t *testing.T) {
	cpu := vm.New()
	cpu.IR = 0x1

	ev := Evaluator{CPU: cpu}

	want := "00000000000000000000000000000001"
	if got := ev.IR(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
