package debugger

import (
	"errors"
	"fmt"

	"github.com/larksim/lark/internal/vm"
)

// ErrIRNotAddressable is returned when ir is used anywhere other than a bare eval: it may
// only be printed, never dereferenced or assigned.
var ErrIRNotAddressable = errors.New("ir is print-only")

// ErrNotAssignable is returned when the left side of a set command isn't a register or
// memory location.
var ErrNotAssignable = errors.New("not assignable")

// Evaluator evaluates debugger values and commands against a CPU.
type Evaluator struct {
	CPU *vm.CPU
}

// Rvalue evaluates val for its current value.
func (e Evaluator) Rvalue(val Val) (vm.Word, error) {
	switch v := val.(type) {
	case ValUint:
		return vm.Word(v), nil

	case ValNeg:
		inner, err := e.Rvalue(v.Operand)
		if err != nil {
			return 0, err
		}

		return vm.FromSigned(-inner.Signed()), nil

	case ValReg:
		return e.readReg(v.Name)

	case ValMem:
		ea, err := e.effectiveAddress(v)
		if err != nil {
			return 0, err
		}

		return e.CPU.Mem.ReadWord(ea)

	default:
		return 0, fmt.Errorf("%w: %T", ErrParse, val)
	}
}

// Set evaluates rhs, assigns it to the lvalue lhs, and returns lhs's previous value.
func (e Evaluator) Set(lhs, rhs Val) (prev, next vm.Word, err error) {
	next, err = e.Rvalue(rhs)
	if err != nil {
		return 0, 0, err
	}

	switch v := lhs.(type) {
	case ValReg:
		if v.Name == "ir" {
			return 0, 0, fmt.Errorf("%w: ir", ErrIRNotAddressable)
		}

		prev, err = e.readReg(v.Name)
		if err != nil {
			return 0, 0, err
		}

		if err := e.writeReg(v.Name, next); err != nil {
			return 0, 0, err
		}

		return prev, next, nil

	case ValMem:
		ea, err := e.effectiveAddress(v)
		if err != nil {
			return 0, 0, err
		}

		prev, err = e.CPU.Mem.ReadWord(ea)
		if err != nil {
			return 0, 0, err
		}

		if err := e.CPU.Mem.WriteWord(ea, next); err != nil {
			return 0, 0, err
		}

		return prev, next, nil

	default:
		return 0, 0, fmt.Errorf("%w: %T", ErrNotAssignable, lhs)
	}
}

func (e Evaluator) effectiveAddress(m ValMem) (vm.Word, error) {
	base, err := e.Rvalue(m.Base)
	if err != nil {
		return 0, err
	}

	offset, err := e.Rvalue(m.Offset)
	if err != nil {
		return 0, err
	}

	return vm.EffectiveAddress(base, offset)
}

func (e Evaluator) readReg(name string) (vm.Word, error) {
	if r, ok := vm.ParseGPR(name); ok {
		return e.CPU.Regs.Get(r), nil
	}

	switch name {
	case "pc":
		return e.CPU.PC, nil
	case "lo":
		return e.CPU.Lo, nil
	case "hi":
		return e.CPU.Hi, nil
	case "ir":
		return 0, fmt.Errorf("%w: ir", ErrIRNotAddressable)
	default:
		return 0, fmt.Errorf("%w: unknown register %q", ErrParse, name)
	}
}

func (e Evaluator) writeReg(name string, w vm.Word) error {
	if r, ok := vm.ParseGPR(name); ok {
		e.CPU.Regs.Set(r, w)
		return nil
	}

	switch name {
	case "pc":
		e.CPU.PC = w
	case "lo":
		e.CPU.Lo = w
	case "hi":
		e.CPU.Hi = w
	default:
		return fmt.Errorf("%w: unknown register %q", ErrParse, name)
	}

	return nil
}

// IR returns the 32-bit fetch buffer formatted as binary, the only form in which ir may
// be read.
func (e Evaluator) IR() string {
	return fmt.Sprintf("%032b", e.CPU.IR)
}
