package vm

// exec.go defines the CPU instruction cycle: fetch, maybe-pause-for-debug, decode,
// execute, advance.

import (
	"context"
	"errors"
	"fmt"

	"github.com/larksim/lark/internal/log"
)

// ErrHalted is returned by Step when the CPU is stepped after HALT.
var ErrHalted = errors.New("halted")

// Run executes instructions until the program halts, the context is cancelled, or a
// fatal error occurs.
func (cpu *CPU) Run(ctx context.Context) error {
	cpu.log.Info("START", log.String("STATE", cpu.String()))

	for {
		select {
		case <-ctx.Done():
			cpu.log.Warn("CANCELLED")
			return ctx.Err()
		default:
		}

		if cpu.mode == Halted {
			break
		}

		if err := cpu.Step(); err != nil {
			cpu.log.Error("HALTED", "ERR", err)
			return err
		}
	}

	cpu.log.Info("HALTED", log.String("STATE", cpu.String()))

	return nil
}

// Step performs one instruction cycle:
//
//  1. If interrupts are enabled, deliver at most one pending interrupt. A dispatched
//     interrupt redirects pc to its handler and consumes the step: fetch/decode/execute
//     are skipped so the handler's first instruction runs on the next Step.
//  2. Fetch a 32-bit instruction word from the two words at pc, pc+2.
//  3. If pc is in the breakpoint set, or the CPU is already Debug-paused, enter the
//     debugger before executing.
//  4. Decode the instruction.
//  5. Execute it, updating pc, Hi/Lo, registers, and memory; pc advances by the
//     instruction's byte size unless the opcode is a control-flow instruction that set
//     pc itself.
func (cpu *CPU) Step() error {
	if cpu.mode == Halted {
		return fmt.Errorf("step: %w", ErrHalted)
	}

	dispatched, err := cpu.pollInterrupt()
	if err != nil {
		return fmt.Errorf("step: interrupt: %w", err)
	}

	if dispatched {
		return nil
	}

	ir, err := cpu.fetch()
	if err != nil {
		return fmt.Errorf("step: fetch: %w", err)
	}

	cpu.IR = ir

	if cpu.Breakpoints.Contains(cpu.PC) || cpu.mode == DebugPaused {
		cpu.mode = DebugPaused

		if cpu.Debugger != nil {
			if err := cpu.Debugger(cpu); err != nil {
				return fmt.Errorf("step: debugger: %w", err)
			}
		}

		if cpu.mode == DebugPaused {
			cpu.mode = Running
		}
	}

	in, err := Decode(ir)
	if err != nil {
		cpu.emit(Signal{Kind: SigLog, LogKind: LogError, Message: err.Error()})
		return fmt.Errorf("step: decode: %w", err)
	}

	cpu.log.Debug("EXEC", "IR", in.String())

	result, err := cpu.execute(in)
	if err != nil {
		cpu.emit(Signal{Kind: SigLog, LogKind: LogError, Message: err.Error()})
		return fmt.Errorf("step: execute: %w", err)
	}

	cpu.emit(Signal{Kind: SigLog, LogKind: LogInstr, Name: in.Op.String(), Args: formatArgs(in)})

	if !result.jumped {
		cpu.PC += Word(in.Size)
	}

	return nil
}

// fetch reads the 32-bit instruction word at pc, pc+2 without advancing pc; pc
// advancement happens in execute/Step according to the decoded instruction's size.
func (cpu *CPU) fetch() (uint32, error) {
	hi, err := cpu.Mem.ReadWord(cpu.PC)
	if err != nil {
		return 0, err
	}

	lo, err := cpu.Mem.ReadWord(cpu.PC + 2)
	if err != nil {
		return 0, err
	}

	return uint32(hi)<<16 | uint32(lo), nil
}

// formatArgs renders an instruction's operands for the log/signal bus, marking
// register-typed operands so a renderer can style them differently than immediates.
func formatArgs(in Instr) []Arg {
	var args []Arg

	addReg := func(r GPR) { args = append(args, Arg{Text: r.String(), Register: true}) }
	addImm := func(w Word) { args = append(args, Arg{Text: w.String()}) }

	switch in.Shape {
	case ShapeA, ShapeI:
		addImm(in.Imm)
	case ShapeR:
		addReg(in.Rd)
	case ShapeRI:
		addReg(in.Rd)
		addImm(in.Imm)
	case ShapeRR:
		addReg(in.Rd)
		addReg(in.Rs)
	case ShapeRRR:
		addReg(in.Rd)
		addReg(in.Rs)
		addReg(in.Rt)
	case ShapeRRI:
		addReg(in.Rd)
		addReg(in.Rs)
		addImm(in.Imm)
	}

	return args
}
