package vm

// exn.go dispatches the EXN instruction's exception codes.

import (
	"errors"
	"fmt"
)

// Exception codes dispatched by EXN.
const (
	ExnIllegalInstr   Word = 0x0000
	ExnDebugBreakpoint Word = 0x0001
	ExnDivByZero      Word = 0x0002
	ExnDebugPuts      Word = 0x0003
)

var ErrReservedException = errors.New("reserved exception code")

// raiseException dispatches on imm10, the code carried by an EXN instruction.
// Reserved codes are fatal for the core.
func (cpu *CPU) raiseException(code Word) error {
	switch code {
	case ExnIllegalInstr:
		cpu.emit(Signal{Kind: SigIllegalInstr})
		return nil

	case ExnDebugBreakpoint:
		line := int(cpu.Regs.Get(A0).Signed())
		cpu.breakpointLine = line
		cpu.mode = DebugPaused
		cpu.emit(Signal{Kind: SigBreakpoint, Line: line})

		return nil

	case ExnDivByZero:
		cpu.emit(Signal{
			Kind: SigLog, LogKind: LogError,
			Message: fmt.Sprintf("%s", ErrDivideByZero),
		})

		return nil

	case ExnDebugPuts:
		addr := cpu.Regs.Get(A0)
		count := cpu.Regs.Get(A1)

		buf := make([]byte, 0, count)

		for i := Word(0); i < count; i++ {
			b, err := cpu.Mem.ReadU8(addr + i)
			if err != nil {
				return fmt.Errorf("exn debug_puts: %w", err)
			}

			buf = append(buf, b)
		}

		cpu.emit(Signal{
			Kind: SigLog, LogKind: LogDebugPuts,
			Addr: addr, Message: string(buf),
		})

		return nil

	default:
		return fmt.Errorf("%w: %#04x", ErrReservedException, uint16(code))
	}
}
