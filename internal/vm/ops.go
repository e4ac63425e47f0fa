package vm

// ops.go implements the execution semantics of every opcode.

import (
	"errors"
	"fmt"
)

var (
	ErrDivideByZero        = errors.New("divide by zero")
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")
)

// execResult is returned by execute alongside an error; its jumped field tells the caller
// whether the opcode already updated pc itself (a control-flow instruction), in which case the
// normal pc += size advance must be skipped.
type execResult struct {
	jumped bool
}

// execute performs in's operation against cpu, per the opcode semantics. Arithmetic
// wraps modulo 2^16 where wrap is unspecified; signed comparisons interpret operands as
// two's complement, unsigned as plain 16-bit values.
func (cpu *CPU) execute(in Instr) (execResult, error) {
	switch in.Op {

	// O shape.
	case HALT:
		cpu.mode = Halted
		cpu.emit(Signal{Kind: SigHalt})

		return execResult{jumped: true}, nil // pc stays put

	case NOP:
		return execResult{}, nil

	case INRE:
		cpu.IntrEnabled = true
		return execResult{}, nil

	case INRD:
		cpu.IntrEnabled = false
		return execResult{}, nil

	case KRET:
		cpu.IntrEnabled = true
		cpu.PC = cpu.Regs.Get(K0)

		return execResult{jumped: true}, nil

	// A shape.
	case J:
		target, err := jumpTarget(cpu.PC, in.Imm)
		if err != nil {
			return execResult{}, err
		}

		cpu.PC = target

		return execResult{jumped: true}, nil

	// I shape.
	case EXN:
		if err := cpu.raiseException(in.Imm); err != nil {
			return execResult{}, err
		}

		return execResult{}, nil

	case KCALL:
		return execResult{}, fmt.Errorf("%w: KCALL", ErrUnimplementedOpcode)

	// R shape.
	case JR:
		cpu.PC = cpu.Regs.Get(in.Rd)
		return execResult{jumped: true}, nil

	case MVLO:
		cpu.Regs.Set(in.Rd, cpu.Lo)
		return execResult{}, nil

	case MVHI:
		cpu.Regs.Set(in.Rd, cpu.Hi)
		return execResult{}, nil

	// RI shape.
	case JAL:
		cpu.Regs.Set(in.Rd, cpu.PC+Word(in.Size))

		target, err := jumpTarget(cpu.PC, in.Imm)
		if err != nil {
			return execResult{}, err
		}

		cpu.PC = target

		return execResult{jumped: true}, nil

	case BT:
		if cpu.Regs.Get(in.Rd).Bool() {
			target, err := jumpTarget(cpu.PC, in.Imm)
			if err != nil {
				return execResult{}, err
			}

			cpu.PC = target

			return execResult{jumped: true}, nil
		}

		return execResult{}, nil

	case BF:
		if !cpu.Regs.Get(in.Rd).Bool() {
			target, err := jumpTarget(cpu.PC, in.Imm)
			if err != nil {
				return execResult{}, err
			}

			cpu.PC = target

			return execResult{jumped: true}, nil
		}

		return execResult{}, nil

	case LI:
		cpu.Regs.Set(in.Rd, in.Imm)
		return execResult{}, nil

	// RR shape.
	case JRAL:
		cpu.Regs.Set(in.Rd, cpu.PC+Word(in.Size))
		cpu.PC = cpu.Regs.Get(in.Rs)

		return execResult{jumped: true}, nil

	case MV:
		cpu.Regs.Set(in.Rd, cpu.Regs.Get(in.Rs))
		return execResult{}, nil

	case NOT:
		cpu.Regs.Set(in.Rd, FromBool(!cpu.Regs.Get(in.Rs).Bool()))
		return execResult{}, nil

	case NEG:
		v := cpu.Regs.Get(in.Rs)
		cpu.Regs.Set(in.Rd, FromSigned(-v.Signed()))

		return execResult{}, nil

	case SEB:
		low := uint32(cpu.Regs.Get(in.Rs)) & 0xFF
		cpu.Regs.Set(in.Rd, Sext(low, 8))

		return execResult{}, nil

	case TEZ:
		cpu.Regs.Set(in.Rd, FromBool(!cpu.Regs.Get(in.Rs).Bool()))
		return execResult{}, nil

	case TNZ:
		cpu.Regs.Set(in.Rd, FromBool(cpu.Regs.Get(in.Rs).Bool()))
		return execResult{}, nil

	case MUL:
		rs, rt := int32(cpu.Regs.Get(in.Rd).Signed()), int32(cpu.Regs.Get(in.Rs).Signed())
		product := rs * rt
		cpu.Lo, cpu.Hi = Word(uint32(product)), Word(uint32(product)>>16)

		return execResult{}, nil

	case MULU:
		rs, rt := uint32(cpu.Regs.Get(in.Rd)), uint32(cpu.Regs.Get(in.Rs))
		product := rs * rt
		cpu.Lo, cpu.Hi = Word(product), Word(product>>16)

		return execResult{}, nil

	case DIV:
		rs, rt := cpu.Regs.Get(in.Rd).Signed(), cpu.Regs.Get(in.Rs).Signed()
		if rt == 0 {
			cpu.divByZero()
			return execResult{}, nil
		}

		cpu.Lo, cpu.Hi = FromSigned(rs/rt), FromSigned(rs%rt)

		return execResult{}, nil

	case DIVU:
		rs, rt := cpu.Regs.Get(in.Rd).Unsigned(), cpu.Regs.Get(in.Rs).Unsigned()
		if rt == 0 {
			cpu.divByZero()
			return execResult{}, nil
		}

		cpu.Lo, cpu.Hi = Word(rs/rt), Word(rs%rt)

		return execResult{}, nil

	// RRR shape.
	case ADD:
		a, b := cpu.Regs.Get(in.Rs).Signed(), cpu.Regs.Get(in.Rt).Signed()
		cpu.Regs.Set(in.Rd, FromSigned(a+b))

		return execResult{}, nil

	case SUB:
		a, b := cpu.Regs.Get(in.Rs).Signed(), cpu.Regs.Get(in.Rt).Signed()
		cpu.Regs.Set(in.Rd, FromSigned(a-b))

		return execResult{}, nil

	case ADDU:
		a, b := cpu.Regs.Get(in.Rs).Unsigned(), cpu.Regs.Get(in.Rt).Unsigned()
		cpu.Regs.Set(in.Rd, Word(a+b))

		return execResult{}, nil

	case SUBU:
		a, b := cpu.Regs.Get(in.Rs).Unsigned(), cpu.Regs.Get(in.Rt).Unsigned()
		cpu.Regs.Set(in.Rd, Word(a-b))

		return execResult{}, nil

	case OR:
		cpu.Regs.Set(in.Rd, cpu.Regs.Get(in.Rs)|cpu.Regs.Get(in.Rt))
		return execResult{}, nil

	case XOR:
		cpu.Regs.Set(in.Rd, cpu.Regs.Get(in.Rs)^cpu.Regs.Get(in.Rt))
		return execResult{}, nil

	case AND:
		cpu.Regs.Set(in.Rd, cpu.Regs.Get(in.Rs)&cpu.Regs.Get(in.Rt))
		return execResult{}, nil

	case SHL:
		cpu.Regs.Set(in.Rd, Word(cpu.Regs.Get(in.Rs).Unsigned()<<(cpu.Regs.Get(in.Rt).Unsigned()&0xF)))
		return execResult{}, nil

	case SHR:
		cpu.Regs.Set(in.Rd, Word(cpu.Regs.Get(in.Rs).Unsigned()>>(cpu.Regs.Get(in.Rt).Unsigned()&0xF)))
		return execResult{}, nil

	case SHRA:
		cpu.Regs.Set(in.Rd, FromSigned(cpu.Regs.Get(in.Rs).Signed()>>(cpu.Regs.Get(in.Rt).Unsigned()&0xF)))
		return execResult{}, nil

	case TLT:
		cpu.Regs.Set(in.Rd, FromBool(cpu.Regs.Get(in.Rs).Signed() < cpu.Regs.Get(in.Rt).Signed()))
		return execResult{}, nil

	case TGE:
		cpu.Regs.Set(in.Rd, FromBool(cpu.Regs.Get(in.Rs).Signed() >= cpu.Regs.Get(in.Rt).Signed()))
		return execResult{}, nil

	case TEQ:
		cpu.Regs.Set(in.Rd, FromBool(cpu.Regs.Get(in.Rs) == cpu.Regs.Get(in.Rt)))
		return execResult{}, nil

	case TNE:
		cpu.Regs.Set(in.Rd, FromBool(cpu.Regs.Get(in.Rs) != cpu.Regs.Get(in.Rt)))
		return execResult{}, nil

	case TLTU:
		cpu.Regs.Set(in.Rd, FromBool(cpu.Regs.Get(in.Rs).Unsigned() < cpu.Regs.Get(in.Rt).Unsigned()))
		return execResult{}, nil

	case TGEU:
		cpu.Regs.Set(in.Rd, FromBool(cpu.Regs.Get(in.Rs).Unsigned() >= cpu.Regs.Get(in.Rt).Unsigned()))
		return execResult{}, nil

	// RRI shape.
	case LW:
		ea, err := EffectiveAddress(cpu.Regs.Get(in.Rs), in.Imm)
		if err != nil {
			return execResult{}, err
		}

		w, err := cpu.Mem.ReadWord(ea)
		if err != nil {
			return execResult{}, err
		}

		cpu.Regs.Set(in.Rd, w)

		return execResult{}, nil

	case LBU:
		ea, err := EffectiveAddress(cpu.Regs.Get(in.Rs), in.Imm)
		if err != nil {
			return execResult{}, err
		}

		b, err := cpu.Mem.ReadU8(ea)
		if err != nil {
			return execResult{}, err
		}

		cpu.Regs.Set(in.Rd, Zext(uint32(b), 8))

		return execResult{}, nil

	case LBS:
		ea, err := EffectiveAddress(cpu.Regs.Get(in.Rs), in.Imm)
		if err != nil {
			return execResult{}, err
		}

		b, err := cpu.Mem.ReadU8(ea)
		if err != nil {
			return execResult{}, err
		}

		cpu.Regs.Set(in.Rd, Sext(uint32(b), 8))

		return execResult{}, nil

	case SW:
		ea, err := EffectiveAddress(cpu.Regs.Get(in.Rd), in.Imm)
		if err != nil {
			return execResult{}, err
		}

		if err := cpu.Mem.WriteWord(ea, cpu.Regs.Get(in.Rs)); err != nil {
			return execResult{}, err
		}

		return execResult{}, nil

	case SB:
		ea, err := EffectiveAddress(cpu.Regs.Get(in.Rd), in.Imm)
		if err != nil {
			return execResult{}, err
		}

		if err := cpu.Mem.WriteU8(ea, byte(cpu.Regs.Get(in.Rs))); err != nil {
			return execResult{}, err
		}

		return execResult{}, nil

	case ADDI:
		a := cpu.Regs.Get(in.Rs).Signed()
		cpu.Regs.Set(in.Rd, FromSigned(a+in.Imm.Signed()))

		return execResult{}, nil

	case SUBI:
		a := cpu.Regs.Get(in.Rs).Signed()
		cpu.Regs.Set(in.Rd, FromSigned(a-in.Imm.Signed()))

		return execResult{}, nil

	case ORI:
		cpu.Regs.Set(in.Rd, cpu.Regs.Get(in.Rs)|in.Imm)
		return execResult{}, nil

	case XORI:
		cpu.Regs.Set(in.Rd, cpu.Regs.Get(in.Rs)^in.Imm)
		return execResult{}, nil

	case ANDI:
		cpu.Regs.Set(in.Rd, cpu.Regs.Get(in.Rs)&in.Imm)
		return execResult{}, nil

	default:
		return execResult{}, fmt.Errorf("%w: %s", ErrUnimplementedOpcode, in.Op)
	}
}

// jumpTarget computes pc + offset as a PC-relative jump, failing fatally on overflow.
func jumpTarget(pc Word, offset Word) (Word, error) {
	return EffectiveAddress(pc, offset)
}

// divByZero emits the division-by-zero signal without disturbing Hi/Lo.
func (cpu *CPU) divByZero() {
	cpu.emit(Signal{
		Kind: SigLog, LogKind: LogError,
		Message: ErrDivideByZero.Error(),
	})
}
