package vm

// instr.go is the tagged instruction value produced by the decoder.

import (
	"errors"
	"fmt"
)

var ErrDecode = errors.New("decode")

// Instr is a decoded instruction: an opcode, its encoding shape, up to three register
// operands, and at most one immediate or address operand. Which fields are meaningful
// depends on the shape; see opcodes.go for the shape of each opcode and ops.go for the
// execution semantics of each one.
type Instr struct {
	Op    Opcode
	Shape Shape
	Rd    GPR
	Rs    GPR
	Rt    GPR
	Imm   Word // immediate, address displacement, or exception code, per opcode
	Size  uint8
}

func (in Instr) String() string {
	switch in.Shape {
	case ShapeO:
		return in.Op.String()
	case ShapeA, ShapeI:
		return fmt.Sprintf("%s %s", in.Op, in.Imm)
	case ShapeR:
		return fmt.Sprintf("%s %s", in.Op, in.Rd)
	case ShapeRI:
		return fmt.Sprintf("%s %s, %s", in.Op, in.Rd, in.Imm)
	case ShapeRR:
		return fmt.Sprintf("%s %s, %s", in.Op, in.Rd, in.Rs)
	case ShapeRRR:
		return fmt.Sprintf("%s %s, %s, %s", in.Op, in.Rd, in.Rs, in.Rt)
	case ShapeRRI:
		return fmt.Sprintf("%s %s, %s, %s", in.Op, in.Rd, in.Rs, in.Imm)
	default:
		return fmt.Sprintf("%s ?", in.Op)
	}
}
