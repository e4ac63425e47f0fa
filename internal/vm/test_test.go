package vm

import (
	"testing"

	"github.com/larksim/lark/internal/log"
)

// NewTestHarness builds a harness that logs through t.Log and constructs CPUs wired to
// it.
func NewTestHarness(t *testing.T) *testHarness {
	th := &testHarness{T: t}
	th.logger = log.NewFormattedLogger(th)

	return th
}

type testHarness struct {
	*testing.T
	logger *log.Logger
}

// Make builds a CPU using the harness's logger, plus any additional options.
func (th *testHarness) Make(opts ...OptionFn) *CPU {
	all := append([]OptionFn{WithLogger(th.logger)}, opts...)
	return New(all...)
}

// Write implements io.Writer so the harness can be used as a log.Logger sink.
func (th *testHarness) Write(b []byte) (int, error) {
	s := string(b)
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}

	th.T.Helper()
	th.T.Log(s)

	return len(b), nil
}

// encode packs an instruction's fields into a 32-bit word using the same bit layout
// Decode expects, for building ROM images in tests.
func encode(op Opcode, shape Shape, rd, rs, rt GPR, imm Word) uint32 {
	ir := uint32(op) << 26

	switch shape {
	case ShapeO:
	case ShapeA:
		ir |= uint32(uint16(imm)) << 10
	case ShapeI:
		ir |= uint32(imm&0x3FF) << 16
	case ShapeR:
		ir |= uint32(rd) << 22
	case ShapeRI:
		ir |= uint32(rd) << 22
		ir |= uint32(uint16(imm)) << 6
	case ShapeRR:
		ir |= uint32(rd) << 22
		ir |= uint32(rs) << 18
	case ShapeRRR:
		ir |= uint32(rd) << 22
		ir |= uint32(rs) << 18
		ir |= uint32(rt) << 14
	case ShapeRRI:
		ir |= uint32(rd) << 22
		ir |= uint32(rs) << 18
		ir |= uint32(imm&0x3FF) << 8
	}

	return ir
}

// asm appends an instruction's packed encoding to a ROM image buffer: exactly the
// instruction's byte size, taken from the top of the 32-bit encoding, with no padding,
// matching the ROM file format.
func asm(rom []byte, op Opcode, rd, rs, rt GPR, imm Word) []byte {
	shape := opcodeShapes[op]
	ir := encode(op, shape, rd, rs, rt, imm)
	size := byteSize(shape)

	bs := [4]byte{byte(ir >> 24), byte(ir >> 16), byte(ir >> 8), byte(ir)}

	return append(rom, bs[:size]...)
}
