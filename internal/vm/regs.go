package vm

// regs.go defines the general-purpose register file.

import (
	"fmt"
	"strings"
)

// GPR names one of the sixteen general-purpose registers. The numeric values are the
// register's encoding in an instruction word and are part of the ABI.
type GPR uint8

// General-purpose registers, in ABI order.
const (
	Zero GPR = iota // hard-wired zero
	RV              // return value
	RA              // return address
	A0              // argument 0
	A1              // argument 1
	A2              // argument 2
	S0              // callee-saved 0
	S1              // callee-saved 1
	S2              // callee-saved 2
	T0              // caller-saved temp 0
	T1              // caller-saved temp 1
	T2              // caller-saved temp 2
	K0              // kernel-reserved 0 (interrupt-return address)
	K1              // kernel-reserved 1
	GP              // global pointer
	SP              // stack pointer

	NumGPR
)

var gprNames = [NumGPR]string{
	Zero: "zero", RV: "rv", RA: "ra",
	A0: "a0", A1: "a1", A2: "a2",
	S0: "s0", S1: "s1", S2: "s2",
	T0: "t0", T1: "t1", T2: "t2",
	K0: "k0", K1: "k1",
	GP: "gp", SP: "sp",
}

func (r GPR) String() string {
	if r < NumGPR {
		return gprNames[r]
	}

	return fmt.Sprintf("GPR(%d)", uint8(r))
}

// ParseGPR looks up a register by its ABI name, e.g. "t0" or "sp".
func ParseGPR(name string) (GPR, bool) {
	for r, n := range gprNames {
		if n == name {
			return GPR(r), true
		}
	}

	return 0, false
}

// Valid reports whether r names one of the sixteen registers.
func (r GPR) Valid() bool {
	return r < NumGPR
}

// Caller-saved, callee-saved, kernel-reserved, and argument register classes, per the
// calling convention.
var (
	CallerSaved = map[GPR]bool{T0: true, T1: true, T2: true, A0: true, A1: true, A2: true, RV: true, RA: true}
	CalleeSaved = map[GPR]bool{S0: true, S1: true, S2: true}
	KernelRegs  = map[GPR]bool{K0: true, K1: true}
	ArgRegs     = map[GPR]bool{A0: true, A1: true, A2: true}
)

// RegisterFile holds the sixteen general-purpose registers. It is owned exclusively by
// the CPU. Register Zero always reads as zero; writes to it are discarded.
type RegisterFile [NumGPR]Word

// NewRegisterFile creates a register file with sp initialized to UserEnd - 1 and all
// other registers zeroed.
func NewRegisterFile() RegisterFile {
	var rf RegisterFile

	rf.Reset()

	return rf
}

// Reset restores the file to its power-on state: all registers zero except sp, which is
// set to one below the highest address of user RAM (UserEnd - 1).
func (rf *RegisterFile) Reset() {
	for i := range rf {
		rf[i] = ZeroWord
	}

	rf[SP] = UserEnd - 1
}

// Get reads the word in register r.
func (rf *RegisterFile) Get(r GPR) Word {
	if r == Zero {
		return ZeroWord
	}

	return rf[r]
}

// Set writes w into register r. Writes to Zero are silently discarded.
func (rf *RegisterFile) Set(r GPR, w Word) {
	if r == Zero {
		return
	}

	rf[r] = w
}

func (rf *RegisterFile) String() string {
	b := strings.Builder{}

	for r := GPR(0); r < NumGPR; r++ {
		fmt.Fprintf(&b, "%-4s %s\n", r, rf.Get(r))
	}

	return b.String()
}
