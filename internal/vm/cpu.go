package vm

// cpu.go assembles the CPU from its smaller parts and manages its operating mode.

import (
	"fmt"

	"github.com/larksim/lark/internal/log"
)

// Mode is the CPU's current operating state.
type Mode uint8

const (
	Running Mode = iota
	Halted
	DebugPaused
)

func (m Mode) String() string {
	switch m {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case DebugPaused:
		return "debug-paused"
	default:
		return "mode(?)"
	}
}

// CPU is the lark machine: registers, PC, Hi/Lo, memory, and the engine's channel
// boundaries to the outside world.
type CPU struct {
	PC   Word
	IR   uint32
	Hi   Word
	Lo   Word
	Regs RegisterFile

	IntrEnabled bool
	mode        Mode

	Mem *Memory

	// Breakpoints is the sorted set of addresses at which the engine enters
	// Debug-paused mode before executing.
	Breakpoints *BreakpointSet

	// Debugger, if set, is invoked when the engine enters Debug-paused mode. It
	// returns once the debugger session issues 'continue'.
	Debugger func(cpu *CPU) error

	// SrcPath names the source file breakpoint messages are attributed to.
	SrcPath string

	// breakpointLine is the source line of the most recent EXN DEBUG_BREAKPOINT, or -1
	// if the current Debug-paused mode was entered via an address breakpoint instead.
	breakpointLine int

	// signals is the outbound signal/log bus; the engine is its only producer.
	signals chan Signal

	// interrupts is the inbound interrupt queue; the engine is its only consumer.
	interrupts chan Interrupt

	log *log.Logger
}

// OptionFn configures a CPU during New.
type OptionFn func(*CPU)

// WithLogger overrides the CPU's logger.
func WithLogger(l *log.Logger) OptionFn {
	return func(cpu *CPU) { cpu.log = l }
}

// WithSignals overrides the outbound signal/log channel, replacing the default
// buffered channel New creates.
func WithSignals(ch chan Signal) OptionFn {
	return func(cpu *CPU) { cpu.signals = ch }
}

// WithInterrupts overrides the inbound interrupt channel.
func WithInterrupts(ch chan Interrupt) OptionFn {
	return func(cpu *CPU) { cpu.interrupts = ch }
}

// WithDebugger installs a debugger entry point invoked when the engine pauses.
func WithDebugger(fn func(cpu *CPU) error) OptionFn {
	return func(cpu *CPU) { cpu.Debugger = fn }
}

// WithSrcPath sets the source path used in breakpoint location messages.
func WithSrcPath(path string) OptionFn {
	return func(cpu *CPU) { cpu.SrcPath = path }
}

// StartInDebugMode puts the CPU in Debug-paused mode before the first step.
func StartInDebugMode() OptionFn {
	return func(cpu *CPU) { cpu.mode = DebugPaused }
}

// New builds a CPU with an empty ROM, a power-on register file (all zero except sp), and
// default channel plumbing, then applies opts.
func New(opts ...OptionFn) *CPU {
	vtty := NewVTTYBuffer()
	devices := NewMMIO(vtty)
	mem := NewMemory(devices)

	sig := make(chan Signal, 64)
	intr := make(chan Interrupt, 16)

	cpu := &CPU{
		Regs:           NewRegisterFile(),
		PC:             ROMStart,
		IntrEnabled:    false,
		mode:           Running,
		Mem:            mem,
		Breakpoints:    NewBreakpointSet(),
		signals:        sig,
		interrupts:     intr,
		log:            log.DefaultLogger(),
		breakpointLine: -1,
	}

	for _, fn := range opts {
		fn(cpu)
	}

	return cpu
}

// Reset restores registers, PC, Hi/Lo, and interrupt-enable to their power-on state.
// Memory and ROM contents are unaffected.
func (cpu *CPU) Reset() {
	cpu.Regs.Reset()
	cpu.PC = ROMStart
	cpu.Hi = ZeroWord
	cpu.Lo = ZeroWord
	cpu.IR = 0
	cpu.IntrEnabled = false
	cpu.mode = Running
}

// Mode returns the CPU's current operating mode.
func (cpu *CPU) Mode() Mode {
	return cpu.mode
}

// ConsumeBreakpointLine returns the source line of the EXN DEBUG_BREAKPOINT that most
// recently entered Debug-paused mode, clearing it so it is reported only once. The second
// return value is false if Debug-paused mode was entered via an address breakpoint
// instead, which carries no source line.
func (cpu *CPU) ConsumeBreakpointLine() (int, bool) {
	line := cpu.breakpointLine
	cpu.breakpointLine = -1

	return line, line >= 0
}

// Signals returns the read end of the outbound signal/log bus, for a supervisor to
// drain.
func (cpu *CPU) Signals() <-chan Signal {
	return cpu.signals
}

// Interrupt enqueues an interrupt on the inbound channel without blocking; it is
// dropped if the queue is full. This is how a supervisor delivers e.g. ILL_INSTR in
// response to an IllegalInstr signal.
func (cpu *CPU) Interrupt(in Interrupt) {
	select {
	case cpu.interrupts <- in:
	default:
		cpu.log.Warn("interrupt queue full, dropping interrupt", "INTR", in)
	}
}

// emit sends a signal on the outbound bus, dropping it if the bus is full rather than
// blocking the engine.
func (cpu *CPU) emit(sig Signal) {
	select {
	case cpu.signals <- sig:
	default:
		cpu.log.Warn("signal bus full, dropping signal", "SIG", sig)
	}
}

func (cpu *CPU) String() string {
	return fmt.Sprintf("PC: %s IR: %#08x Hi: %s Lo: %s MODE: %s\n%s",
		cpu.PC, cpu.IR, cpu.Hi, cpu.Lo, cpu.mode, cpu.Regs.String())
}
