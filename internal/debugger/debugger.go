package debugger

import (
	"fmt"
	"io"
	"strings"

	"github.com/larksim/lark/internal/vm"
)

// LineReader reads one line of interactive input after printing prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Session is an interactive debugger: it reads, parses, and evaluates command lines
// against a CPU, printing results to Out, until the command stream ends, an empty line is
// entered, or a `continue` command is issued.
type Session struct {
	In  LineReader
	Out io.Writer
}

// New builds a debugger session.
func New(in LineReader, out io.Writer) *Session {
	return &Session{In: in, Out: out}
}

// Run implements the vm.CPU Debugger hook: it blocks, reading and evaluating commands,
// until `continue` is issued, an empty line is entered, or the input stream ends.
func (s *Session) Run(cpu *vm.CPU) error {
	if line, ok := cpu.ConsumeBreakpointLine(); ok {
		fmt.Fprintf(s.Out, "%s: %d\n", cpu.SrcPath, line)
	}

	ev := Evaluator{CPU: cpu}

	for {
		line, err := s.In.ReadLine("debug> ")
		if err != nil {
			return err
		}

		if strings.TrimSpace(line) == "" {
			return nil
		}

		cmd, err := Parse(line)
		if err != nil {
			fmt.Fprintf(s.Out, "error: %s\n", err)
			continue
		}

		done, err := s.exec(ev, cmd)
		if err != nil {
			fmt.Fprintf(s.Out, "error: %s\n", err)
			continue
		}

		if done {
			return nil
		}
	}
}

// exec runs one parsed command, printing its result to Out. It reports done=true when
// the debugger should return control to the engine.
func (s *Session) exec(ev Evaluator, cmd Cmd) (done bool, err error) {
	switch c := cmd.(type) {
	case CmdEval:
		if reg, ok := c.Val.(ValReg); ok && reg.Name == "ir" {
			fmt.Fprintf(s.Out, "-> %s\n", ev.IR())
			return false, nil
		}

		v, err := ev.Rvalue(c.Val)
		if err != nil {
			return false, err
		}

		fmt.Fprintf(s.Out, "-> %s\n", v)

		return false, nil

	case CmdSet:
		prev, next, err := ev.Set(c.LHS, c.RHS)
		if err != nil {
			return false, err
		}

		fmt.Fprintf(s.Out, "%s -> %s\n", prev, next)

		return false, nil

	case CmdStack:
		s.printStack(ev, c.N)
		return false, nil

	case CmdListBreakpoints:
		s.printBreakpoints(ev.CPU)
		return false, nil

	case CmdAddBreakpoint:
		addr, err := ev.Rvalue(c.Val)
		if err != nil {
			return false, err
		}

		ev.CPU.Breakpoints.Add(addr)
		fmt.Fprintf(s.Out, "added breakpoint at %s\n", addr)

		return false, nil

	case CmdRemoveBreakpoint:
		ord, err := ev.Rvalue(c.Val)
		if err != nil {
			return false, err
		}

		if !ev.CPU.Breakpoints.RemoveOrdinal(int(ord)) {
			fmt.Fprintf(s.Out, "invalid breakpoint ordinal %d\n", ord)
			return false, nil
		}

		fmt.Fprintf(s.Out, "removed breakpoint #%d\n", ord)

		return false, nil

	case CmdContinue:
		fmt.Fprintln(s.Out, "continuing execution...")
		return true, nil

	case CmdRegs:
		s.printRegs(ev.CPU)
		return false, nil

	default:
		return false, fmt.Errorf("%w: %T", ErrParse, cmd)
	}
}

func (s *Session) printStack(ev Evaluator, n int) {
	sp := ev.CPU.Regs.Get(vm.SP)

	for i := 0; i < n; i++ {
		addr := sp + vm.Word(2*i)

		v, err := ev.CPU.Mem.ReadWord(addr)
		if err != nil {
			fmt.Fprintf(s.Out, "[sp+%02d] = <%s>\n", 2*i, err)
			continue
		}

		fmt.Fprintf(s.Out, "[sp+%02d] = %s\n", 2*i, v)
	}
}

func (s *Session) printBreakpoints(cpu *vm.CPU) {
	bps := cpu.Breakpoints.List()

	fmt.Fprintln(s.Out, "breakpoints:")

	if len(bps) == 0 {
		fmt.Fprintln(s.Out, "\t<no breakpoints set>")
		return
	}

	for i, addr := range bps {
		fmt.Fprintf(s.Out, "\t#%d: %s\n", i+1, addr)
	}
}

func (s *Session) printRegs(cpu *vm.CPU) {
	fmt.Fprintln(s.Out, "general-purpose registers:")

	for r := vm.GPR(0); r < vm.NumGPR; r++ {
		fmt.Fprintf(s.Out, "\t$%-4s = %s\n", r, cpu.Regs.Get(r))
	}

	fmt.Fprintln(s.Out, "special-purpose registers:")
	fmt.Fprintf(s.Out, "\t$pc = %s\n", cpu.PC)
	fmt.Fprintf(s.Out, "\t$lo = %s\n", cpu.Lo)
	fmt.Fprintf(s.Out, "\t$hi = %s\n", cpu.Hi)
	fmt.Fprintf(s.Out, "\t$ir = %032b\n", cpu.IR)
}
