package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/larksim/lark/internal/cli"
	"github.com/larksim/lark/internal/debugger"
	"github.com/larksim/lark/internal/log"
	"github.com/larksim/lark/internal/tty"
	"github.com/larksim/lark/internal/vm"
)

// Run builds the "run" sub-command: it loads a ROM image and runs it to completion. When
// stdin is a terminal the interactive debugger is attached and takes over on a breakpoint.
func Run() cli.Command {
	return &runner{}
}

type runner struct {
	debug    bool
	printROM bool
	srcPath  string
}

func (runner) Description() string {
	return "load a rom image and run it"
}

func (r runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run [-d|--debug] [-p|--print-rom] [-s|--src-path path] rom

Loads a rom image and runs it. With -debug, execution starts paused in the
interactive debugger. With -print-rom, the loaded image is dumped as a hex
listing before it is run.`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	fs.BoolVar(&r.debug, "debug", false, "start paused in the interactive debugger")
	fs.BoolVar(&r.debug, "d", false, "alias for -debug")
	fs.BoolVar(&r.printROM, "print-rom", false, "dump the loaded rom as hex before running it")
	fs.BoolVar(&r.printROM, "p", false, "alias for -print-rom")
	fs.StringVar(&r.srcPath, "src-path", "", "source file attributed in breakpoint messages")
	fs.StringVar(&r.srcPath, "s", "", "alias for -src-path")

	return fs
}

// Run loads args[0] as a rom image, dumps it first if -print-rom is set, and runs it. It
// returns 0 on a clean halt, 1 on any load or execution error.
func (r *runner) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	if len(args) != 1 {
		logger.Error("run: expected exactly one rom path argument")
		return 1
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("run: reading rom", "err", err)
		return 1
	}

	if r.printROM {
		printROMHex(out, image)
	}

	opts := []vm.OptionFn{vm.WithLogger(logger), vm.WithSrcPath(r.srcPath)}

	console, err := tty.NewConsole(os.Stdin, os.Stdout)
	switch {
	case err == nil:
		defer console.Restore()

		sess := debugger.New(console, console.Writer())
		opts = append(opts, vm.WithDebugger(sess.Run))
	case r.debug:
		logger.Error("run: -debug requires an interactive terminal", "err", err)
		return 1
	}

	if r.debug {
		opts = append(opts, vm.StartInDebugMode())
	}

	cpu := vm.New(opts...)

	if err := cpu.LoadROM(image); err != nil {
		logger.Error("run: loading rom", "err", err)
		return 1
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		for sig := range cpu.Signals() {
			logSignal(logger, sig)

			if sig.Kind == vm.SigIllegalInstr {
				cpu.Interrupt(vm.IntrIllegalInstr)
			}
		}
	}()

	runErr := cpu.Run(ctx)
	<-done

	if runErr != nil {
		logger.Error("run: execution failed", "err", runErr)
		return 1
	}

	return 0
}

// logSignal renders one engine signal to the logger at a level appropriate to its kind.
func logSignal(logger *log.Logger, sig vm.Signal) {
	switch sig.Kind {
	case vm.SigIllegalInstr:
		logger.Warn("ILLEGAL_INSTR")
	case vm.SigBreakpoint:
		logger.Debug("BREAKPOINT", "line", sig.Line)
	case vm.SigLog:
		switch sig.LogKind {
		case vm.LogError:
			logger.Error(sig.Message)
		case vm.LogDebugPuts:
			logger.Info("DEBUG_PUTS", "addr", sig.Addr, "msg", sig.Message)
		default:
			logger.Debug(sig.String())
		}
	default:
		logger.Debug(sig.String())
	}
}

// printROMHex dumps image as sixteen bytes per line, offset-prefixed and starting at
// vm.ROMStart, the address the loader maps it to.
func printROMHex(out io.Writer, image []byte) {
	const perLine = 16

	for off := 0; off < len(image); off += perLine {
		end := off + perLine
		if end > len(image) {
			end = len(image)
		}

		fmt.Fprintf(out, "%04x: ", int(vm.ROMStart)+off)

		for _, b := range image[off:end] {
			fmt.Fprintf(out, "%02x ", b)
		}

		fmt.Fprintln(out)
	}
}
