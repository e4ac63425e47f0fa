// Package tty adapts a real terminal for the interactive debugger: raw-mode input so the
// prompt gets line editing, and restoration of the terminal's prior state on exit.
package tty

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is a line-oriented terminal session used to host the debugger's "debug> "
// prompt.
type Console struct {
	fd    int
	state *term.State
	term  *term.Terminal
}

// ErrNoTTY is returned if standard input is not a terminal. No Console is created in
// that case, and this package offers no non-terminal line reader.
var ErrNoTTY error = errors.New("console: not a TTY")

// NewConsole creates a Console using the given streams. If in is not a terminal, ErrNoTTY
// is returned. Callers are responsible for calling [Console.Restore] to return the
// terminal to its initial state.
func NewConsole(in, out *os.File) (*Console, error) {
	fd := int(in.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	cons := &Console{
		fd:    fd,
		state: saved,
		term:  term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, ""),
	}

	if err := cons.setTerminalParams(1, 0); err != nil {
		_ = term.Restore(fd, saved)
		return nil, err
	}

	return cons, nil
}

// ReadLine reads one line of input after displaying prompt, with the line-editing
// term.Terminal provides in raw mode (backspace, history navigation).
func (c *Console) ReadLine(prompt string) (string, error) {
	c.term.SetPrompt(prompt)
	return c.term.ReadLine()
}

// Writer returns a writer that writes to the terminal.
func (c *Console) Writer() io.Writer {
	return c.term
}

// Restore returns the terminal to its initial state.
func (c *Console) Restore() error {
	return term.Restore(c.fd, c.state)
}

// setTerminalParams sets the raw (non-canonical) terminal's blocking-read parameters: vmin bytes must be
// available before a read returns, with no inter-byte timeout.
func (c *Console) setTerminalParams(vmin, vtime byte) error {
	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	return unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO)
}
