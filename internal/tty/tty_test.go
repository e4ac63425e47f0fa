// The test checks the non-terminal path (ErrNoTTY) and is skipped when stdin is a real
// terminal, for example when a built test binary is run directly from an interactive
// shell:
//
//	$ go test -c && ./tty.test
package tty_test

import (
	"errors"
	"os"
	"testing"

	"github.com/larksim/lark/internal/tty"
)

func TestNewConsoleRequiresATTY(t *testing.T) {
	cons, err := tty.NewConsole(os.Stdin, os.Stdout)
	if err == nil {
		defer cons.Restore()
		t.Skip("stdin is a real tty; skipping the non-tty path")
	}

	if !errors.Is(err, tty.ErrNoTTY) {
		t.Errorf("got %v, want wrapping %v", err, tty.ErrNoTTY)
	}
}
