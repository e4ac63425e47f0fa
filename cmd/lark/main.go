// cmd/lark is the command-line interface to lark, a 16-bit RISC virtual machine.
package main

import (
	"context"
	"os"

	"github.com/larksim/lark/internal/cli"
	"github.com/larksim/lark/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Run(),
}

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
