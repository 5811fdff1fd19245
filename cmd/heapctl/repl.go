package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/malzahar-project/heapfiledb/logging"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "interactive shell over create/destroy/insert/get/scan/delete",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.Root())
		},
	}
}

// runRepl reads one heapctl invocation per line (without the "heapctl"
// prefix) and dispatches it through the same cobra command tree used by
// the non-interactive CLI, so the two front ends never drift apart.
func runRepl(root *cobra.Command) error {
	rl, err := readline.New("heapctl> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		root.SetArgs(strings.Fields(line))
		if err := root.Execute(); err != nil {
			logging.WarnErr("heapctl.repl", err)
			fmt.Println("error:", err)
		}
	}
}
