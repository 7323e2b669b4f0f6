package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli/v2"
)

const shellPrompt = "budget> "

func (a *appState) shellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "run commands interactively against one shared cache",
		Action: func(c *cli.Context) error {
			if _, err := a.deps(c); err != nil {
				return err
			}
			a.defaultJSON = c.Bool("json")
			return a.runShell(c.Context)
		},
	}
}

// runShell reads one command per line until EOF or "exit". Interrupting a
// command detaches its in-flight fetches so late results are dropped.
func (a *appState) runShell(ctx context.Context) error {
	// Interrupts end the current command, not the session.
	base := context.WithoutCancel(ctx)

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
			continue
		}

		inner := a.commandApp()
		inner.ExitErrHandler = func(*cli.Context, error) {}
		cmdCtx, stop := signal.NotifyContext(base, os.Interrupt)
		err = inner.RunContext(cmdCtx, append([]string{inner.Name}, args...))
		aborted := cmdCtx.Err() != nil
		stop()

		if aborted {
			a.sess.loader.Detach()
			slog.Warn("command interrupted", "command", args[0])
		}
		if err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}
