package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ben-ranford/d7audit/internal/app"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

type Runner interface {
	Execute(ctx context.Context, req app.Request) (string, error)
}

type CLI struct {
	Runner Runner
	Out    io.Writer
	Err    io.Writer
}

func New(runner Runner, out io.Writer, errOut io.Writer) *CLI {
	return &CLI{
		Runner: runner,
		Out:    out,
		Err:    errOut,
	}
}

func (c *CLI) Run(ctx context.Context, args []string) int {
	req, err := ParseArgs(args)
	if err != nil {
		if errors.Is(err, ErrHelpRequested) {
			if _, writeErr := fmt.Fprint(c.Out, Usage()); writeErr != nil {
				return exitRuntime
			}
			return exitOK
		}
		if _, writeErr := fmt.Fprintf(c.Err, "error: %v\n\n", err); writeErr != nil {
			return exitRuntime
		}
		if _, writeErr := fmt.Fprint(c.Err, Usage()); writeErr != nil {
			return exitRuntime
		}
		return exitUsage
	}

	output, runErr := c.Runner.Execute(ctx, req)
	if output != "" {
		if !strings.HasSuffix(output, "\n") {
			output += "\n"
		}
		if _, writeErr := fmt.Fprint(c.Out, output); writeErr != nil {
			_, _ = fmt.Fprintln(c.Err, writeErr.Error())
			return exitRuntime
		}
	}

	if runErr != nil {
		_, _ = fmt.Fprintln(c.Err, runErr.Error())
		return exitRuntime
	}
	return exitOK
}
