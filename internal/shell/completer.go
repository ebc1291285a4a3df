// Package shell queries bash's completion machinery for command names. The
// oracle is the bash binary itself; any failure, including "no matching
// commands" exiting non-zero, degrades to zero candidates at the caller.
package shell

import (
	"context"
	"os/exec"
	"strings"

	"beacon/internal/util"
)

type Completer struct {
	shell string
}

func NewCompleter() *Completer {
	return &Completer{shell: "/bin/bash"}
}

// Complete returns the command names bash knows that start with prefix.
// compgen repeats names found on multiple PATH entries, so the list is
// deduplicated in order.
func (c *Completer) Complete(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, c.shell, "-c", "compgen -c -- "+util.QuoteArg(prefix))
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			names = append(names, line)
		}
	}
	return util.Dedupe(names), nil
}
