package pipeline

import (
	"github.com/svetsed/gosh/internal/cmd"
	"github.com/svetsed/gosh/internal/parser"
)

// Sequence runs command-strings one after another. With && the first
// non-zero status skips the rest; with ; everything runs. It returns the
// status of the last command executed. "exit" stops the sequence and is
// returned as a *cmd.ExitRequest.
func (r *Runner) Sequence(commands []string, sep parser.Separator, stdio cmd.Stdio) (int, error) {
	status := 0

	for i, s := range commands {
		c, err := parser.ParseCommand(s, r.Limits)
		if err != nil {
			cmd.Report(stdio.Stderr, err)
			status = cmd.StatusFailure
		} else if c.Empty() {
			continue
		} else {
			status, err = r.Single(c, stdio)
			if err != nil {
				return status, err
			}
		}

		if sep == parser.SepAnd && status != 0 {
			if skipped := len(commands) - i - 1; skipped > 0 {
				r.logf("sequence: status %d, skipping %d command(s)", status, skipped)
			}
			break
		}
	}

	return status, nil
}
