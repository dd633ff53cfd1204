//go:build !unix

package cmd

import (
	"errors"
	"os/exec"
)

func ExitStatus(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return StatusFailure
}

func describeSignal(error) string {
	return ""
}
