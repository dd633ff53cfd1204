package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var errColor = color.New(color.FgRed)

// Report writes a user-facing failure message to w (stderr when w is nil).
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	Reportf(w, "%v", err)
}

func Reportf(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		w = os.Stderr
	}
	errColor.Fprintf(w, "gosh: "+format+"\n", args...)
}

// ExitRequest is returned by the exit builtin. It travels up to the
// session, which terminates the interpreter with Code.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
