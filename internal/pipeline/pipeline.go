package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/svetsed/gosh/internal/cmd"
	"github.com/svetsed/gosh/internal/parser"
)

var ErrTooManyStages = errors.New("too many pipeline stages")

// Runner executes parsed commands: single commands, pipelines and
// sequences.
type Runner struct {
	Launcher *cmd.Launcher
	Builtins *cmd.Builtins
	Limits   parser.Limits
	// MaxStages caps the number of pipeline stages. Zero means unlimited.
	MaxStages int
	Logger    *log.Logger
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// CreatePipeline makes the n-1 pipes joining n stages. readers[i] is the
// read end stage i consumes, writers[i] the write end stage i produces
// into; the first reader and the last writer are nil.
func CreatePipeline(n int) (readers []*os.File, writers []*os.File, err error) {
	readers = make([]*os.File, n)
	writers = make([]*os.File, n)

	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			// close that already open
			closeFiles(readers...)
			closeFiles(writers...)
			return nil, nil, err
		}

		writers[i] = w
		readers[i+1] = r
	}

	return readers, writers, nil
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}

// Pipeline runs stages concurrently, stage i's stdout feeding stage i+1's
// stdin, and returns every stage's exit status in stage order.
//
// The parent closes its copies of all pipe ends as soon as every stage is
// launched; children only inherit the descriptors bound to their standard
// streams, so a reader sees end-of-stream once its writer exits.
//
// Builtin stages run in-process; "cd" there does not move the
// interpreter. A returned *cmd.ExitRequest means a stage ran "exit"; the
// other stages have been reaped by then.
func (r *Runner) Pipeline(stages []cmd.Command, stdio cmd.Stdio) ([]int, error) {
	n := len(stages)
	if n == 0 {
		return nil, nil
	}

	// every stage reports into the same stderr
	stdio.Stderr = cmd.ShareWriter(stdio.Stderr)

	statuses := make([]int, n)
	if r.MaxStages > 0 && n > r.MaxStages {
		for i := range statuses {
			statuses[i] = cmd.StatusFailure
		}
		return statuses, fmt.Errorf("%w: %d > %d", ErrTooManyStages, n, r.MaxStages)
	}

	readers, writers, err := CreatePipeline(n)
	if err != nil {
		for i := range statuses {
			statuses[i] = cmd.StatusFailure
		}
		return statuses, fmt.Errorf("failed to create pipeline: %w", err)
	}
	r.logf("pipeline: %d stages, %d pipes", n, n-1)

	children := make([]*cmd.Child, n)
	builtinErrs := make([]error, n)
	parentEnds := make([]*os.File, 0, 2*n)
	var wg sync.WaitGroup

	for i, stage := range stages {
		stageIO := r.SetupCmdPipe(i, readers, writers, stdio)

		if r.Builtins != nil && cmd.CheckIfBuiltinCmd(stage.Name()) {
			wg.Add(1)
			go func(i int, stage cmd.Command) {
				defer wg.Done()
				// this stage owns its ends: downstream sees EOF when it returns
				defer closeFiles(readers[i], writers[i])

				_, err := r.Builtins.DispatchStage(stage, stageIO)
				builtinErrs[i] = err
			}(i, stage)
			continue
		}

		parentEnds = append(parentEnds, readers[i], writers[i])

		child, err := r.Launcher.Launch(stage, stageIO)
		if err != nil {
			cmd.Report(stdio.Stderr, err)
			statuses[i] = cmd.StatusFailure
			continue
		}
		children[i] = child
	}

	closeFiles(parentEnds...)

	for i, child := range children {
		if child != nil {
			statuses[i] = child.Wait()
		}
	}
	wg.Wait()

	var exitErr error
	for i, err := range builtinErrs {
		var req *cmd.ExitRequest
		if errors.As(err, &req) {
			statuses[i] = req.Code
			if exitErr == nil {
				exitErr = req
			}
		}
	}

	return statuses, exitErr
}

// SetupCmdPipe binds stage i to its pipe ends. The first stage reads the
// pipeline's stdin and the last one writes its stdout.
func (r *Runner) SetupCmdPipe(i int, readers, writers []*os.File, stdio cmd.Stdio) cmd.Stdio {
	stageIO := stdio
	if readers[i] != nil {
		stageIO.Stdin = readers[i]
	}
	if writers[i] != nil {
		stageIO.Stdout = writers[i]
	}

	return stageIO
}

// Single runs one command: a builtin in-process, anything else through
// the launcher. Builtins always succeed.
func (r *Runner) Single(c cmd.Command, stdio cmd.Stdio) (int, error) {
	if c.Empty() {
		return 0, nil
	}

	if r.Builtins != nil {
		handled, err := r.Builtins.Dispatch(c, stdio)
		if handled {
			var req *cmd.ExitRequest
			if errors.As(err, &req) {
				return req.Code, err
			}
			return 0, nil
		}
	}

	return r.Launcher.Run(c, stdio), nil
}
