package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/svetsed/gosh/internal/utils/path"
)

// Exit statuses reported for commands that never ran.
const (
	StatusFailure         = 1
	StatusNotExecutable   = 126
	StatusCommandNotFound = 127
)

// ExecError means the named program could not be found or executed.
type ExecError struct {
	Name   string
	Status int
	Err    error
}

func (e *ExecError) Error() string {
	if e.Status == StatusCommandNotFound {
		return fmt.Sprintf("%s: command not found", e.Name)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// LaunchError means process creation itself failed.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("%s: launch failed: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Launcher starts external commands.
type Launcher struct {
	Env    []string // nil inherits the interpreter's environment
	Dir    string   // "" uses the interpreter's working directory
	Logger *log.Logger
}

func (l *Launcher) logf(format string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
	}
}

// Child is a launched command. It is reaped by Wait.
type Child struct {
	Name string

	cmd    *exec.Cmd
	status int
	waited bool
	logger func(string, ...interface{})
}

func exited(name string, status int) *Child {
	return &Child{Name: name, status: status, waited: true}
}

// Pid returns the process id, or 0 when no process was created.
func (c *Child) Pid() int {
	if c.cmd == nil || c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// Wait blocks until the child terminates and returns its exit status.
// Calling it again returns the same status.
func (c *Child) Wait() int {
	if c.waited {
		return c.status
	}
	c.waited = true

	err := c.cmd.Wait()
	c.status = ExitStatus(err)
	if c.logger != nil {
		c.logger("reaped %s pid=%d status=%d%s", c.Name, c.Pid(), c.status, describeSignal(err))
	}

	return c.status
}

// Launch redirects and starts c. Open and exec failures are reported on
// the command's stderr and only affect this command: they come back as an
// already exited Child with a non-zero status. The returned error is set
// only when process creation itself failed.
func (l *Launcher) Launch(c Command, stdio Stdio) (*Child, error) {
	clean, redirs, err := Resolve(c.Args)
	if err != nil {
		Report(stdio.Stderr, err)
		return exited(c.Name(), StatusFailure), nil
	}

	stdio, files, err := OpenRedirections(redirs, stdio)
	if err != nil {
		Report(stdio.Stderr, err)
		return exited(c.Name(), StatusFailure), nil
	}
	// The child holds its own copies once started.
	defer files.Close()

	if len(clean) == 0 {
		return exited("", 0), nil
	}
	name := clean[0]

	cmdForRun, err := l.BuildCmd(clean, stdio)
	if err != nil {
		Report(stdio.Stderr, err)
		var execErr *ExecError
		if errors.As(err, &execErr) {
			return exited(name, execErr.Status), nil
		}
		return exited(name, StatusFailure), nil
	}

	if err := cmdForRun.Start(); err != nil {
		if execErr := classifyStartError(name, err); execErr != nil {
			Report(stdio.Stderr, execErr)
			return exited(name, execErr.Status), nil
		}
		return nil, &LaunchError{Name: name, Err: err}
	}

	child := &Child{Name: name, cmd: cmdForRun, logger: l.logf}
	l.logf("launched %s pid=%d", strings.Join(clean, " "), child.Pid())

	return child, nil
}

// BuildCmd resolves the program named by args[0] and binds stdio.
func (l *Launcher) BuildCmd(args []string, stdio Stdio) (*exec.Cmd, error) {
	name := args[0]

	program := name
	if !strings.Contains(name, "/") {
		program = path.LookPath(name)
		if program == "" {
			return nil, &ExecError{Name: name, Status: StatusCommandNotFound, Err: exec.ErrNotFound}
		}
	}

	cmd := exec.Command(program, args[1:]...)
	cmd.Args[0] = name
	cmd.Env = l.Env
	cmd.Dir = l.Dir
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	return cmd, nil
}

func classifyStartError(name string, err error) *ExecError {
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) {
		return nil
	}
	// the working directory failed, not the program
	if pathErr.Op == "chdir" {
		return nil
	}

	switch {
	case errors.Is(pathErr.Err, syscall.ENOENT):
		return &ExecError{Name: name, Status: StatusCommandNotFound, Err: err}
	case errors.Is(pathErr.Err, syscall.EACCES), errors.Is(pathErr.Err, syscall.ENOEXEC),
		errors.Is(pathErr.Err, syscall.EISDIR), errors.Is(pathErr.Err, syscall.ENOTDIR):
		return &ExecError{Name: name, Status: StatusNotExecutable, Err: err}
	default:
		return nil
	}
}

// Run launches c and waits for it. A launch failure is reported and
// counts as StatusFailure.
func (l *Launcher) Run(c Command, stdio Stdio) int {
	child, err := l.Launch(c, stdio)
	if err != nil {
		Report(stdio.Stderr, err)
		return StatusFailure
	}

	return child.Wait()
}
