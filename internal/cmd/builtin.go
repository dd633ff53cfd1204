package cmd

import (
	"errors"
	"io"
	"os"
	"strconv"
	"syscall"

	"github.com/spf13/afero"
	"github.com/svetsed/gosh/internal/cmd/commands"
	"github.com/svetsed/gosh/internal/history"
)

var builtinCmd = map[string]bool{
	"cd":      true,
	"exit":    true,
	"history": true,
}

func CheckIfBuiltinCmd(name string) bool {
	return builtinCmd[name]
}

// Builtins runs the commands that must execute inside the interpreter.
type Builtins struct {
	History *history.History
	// Home is the directory "cd" uses without arguments. Empty means $HOME.
	Home string
	// Fs is where "history -r/-w/-a" read and write. Nil means the host
	// filesystem.
	Fs afero.Fs
}

// Dispatch runs c if it names a builtin and reports whether it did.
// Builtin failures are written to stderr and are not returned; the only
// error is an *ExitRequest from "exit".
func (b *Builtins) Dispatch(c Command, stdio Stdio) (handled bool, err error) {
	return b.dispatch(c, stdio, false)
}

// DispatchStage is Dispatch for a pipeline stage, which runs alongside
// other processes: "cd" only checks its target and leaves the
// interpreter's working directory unchanged.
func (b *Builtins) DispatchStage(c Command, stdio Stdio) (handled bool, err error) {
	return b.dispatch(c, stdio, true)
}

func (b *Builtins) dispatch(c Command, stdio Stdio, stage bool) (handled bool, err error) {
	if !CheckIfBuiltinCmd(c.Name()) {
		return false, nil
	}

	args, redirs, err := Resolve(c.Args)
	if err != nil {
		Report(stdio.Stderr, err)
		return true, nil
	}

	stdio, files, err := OpenRedirections(redirs, stdio)
	if err != nil {
		Report(stdio.Stderr, err)
		return true, nil
	}
	defer files.Close()

	switch args[0] {
	case "cd":
		b.cd(args[1:], stdio, stage)
	case "history":
		b.history(args, stdio)
	case "exit":
		return true, exitRequest(args[1:], stdio)
	}

	return true, nil
}

func (b *Builtins) fs() afero.Fs {
	if b.Fs == nil {
		return afero.NewOsFs()
	}
	return b.Fs
}

func (b *Builtins) home() string {
	if b.Home != "" {
		return b.Home
	}
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}

func (b *Builtins) cd(args []string, stdio Stdio, checkOnly bool) {
	dir := b.home()
	if len(args) > 0 {
		dir = args[0]
	}

	if dir == "" {
		Reportf(stdio.Stderr, "cd: HOME not set")
		return
	}

	if checkOnly {
		info, err := os.Stat(dir)
		if err != nil {
			Reportf(stdio.Stderr, "cd: %s: %v", dir, unwrapPathErr(err))
		} else if !info.IsDir() {
			Reportf(stdio.Stderr, "cd: %s: %v", dir, syscall.ENOTDIR)
		}
		return
	}

	if err := os.Chdir(dir); err != nil {
		Reportf(stdio.Stderr, "cd: %s: %v", dir, unwrapPathErr(err))
	}
}

func (b *Builtins) history(args []string, stdio Stdio) {
	if b.History == nil {
		return
	}

	output, err := commands.HandleHistoryCmd(b.History, b.fs(), args)
	if err != nil {
		Report(stdio.Stderr, err)
		return
	}

	if output != "" && stdio.Stdout != nil {
		if _, err := io.WriteString(stdio.Stdout, output); err != nil {
			Reportf(stdio.Stderr, "history: %v", err)
		}
	}
}

func exitRequest(args []string, stdio Stdio) *ExitRequest {
	if len(args) == 0 {
		return &ExitRequest{Code: 0}
	}

	code, err := strconv.Atoi(args[0])
	if err != nil {
		Reportf(stdio.Stderr, "exit: %s: numeric argument required", args[0])
		return &ExitRequest{Code: 2}
	}

	return &ExitRequest{Code: code & 0xff}
}

func unwrapPathErr(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
