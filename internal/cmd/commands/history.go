package commands

import (
	"fmt"
	"strconv"

	"github.com/pborman/getopt/v2"
	"github.com/spf13/afero"
	"github.com/svetsed/gosh/internal/history"
)

// HandleHistoryCmd runs "history [-c] [-r file] [-w file] [-a file] [n]"
// against h and returns the text to print. args includes the command name.
// Options run in the order clear, read, write, append; with any file
// option nothing is printed.
func HandleHistoryCmd(h *history.History, fs afero.Fs, args []string) (string, error) {
	opts := getopt.New()
	clearList := opts.Bool('c', "clear the history list")
	readFile := opts.String('r', "", "append the lines of file to the history", "file")
	writeFile := opts.String('w', "", "write the history to file, replacing it", "file")
	appendFile := opts.String('a', "", "append the lines recorded in this session to file", "file")

	if err := opts.Getopt(args, nil); err != nil {
		return "", fmt.Errorf("history: %v\nusage: history [-c] [-r file] [-w file] [-a file] [n]", err)
	}

	if *clearList {
		h.Clear()
	}

	fileOps := []struct {
		name string
		run  func(afero.Fs, string) error
	}{
		{name: *readFile, run: func(fs afero.Fs, name string) error {
			// unlike at startup, a missing file is an error here
			if _, err := fs.Stat(name); err != nil {
				return err
			}
			return h.Load(fs, name)
		}},
		{name: *writeFile, run: h.Write},
		{name: *appendFile, run: h.AppendNew},
	}

	rest := opts.Args()
	usedFile := false
	for _, op := range fileOps {
		if op.name == "" {
			continue
		}
		usedFile = true
		if err := op.run(fs, op.name); err != nil {
			return "", fmt.Errorf("history: %s: %w", op.name, err)
		}
	}

	if *clearList || usedFile {
		if len(rest) > 0 {
			return "", fmt.Errorf("history: too many arguments")
		}
		return "", nil
	}

	switch len(rest) {
	case 0:
		return history.Format(h.Render()), nil
	case 1:
		return HistoryCmdWithArgs(h, rest[0])
	default:
		return "", fmt.Errorf("history: too many arguments")
	}
}

// HistoryCmdWithArgs prints the last n entries.
func HistoryCmdWithArgs(h *history.History, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return "", fmt.Errorf("history: %s: numeric argument required", arg)
	}

	return history.Format(h.Last(n)), nil
}
