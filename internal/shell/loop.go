package shell

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/chzyer/readline"
	"github.com/svetsed/gosh/internal/cmd"
	"github.com/svetsed/gosh/internal/completer"
)

const maxLineSize = 1024 * 1024

type lineReader interface {
	Readline() (string, error)
	Close() error
}

// scanReader reads lines from a non-terminal stdin, without a prompt.
type scanReader struct {
	scanner *bufio.Scanner
}

func newScanReader(r io.Reader) *scanReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &scanReader{scanner: scanner}
}

func (r *scanReader) Readline() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scanReader) Close() error {
	return nil
}

func isTerminal(f *os.File) bool {
	return f == os.Stdin && readline.IsTerminal(int(f.Fd()))
}

func (s *Session) newLineReader() (lineReader, error) {
	if !s.isTerminal() {
		return newScanReader(s.stdio.Stdin), nil
	}

	return readline.NewEx(&readline.Config{
		Prompt:          s.cfg.Prompt,
		AutoComplete:    completer.NewCmdCompleter(s.cfg.Prompt, s.stdio.Stdout),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		// history is walked by our own listener
		HistoryLimit: -1,
		Listener:     readline.FuncListener(s.History.WalkByHistory),
	})
}

// notifyInterrupt keeps SIGINT from killing the interpreter. The handler
// only raises the redraw flag; the loop acts on it between commands.
func (s *Session) notifyInterrupt() (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigCh:
				s.redraw.Store(true)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

func (s *Session) consumeRedraw() {
	if s.redraw.Swap(false) {
		s.logger.Printf("interrupt received")
		io.WriteString(s.stdio.Stdout, "\n")
	}
}

// Run reads and executes lines until end of input or "exit". It returns
// the interpreter's exit status.
func (s *Session) Run() int {
	s.loadHistory()
	defer s.saveHistory()

	stop := s.notifyInterrupt()
	defer stop()

	reader, err := s.newLineReader()
	if err != nil {
		cmd.Reportf(s.stdio.Stderr, "error reading input: %v", err)
		return cmd.StatusFailure
	}

	defer func() {
		if err := reader.Close(); err != nil {
			cmd.Reportf(s.stdio.Stderr, "error closing readline: %v", err)
		}
	}()

	status := 0
	for {
		line, err := reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.redraw.Store(false)
			continue
		}
		if err != nil {
			// io.EOF (Ctrl+D)
			if !errors.Is(err, io.EOF) {
				cmd.Reportf(s.stdio.Stderr, "error reading input: %v", err)
			}
			return status
		}

		if line == "" {
			continue
		}

		s.History.Record(line)

		var execErr error
		status, execErr = s.Execute(line)
		if code, ok := ExitCode(execErr); ok {
			return code
		}

		s.consumeRedraw()
	}
}
