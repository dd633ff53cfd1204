package shell

import (
	"errors"
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/spf13/afero"
	"github.com/svetsed/gosh/internal/cmd"
	"github.com/svetsed/gosh/internal/config"
	"github.com/svetsed/gosh/internal/history"
	"github.com/svetsed/gosh/internal/parser"
	"github.com/svetsed/gosh/internal/pipeline"
)

// Session is one interpreter instance: its configuration, history and
// the streams commands inherit.
type Session struct {
	History *history.History

	cfg         *config.Configuration
	runner      *pipeline.Runner
	stdio       cmd.Stdio
	fs          afero.Fs
	historyFile string
	logger      *log.Logger

	// redraw is set from the interrupt handler and consumed by the loop.
	redraw atomic.Bool
}

type Option func(*Session)

func WithStdio(stdio cmd.Stdio) Option {
	return func(s *Session) {
		s.stdio = stdio
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithFs sets the filesystem the history file is read from and written to.
func WithFs(fs afero.Fs) Option {
	return func(s *Session) {
		s.fs = fs
	}
}

// WithHome sets the directory "cd" goes to without arguments.
func WithHome(dir string) Option {
	return func(s *Session) {
		s.runner.Builtins.Home = dir
	}
}

func New(cfg *config.Configuration, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}

	h := history.NewHistory(cfg.HistorySize)
	s := &Session{
		History:     h,
		cfg:         cfg,
		stdio:       cmd.OSStdio(),
		fs:          afero.NewOsFs(),
		historyFile: cfg.ResolveHistoryFile(),
		logger:      log.New(io.Discard, "", 0),
		runner: &pipeline.Runner{
			Launcher:  &cmd.Launcher{},
			Builtins:  &cmd.Builtins{History: h},
			Limits:    parser.Limits{MaxArgs: cfg.MaxArgs},
			MaxStages: cfg.MaxStages,
		},
	}

	for _, opt := range opts {
		opt(s)
	}
	s.runner.Builtins.Fs = s.fs
	s.runner.Logger = s.logger
	s.runner.Launcher.Logger = s.logger

	return s
}

// Execute interprets one line. The returned status is the line's exit
// status; an *cmd.ExitRequest error means the interpreter must stop.
func (s *Session) Execute(line string) (int, error) {
	kind, sep := parser.Classify(line)
	s.logger.Printf("execute %s: %q", kind, line)

	switch kind {
	case parser.KindPipeline:
		stages, err := parser.ParseCommands(parser.SplitOn(line, sep), s.runner.Limits)
		if err != nil {
			cmd.Report(s.stdio.Stderr, err)
			return cmd.StatusFailure, nil
		}
		if len(stages) == 0 {
			return 0, nil
		}

		statuses, err := s.runner.Pipeline(stages, s.stdio)
		status := 0
		if len(statuses) > 0 {
			status = statuses[len(statuses)-1]
		}
		if err != nil && !isExit(err) {
			cmd.Report(s.stdio.Stderr, err)
			return status, nil
		}
		return status, err

	case parser.KindSequence:
		return s.runner.Sequence(parser.SplitOn(line, sep), sep, s.stdio)

	default:
		c, err := parser.ParseCommand(line, s.runner.Limits)
		if err != nil {
			cmd.Report(s.stdio.Stderr, err)
			return cmd.StatusFailure, nil
		}
		return s.runner.Single(c, s.stdio)
	}
}

func isExit(err error) bool {
	var req *cmd.ExitRequest
	return errors.As(err, &req)
}

// ExitCode extracts the code of an *cmd.ExitRequest.
func ExitCode(err error) (int, bool) {
	var req *cmd.ExitRequest
	if errors.As(err, &req) {
		return req.Code, true
	}
	return 0, false
}

func (s *Session) loadHistory() {
	if s.historyFile == "" {
		return
	}
	if err := s.History.Load(s.fs, s.historyFile); err != nil {
		cmd.Reportf(s.stdio.Stderr, "history: %v", err)
	}
}

func (s *Session) saveHistory() {
	if s.historyFile == "" {
		return
	}
	if err := s.History.AppendNew(s.fs, s.historyFile); err != nil {
		cmd.Reportf(s.stdio.Stderr, "history: %v", err)
	}
}

func (s *Session) isTerminal() bool {
	f, ok := s.stdio.Stdin.(*os.File)
	return ok && isTerminal(f)
}
