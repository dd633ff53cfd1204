package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/svetsed/gosh/internal/cmd"
)

// Separator is a literal substring that splits a line into command-strings.
type Separator string

const (
	SepPipe Separator = "|"
	SepAnd  Separator = "&&"
	SepSeq  Separator = ";"
)

// Kind tells which component should handle a raw line.
type Kind int

const (
	KindSimple Kind = iota
	KindPipeline
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindPipeline:
		return "pipeline"
	case KindSequence:
		return "sequence"
	default:
		return "simple"
	}
}

var ErrTooManyArgs = errors.New("too many arguments")

// Limits caps the size of parsed input. Zero means unlimited.
type Limits struct {
	MaxArgs int
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

// SplitWhitespace splits line on runs of spaces and tabs.
// Empty tokens are discarded, so a blank line yields an empty slice.
func SplitWhitespace(line string) []string {
	args := make([]string, 0, 4)

	start := -1
	for i := 0; i < len(line); i++ {
		if isBlank(line[i]) {
			if start >= 0 {
				args = append(args, line[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}

	if start >= 0 {
		args = append(args, line[start:])
	}

	return args
}

// SplitOn splits line on every exact occurrence of sep. Leading blanks of
// each piece are trimmed and pieces left empty are dropped.
func SplitOn(line string, sep Separator) []string {
	if sep == "" {
		return nil
	}

	parts := strings.Split(line, string(sep))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimLeft(part, " \t")
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}

	return out
}

// Classify decides how a line is executed. A pipe wins over sequencing
// operators, and && wins over ; when both are present.
func Classify(line string) (Kind, Separator) {
	switch {
	case strings.Contains(line, string(SepPipe)):
		return KindPipeline, SepPipe
	case strings.Contains(line, string(SepAnd)):
		return KindSequence, SepAnd
	case strings.Contains(line, string(SepSeq)):
		return KindSequence, SepSeq
	default:
		return KindSimple, ""
	}
}

// ParseCommand tokenizes one command-string. An empty result is not an
// error: callers treat it as nothing to execute.
func ParseCommand(s string, limits Limits) (cmd.Command, error) {
	args := SplitWhitespace(s)
	if limits.MaxArgs > 0 && len(args) > limits.MaxArgs {
		return cmd.Command{}, fmt.Errorf("%w: %d > %d", ErrTooManyArgs, len(args), limits.MaxArgs)
	}

	return cmd.Command{Args: args}, nil
}

// ParseCommands tokenizes every command-string, dropping the ones that
// contain no tokens.
func ParseCommands(list []string, limits Limits) ([]cmd.Command, error) {
	cmds := make([]cmd.Command, 0, len(list))
	for _, s := range list {
		c, err := ParseCommand(s, limits)
		if err != nil {
			return nil, err
		}
		if c.Empty() {
			continue
		}
		cmds = append(cmds, c)
	}

	return cmds, nil
}
