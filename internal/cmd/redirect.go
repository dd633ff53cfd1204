package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Direction is the stream a redirection rebinds.
type Direction int

const (
	Input Direction = iota
	OutputTruncate
	OutputAppend
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "<"
	case OutputTruncate:
		return ">"
	case OutputAppend:
		return ">>"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

var operators = map[string]Direction{
	"<":  Input,
	">":  OutputTruncate,
	">>": OutputAppend,
}

// Redirection binds a standard stream to a file.
type Redirection struct {
	Direction Direction
	Filename  string
}

var ErrMissingFilename = errors.New("syntax error: redirection without a filename")

// OpenError is returned when a redirection target cannot be opened.
type OpenError struct {
	Redirection Redirection
	Err         error
}

func (e *OpenError) Error() string {
	return e.Err.Error()
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Resolve strips every redirection operator and the filename after it
// from tokens. Redirections are returned in scan order.
func Resolve(tokens []string) (clean []string, redirs []Redirection, err error) {
	clean = make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		dir, isOp := operators[tokens[i]]
		if !isOp {
			clean = append(clean, tokens[i])
			continue
		}

		if i+1 >= len(tokens) {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingFilename, tokens[i])
		}

		redirs = append(redirs, Redirection{Direction: dir, Filename: tokens[i+1]})
		i++
	}

	return clean, redirs, nil
}

func (r Redirection) open() (*os.File, error) {
	switch r.Direction {
	case Input:
		return os.OpenFile(r.Filename, os.O_RDONLY, 0)
	case OutputTruncate:
		return os.OpenFile(r.Filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	case OutputAppend:
		return os.OpenFile(r.Filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	default:
		return nil, fmt.Errorf("unknown redirection %v", r.Direction)
	}
}

// OpenRedirections opens every redirection target in order and rebinds
// the matching stream of stdio. When several redirections share a
// direction, all files are opened but the rightmost one wins.
// The returned closer releases the parent's copies of the files and must
// be called once the command no longer needs them.
func OpenRedirections(redirs []Redirection, stdio Stdio) (Stdio, io.Closer, error) {
	files := make(closers, 0, len(redirs))

	// bound streams stay off stdio until every file is open
	out := stdio
	for _, r := range redirs {
		f, err := r.open()
		if err != nil {
			files.Close()
			return stdio, nil, &OpenError{Redirection: r, Err: err}
		}
		files = append(files, f)

		if r.Direction == Input {
			out.Stdin = f
		} else {
			out.Stdout = f
		}
	}

	return out, files, nil
}
