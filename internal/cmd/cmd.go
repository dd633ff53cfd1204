package cmd

import (
	"io"
	"os"
	"sync"
)

// Command is one whitespace-tokenized command: program name first, then
// arguments and redirection operators with their operands.
type Command struct {
	Args []string
}

func (c Command) Empty() bool {
	return len(c.Args) == 0
}

// Name returns the first token or "" for an empty command.
func (c Command) Name() string {
	if c.Empty() {
		return ""
	}
	return c.Args[0]
}

// Stdio is the set of standard streams a command runs with.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// OSStdio binds the interpreter's own streams.
func OSStdio() Stdio {
	return Stdio{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type closers []io.Closer

func (cs closers) Close() error {
	var lastErr error
	for _, c := range cs {
		if err := c.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// LockedWriter serializes writes coming from several goroutines. It only
// has Write, so io.Copy in os/exec never reaches into the underlying
// writer's ReadFrom.
type LockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *LockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// ShareWriter returns w in a form several stages can write to at once.
// Files are passed to children as descriptors and are returned as is.
func ShareWriter(w io.Writer) io.Writer {
	switch w.(type) {
	case nil, *os.File, *LockedWriter:
		return w
	}

	return &LockedWriter{w: w}
}
