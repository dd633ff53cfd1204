package history

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/spf13/afero"
)

// DefaultCapacity is the number of lines kept when no size is configured.
const DefaultCapacity = 16

type HistoryItem struct {
	Prev *HistoryItem
	Next *HistoryItem
	Line string
	// fresh marks a line recorded since the last AppendNew.
	fresh bool
}

// Entry is one rendered history line with its 1-based position.
type Entry struct {
	Index int
	Line  string
}

// History is a bounded log of input lines. Once full, recording a line
// evicts the oldest one.
type History struct {
	Head     *HistoryItem
	Tail     *HistoryItem
	Len      int
	Capacity int
	// CountNewRecords counts the fresh lines still held.
	CountNewRecords int
	Mu              sync.RWMutex
	Walk
}

type Walk struct {
	Current *HistoryItem
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{Capacity: capacity}
}

// Record appends line, evicting the oldest entry when at capacity.
func (h *History) Record(line string) {
	if line == "" {
		return
	}

	h.Mu.Lock()
	defer h.Mu.Unlock()

	h.pushBack(line).fresh = true
	h.CountNewRecords++
	h.Walk.Current = nil
}

func (h *History) pushBack(line string) *HistoryItem {
	newTail := &HistoryItem{
		Line: line,
	}

	if h.Tail == nil {
		h.Head = newTail
		h.Tail = newTail
	} else {
		newTail.Prev = h.Tail
		h.Tail.Next = newTail
		h.Tail = newTail
	}
	h.Len++

	for h.Len > h.Capacity {
		h.popFront()
	}

	return newTail
}

func (h *History) popFront() {
	if h.Head == nil {
		return
	}

	if h.Walk.Current == h.Head {
		h.Walk.Current = nil
	}

	if h.Head.fresh {
		h.CountNewRecords--
	}

	next := h.Head.Next
	h.Head.Next = nil
	if next != nil {
		next.Prev = nil
	} else {
		h.Tail = nil
	}
	h.Head = next
	h.Len--
}

// Render returns every entry, oldest first, indexed from 1.
func (h *History) Render() []Entry {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	entries := make([]Entry, 0, h.Len)
	i := 1
	for current := h.Head; current != nil; current = current.Next {
		entries = append(entries, Entry{Index: i, Line: current.Line})
		i++
	}

	return entries
}

// Last returns the n most recent entries, keeping their Render indices.
func (h *History) Last(n int) []Entry {
	entries := h.Render()
	if n < 0 {
		n = 0
	}
	if n >= len(entries) {
		return entries
	}

	return entries[len(entries)-n:]
}

func (h *History) Clear() {
	h.Mu.Lock()
	defer h.Mu.Unlock()

	h.Head = nil
	h.Tail = nil
	h.Len = 0
	h.CountNewRecords = 0
	h.Walk.Current = nil
}

// Format renders entries in the format(without quotes): "    1  echo hello\n".
func Format(entries []Entry) string {
	buf := strings.Builder{}
	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("%5d  %s\n", e.Index, e.Line))
	}

	return buf.String()
}

// Load reads lines saved by a previous session. They are not counted as
// new records. A missing file is not an error.
func (h *History) Load(fs afero.Fs, filename string) error {
	f, err := fs.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	h.Mu.Lock()
	defer h.Mu.Unlock()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			h.pushBack(line)
		}
	}

	return scanner.Err()
}

// AppendNew adds the lines recorded since the last call to the end of
// the file, oldest first, creating it if needed. Lines read from files
// are never appended.
func (h *History) AppendNew(fs afero.Fs, filename string) error {
	h.Mu.Lock()
	defer h.Mu.Unlock()

	if h.CountNewRecords == 0 {
		return nil
	}

	f, err := fs.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for current := h.Head; current != nil; current = current.Next {
		if current.fresh {
			w.WriteString(current.Line + "\n")
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}

	for current := h.Head; current != nil; current = current.Next {
		current.fresh = false
	}
	h.CountNewRecords = 0
	return nil
}

// Write replaces the contents of the file with the whole history,
// creating it if needed. The count of new records is kept, so the lines
// are still appended to the session's history file on exit.
func (h *History) Write(fs afero.Fs, filename string) error {
	h.Mu.RLock()
	defer h.Mu.RUnlock()

	f, err := fs.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for current := h.Head; current != nil; current = current.Next {
		w.WriteString(current.Line + "\n")
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}

	return nil
}

// WalkByHistory is a readline listener moving through history with Up/Down.
func (h *History) WalkByHistory(line []rune, pos int, key rune) (newLine []rune, newPos int, ok bool) {
	switch key {
	case readline.CharPrev: // 16 \x10
		return h.handleUp()
	case readline.CharNext: // 14 \x0e
		return h.handleDown()
	default:
		return nil, 0, false
	}
}

func (h *History) handleUp() (newLine []rune, newPos int, ok bool) {
	h.Mu.Lock()
	defer h.Mu.Unlock()

	if h.Current == nil {
		h.Current = h.Tail
		if h.Current != nil {
			line := []rune(h.Current.Line)
			return line, len(line), true
		}
		return nil, 0, false
	}

	if h.Current.Prev != nil {
		h.Current = h.Current.Prev
		line := []rune(h.Current.Line)
		return line, len(line), true
	}

	return nil, 0, false
}

func (h *History) handleDown() (newLine []rune, newPos int, ok bool) {
	h.Mu.Lock()
	defer h.Mu.Unlock()

	if h.Current == nil {
		return nil, 0, false
	}

	if h.Current.Next != nil {
		h.Current = h.Current.Next
		line := []rune(h.Current.Line)
		return line, len(line), true
	}

	h.Current = nil
	return []rune(""), 0, true
}
