package completer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompleter(t *testing.T) (*cmdCompleter, *bytes.Buffer) {
	t.Helper()

	bin := t.TempDir()
	for _, name := range []string{"gosh-alpha", "gosh-alpine", "gosh-beta"} {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(bin, "gosh-data"), []byte("x"), 0644))
	t.Setenv("PATH", bin)

	var out bytes.Buffer
	return NewCmdCompleter("sh> ", &out), &out
}

func TestFindPrefix(t *testing.T) {
	cases := map[string]struct {
		line      string
		prefix    string
		searchCmd bool
	}{
		"first word":      {line: "ec", prefix: "ec", searchCmd: true},
		"argument":        {line: "cat fi", prefix: "fi", searchCmd: false},
		"after pipe":      {line: "ls | wc", prefix: "wc", searchCmd: true},
		"after and":       {line: "true && ec", prefix: "ec", searchCmd: true},
		"empty argument":  {line: "cat ", prefix: "", searchCmd: false},
		"leading blanks":  {line: "   hi", prefix: "hi", searchCmd: true},
		"after semicolon": {line: "a;b", prefix: "b", searchCmd: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cc := NewCmdCompleter("", &bytes.Buffer{})
			assert.Equal(t, tc.prefix, cc.FindPrefix(tc.line))
			assert.Equal(t, tc.searchCmd, cc.searchCmd)
		})
	}
}

func TestCompleteBuiltin(t *testing.T) {
	cc, _ := newTestCompleter(t)

	line := []rune("hist")
	got, n := cc.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("ory ")}, got)
	assert.Equal(t, 4, n)
}

func TestCompleteExternal(t *testing.T) {
	cc, out := newTestCompleter(t)

	// common prefix first
	line := []rune("gosh-a")
	got, n := cc.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("lp")}, got)
	assert.Equal(t, 6, n)

	// ambiguous: bell, then the list on the second tab
	line = []rune("gosh-alp")
	got, _ = cc.Do(line, len(line))
	assert.Nil(t, got)
	assert.Equal(t, "\x07", out.String())

	got, _ = cc.Do(line, len(line))
	assert.Nil(t, got)
	assert.Contains(t, out.String(), "gosh-alpha  gosh-alpine")
	assert.NotContains(t, out.String(), "gosh-data")

	line = []rune("gosh-b")
	got, _ = cc.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("eta ")}, got)
}

func TestCompleteNoMatch(t *testing.T) {
	cc, out := newTestCompleter(t)

	line := []rune("zzz-nothing")
	got, _ := cc.Do(line, len(line))
	assert.Nil(t, got)
	assert.Equal(t, "\x07", out.String())
}

func TestCompleteFilename(t *testing.T) {
	cc, _ := newTestCompleter(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	line := []rune("cat not")
	got, n := cc.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("es.txt ")}, got)
	assert.Equal(t, 3, n)

	line = []rune("cd nes")
	got, _ = cc.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("ted/")}, got)

	line = []rune("cat " + dir + "/no")
	got, _ = cc.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("tes.txt ")}, got)
}
