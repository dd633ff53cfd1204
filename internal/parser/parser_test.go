package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svetsed/gosh/internal/cmd"
)

func TestSplitWhitespace(t *testing.T) {
	cases := map[string]struct {
		in   string
		want []string
	}{
		"simple":       {in: "ls -la", want: []string{"ls", "-la"}},
		"runs":         {in: "  echo \t hello   world ", want: []string{"echo", "hello", "world"}},
		"blank":        {in: " \t  ", want: []string{}},
		"empty":        {in: "", want: []string{}},
		"quotes kept":  {in: `echo "a b"`, want: []string{"echo", `"a`, `b"`}},
		"operators":    {in: "cat < in > out", want: []string{"cat", "<", "in", ">", "out"}},
		"glued":        {in: "echo hi>out", want: []string{"echo", "hi>out"}},
		"single token": {in: "pwd", want: []string{"pwd"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitWhitespace(tc.in))
		})
	}
}

func TestSplitOn(t *testing.T) {
	cases := map[string]struct {
		in   string
		sep  Separator
		want []string
	}{
		"pipe":        {in: "ls | wc -l", sep: SepPipe, want: []string{"ls ", "wc -l"}},
		"and":         {in: "true && echo ok", sep: SepAnd, want: []string{"true ", "echo ok"}},
		"seq":         {in: "a;b ;  c", sep: SepSeq, want: []string{"a", "b ", "c"}},
		"empty piece": {in: "a ; ; b", sep: SepSeq, want: []string{"a ", "b"}},
		"trailing":    {in: "ls |", sep: SepPipe, want: []string{"ls "}},
		"no sep":      {in: "ls", sep: "", want: nil},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitOn(tc.in, tc.sep))
		})
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		in   string
		kind Kind
		sep  Separator
	}{
		"simple":       {in: "echo hi", kind: KindSimple, sep: ""},
		"pipe":         {in: "ls | wc", kind: KindPipeline, sep: SepPipe},
		"and":          {in: "a && b", kind: KindSequence, sep: SepAnd},
		"seq":          {in: "a ; b", kind: KindSequence, sep: SepSeq},
		"pipe wins":    {in: "a ; b | c", kind: KindPipeline, sep: SepPipe},
		"and over seq": {in: "a ; b && c", kind: KindSequence, sep: SepAnd},
		"single amp":   {in: "sleep 1 &", kind: KindSimple, sep: ""},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			kind, sep := Classify(tc.in)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.sep, sep)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "simple", KindSimple.String())
	assert.Equal(t, "pipeline", KindPipeline.String())
	assert.Equal(t, "sequence", KindSequence.String())
}

func TestParseCommand(t *testing.T) {
	c, err := ParseCommand("  echo  hello ", Limits{})
	require.NoError(t, err)
	assert.Equal(t, cmd.Command{Args: []string{"echo", "hello"}}, c)

	c, err = ParseCommand("   ", Limits{})
	require.NoError(t, err)
	assert.True(t, c.Empty())

	_, err = ParseCommand("a b c", Limits{MaxArgs: 2})
	assert.True(t, errors.Is(err, ErrTooManyArgs))

	_, err = ParseCommand("a b", Limits{MaxArgs: 2})
	assert.NoError(t, err)
}

func TestParseCommands(t *testing.T) {
	cmds, err := ParseCommands([]string{"ls -l", "  ", "wc -l"}, Limits{})
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "ls", cmds[0].Name())
	assert.Equal(t, "wc", cmds[1].Name())

	_, err = ParseCommands([]string{"ls", "a b c d"}, Limits{MaxArgs: 3})
	assert.ErrorIs(t, err, ErrTooManyArgs)
}
