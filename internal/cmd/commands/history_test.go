package commands

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svetsed/gosh/internal/history"
)

func newHistory(lines ...string) *history.History {
	h := history.NewHistory(16)
	for _, l := range lines {
		h.Record(l)
	}
	return h
}

func TestHandleHistoryCmd(t *testing.T) {
	cases := map[string]struct {
		args    []string
		want    string
		wantErr bool
	}{
		"all":          {args: []string{"history"}, want: "    1  ls\n    2  pwd\n    3  history\n"},
		"last two":     {args: []string{"history", "2"}, want: "    2  pwd\n    3  history\n"},
		"zero":         {args: []string{"history", "0"}, want: ""},
		"not a number": {args: []string{"history", "abc"}, wantErr: true},
		"negative":     {args: []string{"history", "--", "-1"}, wantErr: true},
		"too many":     {args: []string{"history", "1", "2"}, wantErr: true},
		"bad option":   {args: []string{"history", "-z"}, wantErr: true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			h := newHistory("ls", "pwd", "history")

			out, err := HandleHistoryCmd(h, afero.NewMemMapFs(), tc.args)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestHistoryClear(t *testing.T) {
	h := newHistory("ls", "pwd")

	out, err := HandleHistoryCmd(h, afero.NewMemMapFs(), []string{"history", "-c"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, h.Render())
}

func TestHistoryFileOptions(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/saved", []byte("old 1\nold 2\n"), 0600))

	h := newHistory("ls", "pwd")

	// -r appends the file's lines
	out, err := HandleHistoryCmd(h, fs, []string{"history", "-r", "/saved"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "    1  ls\n    2  pwd\n    3  old 1\n    4  old 2\n", history.Format(h.Render()))

	// -w replaces the file with the whole list
	require.NoError(t, afero.WriteFile(fs, "/written", []byte("stale\nstale\nstale\nstale\nstale\n"), 0600))
	_, err = HandleHistoryCmd(h, fs, []string{"history", "-w", "/written"})
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, "/written")
	require.NoError(t, err)
	assert.Equal(t, "ls\npwd\nold 1\nold 2\n", string(data))

	// -a appends only the lines recorded since the last append
	_, err = HandleHistoryCmd(h, fs, []string{"history", "-a", "/appended"})
	require.NoError(t, err)
	h.Record("echo new")
	_, err = HandleHistoryCmd(h, fs, []string{"history", "-a", "/appended"})
	require.NoError(t, err)
	data, err = afero.ReadFile(fs, "/appended")
	require.NoError(t, err)
	assert.Equal(t, "ls\npwd\necho new\n", string(data))
}

func TestHistoryFileOptionErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := newHistory("ls")

	cases := map[string][]string{
		"read missing":   {"history", "-r", "/missing"},
		"missing file":   {"history", "-w"},
		"extra argument": {"history", "-w", "/f", "3"},
	}

	for tn, args := range cases {
		t.Run(tn, func(t *testing.T) {
			_, err := HandleHistoryCmd(h, fs, args)
			assert.Error(t, err)
		})
	}

	assert.Equal(t, []history.Entry{{Index: 1, Line: "ls"}}, h.Render())
}

func TestHistoryClearThenRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/saved", []byte("from file\n"), 0600))
	h := newHistory("ls", "pwd")

	_, err := HandleHistoryCmd(h, fs, []string{"history", "-c", "-r", "/saved"})
	require.NoError(t, err)
	assert.Equal(t, []history.Entry{{Index: 1, Line: "from file"}}, h.Render())
}
