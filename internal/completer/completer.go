package completer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/svetsed/gosh/internal/utils/path"
)

type Match struct {
	matchStr string
	isDir    bool
}

// cmdCompleter implements readline.AutoCompleter. The first word of a
// command completes against builtins and $PATH, later words against the
// entries of the current directory.
type cmdCompleter struct {
	lastPrefix      string
	lenPrefixInRune int
	matches         []Match
	tab             int
	searchCmd       bool
	builtins        []string
	externals       []string
	loadedExt       bool
	prompt          string
	out             io.Writer
}

func NewCmdCompleter(prompt string, out io.Writer) *cmdCompleter {
	return &cmdCompleter{
		matches:   []Match{},
		builtins:  []string{"cd", "exit", "history"},
		externals: []string{},
		prompt:    prompt,
		out:       out,
	}
}

func (cc *cmdCompleter) ScanExternals() {
	listDirs := path.GetListPath()
	if listDirs == nil {
		return
	}

	uniq := make(map[string]bool)
	for _, dir := range listDirs {
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}

			info, err := file.Info()
			if err != nil {
				continue
			}

			fileStr := file.Name()
			if path.IsExecutable(filepath.Join(dir, fileStr), info) && !uniq[fileStr] {
				uniq[fileStr] = true
				cc.externals = append(cc.externals, fileStr)
			}
		}
	}

	cc.loadedExt = true
}

// FindPrefix returns the word under the cursor and records whether it is
// in command position (first word of the current stage).
func (cc *cmdCompleter) FindPrefix(lineStr string) string {
	stageStart := strings.LastIndexAny(lineStr, "|;&")
	stage := lineStr[stageStart+1:]

	lastSpace := strings.LastIndexAny(stage, " \t")
	if lastSpace == -1 { // no space -> getting the whole stage
		cc.searchCmd = true
		return stage
	}

	cc.searchCmd = strings.TrimSpace(stage[:lastSpace]) == ""
	return stage[lastSpace+1:]
}

func (cc *cmdCompleter) addMatch(uniq map[string]bool, m Match) {
	if !uniq[m.matchStr] {
		uniq[m.matchStr] = true
		cc.matches = append(cc.matches, m)
	}
}

func (cc *cmdCompleter) GetMatches() {
	uniqMatches := make(map[string]bool)
	for _, cmd := range cc.builtins {
		if strings.HasPrefix(cmd, cc.lastPrefix) {
			cc.addMatch(uniqMatches, Match{matchStr: cmd})
		}
	}

	for _, cmd := range cc.externals {
		if strings.HasPrefix(cmd, cc.lastPrefix) {
			cc.addMatch(uniqMatches, Match{matchStr: cmd})
		}
	}
}

// SearchMatchInCurrentDir matches the prefix against directory entries.
// A prefix containing a slash is looked up in that directory.
func (cc *cmdCompleter) SearchMatchInCurrentDir() {
	dir, base := ".", cc.lastPrefix
	if i := strings.LastIndex(cc.lastPrefix, "/"); i >= 0 {
		dir, base = cc.lastPrefix[:i+1], cc.lastPrefix[i+1:]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	uniq := make(map[string]bool)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), base) {
			name := e.Name()
			if dir != "." {
				name = dir + name
			}
			cc.addMatch(uniq, Match{matchStr: name, isDir: e.IsDir()})
		}
	}
}

func (cc *cmdCompleter) SortMatches() {
	sort.Slice(cc.matches, func(i, j int) bool {
		return cc.matches[i].matchStr < cc.matches[j].matchStr
	})
}

func (cc *cmdCompleter) MatchesJoin(sep string) string {
	names := make([]string, 0, len(cc.matches))
	for _, m := range cc.matches {
		names = append(names, m.matchStr)
	}
	return strings.Join(names, sep)
}

func (cc *cmdCompleter) LongestCommonPrefix() []rune {
	firstStr := []rune(cc.matches[0].matchStr)

	for i, ch := range firstStr {
		for _, m := range cc.matches[1:] {
			tmpStrInRune := []rune(m.matchStr)
			if i >= len(tmpStrInRune) || tmpStrInRune[i] != ch {
				return firstStr[:i]
			}
		}
	}

	return firstStr
}

// Do implement AutoCompleter readline then user press TAB.
func (cc *cmdCompleter) Do(line []rune, pos int) ([][]rune, int) {
	lineStr := string(line[:pos])

	// search prefix
	prefix := cc.FindPrefix(lineStr)

	// too many option
	if prefix == "" && cc.searchCmd {
		fmt.Fprint(cc.out, "\x07")
		return nil, 0
	}

	if cc.lastPrefix == prefix && cc.tab == 1 {
		fmt.Fprintf(cc.out, "\n%s\n", cc.MatchesJoin("  "))
		fmt.Fprint(cc.out, cc.prompt+lineStr)
		return nil, 0
	}

	// refresh data for new prefix
	cc.tab = 0
	cc.lastPrefix = prefix
	cc.lenPrefixInRune = len([]rune(prefix))
	cc.matches = []Match{}

	if cc.searchCmd && !cc.loadedExt {
		cc.ScanExternals()
	}

	if !cc.searchCmd {
		cc.SearchMatchInCurrentDir()
	} else {
		cc.GetMatches() // search in externals and builtin
	}

	if len(cc.matches) == 0 {
		fmt.Fprint(cc.out, "\x07")
		return nil, 0
	}

	// print ending, no full
	if len(cc.matches) == 1 {
		ending := []rune(cc.matches[0].matchStr)[cc.lenPrefixInRune:]
		sign := ' '
		if cc.matches[0].isDir {
			sign = '/'
		}
		ending = append(ending, sign)

		return [][]rune{ending}, cc.lenPrefixInRune
	}

	cc.SortMatches()
	commonPrefix := cc.LongestCommonPrefix()

	// may print common prefix (ending again)
	if len(commonPrefix) > cc.lenPrefixInRune {
		ending := commonPrefix[cc.lenPrefixInRune:]
		return [][]rune{ending}, cc.lenPrefixInRune
	}

	// print matches to the next tab
	if cc.tab == 0 {
		fmt.Fprint(cc.out, "\x07")
		cc.tab = 1
	}
	return nil, 0
}
