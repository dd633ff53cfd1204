package path

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GetListPath returns the directories of $PATH. An empty entry means the
// current directory.
func GetListPath() []string {
	pathEnv := os.Getenv("PATH")
	if pathEnv == "" {
		return nil
	}

	dirs := filepath.SplitList(pathEnv)
	for i, dir := range dirs {
		if dir == "" {
			dirs[i] = "."
		}
	}

	return dirs
}

// LookPath returns the first executable regular file named filename in
// $PATH, or "" if there is none.
func LookPath(filename string) string {
	for _, dir := range GetListPath() {
		path := filepath.Join(dir, filename)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if !info.IsDir() && IsExecutable(path, info) {
			if !filepath.IsAbs(path) {
				// keep "./prog" so exec does not search $PATH again
				path = "." + string(filepath.Separator) + path
			}
			return path
		}
	}

	return ""
}

func IsExecutable(path string, info os.FileInfo) bool {
	if runtime.GOOS == "windows" {
		ext := filepath.Ext(path)
		for _, e := range []string{".exe", ".com", ".bat", ".cmd"} {
			if strings.EqualFold(ext, e) {
				return true
			}
		}
		return false
	}

	return info.Mode()&0111 != 0
}
