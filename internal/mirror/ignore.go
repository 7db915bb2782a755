package mirror

import (
	"os"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreList filters paths out of a scan using gitignore-style patterns.
// Ignored paths are invisible to the reconciler on both sides, so they are
// neither copied nor deleted.
type IgnoreList struct {
	ignore *gitignore.GitIgnore
}

// NewIgnoreList compiles the given pattern lines. An empty pattern set yields
// a list that ignores nothing.
func NewIgnoreList(patterns ...string) *IgnoreList {
	if len(patterns) == 0 {
		return &IgnoreList{}
	}
	return &IgnoreList{ignore: gitignore.CompileIgnoreLines(patterns...)}
}

// LoadIgnoreFile reads pattern lines from a file, one pattern per line.
func LoadIgnoreFile(path string) (*IgnoreList, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	ignore, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, err
	}
	return &IgnoreList{ignore: ignore}, nil
}

// ShouldIgnore reports whether a root-relative path is excluded from syncing.
// Directory paths are also matched with a trailing slash so `logs/` style
// patterns behave as in gitignore.
func (l *IgnoreList) ShouldIgnore(relPath string, isDir bool) bool {
	if l == nil || l.ignore == nil {
		return false
	}
	if l.ignore.MatchesPath(relPath) {
		return true
	}
	return isDir && l.ignore.MatchesPath(relPath+"/")
}
