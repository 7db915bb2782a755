package mirror

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// TreeSnapshot is the result of scanning one root: every file and every
// directory under it, as root-relative POSIX paths. Files and directories are
// separate namespaces. Snapshots are built fresh on every pass, the filesystem
// is the source of truth.
type TreeSnapshot struct {
	Root  string
	Files []string
	Dirs  []string
}

// ScanTree walks root recursively and collects relative paths. The root itself
// is not an entry. Entries matched by the ignore list are skipped, for
// directories the whole subtree is skipped.
func ScanTree(root string, ignore *IgnoreList) (*TreeSnapshot, error) {
	snapshot := &TreeSnapshot{Root: root}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if ignore.ShouldIgnore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			snapshot.Dirs = append(snapshot.Dirs, rel)
		} else {
			snapshot.Files = append(snapshot.Files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(snapshot.Files)
	sort.Strings(snapshot.Dirs)
	return snapshot, nil
}
