package mirror

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// DeltaSet is the difference between a source and a replica snapshot,
// partitioned into the four groups the reconciler applies. FoldersToCreate and
// FoldersToDelete are disjoint by construction, as are the file groups.
type DeltaSet struct {
	FoldersToDelete []string
	FoldersToCreate []string
	FilesToUpsert   []string
	FilesToDelete   []string
}

// ComputeDelta diffs two snapshots by exact relative-path equality. Upsert
// covers every source file: present-in-both entries still need a content check
// before any copy happens, so the split between create and update is decided at
// apply time.
func ComputeDelta(source, replica *TreeSnapshot) *DeltaSet {
	sourceDirs := mapset.NewThreadUnsafeSet(source.Dirs...)
	replicaDirs := mapset.NewThreadUnsafeSet(replica.Dirs...)
	sourceFiles := mapset.NewThreadUnsafeSet(source.Files...)
	replicaFiles := mapset.NewThreadUnsafeSet(replica.Files...)

	return &DeltaSet{
		FoldersToDelete: sortedSlice(replicaDirs.Difference(sourceDirs)),
		FoldersToCreate: sortedSlice(sourceDirs.Difference(replicaDirs)),
		FilesToUpsert:   sortedSlice(sourceFiles),
		FilesToDelete:   sortedSlice(replicaFiles.Difference(sourceFiles)),
	}
}

// Empty reports whether applying the delta would touch nothing, assuming all
// upsert candidates turn out identical.
func (d *DeltaSet) Empty() bool {
	return len(d.FoldersToDelete) == 0 &&
		len(d.FoldersToCreate) == 0 &&
		len(d.FilesToUpsert) == 0 &&
		len(d.FilesToDelete) == 0
}

// sortedSlice keeps apply order and log output deterministic. Lexicographic
// order also puts parents before children, which folder creation relies on.
func sortedSlice(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
