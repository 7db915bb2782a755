package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDelta_Partitions(t *testing.T) {
	source := &TreeSnapshot{
		Files: []string{"both.txt", "only-src.txt", "sub/new.txt"},
		Dirs:  []string{"shared", "sub"},
	}
	replica := &TreeSnapshot{
		Files: []string{"both.txt", "only-dst.txt"},
		Dirs:  []string{"shared", "stale"},
	}

	delta := ComputeDelta(source, replica)

	assert.Equal(t, []string{"stale"}, delta.FoldersToDelete)
	assert.Equal(t, []string{"sub"}, delta.FoldersToCreate)
	// upsert covers every source file, the content check decides at apply time
	assert.Equal(t, []string{"both.txt", "only-src.txt", "sub/new.txt"}, delta.FilesToUpsert)
	assert.Equal(t, []string{"only-dst.txt"}, delta.FilesToDelete)
}

func TestComputeDelta_DisjointSets(t *testing.T) {
	source := &TreeSnapshot{Files: []string{"a"}, Dirs: []string{"d1"}}
	replica := &TreeSnapshot{Files: []string{"b"}, Dirs: []string{"d2"}}

	delta := ComputeDelta(source, replica)

	for _, created := range delta.FoldersToCreate {
		assert.NotContains(t, delta.FoldersToDelete, created)
	}
	for _, upserted := range delta.FilesToUpsert {
		assert.NotContains(t, delta.FilesToDelete, upserted)
	}
}

func TestComputeDelta_IdenticalSnapshots(t *testing.T) {
	snapshot := &TreeSnapshot{Files: []string{"a", "b"}, Dirs: []string{"d"}}

	delta := ComputeDelta(snapshot, snapshot)

	assert.Empty(t, delta.FoldersToDelete)
	assert.Empty(t, delta.FoldersToCreate)
	assert.Empty(t, delta.FilesToDelete)
	assert.Equal(t, []string{"a", "b"}, delta.FilesToUpsert)
	assert.False(t, delta.Empty())
}

func TestDeltaSet_Empty(t *testing.T) {
	assert.True(t, (&DeltaSet{}).Empty())
	assert.False(t, (&DeltaSet{FilesToDelete: []string{"x"}}).Empty())
}

func TestComputeDelta_SortedOutput(t *testing.T) {
	source := &TreeSnapshot{Dirs: []string{"z", "a", "m"}}
	replica := &TreeSnapshot{}

	delta := ComputeDelta(source, replica)
	assert.Equal(t, []string{"a", "m", "z"}, delta.FoldersToCreate)
}
