package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openmirror/mirrorbox/internal/utils"
)

const defaultCopyWorkers = 4

var (
	ErrSourceMissing      = errors.New("source root does not exist")
	ErrSyncAlreadyRunning = errors.New("sync already running")
)

// ActivityLog receives one human-readable line per structural action. The
// reconciler treats it as fire-and-forget, a failing sink must not fail a pass.
// Record may be called concurrently during the upsert phase.
type ActivityLog interface {
	Record(message string)
}

type nopActivityLog struct{}

func (nopActivityLog) Record(string) {}

// Reconciler converges a replica tree onto a source tree. It holds no state
// between passes; every Synchronize call rescans both trees from scratch.
type Reconciler struct {
	comparator  *Comparator
	ignore      *IgnoreList
	activity    ActivityLog
	copyWorkers int
	muSync      sync.Mutex
}

func NewReconciler(activity ActivityLog, ignore *IgnoreList) *Reconciler {
	if activity == nil {
		activity = nopActivityLog{}
	}
	return &Reconciler{
		comparator:  NewComparator(),
		ignore:      ignore,
		activity:    activity,
		copyWorkers: defaultCopyWorkers,
	}
}

// Synchronize runs one full pass: scan both trees, diff them, and apply the
// delta in phase order: delete excess folders, create missing folders, upsert
// files, delete excess files. The order is load-bearing: a stale folder must be
// gone before a same-named one is created, and folders must exist before files
// are copied into them.
//
// Item-level failures are recorded on the summary and the pass continues, one
// bad path should not block convergence for the rest of the tree. Scan
// failures abort the pass. Only one pass per Reconciler may be in flight.
func (r *Reconciler) Synchronize(ctx context.Context, sourceRoot, replicaRoot string) (*SyncSummary, error) {
	if !r.muSync.TryLock() {
		return nil, ErrSyncAlreadyRunning
	}
	defer r.muSync.Unlock()

	if !utils.DirExists(sourceRoot) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, sourceRoot)
	}

	// A missing replica root is not an error, the first pass creates it.
	if err := utils.EnsureDir(replicaRoot); err != nil {
		return nil, fmt.Errorf("create replica root: %w", err)
	}

	r.activity.Record("Sync operation started")

	source, err := ScanTree(sourceRoot, r.ignore)
	if err != nil {
		return nil, fmt.Errorf("scan source: %w", err)
	}
	replica, err := ScanTree(replicaRoot, r.ignore)
	if err != nil {
		return nil, fmt.Errorf("scan replica: %w", err)
	}

	delta := ComputeDelta(source, replica)

	summary := &SyncSummary{}
	r.deleteFolders(replicaRoot, delta.FoldersToDelete, summary)
	r.createFolders(replicaRoot, delta.FoldersToCreate, summary)
	r.upsertFiles(ctx, sourceRoot, replicaRoot, delta.FilesToUpsert, summary)
	r.deleteFiles(replicaRoot, delta.FilesToDelete, summary)

	r.activity.Record(fmt.Sprintf("Sync operation completed (%s)", summary))
	return summary, nil
}

// deleteFolders removes replica directories absent from the source, deepest
// last. A parent's RemoveAll already takes its children with it, so a child
// that is gone by the time we reach it counts as done.
func (r *Reconciler) deleteFolders(replicaRoot string, folders []string, summary *SyncSummary) {
	for _, rel := range folders {
		absPath := filepath.Join(replicaRoot, filepath.FromSlash(rel))
		if _, err := os.Lstat(absPath); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(absPath); err != nil {
			r.fail(summary, OpDeleteFolder, rel, err)
			continue
		}
		summary.add(SyncOp{Op: OpDeleteFolder, RelPath: rel})
		slog.Info("sync", "op", OpDeleteFolder, "path", rel)
		r.activity.Record(fmt.Sprintf("Deleted folder: %s", absPath))
	}
}

// createFolders creates source directories missing from the replica, parents
// first. A replica file squatting on a wanted directory path is replaced, the
// trees cannot converge otherwise.
func (r *Reconciler) createFolders(replicaRoot string, folders []string, summary *SyncSummary) {
	for _, rel := range folders {
		absPath := filepath.Join(replicaRoot, filepath.FromSlash(rel))

		if info, err := os.Lstat(absPath); err == nil && !info.IsDir() {
			if err := os.Remove(absPath); err != nil {
				r.fail(summary, OpReplaceType, rel, err)
				continue
			}
			summary.add(SyncOp{Op: OpReplaceType, RelPath: rel})
			slog.Info("sync", "op", OpReplaceType, "path", rel)
			r.activity.Record(fmt.Sprintf("Replaced file with folder: %s", absPath))
		}

		if err := os.MkdirAll(absPath, 0o755); err != nil {
			r.fail(summary, OpCreateFolder, rel, err)
			continue
		}
		summary.add(SyncOp{Op: OpCreateFolder, RelPath: rel})
		slog.Info("sync", "op", OpCreateFolder, "path", rel)
		r.activity.Record(fmt.Sprintf("Created folder: %s", absPath))
	}
}

// upsertFiles copies source files that are missing from the replica and
// overwrites replica files whose content differs. Identical files are left
// untouched and unreported. Copies are independent of one another and run on a
// bounded worker pool; the phase still completes before the next one starts.
func (r *Reconciler) upsertFiles(ctx context.Context, sourceRoot, replicaRoot string, files []string, summary *SyncSummary) {
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(r.copyWorkers)

	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			srcPath := filepath.Join(sourceRoot, filepath.FromSlash(rel))
			dstPath := filepath.Join(replicaRoot, filepath.FromSlash(rel))

			op := OpCreateFile
			if utils.FileExists(dstPath) {
				identical, err := r.comparator.FilesAreIdentical(srcPath, dstPath)
				if err != nil {
					mu.Lock()
					r.fail(summary, OpUpdateFile, rel, err)
					mu.Unlock()
					return nil
				}
				if identical {
					return nil
				}
				op = OpUpdateFile
			}

			written, err := copyFile(srcPath, dstPath)
			if err != nil {
				mu.Lock()
				r.fail(summary, op, rel, err)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			summary.add(SyncOp{Op: op, RelPath: rel, Bytes: written})
			mu.Unlock()
			slog.Info("sync", "op", op, "path", rel)
			if op == OpCreateFile {
				r.activity.Record(fmt.Sprintf("Created file: %s", dstPath))
			} else {
				r.activity.Record(fmt.Sprintf("Updated file: %s", dstPath))
			}
			return nil
		})
	}
	g.Wait()
}

// deleteFiles removes replica files absent from the source. Files already
// swept away by the folder-delete phase count as done, and so does a path
// that stopped being a file when the folder-create phase replaced it.
func (r *Reconciler) deleteFiles(replicaRoot string, files []string, summary *SyncSummary) {
	for _, rel := range files {
		absPath := filepath.Join(replicaRoot, filepath.FromSlash(rel))
		if info, err := os.Lstat(absPath); errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
			continue
		}
		if err := os.Remove(absPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			r.fail(summary, OpDeleteFile, rel, err)
			continue
		}
		summary.add(SyncOp{Op: OpDeleteFile, RelPath: rel})
		slog.Info("sync", "op", OpDeleteFile, "path", rel)
		r.activity.Record(fmt.Sprintf("Deleted file: %s", absPath))
	}
}

func (r *Reconciler) fail(summary *SyncSummary, op OpType, rel string, err error) {
	summary.add(SyncOp{Op: op, RelPath: rel, Err: err})
	slog.Warn("sync", "op", op, "path", rel, "error", err)
	r.activity.Record(fmt.Sprintf("Failed %s: %s (%v)", op, rel, err))
}

// copyFile copies src over dst, creating parent directories as needed.
// Returns the number of bytes written.
func copyFile(src, dst string) (int64, error) {
	if err := utils.EnsureParent(dst); err != nil {
		return 0, err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return written, err
	}
	return written, dstFile.Close()
}
