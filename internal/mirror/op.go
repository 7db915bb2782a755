package mirror

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

type OpType uint8

var opTypeNames = []string{
	"CreateFolder",
	"DeleteFolder",
	"CreateFile",
	"UpdateFile",
	"DeleteFile",
	"ReplaceType",
	"Error",
}

const (
	OpCreateFolder OpType = iota
	OpDeleteFolder
	OpCreateFile
	OpUpdateFile
	OpDeleteFile
	OpReplaceType
	OpError
)

func (op OpType) String() string {
	return opTypeNames[op]
}

// SyncOp is one structural action taken (or attempted) against the replica
// during a pass. Err is set when the action failed and the pass moved on.
type SyncOp struct {
	Op      OpType
	RelPath string
	Bytes   int64
	Err     error
}

// SyncSummary collects the actions of a single pass. A pass over converged
// trees yields an empty summary.
type SyncSummary struct {
	Ops         []SyncOp
	BytesCopied int64
}

func (s *SyncSummary) add(op SyncOp) {
	s.Ops = append(s.Ops, op)
	s.BytesCopied += op.Bytes
}

// Changed reports whether the pass mutated the replica at all.
func (s *SyncSummary) Changed() bool {
	for _, op := range s.Ops {
		if op.Err == nil {
			return true
		}
	}
	return false
}

// Errors returns the per-item failures recorded during the pass.
func (s *SyncSummary) Errors() []SyncOp {
	var failed []SyncOp
	for _, op := range s.Ops {
		if op.Err != nil {
			failed = append(failed, op)
		}
	}
	return failed
}

func (s *SyncSummary) String() string {
	return fmt.Sprintf("%d actions, %s copied, %d errors",
		len(s.Ops), humanize.Bytes(uint64(s.BytesCopied)), len(s.Errors()))
}
