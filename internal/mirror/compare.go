package mirror

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// compareChunkSize is the read size for the lockstep content comparison.
const compareChunkSize = 64 * 1024

// Comparator decides whether two files hold identical bytes. It is an
// equality oracle, not a security boundary, so a fast incremental hash
// (xxhash) is used instead of a cryptographic one.
type Comparator struct {
	chunkSize int
}

func NewComparator() *Comparator {
	return &Comparator{chunkSize: compareChunkSize}
}

// FilesAreIdentical streams both files in lockstep chunks and compares the
// running digests. It stops at the first divergence, so a difference in the
// first chunk costs a single read per file. I/O errors are returned to the
// caller, never folded into a verdict.
func (c *Comparator) FilesAreIdentical(pathA, pathB string) (bool, error) {
	fileA, err := os.Open(pathA)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", pathA, err)
	}
	defer fileA.Close()

	fileB, err := os.Open(pathB)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", pathB, err)
	}
	defer fileB.Close()

	return c.readersAreIdentical(fileA, fileB)
}

// readersAreIdentical is the reader-level comparison. Each iteration reads one
// chunk from both sides; both sides empty means the files matched to the end,
// one side empty means a length mismatch, and a running-digest mismatch after
// a paired read means a content difference. All three short-circuit.
func (c *Comparator) readersAreIdentical(a, b io.Reader) (bool, error) {
	digestA := xxhash.New()
	digestB := xxhash.New()

	bufA := make([]byte, c.chunkSize)
	bufB := make([]byte, c.chunkSize)

	for {
		nA, err := readChunk(a, bufA)
		if err != nil {
			return false, err
		}
		nB, err := readChunk(b, bufB)
		if err != nil {
			return false, err
		}

		if nA == 0 && nB == 0 {
			return true, nil
		}
		if nA == 0 || nB == 0 {
			// length mismatch, no point reading further
			return false, nil
		}

		digestA.Write(bufA[:nA])
		digestB.Write(bufB[:nB])
		if digestA.Sum64() != digestB.Sum64() {
			return false, nil
		}
	}
}

// readChunk fills buf as far as a single logical chunk allows. io.EOF is a
// normal end-of-file and reports as a zero-length read.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	if err != nil {
		return n, err
	}
	return n, nil
}
