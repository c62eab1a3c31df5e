package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes xxhash64 checksums of bundle files and cache payloads.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Checksum returns the hex encoded XXHash of data.
func (h *Hasher) Checksum(data []byte) string {
	return formatSum(xxhash.Sum64(data))
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, int64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	n, err := io.Copy(hasher, f)
	if err != nil {
		return 0, 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), n, nil
}

// FileChecksum returns the hex encoded XXHash and the size of a file.
func (h *Hasher) FileChecksum(path string) (string, int64, error) {
	sum, size, err := h.ComputeFileHash(path)
	if err != nil {
		return "", 0, err
	}
	return formatSum(sum), size, nil
}

func formatSum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
