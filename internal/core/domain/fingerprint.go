package domain

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
	"go.trai.ch/zerr"
)

// fingerprintContext domain-separates fingerprints from any other BLAKE3 use.
// Changing it invalidates every cache entry.
const fingerprintContext = "nftgen.fingerprint.v1"

// FingerprintLen is the length of a hex encoded fingerprint.
const FingerprintLen = 64

// Fingerprint addresses the result of generating a marker from one image
// under one configuration.
type Fingerprint string

// ComputeFingerprint hashes the image bytes together with the canonical
// encoding of cfg.
func ComputeFingerprint(image []byte, cfg GenerationConfig) Fingerprint {
	h := blake3.NewDeriveKey(fingerprintContext)

	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(image)))
	_, _ = h.Write(size[:])
	_, _ = h.Write(image)
	_, _ = h.Write(cfg.canonicalBytes())

	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// ParseFingerprint checks that s is a lowercase hex fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	if len(s) != FingerprintLen {
		return "", zerr.With(zerr.Wrap(ErrCache, "malformed fingerprint"), "fingerprint", s)
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", zerr.With(zerr.Wrap(ErrCache, "malformed fingerprint"), "fingerprint", s)
		}
	}
	return Fingerprint(s), nil
}

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns an abbreviated form for log lines.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}
