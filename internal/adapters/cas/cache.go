// Package cas implements the fingerprint addressed analysis cache.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/nftgen/internal/adapters/codec"
	nftfs "go.trai.ch/nftgen/internal/adapters/fs"
	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/nftgen/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AnalysisCache = (*Cache)(nil)

// Cache implements ports.AnalysisCache with one directory per fingerprint:
//
//	<dir>/<fingerprint>/bundle.zst  zstd compressed bundle payload
//	<dir>/<fingerprint>/entry.json  metadata, written last
//
// Readers share the cache lock; writers and reclaimers take it exclusively.
type Cache struct {
	dir     string
	ttl     time.Duration
	hasher  ports.Hasher
	clock   clockwork.Clock
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCache creates the cache directory if it is absent. A pre-existing
// directory is reused as is.
func NewCache(dir string, ttlDays int, hasher ports.Hasher, clock clockwork.Clock) (*Cache, error) {
	if ttlDays <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrCache, "ttl_days must be positive"), "ttl_days", ttlDays)
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(domain.Wrap(domain.ErrCache, err, "failed to create cache directory"), "path", dir)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, domain.Wrap(domain.ErrCache, err, "failed to create zstd encoder")
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, domain.Wrap(domain.ErrCache, err, "failed to create zstd decoder")
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlDays) * 24 * time.Hour,
		hasher:  hasher,
		clock:   clock,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Get returns the bundle cached for fp. Expired entries are misses and are
// removed on the way out.
func (c *Cache) Get(fp domain.Fingerprint) (domain.Bundle, bool, error) {
	bundle, entry, ok, err := c.lookup(fp)
	if err != nil || !ok {
		return domain.Bundle{}, false, err
	}

	if entry.Expired(c.clock.Now()) {
		// Best effort. A busy lock means someone else is writing or reclaiming it.
		_, _ = c.reclaim(fp, c.clock.Now())
		return domain.Bundle{}, false, nil
	}
	return bundle, true, nil
}

// lookup reads the entry of fp under the shared lock. The bundle is only
// decoded for entries that are still live.
func (c *Cache) lookup(fp domain.Fingerprint) (domain.Bundle, domain.CacheEntry, bool, error) {
	lock := c.lock()
	if err := lock.RLock(); err != nil {
		return domain.Bundle{}, domain.CacheEntry{}, false, c.cacheErr(err, "failed to lock cache", fp)
	}
	defer lock.Unlock() //nolint:errcheck // Closing the lock file releases it

	entry, ok, err := c.readEntry(fp)
	if err != nil || !ok {
		return domain.Bundle{}, entry, false, err
	}
	if entry.Expired(c.clock.Now()) {
		return domain.Bundle{}, entry, true, nil
	}

	compressed, err := os.ReadFile(filepath.Join(c.entryDir(fp), entry.Payload))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Bundle{}, entry, false, nil
		}
		return domain.Bundle{}, entry, false, c.cacheErr(err, "failed to read cache payload", fp)
	}

	if int64(len(compressed)) != entry.PayloadSize || c.hasher.Checksum(compressed) != entry.PayloadChecksum {
		return domain.Bundle{}, entry, false, zerr.With(zerr.Wrap(domain.ErrCache, "cache payload does not match its entry"), "fingerprint", fp.String())
	}

	payload, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return domain.Bundle{}, entry, false, c.cacheErr(err, "failed to decompress cache payload", fp)
	}

	bundle, err := codec.UnmarshalBundle(payload)
	if err != nil {
		return domain.Bundle{}, entry, false, c.cacheErr(err, "failed to decode cache payload", fp)
	}
	return bundle, entry, true, nil
}

// Put stores bundle under fp. The payload is written before the entry, so an
// entry is only ever visible next to a complete payload.
func (c *Cache) Put(fp domain.Fingerprint, bundle domain.Bundle) error {
	compressed := c.encoder.EncodeAll(codec.MarshalBundle(bundle), nil)

	now := c.clock.Now().UTC()
	entry := domain.CacheEntry{
		Fingerprint:     fp,
		CreatedAt:       now,
		ExpiresAt:       now.Add(c.ttl),
		Payload:         domain.CachePayloadFileName,
		PayloadSize:     int64(len(compressed)),
		PayloadChecksum: c.hasher.Checksum(compressed),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return c.cacheErr(err, "failed to marshal cache entry", fp)
	}

	lock := c.lock()
	if err := lock.Lock(); err != nil {
		return c.cacheErr(err, "failed to lock cache", fp)
	}
	defer lock.Unlock() //nolint:errcheck // Closing the lock file releases it

	dir := c.entryDir(fp)
	if err := nftfs.WriteFileAtomic(filepath.Join(dir, entry.Payload), compressed); err != nil {
		return c.cacheErr(err, "failed to write cache payload", fp)
	}
	if err := nftfs.WriteFileAtomic(filepath.Join(dir, domain.CacheEntryFileName), data); err != nil {
		return c.cacheErr(err, "failed to write cache entry", fp)
	}
	return nil
}

// Invalidate removes the entry of fp.
func (c *Cache) Invalidate(fp domain.Fingerprint) error {
	lock := c.lock()
	if err := lock.Lock(); err != nil {
		return c.cacheErr(err, "failed to lock cache", fp)
	}
	defer lock.Unlock() //nolint:errcheck // Closing the lock file releases it

	if err := os.RemoveAll(c.entryDir(fp)); err != nil {
		return c.cacheErr(err, "failed to remove cache entry", fp)
	}
	return nil
}

// Sweep removes every entry that expired and was created before the sweep
// started. Directories without a committed entry are left alone.
func (c *Cache) Sweep() (int, error) {
	start := c.clock.Now()

	dirs, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, zerr.With(domain.Wrap(domain.ErrCache, err, "failed to read cache directory"), "path", c.dir)
	}

	removed := 0
	var errs []error
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		fp, err := domain.ParseFingerprint(d.Name())
		if err != nil {
			continue
		}

		ok, err := c.reclaim(fp, start)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			removed++
		}
	}

	if len(errs) > 0 {
		return removed, domain.Wrap(domain.ErrCache, errors.Join(errs...), "failed to sweep cache")
	}
	return removed, nil
}

// reclaim removes the entry of fp if it was created before cutoff and has
// expired at cutoff. It re-reads the entry under the exclusive lock, so an
// entry rewritten in the meantime survives.
func (c *Cache) reclaim(fp domain.Fingerprint, cutoff time.Time) (bool, error) {
	lock := c.lock()
	if err := lock.Lock(); err != nil {
		return false, c.cacheErr(err, "failed to lock cache", fp)
	}
	defer lock.Unlock() //nolint:errcheck // Closing the lock file releases it

	entry, ok, err := c.readEntry(fp)
	if err != nil || !ok {
		return false, err
	}
	if !entry.CreatedAt.Before(cutoff) || !entry.Expired(cutoff) {
		return false, nil
	}

	if err := os.RemoveAll(c.entryDir(fp)); err != nil {
		return false, c.cacheErr(err, "failed to remove expired cache entry", fp)
	}
	return true, nil
}

// readEntry loads the committed entry of fp. The boolean is false when the
// entry does not exist.
func (c *Cache) readEntry(fp domain.Fingerprint) (domain.CacheEntry, bool, error) {
	var entry domain.CacheEntry

	data, err := os.ReadFile(filepath.Join(c.entryDir(fp), domain.CacheEntryFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entry, false, nil
		}
		return entry, false, c.cacheErr(err, "failed to read cache entry", fp)
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, false, c.cacheErr(err, "failed to unmarshal cache entry", fp)
	}
	if entry.Fingerprint != fp || filepath.Base(entry.Payload) != entry.Payload {
		return entry, false, zerr.With(zerr.Wrap(domain.ErrCache, "cache entry does not belong to its directory"), "fingerprint", fp.String())
	}
	return entry, true, nil
}

func (c *Cache) entryDir(fp domain.Fingerprint) string {
	return filepath.Join(c.dir, fp.String())
}

func (c *Cache) lock() *flock.Flock {
	return flock.New(filepath.Join(c.dir, domain.CacheLockFileName))
}

func (c *Cache) cacheErr(err error, msg string, fp domain.Fingerprint) error {
	return zerr.With(domain.Wrap(domain.ErrCache, err, msg), "fingerprint", fp.String())
}
