package rewrite

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DiskCacheConfig shapes the on-disk rewrite cache. A zero TTL means entries
// never expire; MaxEntries bounds the blob count via least-recently-used
// eviction.
type DiskCacheConfig struct {
	Dir        string
	TTL        time.Duration
	MaxEntries int
}

// DefaultDiskCacheEntries bounds the disk tier when no size is given.
const DefaultDiskCacheEntries = 4096

type diskEntry struct {
	File       string    `json:"file"`
	StoredAt   time.Time `json:"stored_at"`
	AccessedAt time.Time `json:"accessed_at"`
}

type diskIndex struct {
	Entries map[string]diskEntry `json:"entries"`
}

// DiskCache keeps rewrite results as blob files under Dir/data with an
// index.json manifest. It survives process restarts; all operations are
// best-effort, so I/O trouble degrades to cache misses rather than errors.
type DiskCache struct {
	mu sync.Mutex

	dataDir   string
	indexPath string
	ttl       time.Duration
	max       int

	entries map[string]diskEntry
	now     func() time.Time
}

func NewDiskCache(cfg DiskCacheConfig) (*DiskCache, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, errors.New("rewrite: disk cache dir is required")
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultDiskCacheEntries
	}

	c := &DiskCache{
		dataDir:   filepath.Join(dir, "data"),
		indexPath: filepath.Join(dir, "index.json"),
		ttl:       cfg.TTL,
		max:       cfg.MaxEntries,
		entries:   map[string]diskEntry{},
		now:       time.Now,
	}
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return nil, err
	}
	c.loadIndex()

	c.mu.Lock()
	c.cleanupLocked(c.now())
	err := c.persistIndexLocked()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *DiskCache) Get(key string) (string, bool) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.expired(ent, now) {
		c.removeEntryLocked(key, ent)
		_ = c.persistIndexLocked()
		return "", false
	}
	raw, err := os.ReadFile(filepath.Join(c.dataDir, ent.File))
	if err != nil {
		c.removeEntryLocked(key, ent)
		_ = c.persistIndexLocked()
		return "", false
	}
	ent.AccessedAt = now
	c.entries[key] = ent
	_ = c.persistIndexLocked()
	return string(raw), true
}

func (c *DiskCache) Put(key, text string) {
	now := c.now()
	file := hashedBlobName(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.WriteFile(filepath.Join(c.dataDir, file), []byte(text), 0o644); err != nil {
		return
	}
	c.entries[key] = diskEntry{File: file, StoredAt: now, AccessedAt: now}
	c.cleanupLocked(now)
	_ = c.persistIndexLocked()
}

// Len reports the live entry count.
func (c *DiskCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *DiskCache) expired(ent diskEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(ent.StoredAt) > c.ttl
}

func (c *DiskCache) loadIndex() {
	raw, err := os.ReadFile(c.indexPath)
	if err != nil {
		return
	}
	var idx diskIndex
	if err := json.Unmarshal(raw, &idx); err != nil || idx.Entries == nil {
		// A broken manifest just means a cold cache.
		return
	}
	c.entries = idx.Entries
}

func (c *DiskCache) cleanupLocked(now time.Time) {
	for key, ent := range c.entries {
		if c.expired(ent, now) {
			c.removeEntryLocked(key, ent)
			continue
		}
		if _, err := os.Stat(filepath.Join(c.dataDir, ent.File)); err != nil {
			c.removeEntryLocked(key, ent)
		}
	}
	for len(c.entries) > c.max {
		key, ent, ok := c.leastRecentlyUsedLocked()
		if !ok {
			break
		}
		c.removeEntryLocked(key, ent)
	}
}

func (c *DiskCache) leastRecentlyUsedLocked() (string, diskEntry, bool) {
	if len(c.entries) == 0 {
		return "", diskEntry{}, false
	}
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		li := c.entries[keys[i]].AccessedAt
		lj := c.entries[keys[j]].AccessedAt
		if li.Equal(lj) {
			return keys[i] < keys[j]
		}
		return li.Before(lj)
	})
	k := keys[0]
	return k, c.entries[k], true
}

func (c *DiskCache) removeEntryLocked(key string, ent diskEntry) {
	delete(c.entries, key)
	_ = os.Remove(filepath.Join(c.dataDir, ent.File))
}

func (c *DiskCache) persistIndexLocked() error {
	raw, err := json.MarshalIndent(diskIndex{Entries: c.entries}, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.indexPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.indexPath)
}

func hashedBlobName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + ".bin"
}
