package hasher

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/c0xc/dupefinder/pkg/config"
)

// DigestCache holds previously computed file records so their digests can
// be reused. It is read-only while hashing runs and replaced by a fresh
// snapshot afterwards.
type DigestCache struct {
	paths  []string // insertion order of byPath keys
	byPath map[string]*config.FileRecord
}

func NewDigestCache() *DigestCache {
	return &DigestCache{
		byPath: make(map[string]*config.FileRecord),
	}
}

// NewSnapshot builds a cache from the given records, keeping their order.
func NewSnapshot(records []*config.FileRecord) *DigestCache {
	c := NewDigestCache()
	for _, record := range records {
		c.put(record)
	}

	return c
}

func (c *DigestCache) put(record *config.FileRecord) {
	if record.Path == "" {
		return
	}

	if _, exists := c.byPath[record.Path]; !exists {
		c.paths = append(c.paths, record.Path)
	}
	c.byPath[record.Path] = record
}

// Lookup finds a cached record by exact path, falling back to a linear
// search by absolute path for caches written relative to another working
// directory.
func (c *DigestCache) Lookup(path string, fullPath string) *config.FileRecord {
	if record, exists := c.byPath[path]; exists {
		return record
	}

	if fullPath == "" {
		return nil
	}

	for _, p := range c.paths {
		if record := c.byPath[p]; record.FullPath == fullPath {
			return record
		}
	}

	return nil
}

// Records returns the cached records in insertion order.
func (c *DigestCache) Records() []*config.FileRecord {
	records := make([]*config.FileRecord, 0, len(c.paths))
	for _, path := range c.paths {
		records = append(records, c.byPath[path])
	}

	return records
}

func (c *DigestCache) Len() int {
	return len(c.byPath)
}

// Import reads a digest cache, accepting either a JSON record list or a
// JSON mapping from path to record. Records without a usable path are
// skipped, not errors.
func (c *DigestCache) Import(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []*config.FileRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return errors.Wrap(err, "parse record list")
		}

		for _, record := range records {
			if record != nil {
				c.put(record)
			}
		}

		return nil
	}

	var byPath map[string]*config.FileRecord
	if err := json.Unmarshal(trimmed, &byPath); err != nil {
		return errors.Wrap(err, "parse record map")
	}

	// sorted keys keep the fallback search order deterministic
	keys := make([]string, 0, len(byPath))
	for key := range byPath {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		record := byPath[key]
		if record == nil {
			continue
		}
		if record.Path == "" {
			record.Path = key
		}
		c.put(record)
	}

	return nil
}

func (c *DigestCache) ImportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read cache file")
	}

	if err := c.Import(data); err != nil {
		return errors.Wrapf(err, "import cache file: %s", path)
	}

	return nil
}

// Export writes the cache as an indented JSON record list in insertion
// order.
func (c *DigestCache) Export(w io.Writer) error {
	data, err := json.MarshalIndent(c.Records(), "", "    ")
	if err != nil {
		return errors.Wrap(err, "marshal records")
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write records")
	}

	return nil
}

func (c *DigestCache) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create cache file")
	}

	if err := c.Export(f); err != nil {
		f.Close()
		return err
	}

	return errors.Wrap(f.Close(), "close cache file")
}
