package hasher

import (
	"encoding/hex"
	"hash"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/fileid"
	"github.com/c0xc/dupefinder/pkg/logger"
)

// VanishedPolicy controls what happens when a scanned file is gone by the
// time it would be hashed.
type VanishedPolicy int

const (
	// VanishedWarn logs a warning and attempts the read anyway; its
	// failure aborts the run as a plain I/O error.
	VanishedWarn VanishedPolicy = iota
	// VanishedIgnore drops the record silently.
	VanishedIgnore
	// VanishedFatal aborts the run.
	VanishedFatal
)

func (p VanishedPolicy) String() string {
	switch p {
	case VanishedIgnore:
		return "ignore"
	case VanishedFatal:
		return "fatal"
	default:
		return "warn"
	}
}

// ErrFileVanished tags files that disappeared between scan and hash.
var ErrFileVanished = errors.New("file vanished before hashing")

const readBufferSize = 32 * 1024

var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, readBufferSize)
		return &buf
	},
}

type Hasher struct {
	algorithms []Algorithm
	cache      *DigestCache
	policy     VanishedPolicy
	workers    int
	log        *logrus.Entry

	imported []string
	snapshot *DigestCache
}

func New(algorithms []Algorithm, cache *DigestCache, policy VanishedPolicy, workers int) *Hasher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if cache == nil {
		cache = NewDigestCache()
	}

	return &Hasher{
		algorithms: algorithms,
		cache:      cache,
		policy:     policy,
		workers:    workers,
		log:        logger.GetLogger("hasher"),
	}
}

// identityGroup collects the records of one physical file in traversal order.
type identityGroup struct {
	records []*config.FileRecord
}

type groupResult struct {
	imported []string
	dropped  []*config.FileRecord
	err      error
}

// HashAll fills in the digests of every record, reusing cached values where
// their size still matches and reading every distinct physical file at most
// once. Records sharing an identity are processed together so hardlinks
// never trigger a second read. It returns the surviving records; the ignore
// policy may drop vanished ones.
func (h *Hasher) HashAll(records []*config.FileRecord) ([]*config.FileRecord, error) {
	// group records by physical identity, preserving traversal order
	groups := make([]*identityGroup, 0, len(records))
	groupByID := make(map[fileid.FileID]*identityGroup, len(records))

	for _, record := range records {
		group, exists := groupByID[record.ID]
		if !exists {
			group = &identityGroup{}
			groupByID[record.ID] = group
			groups = append(groups, group)
		}
		group.records = append(group.records, record)
	}

	h.log.Debugf("Hashing %d file(s) as %d physical file(s) with %d worker(s)",
		len(records), len(groups), h.workers)

	// bounded pool across identities; results merge back by group index so
	// the outcome is independent of goroutine scheduling
	results := make([]groupResult, len(groups))

	var wg sync.WaitGroup
	sem := make(chan struct{}, h.workers)

	for i, group := range groups {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, group *identityGroup) {
			defer wg.Done()
			defer func() {
				<-sem
			}()

			results[i] = h.hashGroup(group)
		}(i, group)
	}

	wg.Wait()

	dropped := make(map[*config.FileRecord]struct{})
	for _, result := range results {
		if result.err != nil {
			return nil, result.err
		}

		h.imported = append(h.imported, result.imported...)
		for _, record := range result.dropped {
			dropped[record] = struct{}{}
		}
	}

	surviving := records
	if len(dropped) > 0 {
		surviving = make([]*config.FileRecord, 0, len(records))
		for _, record := range records {
			if _, gone := dropped[record]; gone {
				continue
			}
			surviving = append(surviving, record)
		}
	}

	h.snapshot = NewSnapshot(surviving)

	return surviving, nil
}

// ImportedFiles returns the paths whose digests were fully satisfied from
// the imported cache, without reading file content.
func (h *Hasher) ImportedFiles() []string {
	return h.imported
}

// Snapshot returns the digest cache rebuilt from the surviving records of
// the last run, ready for export.
func (h *Hasher) Snapshot() *DigestCache {
	if h.snapshot == nil {
		return NewDigestCache()
	}

	return h.snapshot
}

func (h *Hasher) hashGroup(group *identityGroup) groupResult {
	var result groupResult

	// first record of this identity that read content this run; later
	// records reuse its digests over any imported cache values
	var computed *config.FileRecord

	for _, record := range group.records {
		// re-check the path still refers to a regular file
		if info, err := os.Stat(ioPath(record)); err != nil || !info.Mode().IsRegular() {
			switch h.policy {
			case VanishedIgnore:
				h.log.Debugf("File vanished, dropping: %q", record.Path)
				result.dropped = append(result.dropped, record)
				continue
			case VanishedFatal:
				result.err = errors.Wrapf(ErrFileVanished, "%s", record.Path)
				return result
			default:
				h.log.Warnf("File vanished, attempting to hash anyway: %q", record.Path)
			}
		}

		cached := h.cache.Lookup(record.Path, record.FullPath)

		source := cached
		if computed != nil {
			source = computed
		}

		var pending []Algorithm
		for _, algorithm := range h.algorithms {
			if _, done := record.Digests[algorithm.Name]; done {
				continue
			}

			if source != nil {
				if digest := source.Digests[algorithm.Name]; digest != "" {
					if source.Size == record.Size {
						record.Digests[algorithm.Name] = digest
						continue
					}
					h.log.Debugf("Cached %s digest has wrong size, recomputing: %q",
						algorithm.Name, record.Path)
				}
			}

			pending = append(pending, algorithm)
		}

		if len(pending) == 0 {
			if cached != nil {
				result.imported = append(result.imported, record.Path)
			}
			continue
		}

		vanished, err := h.hashFile(record, pending)
		if err != nil {
			result.err = err
			return result
		}
		if vanished {
			result.dropped = append(result.dropped, record)
			continue
		}

		computed = record
	}

	return result
}

// hashFile streams the file once, feeding every pending algorithm. The
// boolean reports a vanished file the ignore policy dropped at open time.
func (h *Hasher) hashFile(record *config.FileRecord, pending []Algorithm) (bool, error) {
	f, err := os.Open(ioPath(record))
	if err != nil {
		if os.IsNotExist(err) {
			switch h.policy {
			case VanishedIgnore:
				h.log.Debugf("File vanished at open, dropping: %q", record.Path)
				return true, nil
			case VanishedFatal:
				return false, errors.Wrapf(ErrFileVanished, "%s", record.Path)
			}
		}

		return false, errors.Wrapf(err, "open file: %s", record.Path)
	}
	defer f.Close()

	hashes := make([]hash.Hash, len(pending))
	writers := make([]io.Writer, len(pending))
	for i, algorithm := range pending {
		hashes[i] = algorithm.New()
		writers[i] = hashes[i]
	}

	buf := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(buf)

	if _, err := io.CopyBuffer(io.MultiWriter(writers...), f, *buf); err != nil {
		return false, errors.Wrapf(err, "read file: %s", record.Path)
	}

	for i, algorithm := range pending {
		record.Digests[algorithm.Name] = hex.EncodeToString(hashes[i].Sum(nil))
	}

	return false, nil
}

func ioPath(record *config.FileRecord) string {
	if record.FullPath != "" {
		return record.FullPath
	}

	return record.Path
}
