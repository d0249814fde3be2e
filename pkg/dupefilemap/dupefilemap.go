package dupefilemap

import (
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/logger"
)

// ErrMissingDigest tags records that reached grouping without a value for
// the primary algorithm.
var ErrMissingDigest = errors.New("record is missing a digest")

func New(records []*config.FileRecord, algorithm string) (*DupeFileMap, error) {
	m := &DupeFileMap{
		algorithm: algorithm,
		log:       logger.GetLogger("dupefilemap"),
	}

	if err := m.build(records); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *DupeFileMap) build(records []*config.FileRecord) error {
	// bucket records by digest, preserving traversal order of buckets
	// and of records within each bucket
	digests := make([]string, 0, len(records))
	buckets := make(map[string][]*config.FileRecord, len(records))

	for _, record := range records {
		if record.Size == 0 {
			// empty files all match trivially, linking them frees nothing
			continue
		}

		digest := record.Digests[m.algorithm]
		if digest == "" {
			return errors.Wrapf(ErrMissingDigest, "%s of %s", m.algorithm, record.Path)
		}

		if _, exists := buckets[digest]; !exists {
			digests = append(digests, digest)
		}

		buckets[digest] = append(buckets[digest], record)
	}

	for _, digest := range digests {
		bucket := buckets[digest]

		// paths of one physical file are not duplicates of each other,
		// keep the first and count the rest as already linked
		seenIds := strset.New()
		files := make([]*config.FileRecord, 0, len(bucket))

		for _, record := range bucket {
			if seenIds.Has(record.ID.String()) {
				m.collapsedHardlinks++
				continue
			}

			seenIds.Add(record.ID.String())
			files = append(files, record)
		}

		if len(files) < 2 {
			continue
		}

		m.groups = append(m.groups, &Group{
			Digest: digest,
			Files:  files,
		})
	}

	m.log.Debugf("Grouped %d file(s) into %d duplicate group(s), %d hardlink(s) collapsed",
		len(records), len(m.groups), m.collapsedHardlinks)

	return nil
}

// Groups returns the duplicate groups in traversal order of their first
// member.
func (m *DupeFileMap) Groups() []*Group {
	return m.groups
}

func (m *DupeFileMap) Length() int {
	return len(m.groups)
}

// TotalWasted is the space reclaimable by linking every duplicate to its
// canonical copy. Collapsed hardlinks never count, their space is shared
// already.
func (m *DupeFileMap) TotalWasted() int64 {
	var wasted int64
	for _, group := range m.groups {
		wasted += group.WastedSize()
	}

	return wasted
}

// CollapsedHardlinks reports how many records were folded into an earlier
// record of the same physical file.
func (m *DupeFileMap) CollapsedHardlinks() int {
	return m.collapsedHardlinks
}
