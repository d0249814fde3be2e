package scanner

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
	"github.com/sirupsen/logrus"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/expression"
	"github.com/c0xc/dupefinder/pkg/fileid"
	"github.com/c0xc/dupefinder/pkg/logger"
	"github.com/c0xc/dupefinder/pkg/paths"
)

type Config struct {
	// ExcludePaths holds glob/prefix patterns, matching files are skipped.
	ExcludePaths []string
	// Filters holds compiled ignore expressions, a file matching any of
	// them is skipped.
	Filters []expression.CompiledExpression
}

type Scanner struct {
	cfg Config
	log *logrus.Entry

	refDevice uint64
	seenDirs  *strset.Set
	records   []*config.FileRecord
}

func New(cfg Config) *Scanner {
	return &Scanner{
		cfg: cfg,
		log: logger.GetLogger("scanner"),
	}
}

// Scan walks the tree below root and returns one record per regular file in
// a deterministic order: per directory lexically sorted, files before
// subdirectories. Symlinks are followed. The visited directory identity set
// keeps loops and aliased subtrees from being walked twice, and everything
// not on the root's device is skipped.
func (s *Scanner) Scan(root string) ([]*config.FileRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "stat search directory: %s", root)
	} else if !info.IsDir() {
		return nil, errors.Errorf("search path is not a directory: %s", root)
	}

	rootID, _, err := fileid.FromFileInfo(root, info)
	if err != nil {
		return nil, errors.Wrapf(err, "identify search directory: %s", root)
	}

	s.refDevice = rootID.Device
	s.seenDirs = strset.New(rootID.String())
	s.records = nil

	s.walk(root)

	s.log.Debugf("Scanned %d file(s) below %q", len(s.records), root)
	return s.records, nil
}

func (s *Scanner) walk(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.WithError(err).Debugf("Failed listing directory, skipping: %q", dir)
		return
	}

	var subdirs []string

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// stat follows symlinks; vanished or broken entries are skipped
		info, err := os.Stat(path)
		if err != nil {
			s.log.WithError(err).Debugf("Failed to stat, skipping: %q", path)
			continue
		}

		if info.IsDir() {
			id, _, err := fileid.FromFileInfo(path, info)
			if err != nil {
				s.log.WithError(err).Debugf("Failed to identify directory, skipping: %q", path)
				continue
			}

			if id.Device != s.refDevice {
				s.log.Debugf("Directory on other filesystem, skipping: %q", path)
				continue
			}

			if s.seenDirs.Has(id.String()) {
				s.log.Debugf("Directory already visited, skipping: %q", path)
				continue
			}
			s.seenDirs.Add(id.String())

			subdirs = append(subdirs, path)
			continue
		}

		if !info.Mode().IsRegular() {
			s.log.Tracef("Not a regular file, skipping: %q", path)
			continue
		}

		id, _, err := fileid.FromFileInfo(path, info)
		if err != nil {
			s.log.WithError(err).Debugf("Failed to identify file, skipping: %q", path)
			continue
		}

		if id.Device != s.refDevice {
			s.log.Debugf("File on other filesystem, skipping: %q", path)
			continue
		}

		fullPath, err := filepath.Abs(path)
		if err != nil {
			fullPath = path
		}

		record := &config.FileRecord{
			Path:             path,
			FullPath:         fullPath,
			Name:             entry.Name(),
			Size:             info.Size(),
			ModificationTime: info.ModTime().Unix(),
			ID:               id,
			Digests:          make(map[string]string),
		}

		if s.ignored(record) {
			continue
		}

		s.records = append(s.records, record)
	}

	// descend after the directory's own files, like a top-down walk
	for _, subdir := range subdirs {
		s.walk(subdir)
	}
}

func (s *Scanner) ignored(r *config.FileRecord) bool {
	if paths.IsIgnored(r.Path, s.cfg.ExcludePaths) {
		s.log.Tracef("Excluded by pattern, skipping: %q", r.Path)
		return true
	}

	if len(s.cfg.Filters) == 0 {
		return false
	}

	match, reason, err := expression.CheckFileSingleMatchWithReason(r, s.cfg.Filters)
	if err != nil {
		s.log.WithError(err).Warnf("Failed checking ignore filter, keeping: %q", r.Path)
		return false
	}

	if match {
		s.log.Tracef("Ignore filter %q matched, skipping: %q", reason, r.Path)
		return true
	}

	return false
}
