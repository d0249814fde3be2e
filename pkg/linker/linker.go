package linker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/fileid"
	"github.com/c0xc/dupefinder/pkg/logger"
)

type Linker struct {
	dryRun bool
	log    *logrus.Entry

	replacedFiles  int
	reclaimedBytes int64
}

func New(dryRun bool) *Linker {
	return &Linker{
		dryRun: dryRun,
		log:    logger.GetLogger("linker"),
	}
}

// Replace swaps the duplicate path for a hardlink to the canonical file.
// The link is created under a temporary name first and renamed over the
// duplicate, so the path never goes missing. Counters also advance in
// dry-run mode, where no mutation happens.
func (l *Linker) Replace(canonical *config.FileRecord, duplicate *config.FileRecord) error {
	l.log.Debugf("Replacing file #%d: %s -> %s",
		duplicate.ID.Inode, duplicate.Path, canonical.Path)

	if l.dryRun {
		l.log.Warn("Dry-run enabled, skipping replace...")
	} else {
		if err := l.replace(canonical, duplicate); err != nil {
			return err
		}
	}

	l.replacedFiles++
	l.reclaimedBytes += duplicate.Size

	return nil
}

func (l *Linker) replace(canonical *config.FileRecord, duplicate *config.FileRecord) error {
	canonicalPath := ioPath(canonical)
	duplicatePath := ioPath(duplicate)

	tmpPath := filepath.Join(filepath.Dir(duplicatePath),
		fmt.Sprintf(".%s.%d.dflink", filepath.Base(duplicatePath), os.Getpid()))

	if err := os.Link(canonicalPath, tmpPath); err != nil {
		return errors.Wrapf(err, "link canonical file: %s", canonicalPath)
	}

	if err := os.Rename(tmpPath, duplicatePath); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil {
			l.log.WithError(removeErr).Warnf("Failed removing temporary link: %q", tmpPath)
		}

		return errors.Wrapf(err, "replace duplicate: %s", duplicatePath)
	}

	// the path should now carry the canonical identity, anything else
	// means someone changed the file underneath us
	id, _, err := fileid.FromPath(duplicatePath)
	if err != nil {
		l.log.WithError(err).Warnf("Could not verify replaced file: %q", duplicatePath)
		return nil
	}

	if !id.Equal(canonical.ID) {
		l.log.Warnf("Replaced file does not share the canonical identity: %q", duplicatePath)
	}

	return nil
}

func (l *Linker) ReplacedFiles() int {
	return l.replacedFiles
}

func (l *Linker) ReclaimedBytes() int64 {
	return l.reclaimedBytes
}

func ioPath(record *config.FileRecord) string {
	if record.FullPath != "" {
		return record.FullPath
	}

	return record.Path
}
