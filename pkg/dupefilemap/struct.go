package dupefilemap

import (
	"github.com/sirupsen/logrus"

	"github.com/c0xc/dupefinder/pkg/config"
)

// Group is one set of files sharing a primary digest, hardlinked records
// already collapsed to a single entry. Files keeps traversal order, so
// Files[0] is the canonical copy the rest would be linked to.
type Group struct {
	Digest string
	Files  []*config.FileRecord
}

func (g *Group) Canonical() *config.FileRecord {
	return g.Files[0]
}

func (g *Group) Duplicates() []*config.FileRecord {
	return g.Files[1:]
}

// WastedSize is the space the duplicates occupy on top of the canonical copy.
func (g *Group) WastedSize() int64 {
	var wasted int64
	for _, record := range g.Duplicates() {
		wasted += record.Size
	}

	return wasted
}

type DupeFileMap struct {
	algorithm string
	groups    []*Group

	collapsedHardlinks int

	log *logrus.Entry
}
