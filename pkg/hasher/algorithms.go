package hasher

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"github.com/c0xc/dupefinder/pkg/sliceutils"
)

// ErrUnknownAlgorithm tags digest algorithm names missing from the registry.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Algorithm is one entry of the digest algorithm registry.
type Algorithm struct {
	Name string
	New  func() hash.Hash
}

// registry is the closed set of supported digest algorithms. Unknown names
// abort the run before any file is opened.
var registry = map[string]func() hash.Hash{
	"MD5":    md5.New,
	"SHA1":   sha1.New,
	"SHA224": sha256.New224,
	"SHA256": sha256.New,
	"SHA384": sha512.New384,
	"SHA512": sha512.New,
	"XXH64":  func() hash.Hash { return xxhash.New() },
	"BLAKE3": func() hash.Hash { return blake3.New() },
}

// AlgorithmNames returns the names of all registered algorithms, sorted.
func AlgorithmNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// ResolveAlgorithms maps the selected names to registry entries, falling
// back to the default name when none were selected. Matching is case
// insensitive and duplicates collapse onto their first occurrence. The
// first entry is the primary algorithm used for grouping.
func ResolveAlgorithms(names []string, defaultName string) ([]Algorithm, error) {
	if len(names) == 0 {
		names = []string{defaultName}
	}

	var resolved []string
	algorithms := make([]Algorithm, 0, len(names))

	for _, name := range names {
		name = strings.ToUpper(strings.TrimSpace(name))
		if sliceutils.StringSliceContains(resolved, name, false) {
			continue
		}

		ctor, ok := registry[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", name)
		}

		resolved = append(resolved, name)
		algorithms = append(algorithms, Algorithm{Name: name, New: ctor})
	}

	return algorithms, nil
}
