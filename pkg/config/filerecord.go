package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/c0xc/dupefinder/pkg/fileid"
	"github.com/c0xc/dupefinder/pkg/regex"
)

// FileRecord describes one regular file observed during a scan. Records
// sharing the same ID are hardlinks to one physical file and count as a
// single unit for duplicate accounting.
type FileRecord struct {
	Path             string            // path as given by traversal, rooted at the search directory argument
	FullPath         string            // absolute path
	Name             string            // base name
	Size             int64             // size in bytes
	ModificationTime int64             // unix seconds
	ID               fileid.FileID     // physical identity (device + inode)
	Digests          map[string]string // algorithm name -> hex digest

	regexPattern *regex.Pattern
}

// Fixed keys of the serialized cache record. Every other string valued key
// is a digest entry named after its algorithm.
const (
	recordKeyPath     = "Path"
	recordKeyFullPath = "FullPath"
	recordKeyName     = "Name"
	recordKeySize     = "Size"
	recordKeyModTime  = "ModificationTime"
	recordKeyInum     = "Inum"
)

// MarshalJSON flattens the digest map into uppercase algorithm keys next to
// the fixed fields. Device IDs are not serialized, a cache file is only
// valid relative to the filesystem it was created on anyway.
func (r *FileRecord) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, 6+len(r.Digests))
	obj[recordKeyPath] = r.Path
	obj[recordKeyFullPath] = r.FullPath
	obj[recordKeyName] = r.Name
	obj[recordKeySize] = r.Size
	obj[recordKeyModTime] = r.ModificationTime
	obj[recordKeyInum] = r.ID.Inode

	for name, digest := range r.Digests {
		obj[name] = digest
	}

	return json.Marshal(obj)
}

// UnmarshalJSON accepts records from our own exports as well as foreign
// ones. Mistyped or missing fields degrade to zero values, which fail the
// size check at lookup time instead of aborting the import.
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Digests = make(map[string]string)

	for key, value := range raw {
		switch key {
		case recordKeyPath:
			_ = json.Unmarshal(value, &r.Path)
		case recordKeyFullPath:
			_ = json.Unmarshal(value, &r.FullPath)
		case recordKeyName:
			_ = json.Unmarshal(value, &r.Name)
		case recordKeySize:
			_ = json.Unmarshal(value, &r.Size)
		case recordKeyModTime:
			_ = json.Unmarshal(value, &r.ModificationTime)
		case recordKeyInum:
			_ = json.Unmarshal(value, &r.ID.Inode)
		default:
			var digest string
			if err := json.Unmarshal(value, &digest); err == nil {
				r.Digests[key] = digest
			}
		}
	}

	return nil
}

// Ext returns the file name extension including the leading dot.
func (r *FileRecord) Ext() string {
	return filepath.Ext(r.Name)
}

// RegexMatch delegates to the regex checker
func (r *FileRecord) RegexMatch(pattern string) bool {
	// Compile pattern if needed
	if r.regexPattern == nil || r.regexPattern.Expression.String() != pattern {
		compiled, err := regex.Compile(pattern)
		if err != nil {
			return false
		}
		r.regexPattern = compiled
	}

	// Check pattern
	match, err := regex.Check(r.Name, r.regexPattern)
	if err != nil {
		return false
	}

	return match
}

// RegexMatchAny checks if the file name matches any of the provided patterns
func (r *FileRecord) RegexMatchAny(patternsStr string) bool {
	var compiledPatterns []*regex.Pattern
	for _, p := range strings.Split(patternsStr, ",") {
		compiled, err := regex.Compile(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		compiledPatterns = append(compiledPatterns, compiled)
	}

	match, err := regex.CheckAny(r.Name, compiledPatterns)
	if err != nil {
		return false
	}

	return match
}

// RegexMatchAll checks if the file name matches all of the provided patterns
func (r *FileRecord) RegexMatchAll(patternsStr string) bool {
	var compiledPatterns []*regex.Pattern
	for _, p := range strings.Split(patternsStr, ",") {
		compiled, err := regex.Compile(strings.TrimSpace(p))
		if err != nil {
			return false
		}
		compiledPatterns = append(compiledPatterns, compiled)
	}

	match, err := regex.CheckAll(r.Name, compiledPatterns)
	if err != nil {
		return false
	}

	return match
}
