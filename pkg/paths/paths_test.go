package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIgnored(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		expected bool
	}{
		{
			name:     "no_patterns",
			path:     "/data/photos/a.jpg",
			patterns: nil,
			expected: false,
		},
		{
			name:     "glob_base_name",
			path:     "/data/work/report.tmp",
			patterns: []string{"*.tmp"},
			expected: true,
		},
		{
			name:     "glob_no_match",
			path:     "/data/work/report.txt",
			patterns: []string{"*.tmp"},
			expected: false,
		},
		{
			name:     "glob_question_mark",
			path:     "/data/a1.log",
			patterns: []string{"a?.log"},
			expected: true,
		},
		{
			name:     "prefix_subtree",
			path:     "/data/cache/chunk0",
			patterns: []string{"/data/cache"},
			expected: true,
		},
		{
			name:     "prefix_case_insensitive",
			path:     "/Data/Cache/chunk0",
			patterns: []string{"/data/cache"},
			expected: true,
		},
		{
			name:     "prefix_no_match",
			path:     "/data/photos/a.jpg",
			patterns: []string{"/data/cache"},
			expected: false,
		},
		{
			name:     "second_pattern_matches",
			path:     "/data/photos/thumb.png",
			patterns: []string{"*.tmp", "thumb.*"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsIgnored(tt.path, tt.patterns))
		})
	}
}
