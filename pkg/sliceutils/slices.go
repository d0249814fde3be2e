package sliceutils

import (
	"strings"
)

func StringSliceContains(slice []string, contains string, caseInsensitive bool) bool {
	for _, s := range slice {
		if caseInsensitive && strings.EqualFold(s, contains) {
			return true
		} else if s == contains {
			return true
		}
	}

	return false
}
