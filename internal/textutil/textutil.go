// Package textutil provides small text helpers shared by the transcript
// tooling: manifest-safe text collapsing and video-ID extraction.
package textutil

import (
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`([A-Za-z0-9_-]{11})__`)

// CollapseTSVText replaces tab and newline characters with single spaces so
// a free-text field stays on one TSV row.
func CollapseTSVText(s string) string {
	replacer := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	return replacer.Replace(s)
}

// VideoID extracts an 11-character video identifier from a file name of the
// form "<id>__rest". Returns "" when the name carries no identifier.
func VideoID(name string) string {
	m := videoIDPattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// VideoIDPrefix returns everything before the first "__" when it looks like
// a video ID, preferring the strict 11-character match.
func VideoIDPrefix(name string) string {
	if id := VideoID(name); id != "" {
		return id
	}
	if idx := strings.Index(name, "__"); idx > 0 {
		return name[:idx]
	}
	return ""
}
