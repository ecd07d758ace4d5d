// Package manifest reads and writes the tab-separated manifests that tie
// the transcript tooling together: source manifests naming media files of
// interest, and retry manifests listing flagged segments for
// re-transcription.
package manifest
