// Package retry re-transcribes the segments listed in retry manifests and
// patches the corrected text and confidence back into the project's VTT and
// word-table artifacts.
package retry
