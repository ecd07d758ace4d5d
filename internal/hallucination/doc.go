// Package hallucination detects stuck-repeat transcription artifacts: a
// segment whose full text recurs abnormally often within a short time
// window is almost certainly a speech-to-text engine looping, not speech.
// Flagged segments are emitted as retry-manifest rows for re-transcription.
//
// The detector is a necessary-condition heuristic. It trades false
// positives (legitimate repeats inside a short span) for simplicity, on the
// assumption that the retry worker re-verifies flagged segments.
package hallucination
