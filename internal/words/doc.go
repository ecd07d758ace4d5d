// Package words parses per-video timed-word tables (*.words.tsv) and groups
// their rows into transcribed segments for downstream analysis.
package words
