package hallucination

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"vidops/internal/logging"
	"vidops/internal/manifest"
	"vidops/internal/words"
)

// phraseCleaner strips everything but word characters, apostrophes, and
// hyphens so basic contractions survive normalization.
var phraseCleaner = regexp.MustCompile(`[^\pL\pN_'-]+`)

// Detector finds segments whose full text repeats abnormally often within a
// short time window — the signature of a transcription engine stuck in a
// loop.
type Detector struct {
	thresholds Thresholds
	maxWindow  float64
	logger     *slog.Logger
}

// NewDetector builds a detector. maxWindowSeconds bounds the time span the
// repeats of one phrase may cover and still count as a stutter.
func NewDetector(thresholds Thresholds, maxWindowSeconds float64, logger *slog.Logger) *Detector {
	return &Detector{
		thresholds: thresholds,
		maxWindow:  maxWindowSeconds,
		logger:     logging.NewComponentLogger(logger, "detector"),
	}
}

// NormalizePhrase lowercases the words, strips punctuation other than
// apostrophes and hyphens, and joins the non-empty remainder with single
// spaces. The second return is the phrase length in normalized tokens.
func NormalizePhrase(segmentWords []string) (string, int) {
	normalized := make([]string, 0, len(segmentWords))
	for _, w := range segmentWords {
		cleaned := phraseCleaner.ReplaceAllString(strings.ToLower(w), "")
		if cleaned != "" {
			normalized = append(normalized, cleaned)
		}
	}
	return strings.Join(normalized, " "), len(normalized)
}

type phraseKey struct {
	phrase string
	length int
}

type occurrence struct {
	segment  words.Segment
	required int
}

// Detect scans one media file's segments and returns every occurrence of a
// phrase that crossed its repeat threshold inside the time window. Flagging
// is all-or-nothing per phrase cluster; occurrences are returned sorted by
// start time within each cluster. The result is not yet deduplicated.
func (d *Detector) Detect(mediaFile string, segments []words.Segment) []manifest.Row {
	clusters := make(map[phraseKey][]occurrence)
	var order []phraseKey

	for _, seg := range segments {
		phrase, length := NormalizePhrase(seg.Words)
		if length == 0 {
			continue
		}
		required, ok := d.thresholds.RequiredRepeats(length)
		if !ok {
			// No policy applies to this phrase length; untracked.
			continue
		}
		key := phraseKey{phrase: phrase, length: length}
		if _, seen := clusters[key]; !seen {
			order = append(order, key)
		}
		clusters[key] = append(clusters[key], occurrence{segment: seg, required: required})
	}

	var flagged []manifest.Row
	for _, key := range order {
		occs := clusters[key]
		required := occs[0].required
		if len(occs) < required {
			continue
		}

		sort.Slice(occs, func(i, j int) bool { return occs[i].segment.Start < occs[j].segment.Start })
		span := occs[len(occs)-1].segment.End - occs[0].segment.Start
		if span > d.maxWindow {
			// Repeated but spread out: a recurring catchphrase, not a stutter.
			continue
		}

		for _, occ := range occs {
			flagged = append(flagged, manifest.Row{
				MediaFile:  mediaFile,
				SegmentIdx: occ.segment.ID,
				StartTime:  occ.segment.Start,
				EndTime:    occ.segment.End,
				Confidence: occ.segment.Confidence,
				Text:       occ.segment.Text(),
			})
		}

		d.logger.Debug("phrase repeated in tight window",
			logging.Args(
				logging.String(logging.FieldMediaFile, mediaFile),
				logging.String("phrase", key.phrase),
				logging.Int("phrase_len", key.length),
				logging.Int("occurrences", len(occs)),
				logging.Int("threshold", required),
				logging.Float64("span_seconds", span),
			)...)
	}

	if len(flagged) > 0 {
		d.logger.Debug("flagged repeated-phrase segments",
			logging.Args(
				logging.String(logging.FieldMediaFile, mediaFile),
				logging.Int("segments", len(flagged)),
			)...)
	}
	return flagged
}
