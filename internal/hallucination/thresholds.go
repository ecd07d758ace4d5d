package hallucination

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Thresholds maps phrase length to the minimum repeat count required to
// flag that phrase as a hallucination. Lengths without an explicit rule
// inherit the rule with the largest length at or below them: short phrases
// repeat legitimately in normal speech and need a much higher count than
// long ones, which essentially never repeat verbatim unless the
// transcription engine is stuck.
type Thresholds map[int]int

// ParseThresholds parses a comma-separated "length:count" rule list such as
// "1:10,2:4,3:4". Blank chunks are ignored; anything else malformed is an
// error, as is a spec that yields no rules at all.
func ParseThresholds(spec string) (Thresholds, error) {
	rules := Thresholds{}
	for _, chunk := range strings.Split(spec, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		lengthStr, countStr, ok := strings.Cut(chunk, ":")
		if !ok {
			return nil, fmt.Errorf("threshold rule %q: missing ':'", chunk)
		}
		length, err := strconv.Atoi(strings.TrimSpace(lengthStr))
		if err != nil {
			return nil, fmt.Errorf("threshold rule %q: length must be an integer", chunk)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return nil, fmt.Errorf("threshold rule %q: count must be an integer", chunk)
		}
		if length <= 0 || count <= 0 {
			return nil, fmt.Errorf("threshold rule %q: length and count must be positive", chunk)
		}
		rules[length] = count
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("threshold spec %q yields no rules", spec)
	}
	return rules, nil
}

// RequiredRepeats resolves the repeat count for a phrase of the given
// length. An exact rule wins; otherwise the rule with the largest length at
// or below phraseLen applies. Returns false when no rule applies — the
// phrase is simply outside policy, not an error.
func (t Thresholds) RequiredRepeats(phraseLen int) (int, bool) {
	if count, ok := t[phraseLen]; ok {
		return count, true
	}
	best := -1
	for length := range t {
		if length <= phraseLen && length > best {
			best = length
		}
	}
	if best < 0 {
		return 0, false
	}
	return t[best], true
}

// String renders the rules in "length:count" form, sorted by length.
func (t Thresholds) String() string {
	lengths := make([]int, 0, len(t))
	for length := range t {
		lengths = append(lengths, length)
	}
	sort.Ints(lengths)
	parts := make([]string, 0, len(lengths))
	for _, length := range lengths {
		parts = append(parts, fmt.Sprintf("%d:%d", length, t[length]))
	}
	return strings.Join(parts, ",")
}
