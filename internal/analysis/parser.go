// Package analysis converts the free-text reply of the vision model into
// the structured sections the rest of the app works with.
package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sections holds the three text fields extracted from one model reply.
// Every field is a plain string, possibly empty. A reply with no
// recognizable headers parses to three empty fields; that is a valid
// result, not an error.
type Sections struct {
	Observations    string `json:"observations"`
	Timeline        string `json:"timeline"`
	Recommendations string `json:"recommendations"`
}

// sectionKind tags the fixed set of section headers the parser recognizes.
type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionObservations
	sectionTimeline
	sectionRecommendations
)

var (
	bulletRe = regexp.MustCompile(`^[•\-*]\s*`)
	// Matches a "Stage N (range):" prefix in plain or already-emphasized
	// form so rewriting it is idempotent.
	stagePrefixRe = regexp.MustCompile(`(?i)^Stage\s+(\d+)\s*\(([^)]+)\):(?:\*\*)?\s*`)
	multiNewline  = regexp.MustCompile(`\n{2,}`)
)

// matchHeader reports whether a line is a section header and which section
// it opens. A header is any line carrying a colon together with the section
// keyword, in any formatting ("**OBSERVATIONS:**", "Healing Timeline:", ...).
func matchHeader(line string) (sectionKind, bool) {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, ":") {
		return sectionNone, false
	}
	switch {
	case strings.Contains(lower, "observation"):
		return sectionObservations, true
	case strings.Contains(lower, "timeline"):
		return sectionTimeline, true
	case strings.Contains(lower, "care"), strings.Contains(lower, "recommendation"):
		return sectionRecommendations, true
	}
	return sectionNone, false
}

// ParseResponse splits one model reply into the three sections. Lines are
// routed to whichever section's header most recently preceded them; lines
// before the first header are dropped. Header lines themselves are consumed
// and never appended to a field.
func ParseResponse(text string) Sections {
	fields := map[sectionKind][]string{}
	current := sectionNone

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if kind, ok := matchHeader(line); ok {
			current = kind
			continue
		}
		if current == sectionNone {
			continue
		}

		line = normalizeLine(line)
		// Leftover formatting fragments are noise, not content.
		if utf8.RuneCountInString(line) <= 3 {
			continue
		}
		fields[current] = append(fields[current], line)
	}

	return Sections{
		Observations:    finalize(fields[sectionObservations]),
		Timeline:        finalize(fields[sectionTimeline]),
		Recommendations: finalize(fields[sectionRecommendations]),
	}
}

// normalizeLine canonicalizes one content line: a surrounding emphasis pair
// is stripped, any bullet marker becomes "• ", and a leading
// "Stage N (range):" is rewritten to its emphasized form so the timeline
// extractor only ever sees a single shape. Running it on its own output
// changes nothing.
func normalizeLine(line string) string {
	line = strings.TrimPrefix(line, "**")
	line = strings.TrimSuffix(line, "**")
	line = bulletRe.ReplaceAllString(line, "• ")
	line = stagePrefixRe.ReplaceAllString(line, "**Stage $1 ($2):** ")
	return line
}

// finalize joins accumulated lines and collapses any leftover blank runs,
// so a field never carries leading, trailing or doubled newlines.
func finalize(lines []string) string {
	s := strings.Join(lines, "\n")
	s = multiNewline.ReplaceAllString(s, "\n")
	s = strings.Trim(s, "\n")
	return strings.TrimSpace(s)
}
