package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/zach3141592/TerraHacks2025/internal/models"
)

// Stage lines as the parser normalizes them: "**Stage 1 (Days 1-3):** ...".
var stageLineRe = regexp.MustCompile(`(?i)\*\*Stage\s+(\d+)\s*\(([^)]+)\):\*\*\s*(.*)`)

// ExtractStages derives the ordered healing stages from a parsed timeline
// string for the visual timeline widget. It is recomputed on every render:
// side-effect free, idempotent, and it never fails. Malformed input degrades
// to an empty slice, which signals "nothing to visualize".
func ExtractStages(timeline string) []models.TimelineStage {
	if timeline == "" {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(timeline, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var stages []models.TimelineStage
	for _, line := range lines {
		if m := stageLineRe.FindStringSubmatch(line); m != nil {
			number, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			stages = append(stages, models.TimelineStage{
				Number:      number,
				Duration:    m[2],
				Description: strings.TrimSpace(m[3]),
			})
			continue
		}
		// A bullet right after a bare stage header carries its description.
		// It never overwrites one the header line already provided.
		if strings.HasPrefix(line, "•") && len(stages) > 0 {
			last := &stages[len(stages)-1]
			if last.Description == "" {
				last.Description = strings.TrimSpace(strings.TrimPrefix(line, "•"))
			}
		}
	}

	if len(stages) == 0 {
		return fallbackStage(lines)
	}
	return stages
}

// fallbackStage synthesizes a single stage from unstructured timeline text,
// skipping any line that still mentions "timeline" so a stray header is not
// re-included.
func fallbackStage(lines []string) []models.TimelineStage {
	var kept []string
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "timeline") {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return nil
	}
	return []models.TimelineStage{{
		Number:      1,
		Duration:    "Healing Period",
		Description: strings.Join(kept, " "),
	}}
}
