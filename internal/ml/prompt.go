package ml

import (
	"fmt"
	"strings"

	"github.com/zach3141592/TerraHacks2025/internal/models"
)

// buildPrompt returns the analysis prompt for a condition. The formatting
// requirements are load-bearing: the response parser keys on the bold
// section headers and the timeline extractor on the "Stage N (range):"
// line shape.
func buildPrompt(conditionType string) string {
	label := strings.ToLower(models.ConditionLabel(conditionType))
	return fmt.Sprintf(`Analyze this medical photo of a %s. Provide a concise, well-structured response with exactly three sections:

**OBSERVATIONS:**
- List 2-3 key visual observations in bullet points
- Note colors, size, texture, or concerning features
- Keep each point brief (1 sentence max)
- Be descriptive but not diagnostic

**HEALING TIMELINE:**
- Provide expected timeframe in clear stages
- Use format: "Stage 1 (Days 1-3): ...", "Stage 2 (Days 4-7): ..."
- Include total expected healing time
- Maximum 3 stages

**CARE RECOMMENDATIONS:**
- List 3-5 specific, actionable recommendations
- Use bullet points with clear instructions
- Focus on evidence-based care
- Include "See healthcare provider if..." warning

FORMATTING REQUIREMENTS:
- Use bold headers (**OBSERVATIONS:**, **HEALING TIMELINE:**, **CARE RECOMMENDATIONS:**)
- Use bullet points (•) for lists
- Keep responses concise and scannable
- No lengthy paragraphs
- Maximum 2-3 sentences per bullet point

IMPORTANT: Do not provide medical diagnoses. This is for informational purposes only.`, label)
}
