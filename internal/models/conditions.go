package models

// Condition ids offered by the capture UI. Free-form ids are accepted and
// stored verbatim when they don't match one of these.
const (
	ConditionCut    = "cut"
	ConditionBruise = "bruise"
	ConditionMole   = "mole"
	ConditionHives  = "hives"
	ConditionPhlegm = "phlegm"
)

// Condition describes one selectable condition category
type Condition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Conditions lists the categories offered by the capture UI, in display order
var Conditions = []Condition{
	{ID: ConditionCut, Label: "Cut/Wound", Description: "Open wounds, lacerations, scratches", Icon: "🩹"},
	{ID: ConditionBruise, Label: "Bruise", Description: "Contusions, black and blue marks", Icon: "🟣"},
	{ID: ConditionMole, Label: "Mole/Spot", Description: "Skin spots, moles, unusual marks", Icon: "🔴"},
	{ID: ConditionHives, Label: "Hives/Rash", Description: "Skin irritation, bumps, redness", Icon: "🔻"},
	{ID: ConditionPhlegm, Label: "Phlegm/Mucus", Description: "Respiratory secretions", Icon: "💧"},
}

var conditionLabels = map[string]string{
	ConditionCut:    "Cut/Wound",
	ConditionBruise: "Bruise",
	ConditionMole:   "Mole",
	ConditionHives:  "Hives",
	ConditionPhlegm: "Phlegm",
}

// ConditionLabel returns the display label for a condition id, falling back
// to the raw id for unrecognized values so nothing is ever lost.
func ConditionLabel(id string) string {
	if label, ok := conditionLabels[id]; ok {
		return label
	}
	return id
}
