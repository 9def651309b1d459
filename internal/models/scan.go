package models

// ScanRecord represents one persisted analysis of a condition photo
type ScanRecord struct {
	ID        int64 `json:"id"`
	Timestamp int64 `json:"timestamp"` // milliseconds since epoch, assigned at save time

	ConditionType string `json:"condition_type"`
	PhotoData     string `json:"photo_data"` // image as a data URI, stored verbatim

	// The three sections produced by the response parser. Each is
	// independently possibly empty, never anything but a plain string.
	Observations    string `json:"observations"`
	Timeline        string `json:"timeline"`
	Recommendations string `json:"recommendations"`

	CreatedAt string `json:"created_at"` // store-assigned, informational only
}

// TimelineStage is one step of the healing timeline. Stages are derived
// from the stored timeline text every time it is rendered and are never
// persisted themselves.
type TimelineStage struct {
	Number      int    `json:"stage"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}
