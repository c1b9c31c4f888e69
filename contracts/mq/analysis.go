package mq

// ProjectDelayedPayload is published on project.delayed whenever a fresh
// analysis reports a positive delay.
type ProjectDelayedPayload struct {
	ProjectID      string `json:"project_id"`
	DelayDays      int    `json:"delay_days"`
	DominantFactor string `json:"dominant_factor"`
	AsOf           string `json:"as_of"` // YYYY-MM-DD
}

// TaskUpdatedPayload arrives on task.updated from the tracking
// application; the analysis service invalidates its cache for the project.
type TaskUpdatedPayload struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
}
