package models

// ProgressUpdate is the payload broadcast on the admin websocket feed.
type ProgressUpdate struct {
	JobID    string  `json:"jobId"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"` // e.g. "running", "completed", "failed"
	Done     bool    `json:"done"`
}
