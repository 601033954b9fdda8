package domain

import "time"

// Import event statuses.
const (
	ImportStatusSucceeded = "succeeded"
	ImportStatusFailed    = "failed"
)

// ImportEvent describes the outcome of one import attempt. Published after
// every attempt for audit logging, metrics, and live dashboards. Carries no
// credentials and no product payloads.
type ImportEvent struct {
	RunID         string        `json:"run_id"`
	UserID        string        `json:"user_id"`
	Retailer      string        `json:"retailer"`
	Status        string        `json:"status"`
	ImportedCount int           `json:"imported_count"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration_ms"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
