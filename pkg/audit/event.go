package audit

import "time"

// Event records one secrets API operation. It never carries secret values.
type Event struct {
	Operation  string    `json:"operation"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status,omitempty"`
	Attempts   int       `json:"attempts,omitempty"`
	CacheHit   bool      `json:"cache_hit,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event stamped with the current time.
func NewEvent(operation, method, path string) Event {
	return Event{
		Operation:  operation,
		Method:     method,
		Path:       path,
		OccurredAt: time.Now().UTC(),
	}
}
