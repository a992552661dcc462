package monitor

import "time"

// ComponentStatus is the last result of one named check.
type ComponentStatus struct {
	OK       bool          `json:"ok"`
	Critical bool          `json:"critical"`
	Error    string        `json:"error,omitempty"`
	Latency  time.Duration `json:"latency_ns"`
}

// Status is the cached result of a monitor pass.
type Status struct {
	Healthy    bool                       `json:"healthy"`
	Components map[string]ComponentStatus `json:"components"`
	LastCheck  time.Time                  `json:"last_check"`
}
