package model

import "time"

// Dispatch outcome constants. Exactly one outcome wins per request.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeTimeout   = "timeout"
	OutcomeSaturated = "saturated"
)

// ValidOutcome reports whether s is a known dispatch outcome.
func ValidOutcome(s string) bool {
	switch s {
	case OutcomeSuccess, OutcomeFailure, OutcomeTimeout, OutcomeSaturated:
		return true
	}
	return false
}

// Dispatch is the record of one bridged request: which pool ran it, how it
// ended, and what the caller saw.
type Dispatch struct {
	ID         string    `json:"id"`
	PoolKey    string    `json:"pool_key"`
	Outcome    string    `json:"outcome"`
	Status     int       `json:"status"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
