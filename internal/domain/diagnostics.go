package domain

import "time"

// DiagnosticStatus indicates whether a collaborator check passed.
type DiagnosticStatus string

const (
	DiagnosticStatusPass DiagnosticStatus = "pass"
	DiagnosticStatusFail DiagnosticStatus = "fail"
)

// DiagnosticItem is the outcome of checking one collaborator the
// orchestrator depends on, such as the transformation service endpoint or
// the record store location. Hint tells the operator how to repair a
// failing check.
type DiagnosticItem struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Status  DiagnosticStatus `json:"status"`
	Message string           `json:"message"`
	Hint    string           `json:"hint,omitempty"`
}

// DiagnosticReport aggregates collaborator checks for the health endpoint.
// A session can still be started with failures present; the report is
// advisory.
type DiagnosticReport struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	HasFailures bool             `json:"hasFailures"`
	Items       []DiagnosticItem `json:"items"`
}
