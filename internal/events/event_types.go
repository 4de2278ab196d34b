package events

import (
	"time"

	"github.com/spec-kit/incident-bridge/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentAccepted EventType = "incident_accepted"
	EventIncidentRejected EventType = "incident_rejected"
	EventSubmissionFailed EventType = "submission_failed"
)

// Event represents a pipeline event emitted by the incident service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IncidentAcceptedPayload payload.
type IncidentAcceptedPayload struct {
	TaskID          string        `json:"task_id,omitempty"`
	AttachmentCount int           `json:"attachment_count"`
	Duration        time.Duration `json:"duration"`
}

// IncidentRejectedPayload payload.
type IncidentRejectedPayload struct {
	Errors []string `json:"errors"`
}

// SubmissionFailedPayload payload.
type SubmissionFailedPayload struct {
	Code      domain.ErrorKind `json:"code"`
	OetCode   string           `json:"oet_code,omitempty"`
	Retryable bool             `json:"retryable"`
	Duration  time.Duration    `json:"duration"`
}
