package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-bridge/internal/events"
	"github.com/spec-kit/incident-bridge/internal/observability"
)

// EventRecorder turns pipeline events into metrics and audit log lines.
type EventRecorder struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewEventRecorder creates the recorder.
func NewEventRecorder(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *EventRecorder {
	return &EventRecorder{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to pipeline events.
func (r *EventRecorder) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Subscribe(events.EventIncidentAccepted, r.handleAccepted)
	r.dispatcher.Subscribe(events.EventIncidentRejected, r.handleRejected)
	r.dispatcher.Subscribe(events.EventSubmissionFailed, r.handleFailed)
}

func (r *EventRecorder) handleAccepted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentAcceptedPayload)
	if !ok {
		return nil
	}
	r.metrics.RecordIncident("ok", payload.Duration)
	r.logger.Info("IncidentAccepted",
		zap.String("event_id", event.ID),
		zap.String("task_id", payload.TaskID),
		zap.Int("attachment_count", payload.AttachmentCount))
	return nil
}

func (r *EventRecorder) handleRejected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentRejectedPayload)
	if !ok {
		return nil
	}
	r.metrics.RecordIncident("rejected", 0)
	r.logger.Info("IncidentRejected",
		zap.String("event_id", event.ID),
		zap.Int("error_count", len(payload.Errors)))
	return nil
}

func (r *EventRecorder) handleFailed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SubmissionFailedPayload)
	if !ok {
		return nil
	}
	r.metrics.RecordIncident("error", payload.Duration)
	r.logger.Info("SubmissionFailed",
		zap.String("event_id", event.ID),
		zap.String("code", string(payload.Code)),
		zap.Bool("retryable", payload.Retryable))
	return nil
}
