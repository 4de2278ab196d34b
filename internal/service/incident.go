package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-bridge/internal/config"
	"github.com/spec-kit/incident-bridge/internal/domain"
	"github.com/spec-kit/incident-bridge/internal/events"
	"github.com/spec-kit/incident-bridge/internal/soap"
)

// AttachmentFetcher retrieves image URLs from a chat conversation.
type AttachmentFetcher interface {
	FetchImageURLs(ctx context.Context, conversationID string) ([]string, error)
}

// Materializer downloads image URLs and encodes them inline.
type Materializer interface {
	Materialize(ctx context.Context, urls []string) []domain.MaterializedImage
}

// SubmissionGateway submits an incident to the ticketing backend.
type SubmissionGateway interface {
	Submit(ctx context.Context, fields soap.Fields, attachments []domain.MaterializedImage) (domain.SubmissionResult, error)
}

// IncidentService runs the submission pipeline: validate, collect
// attachments, materialize images, build the envelope fields, submit.
// Attachment collection and image materialization are best-effort;
// their failure degrades to "no attachments".
type IncidentService struct {
	validator    *IncidentValidator
	fetcher      AttachmentFetcher
	materializer Materializer
	gateway      SubmissionGateway
	dispatcher   events.Dispatcher
	cfg          *config.Config
	logger       *zap.Logger
}

// IncidentDependencies bundles collaborators for the incident service.
type IncidentDependencies struct {
	Validator    *IncidentValidator
	Fetcher      AttachmentFetcher
	Materializer Materializer
	Gateway      SubmissionGateway
	Dispatcher   events.Dispatcher
}

// NewIncidentService constructs the service.
func NewIncidentService(cfg *config.Config, logger *zap.Logger, deps IncidentDependencies) *IncidentService {
	return &IncidentService{
		validator:    deps.Validator,
		fetcher:      deps.Fetcher,
		materializer: deps.Materializer,
		gateway:      deps.Gateway,
		dispatcher:   deps.Dispatcher,
		cfg:          cfg,
		logger:       logger,
	}
}

// CreateIncident validates the request and submits it to the ticketing
// backend, returning a typed result. After validation no step can turn
// a well-formed incident into a validation failure; only the gateway
// reports business-level failure. Unclassified transport errors
// propagate as the error return.
func (s *IncidentService) CreateIncident(ctx context.Context, raw domain.Incident) (domain.SubmissionResult, error) {
	start := time.Now()

	if raw.IsEmpty() {
		result := domain.Rejected([]string{"request body is required"})
		s.publishRejected(ctx, result.Errors)
		return result, nil
	}

	incident, errs := s.validator.Validate(raw)
	if len(errs) > 0 {
		s.logger.Info("incident rejected", zap.Strings("errors", errs))
		result := domain.Rejected(errs)
		s.publishRejected(ctx, errs)
		return result, nil
	}

	images := s.collectAttachments(ctx, incident)

	fields := soap.BuildFields(incident, s.cfg.Oet)

	result, err := s.gateway.Submit(ctx, fields, images)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	duration := time.Since(start)
	if result.Status == domain.StatusOK {
		s.logger.Info("incident submitted",
			zap.String("task_id", result.TaskID),
			zap.Int("attachments", len(images)),
			zap.Duration("duration", duration))
		s.publish(ctx, events.EventIncidentAccepted, events.IncidentAcceptedPayload{
			TaskID:          result.TaskID,
			AttachmentCount: len(images),
			Duration:        duration,
		})
	} else {
		s.logger.Warn("backend rejected incident",
			zap.String("code", string(result.Code)),
			zap.String("oet_code", result.OetCode),
			zap.Duration("duration", duration))
		s.publish(ctx, events.EventSubmissionFailed, events.SubmissionFailedPayload{
			Code:      result.Code,
			OetCode:   result.OetCode,
			Retryable: result.Retryable,
			Duration:  duration,
		})
	}
	return result, nil
}

// collectAttachments gathers conversation images plus the optional
// inline file. Every failure here is logged and absorbed.
func (s *IncidentService) collectAttachments(ctx context.Context, incident domain.Incident) []domain.MaterializedImage {
	var images []domain.MaterializedImage

	if incident.HasConversation() {
		urls, err := s.fetcher.FetchImageURLs(ctx, incident.ConversationID)
		if err != nil {
			s.logger.Warn("attachment fetch failed, continuing without conversation attachments",
				zap.String("conversation_id", incident.ConversationID),
				zap.Error(err))
		} else if len(urls) > 0 {
			images = s.materializer.Materialize(ctx, urls)
		}
	}

	if incident.FilesURLs != "" {
		inline, err := DecodeInlineFile(incident.FilesURLs, s.cfg.Files.MaxFileSizeBytes)
		if err != nil {
			s.logger.Warn("inline file decode failed, continuing without it", zap.Error(err))
		} else {
			images = append(images, inline)
		}
	}

	return images
}

func (s *IncidentService) publishRejected(ctx context.Context, errs []string) {
	s.publish(ctx, events.EventIncidentRejected, events.IncidentRejectedPayload{Errors: errs})
}

func (s *IncidentService) publish(ctx context.Context, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
}
