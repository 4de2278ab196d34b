package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-bridge/internal/config"
	"github.com/spec-kit/incident-bridge/internal/domain"
	"github.com/spec-kit/incident-bridge/internal/soap"
)

type stubFetcher struct {
	urls  []string
	err   error
	calls int
}

func (f *stubFetcher) FetchImageURLs(ctx context.Context, conversationID string) ([]string, error) {
	f.calls++
	return f.urls, f.err
}

type stubMaterializer struct {
	images []domain.MaterializedImage
	calls  int
}

func (m *stubMaterializer) Materialize(ctx context.Context, urls []string) []domain.MaterializedImage {
	m.calls++
	return m.images
}

type stubGateway struct {
	result         domain.SubmissionResult
	err            error
	calls          int
	gotFields      soap.Fields
	gotAttachments []domain.MaterializedImage
}

func (g *stubGateway) Submit(ctx context.Context, fields soap.Fields, attachments []domain.MaterializedImage) (domain.SubmissionResult, error) {
	g.calls++
	g.gotFields = fields
	g.gotAttachments = attachments
	return g.result, g.err
}

func newTestService(fetcher *stubFetcher, materializer *stubMaterializer, gateway *stubGateway) *IncidentService {
	cfg := &config.Config{
		Oet: config.OetConfig{
			Username: "svc_user",
			Password: "svc_pass",
		},
		Files: config.FilesConfig{MaxFileSizeBytes: 1024 * 1024},
	}
	return NewIncidentService(cfg, zap.NewNop(), IncidentDependencies{
		Validator:    NewIncidentValidator(false),
		Fetcher:      fetcher,
		Materializer: materializer,
		Gateway:      gateway,
	})
}

func TestCreateIncident_EmptyRequest(t *testing.T) {
	gateway := &stubGateway{}
	svc := newTestService(&stubFetcher{}, &stubMaterializer{}, gateway)

	result, err := svc.CreateIncident(context.Background(), domain.Incident{})
	if err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if result.Code != domain.ErrValidation || len(result.Errors) != 1 {
		t.Fatalf("result = %+v, want single validation error", result)
	}
	if !strings.Contains(result.Errors[0], "request body is required") {
		t.Fatalf("error = %q", result.Errors[0])
	}
	if gateway.calls != 0 {
		t.Fatal("gateway must not be called for an empty request")
	}
}

func TestCreateIncident_ValidationFailureStopsPipeline(t *testing.T) {
	fetcher := &stubFetcher{}
	gateway := &stubGateway{}
	svc := newTestService(fetcher, &stubMaterializer{}, gateway)

	incident := validIncident()
	incident.ClientEmail = "broken"
	incident.ConversationID = "33809"

	result, err := svc.CreateIncident(context.Background(), incident)
	if err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if result.Status != domain.StatusError || result.Code != domain.ErrValidation {
		t.Fatalf("result = %+v, want validation failure", result)
	}
	if fetcher.calls != 0 || gateway.calls != 0 {
		t.Fatal("no step after validation may run for an invalid incident")
	}
}

func TestCreateIncident_NoConversationSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{}
	materializer := &stubMaterializer{}
	gateway := &stubGateway{result: domain.OK("314245", "La Tarea 314245")}
	svc := newTestService(fetcher, materializer, gateway)

	result, err := svc.CreateIncident(context.Background(), validIncident())
	if err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if result.Status != domain.StatusOK || result.TaskID != "314245" {
		t.Fatalf("result = %+v", result)
	}
	if fetcher.calls != 0 {
		t.Fatal("fetcher must not run without a conversation id")
	}
	if materializer.calls != 0 {
		t.Fatal("materializer must not run without URLs")
	}
	if gateway.calls != 1 || len(gateway.gotAttachments) != 0 {
		t.Fatalf("gateway calls = %d, attachments = %d", gateway.calls, len(gateway.gotAttachments))
	}
	if gateway.gotFields.NomUsulog != "svc_user" || gateway.gotFields.NitTransp != "900123456-3" {
		t.Fatalf("fields = %+v", gateway.gotFields)
	}
}

func TestCreateIncident_FetchFailureIsAbsorbed(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("chatwoot exploded")}
	materializer := &stubMaterializer{}
	gateway := &stubGateway{result: domain.OK("7", "La Tarea 7")}
	svc := newTestService(fetcher, materializer, gateway)

	incident := validIncident()
	incident.ConversationID = "33809"

	result, err := svc.CreateIncident(context.Background(), incident)
	if err != nil {
		t.Fatalf("fetch failure must not abort the pipeline: %v", err)
	}
	if result.Status != domain.StatusOK {
		t.Fatalf("result = %+v", result)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetcher calls = %d, want 1", fetcher.calls)
	}
	if materializer.calls != 0 {
		t.Fatal("materializer must not run after a failed fetch")
	}
	if gateway.calls != 1 || len(gateway.gotAttachments) != 0 {
		t.Fatalf("gateway must submit with zero attachments, got %d", len(gateway.gotAttachments))
	}
}

func TestCreateIncident_AttachmentsFlowThrough(t *testing.T) {
	images := []domain.MaterializedImage{
		{Filename: "a.png", ContentType: "image/png", DataURI: "data:image/png;base64,AA", Size: 1},
	}
	fetcher := &stubFetcher{urls: []string{"https://cdn/a.png"}}
	materializer := &stubMaterializer{images: images}
	gateway := &stubGateway{result: domain.OK("9", "La Tarea 9")}
	svc := newTestService(fetcher, materializer, gateway)

	incident := validIncident()
	incident.ConversationID = "33809"

	if _, err := svc.CreateIncident(context.Background(), incident); err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if materializer.calls != 1 {
		t.Fatalf("materializer calls = %d, want 1", materializer.calls)
	}
	if len(gateway.gotAttachments) != 1 || gateway.gotAttachments[0].Filename != "a.png" {
		t.Fatalf("attachments = %+v", gateway.gotAttachments)
	}
}

func TestCreateIncident_GatewayErrorPropagates(t *testing.T) {
	gateway := &stubGateway{err: errors.New("connection reset by peer")}
	svc := newTestService(&stubFetcher{}, &stubMaterializer{}, gateway)

	_, err := svc.CreateIncident(context.Background(), validIncident())
	if err == nil {
		t.Fatal("unclassified transport errors must propagate")
	}
}

func TestCreateIncident_BackendFailureReturnedVerbatim(t *testing.T) {
	gateway := &stubGateway{result: domain.BackendFailure(domain.ErrBackendAuth, "1002", "credenciales invalidas")}
	svc := newTestService(&stubFetcher{}, &stubMaterializer{}, gateway)

	result, err := svc.CreateIncident(context.Background(), validIncident())
	if err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if result.Code != domain.ErrBackendAuth || result.OetCode != "1002" {
		t.Fatalf("result = %+v", result)
	}
}

func TestCreateIncident_InlineFileAttached(t *testing.T) {
	gateway := &stubGateway{result: domain.OK("5", "La Tarea 5")}
	svc := newTestService(&stubFetcher{}, &stubMaterializer{}, gateway)

	incident := validIncident()
	incident.FilesURLs = "data:image/jpeg;base64,aGVsbG8="

	if _, err := svc.CreateIncident(context.Background(), incident); err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if len(gateway.gotAttachments) != 1 || gateway.gotAttachments[0].ContentType != "image/jpeg" {
		t.Fatalf("attachments = %+v", gateway.gotAttachments)
	}
}
