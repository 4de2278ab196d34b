package soap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-bridge/internal/config"
	"github.com/spec-kit/incident-bridge/internal/domain"
	apperrors "github.com/spec-kit/incident-bridge/pkg/util/errorutil"
)

const (
	soapAction  = "urn:consult_base#setSoport"
	contentType = "text/xml; charset=utf-8"

	// Backend response codes for the setSoport operation.
	codeSuccess           = "1000"
	codeParentTaskError   = "1001"
	codeInvalidCredential = "1002"
	codeValidationError   = "6001"

	fallbackErrorMessage = "unknown backend error"
	timeoutMessage       = "failed to reach the ticketing backend: timeout after 15 seconds"
)

// The backend's XML is not reliably well-formed, so the two known
// fields are extracted by pattern match instead of strict parsing.
var (
	codeRespPattern = regexp.MustCompile(`<code_resp[^>]*>(\d+)</code_resp>`)
	msgRespPattern  = regexp.MustCompile(`(?s)<msg_resp[^>]*>(.*?)</msg_resp>`)
	taskIDPattern   = regexp.MustCompile(`La Tarea (\d+)`)
)

// Gateway submits envelopes to the ticketing backend and classifies
// the raw XML response into a typed result. Exactly one attempt per
// submission; retry lives in the attachment fetcher only.
type Gateway struct {
	httpClient *http.Client
	cfg        config.OetConfig
	logger     *zap.Logger
}

// NewGateway constructs the gateway.
func NewGateway(cfg config.OetConfig, logger *zap.Logger) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		cfg:        cfg,
		logger:     logger,
	}
}

// Submit serializes and posts the envelope, then classifies the
// response. A transport timeout becomes a retryable ServiceError
// result; any other transport error propagates to the caller.
func (g *Gateway) Submit(ctx context.Context, fields Fields, attachments []domain.MaterializedImage) (domain.SubmissionResult, error) {
	if g.cfg.EndpointURL == "" {
		return domain.SubmissionResult{}, apperrors.NewConfigError("ticketing endpoint is not configured, set OET_WSDL_URL")
	}

	envelope := BuildEnvelope(fields, attachments)
	g.logger.Info("submitting incident to backend",
		zap.Int("attachments", len(attachments)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.EndpointURL, strings.NewReader(envelope))
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("SOAPAction", soapAction)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			g.logger.Warn("backend submission timed out", zap.Error(err))
			return domain.RetryableFailure(timeoutMessage), nil
		}
		return domain.SubmissionResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("read response: %w", err)
	}

	g.logger.Debug("backend response received",
		zap.Int("status", resp.StatusCode),
		zap.Int("body_bytes", len(body)))

	return ClassifyResponse(string(body)), nil
}

// ClassifyResponse maps the extracted numeric response code onto the
// closed result taxonomy. A missing or unrecognized code is a generic
// backend error.
func ClassifyResponse(body string) domain.SubmissionResult {
	code := extract(codeRespPattern, body)
	message := extract(msgRespPattern, body)

	switch code {
	case codeSuccess:
		return domain.OK(extract(taskIDPattern, message), message)
	case codeParentTaskError:
		return domain.BackendFailure(domain.ErrParentTask, code, message)
	case codeInvalidCredential:
		return domain.BackendFailure(domain.ErrBackendAuth, code, message)
	case codeValidationError:
		return domain.BackendFailure(domain.ErrBackendValidation, code, message)
	default:
		if message == "" {
			message = fallbackErrorMessage
		}
		return domain.BackendFailure(domain.ErrGenericBackend, code, message)
	}
}

func extract(pattern *regexp.Regexp, body string) string {
	match := pattern.FindStringSubmatch(body)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "timeout")
}
