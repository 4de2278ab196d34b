package soap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-bridge/internal/config"
	"github.com/spec-kit/incident-bridge/internal/domain"
	apperrors "github.com/spec-kit/incident-bridge/pkg/util/errorutil"
)

func testOetConfig() config.OetConfig {
	return config.OetConfig{
		EndpointURL:    "http://127.0.0.1:1",
		Username:       "svc_user",
		Password:       "svc_pass",
		TimeoutSeconds: 5,
	}
}

func soapBody(code, message string) string {
	return `<?xml version="1.0"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
  <SOAP-ENV:Body>
    <ns1:setSoportResponse xmlns:ns1="urn:consult_base">
      <code_resp xsi:type="xsd:string">` + code + `</code_resp>
      <msg_resp xsi:type="xsd:string">` + message + `</msg_resp>
    </ns1:setSoportResponse>
  </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`
}

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.SubmissionResult
	}{
		{
			name: "success with task number",
			body: soapBody("1000", "Se ha creado La Tarea 314245 correctamente"),
			want: domain.SubmissionResult{
				Status:  domain.StatusOK,
				TaskID:  "314245",
				Message: "Se ha creado La Tarea 314245 correctamente",
			},
		},
		{
			name: "success without task number",
			body: soapBody("1000", "Registro creado"),
			want: domain.SubmissionResult{Status: domain.StatusOK, Message: "Registro creado"},
		},
		{
			name: "parent task error",
			body: soapBody("1001", "tarea padre no existe"),
			want: domain.SubmissionResult{
				Status:  domain.StatusError,
				Code:    domain.ErrParentTask,
				OetCode: "1001",
				Message: "tarea padre no existe",
			},
		},
		{
			name: "invalid credentials",
			body: soapBody("1002", "credenciales invalidas"),
			want: domain.SubmissionResult{
				Status:  domain.StatusError,
				Code:    domain.ErrBackendAuth,
				OetCode: "1002",
				Message: "credenciales invalidas",
			},
		},
		{
			name: "backend validation error",
			body: soapBody("6001", "nit invalido"),
			want: domain.SubmissionResult{
				Status:  domain.StatusError,
				Code:    domain.ErrBackendValidation,
				OetCode: "6001",
				Message: "nit invalido",
			},
		},
		{
			name: "unrecognized code",
			body: soapBody("9999", "algo fallo"),
			want: domain.SubmissionResult{
				Status:  domain.StatusError,
				Code:    domain.ErrGenericBackend,
				OetCode: "9999",
				Message: "algo fallo",
			},
		},
		{
			name: "missing code and message",
			body: "<garbage>",
			want: domain.SubmissionResult{
				Status:  domain.StatusError,
				Code:    domain.ErrGenericBackend,
				Message: fallbackErrorMessage,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyResponse(tt.body)
			if got.Status != tt.want.Status || got.TaskID != tt.want.TaskID ||
				got.Message != tt.want.Message || got.Code != tt.want.Code ||
				got.OetCode != tt.want.OetCode || got.Retryable {
				t.Fatalf("ClassifyResponse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGateway_SubmitSuccess(t *testing.T) {
	var gotSOAPAction, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSOAPAction = r.Header.Get("SOAPAction")
		gotContentType = r.Header.Get("Content-Type")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(soapBody("1000", "Se ha creado La Tarea 42 correctamente"))) //nolint:errcheck
	}))
	defer server.Close()

	cfg := testOetConfig()
	cfg.EndpointURL = server.URL
	gateway := NewGateway(cfg, zap.NewNop())

	result, err := gateway.Submit(context.Background(), testFields(), nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != domain.StatusOK || result.TaskID != "42" {
		t.Fatalf("result = %+v, want success with task 42", result)
	}
	if gotSOAPAction != soapAction {
		t.Fatalf("SOAPAction = %q", gotSOAPAction)
	}
	if gotContentType != contentType {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
	if !strings.Contains(gotBody, "<urn:setSoport>") || !strings.Contains(gotBody, "<file/>") {
		t.Fatalf("posted envelope missing placeholder item: %s", gotBody)
	}
}

func TestGateway_TimeoutBecomesRetryableServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testOetConfig()
	cfg.EndpointURL = server.URL
	gateway := NewGateway(cfg, zap.NewNop())
	gateway.httpClient.Timeout = 20 * time.Millisecond

	result, err := gateway.Submit(context.Background(), testFields(), nil)
	if err != nil {
		t.Fatalf("timeout must classify, not propagate: %v", err)
	}
	if result.Code != domain.ErrService || !result.Retryable {
		t.Fatalf("result = %+v, want retryable service error", result)
	}
}

func TestGateway_OtherTransportErrorsPropagate(t *testing.T) {
	// nothing listens on the configured endpoint, the dial fails outright
	gateway := NewGateway(testOetConfig(), zap.NewNop())

	_, err := gateway.Submit(context.Background(), testFields(), nil)
	if err == nil {
		t.Fatal("expected a propagated transport error")
	}
}

func TestGateway_MissingEndpointIsConfigError(t *testing.T) {
	cfg := testOetConfig()
	cfg.EndpointURL = ""
	gateway := NewGateway(cfg, zap.NewNop())

	_, err := gateway.Submit(context.Background(), testFields(), nil)
	if !apperrors.IsCode(err, "CONFIG_ERROR") {
		t.Fatalf("err = %v, want CONFIG_ERROR", err)
	}
}
