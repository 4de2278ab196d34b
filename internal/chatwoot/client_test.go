package chatwoot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-bridge/internal/config"
	apperrors "github.com/spec-kit/incident-bridge/pkg/util/errorutil"
)

func newTestClient(baseURL string) *Client {
	client := NewClient(config.ChatwootConfig{
		BaseURL:               baseURL,
		Token:                 "test-token",
		AccountID:             "1",
		RequestTimeoutSeconds: 2,
	}, zap.NewNop())
	client.backoff = time.Millisecond
	return client
}

func conversationJSON() ConversationResponse {
	return ConversationResponse{
		Payload: []Message{
			{
				ID: 1,
				Attachments: []Attachment{
					{ID: 10, FileType: "image", DataURL: "https://cdn/one.png", FileURL: "https://files/one.png"},
					{ID: 11, FileType: "video", DataURL: "https://cdn/clip.mp4"},
				},
			},
			{ID: 2},
			{
				ID: 3,
				Attachments: []Attachment{
					{ID: 12, FileType: "image", FileURL: "https://files/three.jpg"},
					{ID: 13, FileType: "file", FileURL: "https://files/doc.pdf"},
				},
			},
		},
	}
}

func TestFetchImageURLs_ExtractsImagesInOrder(t *testing.T) {
	var gotPath, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("api_access_token")
		json.NewEncoder(w).Encode(conversationJSON()) //nolint:errcheck
	}))
	defer server.Close()

	urls, err := newTestClient(server.URL).FetchImageURLs(context.Background(), "33809")
	if err != nil {
		t.Fatalf("FetchImageURLs: %v", err)
	}

	if gotPath != "/api/v1/accounts/1/conversations/33809/messages" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotToken != "test-token" {
		t.Fatalf("token header = %q", gotToken)
	}

	// data_url wins over file_url, non-image attachments are skipped,
	// message order is preserved
	want := []string{"https://cdn/one.png", "https://files/three.jpg"}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestFetchImageURLs_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ConversationResponse{}) //nolint:errcheck
	}))
	defer server.Close()

	urls, err := newTestClient(server.URL).FetchImageURLs(context.Background(), "7")
	if err != nil {
		t.Fatalf("FetchImageURLs after retries: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("urls = %v, want empty", urls)
	}
	if calls.Load() != 3 {
		t.Fatalf("attempts = %d, want 3", calls.Load())
	}
}

func TestFetchImageURLs_StatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantCode: "UPSTREAM_AUTH_ERROR"},
		{name: "not found", status: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "server error", status: http.StatusBadGateway, wantCode: "UPSTREAM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).FetchImageURLs(context.Background(), "7")
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Fatalf("err = %v, want code %s", err, tt.wantCode)
			}
			if calls.Load() != 3 {
				t.Fatalf("attempts = %d, want 3", calls.Load())
			}
		})
	}
}

func TestFetchImageURLs_MissingConfigIsFatal(t *testing.T) {
	client := NewClient(config.ChatwootConfig{BaseURL: "http://example.com"}, zap.NewNop())
	if _, err := client.FetchImageURLs(context.Background(), "7"); !apperrors.IsCode(err, "CONFIG_ERROR") {
		t.Fatalf("missing token: err = %v, want CONFIG_ERROR", err)
	}

	client = NewClient(config.ChatwootConfig{Token: "tok"}, zap.NewNop())
	if _, err := client.FetchImageURLs(context.Background(), "7"); !apperrors.IsCode(err, "CONFIG_ERROR") {
		t.Fatalf("missing base URL: err = %v, want CONFIG_ERROR", err)
	}
}
