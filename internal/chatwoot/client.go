package chatwoot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-bridge/internal/config"
	apperrors "github.com/spec-kit/incident-bridge/pkg/util/errorutil"
)

const (
	maxAttempts   = 3
	backoffUnit   = 2 * time.Second
	tokenHeader   = "api_access_token"
	imageFileType = "image"
)

// Client fetches conversation messages from the chat platform.
type Client struct {
	httpClient *http.Client
	cfg        config.ChatwootConfig
	logger     *zap.Logger
	backoff    time.Duration
}

// NewClient constructs the chat-platform client.
func NewClient(cfg config.ChatwootConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		cfg:        cfg,
		logger:     logger,
		backoff:    backoffUnit,
	}
}

// FetchImageURLs retrieves the conversation's messages and returns the
// URLs of every image attachment, message order preserved. The call is
// retried up to 3 times with a linear 2s, 4s backoff between attempts.
func (c *Client) FetchImageURLs(ctx context.Context, conversationID string) ([]string, error) {
	if c.cfg.Token == "" {
		return nil, apperrors.NewConfigError("chatwoot access token is not configured, set CHATWOOT_TOKEN")
	}
	if c.cfg.BaseURL == "" {
		return nil, apperrors.NewConfigError("chatwoot base URL is not configured, set CHATWOOT_BASE_URL")
	}

	url := fmt.Sprintf("%s/api/v1/accounts/%s/conversations/%s/messages",
		c.cfg.BaseURL, c.cfg.AccountID, conversationID)

	c.logger.Info("fetching conversation messages",
		zap.String("conversation_id", conversationID),
		zap.String("account_id", c.cfg.AccountID))

	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conversation, status, err := c.getMessages(ctx, url)
		if err == nil {
			return extractImageURLs(conversation.Payload), nil
		}
		lastErr = err
		lastStatus = status
		c.logger.Warn("conversation fetch attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("status", status),
			zap.Error(err))

		if attempt < maxAttempts {
			select {
			case <-time.After(c.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, apperrors.NewUpstreamError("failed to fetch conversation messages", ctx.Err())
			}
		}
	}

	switch lastStatus {
	case http.StatusUnauthorized:
		return nil, apperrors.NewUpstreamAuthError("chatwoot token is invalid or expired")
	case http.StatusNotFound:
		return nil, apperrors.NewNotFound("conversation", map[string]any{"conversation_id": conversationID})
	default:
		return nil, apperrors.NewUpstreamError("failed to fetch conversation messages", lastErr)
	}
}

func (c *Client) getMessages(ctx context.Context, url string) (*ConversationResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(tokenHeader, c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, resp.StatusCode, fmt.Errorf("chatwoot returned HTTP %d", resp.StatusCode)
	}

	var conversation ConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&conversation); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return &conversation, resp.StatusCode, nil
}

// extractImageURLs keeps only attachments declared as images, preferring
// data_url over file_url when both are present.
func extractImageURLs(messages []Message) []string {
	var urls []string
	for _, message := range messages {
		for _, attachment := range message.Attachments {
			if attachment.FileType != imageFileType {
				continue
			}
			url := attachment.DataURL
			if url == "" {
				url = attachment.FileURL
			}
			if url != "" {
				urls = append(urls, url)
			}
		}
	}
	return urls
}
