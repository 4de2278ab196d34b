package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-bridge/internal/config"
	"github.com/spec-kit/incident-bridge/internal/domain"
	"github.com/spec-kit/incident-bridge/internal/observability"
)

const maxRedirects = 5

// allowedImageTypes is the fixed content-type allow-list for downloaded
// attachments.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageMaterializer downloads attachment URLs concurrently and encodes
// each image as an inline data URI. Per-URL failures are logged and
// dropped; partial success is the expected common case.
type ImageMaterializer struct {
	httpClient *http.Client
	cfg        config.FilesConfig
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewImageMaterializer constructs the materializer.
func NewImageMaterializer(cfg config.FilesConfig, logger *zap.Logger, metrics *observability.Metrics) *ImageMaterializer {
	return &ImageMaterializer{
		httpClient: &http.Client{
			Timeout: cfg.DownloadTimeout(),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Materialize downloads every URL and returns the successfully encoded
// images. An empty input produces an empty output with no network
// calls. Failures never abort the batch. The configured file-count and
// total-size ceilings are applied to the result.
func (m *ImageMaterializer) Materialize(ctx context.Context, urls []string) []domain.MaterializedImage {
	if len(urls) == 0 {
		return nil
	}

	m.logger.Info("materializing images", zap.Int("count", len(urls)))

	results := make([]*domain.MaterializedImage, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(index int, imageURL string) {
			defer wg.Done()
			image, err := m.materializeOne(ctx, imageURL, index)
			if err != nil {
				m.logger.Error("image download failed",
					zap.String("url", imageURL),
					zap.Error(err))
				return
			}
			results[index] = &image
		}(i, u)
	}
	wg.Wait()

	images := make([]domain.MaterializedImage, 0, len(urls))
	var total int64
	failed := len(urls)
	for _, image := range results {
		if image == nil {
			continue
		}
		failed--
		if len(images) >= m.cfg.MaxFilesCount {
			m.logger.Warn("file count ceiling reached, skipping image",
				zap.String("url", image.OriginURL),
				zap.Int("max_files", m.cfg.MaxFilesCount))
			continue
		}
		if total+image.Size > m.cfg.MaxTotalSizeBytes {
			m.logger.Warn("total size ceiling reached, skipping image",
				zap.String("url", image.OriginURL),
				zap.Int64("max_total_bytes", m.cfg.MaxTotalSizeBytes))
			continue
		}
		total += image.Size
		images = append(images, *image)
	}

	m.metrics.RecordFilesProcessed("ok", len(images))
	m.metrics.RecordFilesProcessed("failed", failed)
	m.logger.Info("image materialization finished",
		zap.Int("succeeded", len(images)),
		zap.Int("failed", failed))
	return images
}

func (m *ImageMaterializer) materializeOne(ctx context.Context, imageURL string, index int) (domain.MaterializedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.DownloadTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return domain.MaterializedImage{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return domain.MaterializedImage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.MaterializedImage{}, fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}

	contentType := strings.TrimSpace(strings.SplitN(resp.Header.Get("Content-Type"), ";", 2)[0])
	contentLength, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err := m.validateImage(contentType, contentLength); err != nil {
		return domain.MaterializedImage{}, err
	}

	// The limit guards against bodies larger than the declared length.
	body, err := io.ReadAll(io.LimitReader(resp.Body, m.cfg.MaxFileSizeBytes+1))
	if err != nil {
		return domain.MaterializedImage{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > m.cfg.MaxFileSizeBytes {
		return domain.MaterializedImage{}, fmt.Errorf("file exceeds the %d byte limit", m.cfg.MaxFileSizeBytes)
	}
	if len(body) == 0 {
		return domain.MaterializedImage{}, errors.New("file is empty or corrupted")
	}

	encoded := base64.StdEncoding.EncodeToString(body)

	return domain.MaterializedImage{
		Filename:    deriveFilename(imageURL, contentType, index),
		ContentType: contentType,
		DataURI:     fmt.Sprintf("data:%s;base64,%s", contentType, encoded),
		Size:        contentLength,
		OriginURL:   imageURL,
	}, nil
}

func (m *ImageMaterializer) validateImage(contentType string, contentLength int64) error {
	if !allowedImageTypes[contentType] {
		return fmt.Errorf("file type %q is not allowed, only images are accepted", contentType)
	}
	if contentLength > m.cfg.MaxFileSizeBytes {
		return fmt.Errorf("file too large: %d bytes, limit is %d", contentLength, m.cfg.MaxFileSizeBytes)
	}
	if contentLength == 0 {
		return errors.New("file is empty or corrupted")
	}
	return nil
}

// deriveFilename uses the URL path's last segment when it looks like a
// filename, otherwise synthesizes image_<index>.<ext> from the content
// type's subtype.
func deriveFilename(imageURL, contentType string, index int) string {
	if parsed, err := url.Parse(imageURL); err == nil {
		segments := strings.Split(parsed.Path, "/")
		last := segments[len(segments)-1]
		if strings.Contains(last, ".") {
			return last
		}
	}
	ext := "jpg"
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	return fmt.Sprintf("image_%d.%s", index, ext)
}

// DecodeInlineFile turns a data:<mime>;base64,<payload> string, as sent
// by the chat bot for a pre-attached file, into a materialized image.
func DecodeInlineFile(raw string, maxSize int64) (domain.MaterializedImage, error) {
	header, data, found := strings.Cut(raw, ",")
	if !found || data == "" {
		return domain.MaterializedImage{}, errors.New("invalid base64 payload format")
	}

	mimeType := "application/octet-stream"
	if rest, ok := strings.CutPrefix(header, "data:"); ok {
		if mime, _, _ := strings.Cut(rest, ";"); mime != "" {
			mimeType = mime
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return domain.MaterializedImage{}, fmt.Errorf("decode base64 payload: %w", err)
	}
	if int64(len(decoded)) > maxSize {
		return domain.MaterializedImage{}, fmt.Errorf("inline file exceeds the %d byte limit", maxSize)
	}
	if len(decoded) == 0 {
		return domain.MaterializedImage{}, errors.New("inline file is empty")
	}

	ext := "bin"
	if parts := strings.SplitN(mimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}

	return domain.MaterializedImage{
		Filename:    fmt.Sprintf("file_%d.%s", time.Now().UnixMilli(), ext),
		ContentType: mimeType,
		DataURI:     raw,
		Size:        int64(len(decoded)),
	}, nil
}
