// internal/adapters/vision/client.go
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
)

// Config holds the detection service connection settings. DetectTimeout is
// deliberately long compared to the probe: model inference on a full-size
// photograph routinely takes several seconds.
type Config struct {
	BaseURL       string
	DetectTimeout time.Duration
	ProbeTimeout  time.Duration
}

// Client is the HTTP adapter for the remote object-detection service. It is
// stateless: every call stands alone and failures are never retried here.
type Client struct {
	baseURL string
	detect  *http.Client
	probe   *http.Client
	tokens  ports.TokenProvider
	logger  *slog.Logger
}

var _ ports.DetectionClient = (*Client)(nil)

// NewClient creates a detection client. tokens may be nil when the service
// does not require authentication.
func NewClient(cfg Config, tokens ports.TokenProvider, logger *slog.Logger) *Client {
	detectTimeout := cfg.DetectTimeout
	if detectTimeout == 0 {
		detectTimeout = 60 * time.Second
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout == 0 {
		probeTimeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		detect:  &http.Client{Timeout: detectTimeout},
		probe:   &http.Client{Timeout: probeTimeout},
		tokens:  tokens,
		logger:  logger.With(slog.String("adapter", "vision")),
	}
}

// Ping probes the availability endpoint. Any failure means the detection
// call must not be attempted.
func (c *Client) Ping(ctx context.Context) error {
	const op = "vision.Ping"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return domain.E(op, domain.KindNetwork, err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return domain.E(op, domain.KindNetwork, err)
	}

	resp, err := c.probe.Do(req)
	if err != nil {
		return domain.E(op, transportKind(err), err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domain.EStatus(op, domain.KindServiceUnavailable, resp.StatusCode,
			fmt.Errorf("health probe returned %d", resp.StatusCode))
	}
	return nil
}

// detectResponse is the wire shape of a successful analysis.
type detectResponse struct {
	TotalObjects   int    `json:"total_objects"`
	UniqueObjects  int    `json:"unique_objects"`
	ProcessedImage string `json:"processed_image,omitempty"`
	Detections     []struct {
		Confidence float64 `json:"confidence"`
		Center     struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"center"`
	} `json:"detections"`
}

// Detect submits one captured image for counting. The availability probe
// runs first so an offline service fails fast instead of streaming megabytes
// into a dead socket.
func (c *Client) Detect(ctx context.Context, img []byte, objectType domain.ObjectType, filename string) (*domain.DetectionResult, error) {
	const op = "vision.Detect"

	if len(img) == 0 {
		return nil, domain.E(op, domain.KindInvalidImage, errors.New("image payload is empty"))
	}
	if !domain.ValidObjectType(objectType) {
		return nil, domain.E(op, domain.KindInvalidParameters, fmt.Errorf("unsupported object type %q", objectType))
	}
	if filename == "" {
		filename = "capture.jpg"
	}

	if err := c.Ping(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, domain.E(op, domain.KindServiceUnavailable, err)
	}

	body, contentType, err := buildMultipart(img, objectType, filename)
	if err != nil {
		return nil, domain.E(op, domain.KindInvalidImage, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", body)
	if err != nil {
		return nil, domain.E(op, domain.KindNetwork, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return nil, domain.E(op, domain.KindNetwork, err)
	}

	started := time.Now()
	resp, err := c.detect.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, domain.E(op, transportKind(err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.E(op, transportKind(err), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(op, resp.StatusCode, raw)
	}

	var parsed detectResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, domain.EStatus(op, domain.KindMalformedResponse, resp.StatusCode, err)
	}
	if parsed.TotalObjects < 0 {
		return nil, domain.EStatus(op, domain.KindMalformedResponse, resp.StatusCode,
			fmt.Errorf("negative object count %d", parsed.TotalObjects))
	}

	result := &domain.DetectionResult{
		EstimatedCount: parsed.TotalObjects,
		Detections:     make([]domain.Detection, 0, len(parsed.Detections)),
		ReceivedAt:     time.Now(),
	}
	for _, d := range parsed.Detections {
		result.Detections = append(result.Detections, domain.Detection{
			Confidence: d.Confidence,
			Center:     image.Point{X: d.Center.X, Y: d.Center.Y},
		})
	}
	if parsed.ProcessedImage != "" {
		decoded, derr := base64.StdEncoding.DecodeString(parsed.ProcessedImage)
		if derr != nil {
			return nil, domain.EStatus(op, domain.KindMalformedResponse, resp.StatusCode,
				fmt.Errorf("processed_image is not valid base64: %w", derr))
		}
		result.AnnotatedImage = decoded
	}

	c.logger.InfoContext(ctx, "detection completed",
		slog.String("object_type", string(objectType)),
		slog.Int("estimated", result.EstimatedCount),
		slog.Duration("elapsed", time.Since(started)))

	return result, nil
}

// statusError maps a non-2xx detect response to the failure taxonomy. The
// service reports image problems and parameter problems both as 400; the
// error payload's field tells them apart.
func (c *Client) statusError(op string, status int, raw []byte) error {
	var payload struct {
		Error string `json:"error"`
		Field string `json:"field,omitempty"`
	}
	_ = json.Unmarshal(raw, &payload)
	msg := payload.Error
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	switch {
	case status == http.StatusBadRequest && payload.Field == "object_type":
		return domain.EStatus(op, domain.KindInvalidParameters, status, errors.New(msg))
	case status == http.StatusBadRequest:
		return domain.EStatus(op, domain.KindInvalidImage, status, errors.New(msg))
	case status == http.StatusServiceUnavailable:
		return domain.EStatus(op, domain.KindServiceUnavailable, status, errors.New(msg))
	default:
		return domain.EStatus(op, domain.KindServerError, status, errors.New(msg))
	}
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// buildMultipart assembles the detect request body: the image part plus the
// object_type field.
func buildMultipart(img []byte, objectType domain.ObjectType, filename string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("object_type", string(objectType)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// transportKind separates timeouts from other transport failures.
func transportKind(err error) domain.Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.KindTimeout
	}
	var nerr interface{ Timeout() bool }
	if errors.As(err, &nerr) && nerr.Timeout() {
		return domain.KindTimeout
	}
	return domain.KindNetwork
}
