// Package tika provides the analyzer adapter for a Tika-style
// content-analysis service.
package tika

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
	"github.com/custodia-labs/extracta/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Analyzer = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:9998"
	DefaultTimeout    = 120 * time.Second
	DefaultRetryCount = 2
	DefaultRetryDelay = 3 * time.Second
)

// Endpoint paths and headers of the analyzer protocol.
const (
	metaPath = "/meta"
	textPath = "/tika/text"

	// headerSkipOCR has inverted sense: "true" disables OCR. The
	// analyzer has been observed to run OCR even for metadata-only
	// requests unless explicitly suppressed.
	headerSkipOCR      = "X-Tika-Skip-OCR"
	headerOCRLanguages = "X-Tika-OCR-Languages"
	headerRequestID    = "X-Request-Id"
)

// Config holds configuration for the analyzer client.
type Config struct {
	// BaseURL is the analyzer base URL (default: http://localhost:9998).
	BaseURL string

	// Timeout is the per-request network timeout (default: 120s).
	Timeout time.Duration

	// RetryCount is the number of retries after the first attempt for
	// transient conditions (default: 2). Negative disables retrying.
	RetryCount int

	// RetryDelay is the pause between attempts (default: 3s).
	RetryDelay time.Duration

	// RequestsPerSecond proactively throttles uploads when positive.
	// Zero disables throttling.
	RequestsPerSecond float64
}

// Client queries the analyzer service over HTTP with protocol-level retry.
type Client struct {
	client     *http.Client
	baseURL    string
	retryCount int
	retryDelay time.Duration
	throttle   *rate.Limiter
}

// NewClient creates a new analyzer client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = DefaultRetryCount
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	var throttle *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		throttle = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		throttle:   throttle,
	}
}

// Query uploads the file at path and returns the raw property bag.
//
// Failing to open or size the file is a local I/O problem, not an analyzer
// verdict: it surfaces as a *domain.SystemError immediately, is never
// retried and never cached against the content.
func (c *Client) Query(ctx context.Context, profile domain.Profile, path string, metadataOnly bool) (domain.PropertyMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.SystemError{Message: "opening " + path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &domain.SystemError{Message: "sizing " + path, Err: err}
	}

	attempts := 1 + c.retryCount
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx); err != nil {
				return nil, &domain.SystemError{Message: "retry interrupted", Err: err}
			}
		}
		if c.throttle != nil {
			if err := c.throttle.Wait(ctx); err != nil {
				return nil, &domain.SystemError{Message: "throttle interrupted", Err: err}
			}
		}

		result, retry, err := c.attempt(ctx, profile, f, info.Size(), metadataOnly)
		if err == nil {
			return result, nil
		}
		if !retry {
			return nil, err
		}
		logger.Debug("analyzer attempt %d/%d failed: %v", attempt, attempts, err)
		lastErr = err
	}

	return nil, &domain.SystemError{
		Message: fmt.Sprintf("no usable response after %d attempts", attempts),
		Err:     lastErr,
	}
}

// attempt performs a single request/response cycle. The retry return
// value reports whether the failure is transient and the loop may go on.
func (c *Client) attempt(ctx context.Context, profile domain.Profile, f *os.File, size int64, metadataOnly bool) (domain.PropertyMap, bool, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, false, &domain.SystemError{Message: "rewinding upload", Err: err}
	}

	endpoint := textPath
	if metadataOnly {
		endpoint = metaPath
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+endpoint, io.NopCloser(f))
	if err != nil {
		return nil, false, &domain.SystemError{Message: "creating request", Err: err}
	}
	req.ContentLength = size
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerSkipOCR, strconv.FormatBool(metadataOnly || !profile.OCRAllowed))
	if profile.OCRLanguages != "" {
		req.Header.Set(headerOCRLanguages, profile.OCRLanguages)
	}
	req.Header.Set(headerRequestID, uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		classified := classifyTransport(err)
		retry := !domain.IsParserError(classified) && !domain.IsSystemError(classified)
		return nil, retry, classified
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		result, err := decodeProperties(resp.Body)
		if err != nil {
			// A 200 carrying garbage is treated like any other unusable
			// response: retry, unless the read itself was classified.
			return nil, !domain.IsParserError(err), err
		}
		return result, false, nil

	case http.StatusNoContent:
		return domain.PropertyMap{}, false, nil

	case http.StatusUnprocessableEntity:
		// The analyzer examined the document and rejected it. That is
		// a verdict about the content, final on the first sighting.
		return nil, false, &domain.ParserError{Message: "document unprocessable (status 422)"}

	default:
		// 500, 503 and anything unrecognised: assume the service is
		// restarting or overloaded and keep the retry loop going.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, true, fmt.Errorf("analyzer returned status %d: %s", resp.StatusCode, string(body))
	}
}

// classifyTransport maps a transport-level failure (no HTTP response at
// all) to its classification. A timeout or got-nothing condition means
// the document itself likely caused the analyzer to choke or exceed an
// internal time budget: that is a parser failure and is not retried.
// Connection refused or reset means the service is assumed to be
// restarting, which permits the retry loop to continue.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return &domain.SystemError{Message: "request cancelled", Err: err}
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &domain.ParserError{Message: "analyzer timed out on document", Err: err}

	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &domain.ParserError{Message: "analyzer returned nothing", Err: err}

	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return fmt.Errorf("analyzer connection failed: %w", err)

	default:
		return fmt.Errorf("analyzer transport failure: %w", err)
	}
}

// decodeProperties parses a 200 body as a JSON object. Anything else from
// a 200 is a protocol violation on the analyzer's side and counts as an
// unusable response.
func decodeProperties(body io.Reader) (domain.PropertyMap, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &domain.ParserError{Message: "reading analyzer response", Err: err}
	}

	var result domain.PropertyMap
	if err := json.Unmarshal(data, &result); err != nil || result == nil {
		return nil, errors.New("analyzer 200 response is not a JSON object")
	}
	return result, nil
}

// sleep pauses between attempts, honouring cancellation.
func (c *Client) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.retryDelay):
		return nil
	}
}
