package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/tackline/internal/adapters/http/api"
	"github.com/okian/tackline/internal/adapters/ingest"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/domain/types"
	"github.com/okian/tackline/pkg/logger"
)

// HTTPClient talks to a tackline service.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client with the given request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()
	return io.ReadAll(resp.Body)
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Submit uploads samples as CSV. An empty key lets the service derive one
// from the body.
func (c *HTTPClient) Submit(ctx context.Context, key string, samples []model.Sample) (types.SubmitResponse, error) {
	var buf bytes.Buffer
	if err := ingest.WriteCSV(&buf, samples); err != nil {
		return types.SubmitResponse{}, fmt.Errorf("failed to encode log: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", &buf)
	if err != nil {
		return types.SubmitResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	if key != "" {
		req.Header.Set(api.IdempotencyHeader, key)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return types.SubmitResponse{}, fmt.Errorf("failed to submit log: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return types.SubmitResponse{}, err
	}
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return types.SubmitResponse{}, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(body))
	}

	var ack types.SubmitResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return types.SubmitResponse{}, fmt.Errorf("failed to decode ack: %w", err)
	}
	return ack, nil
}

// Tacks fetches the tacks of a session. done is false while the session is
// still pending.
func (c *HTTPClient) Tacks(ctx context.Context, id string) (tacks []model.Tack, done bool, err error) {
	resp, err := c.get(ctx, "/sessions/"+id+"/tacks")
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch tacks: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, false, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(body, &tacks); err != nil {
			return nil, false, fmt.Errorf("failed to decode tacks: %w", err)
		}
		return tacks, true, nil
	case http.StatusConflict:
		return nil, false, nil
	case http.StatusUnprocessableEntity:
		return nil, false, fmt.Errorf("%w: %s", ErrSessionFailed, bytes.TrimSpace(body))
	}
	return nil, false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}
