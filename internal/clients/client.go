package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/platform/config"
)

// apiClient is the shared HTTP plumbing of the remote collaborator clients:
// JSON decoding and retry on transient failures.
type apiClient struct {
	baseURL string
	http    *http.Client
	retries int
	logger  *slog.Logger
}

func newAPIClient(baseURL string, cfg *config.Config) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: cfg.APITimeout},
		retries: cfg.APIRetries,
		logger:  cfg.Logger(),
	}
}

// apiError is the error payload returned by the remote services.
type apiError struct {
	StatusCode int
	Kind       string         `json:"err"`
	Details    map[string]any `json:"err_desc"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Kind)
}

// getJSON fetches path with the given query and decodes the response "data"
// envelope into out. Server errors (5xx) and connection failures are retried.
func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			c.logger.Debug("retrying api call", slog.String("endpoint", endpoint), slog.Int("attempt", attempt))
		}
		retryable, err := c.doGet(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return fmt.Errorf("calling %s: %w", endpoint, lastErr)
}

func (c *apiClient) doGet(ctx context.Context, endpoint string, out any) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return true, &apiError{StatusCode: resp.StatusCode, Kind: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil || apiErr.Kind == "" {
			apiErr.Kind = http.StatusText(resp.StatusCode)
		}
		return false, apiErr
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false, fmt.Errorf("decoding response envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return false, fmt.Errorf("decoding response data: %w", err)
	}
	return false, nil
}
