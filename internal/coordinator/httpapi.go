package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/cleanwave-api/internal/models"
	appErrors "github.com/noah-isme/cleanwave-api/pkg/errors"
)

const defaultRequestTimeout = 10 * time.Second

// HTTPEventAPI implements EventAPI against the CleanWave HTTP surface.
type HTTPEventAPI struct {
	baseURL string
	token   string
	client  *http.Client
	timeout time.Duration
}

// HTTPEventAPIOption customizes the client.
type HTTPEventAPIOption func(*HTTPEventAPI)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(client *http.Client) HTTPEventAPIOption {
	return func(a *HTTPEventAPI) { a.client = client }
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) HTTPEventAPIOption {
	return func(a *HTTPEventAPI) { a.timeout = timeout }
}

// NewHTTPEventAPI constructs the client. baseURL includes the API prefix,
// e.g. "https://api.cleanwave.org/api". token is the caller's bearer token.
func NewHTTPEventAPI(baseURL, token string, opts ...HTTPEventAPIOption) *HTTPEventAPI {
	api := &HTTPEventAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{},
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func (a *HTTPEventAPI) do(ctx context.Context, method, path string, body, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error != nil {
		return env.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if dest != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// ListEvents fetches the full event list.
func (a *HTTPEventAPI) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := a.do(ctx, http.MethodGet, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent submits a new event.
func (a *HTTPEventAPI) CreateEvent(ctx context.Context, draft EventDraft) (*models.Event, error) {
	var event models.Event
	if err := a.do(ctx, http.MethodPost, "/events", draft, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent rewrites an existing event.
func (a *HTTPEventAPI) UpdateEvent(ctx context.Context, id string, draft EventDraft) (*models.Event, error) {
	var event models.Event
	if err := a.do(ctx, http.MethodPut, "/events/"+id, draft, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event.
func (a *HTTPEventAPI) DeleteEvent(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/events/"+id, nil, nil)
}

// JoinEvent enrolls the caller in an event and decodes the enrollment the
// server confirmed.
func (a *HTTPEventAPI) JoinEvent(ctx context.Context, id, message string) (*models.Enrollment, error) {
	body := map[string]string{"message": message}
	var enrollment models.Enrollment
	if err := a.do(ctx, http.MethodPost, "/events/"+id+"/enroll", body, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// LeaveEvent cancels the caller's enrollment.
func (a *HTTPEventAPI) LeaveEvent(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/events/"+id+"/enroll", nil, nil)
}
