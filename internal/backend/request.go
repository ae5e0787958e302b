package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/anihub/anihub-web/internal/apperrors"
	"github.com/anihub/anihub-web/internal/config"
	"github.com/anihub/anihub-web/internal/metrics"
)

// RequestIDHeader carries the correlation id forwarded to the backend.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failed response is read looking for "detail".
const maxErrorBody = 64 << 10

type requestIDKey struct{}

// WithRequestID stores id so backend calls made with ctx forward it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or a new random one.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// call describes one backend request.
type call struct {
	op     string // metric and log label
	method string
	path   string // already escaped, relative to baseURL
	token  string // bearer token, empty for public endpoints
	body   any
}

// do sends c and decodes a 2xx JSON answer into out (skipped when out is nil).
func (cl *client) do(ctx context.Context, c call, out any) error {
	logger := config.GetLogger()
	start := time.Now()
	requestID := RequestID(ctx)

	err := cl.send(ctx, c, requestID, out)

	elapsed := time.Since(start)
	metrics.BackendRequestDuration.WithLabelValues(c.op).Observe(elapsed.Seconds())
	metrics.BackendRequestsTotal.WithLabelValues(c.op, outcome(err)).Inc()

	event := logger.Debug()
	if err != nil && outcome(err) == metrics.OutcomeError {
		event = logger.Warn().Err(err)
	}
	event.Str("op", c.op).
		Str("method", c.method).
		Str("path", c.path).
		Str("request_id", requestID).
		Dur("duration", elapsed).
		Msg("Backend call")

	return err
}

func (cl *client) send(ctx context.Context, c call, requestID string, out any) error {
	var reader io.Reader
	if c.body != nil {
		payload, err := json.Marshal(c.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", c.op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, cl.baseURL+c.path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", cl.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", c.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(c, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.op, err)
	}
	return nil
}

// statusError maps a non-2xx answer to the matching apperrors type.
func statusError(c call, resp *http.Response) error {
	detail := readDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if c.token != "" {
			return &apperrors.ErrUnauthorized{Endpoint: c.path, Detail: detail}
		}
	case http.StatusNotFound:
		return apperrors.NewNotFoundError(c.op, c.path)
	}
	return &apperrors.ErrBackendStatus{Endpoint: c.path, StatusCode: resp.StatusCode, Detail: detail}
}

// readDetail extracts the "detail" message of an error body. FastAPI validation
// errors carry a list there; those are reported by their first message.
func readDetail(body io.Reader) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if json.Unmarshal(payload.Detail, &text) == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(payload.Detail, &items) == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, &apperrors.ErrNotFound{}):
		return metrics.OutcomeNotFound
	case errors.Is(err, &apperrors.ErrUnauthorized{}):
		return metrics.OutcomeUnauthorized
	default:
		return metrics.OutcomeError
	}
}
