package coachapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/kapu/chess-coach-client-go/pkg/coachdto"
)

// RejectError is a non-2xx response from the game authority. The response
// body is the user-facing error message ("Illegal move" etc.).
type RejectError struct {
	Status  int
	Message string
}

func (e *RejectError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("coach api error: status=%d", e.Status)
}

// IsReject reports whether err is a remote rejection (as opposed to a
// transport failure). Both are handled identically by the dispatcher; the
// distinction only affects the notice shown.
func IsReject(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, MaxConnsPerHost: 8},
		defaultTimeout: 30 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State fetches the current authoritative state. Safe to retry.
func (c *Client) State(ctx context.Context) (*coachdto.StateResponse, error) {
	var resp coachdto.StateResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/state", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) NewGame(ctx context.Context, req coachdto.NewGameRequest) (*coachdto.StateResponse, error) {
	var resp coachdto.StateResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/new_game", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Move submits one move. Never retried: the pending marker already enforces
// single-flight and a blind retry could double-apply on the server.
func (c *Client) Move(ctx context.Context, req coachdto.MoveRequest) (*coachdto.MoveResponse, error) {
	var resp coachdto.MoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/move", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Undo(ctx context.Context) (*coachdto.StateResponse, error) {
	var resp coachdto.StateResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/undo", coachdto.UndoRequest{}, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	url := c.baseURL + path
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			if attempt == attempts || !retry {
				return fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			err := &RejectError{Status: status, Message: extractErrorMessage(resp.Body())}
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			if err := coachdto.Validate(out); err != nil {
				return fmt.Errorf("invalid response payload: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

// extractErrorMessage pulls the message from either a bare body or a
// {"detail": "..."} / {"error": "..."} JSON envelope.
func extractErrorMessage(body []byte) string {
	var envelope struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Detail != "" {
			return envelope.Detail
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return truncate(strings.TrimSpace(string(body)), 512)
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
