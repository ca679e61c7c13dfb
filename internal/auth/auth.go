// Package auth provides optional external identity gating for seat requests.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrRejected indicates the token is definitively invalid or the account
	// has no balance to seat.
	ErrRejected = errors.New("auth: rejected")

	// ErrUnavailable indicates the verification service is unreachable.
	// Callers may choose to fail open (seat anyway) or fail closed (reject).
	ErrUnavailable = errors.New("auth: unavailable")
)

// Grant is an approved seat request: the verified identity and the stack it
// may buy in with.
type Grant struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Stack    int    `json:"stack"`
}

// Verifier checks a seat-request token.
type Verifier interface {
	// Verify returns:
	//   - (*Grant, nil) if the token is approved
	//   - (nil, ErrRejected) if the token is definitively refused
	//   - (nil, ErrUnavailable) if the verification service cannot answer
	Verify(ctx context.Context, token string) (*Grant, error)
}

// HTTPVerifier verifies tokens via HTTP callback to an external service.
type HTTPVerifier struct {
	url    string
	secret string
	client *http.Client
}

// NewHTTPVerifier creates a verifier that calls an external HTTP endpoint.
func NewHTTPVerifier(url string, secret string) *HTTPVerifier {
	return &HTTPVerifier{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 500 * time.Millisecond, // Align with context timeout
		},
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Approved bool   `json:"approved"`
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Stack    int    `json:"stack,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Grant, error) {
	// Empty token is refused outright when gating is enabled.
	if token == "" {
		return nil, ErrRejected
	}

	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	reqBody, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if v.secret != "" {
		req.Header.Set("X-Admin-Secret", v.secret)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		// Network errors, timeouts, etc. = unavailable
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - decode response
	case http.StatusUnauthorized, http.StatusForbidden:
		// Definitive refusal
		return nil, ErrRejected
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	// Limit response body to 1MB to avoid pathological responses
	limitedReader := io.LimitReader(resp.Body, 1<<20)

	var vr verifyResponse
	if err := json.NewDecoder(limitedReader).Decode(&vr); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}

	if !vr.Approved || vr.Stack <= 0 {
		return nil, ErrRejected
	}

	return &Grant{
		PlayerID: vr.PlayerID,
		Name:     vr.Name,
		Stack:    vr.Stack,
	}, nil
}

// NoopVerifier approves every token with a fixed default stack (dev mode).
type NoopVerifier struct {
	stack int
}

// NewNoopVerifier creates a verifier that approves all seat requests with
// the given buy-in stack.
func NewNoopVerifier(stack int) *NoopVerifier {
	return &NoopVerifier{stack: stack}
}

func (v *NoopVerifier) Verify(_ context.Context, _ string) (*Grant, error) {
	return &Grant{Stack: v.stack}, nil
}
