// Package environment contains clients for browsing environments that run
// as separate processes.
package environment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/webreasoner/core"
	"github.com/hupe1980/webreasoner/logging"
)

// HTTPOptions configure an HTTP environment client.
type HTTPOptions struct {
	Client  *http.Client
	Headers map[string]string
	Logger  logging.Logger
}

// HTTP talks JSON to a browser environment server:
//
//	POST {base}/reset  {"goal": "..."}   -> {"observation": {...}}
//	POST {base}/step   {"action": "..."} -> {"observation": {...}}
//
// A non-empty "error" field in the response is returned as an error.
type HTTP struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	logger  logging.Logger
}

// NewHTTP creates an HTTP environment client for baseURL.
func NewHTTP(baseURL string, optFns ...func(o *HTTPOptions)) *HTTP {
	opts := HTTPOptions{
		Client: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  opts.Client,
		headers: opts.Headers,
		logger:  logging.Ensure(opts.Logger),
	}
}

type resetRequest struct {
	Goal string `json:"goal"`
}

type stepRequest struct {
	Action string `json:"action"`
}

type observationResponse struct {
	Observation core.RawObservation `json:"observation"`
	Error       string              `json:"error,omitempty"`
}

// Reset implements core.Environment.
func (h *HTTP) Reset(ctx context.Context, goal string) (core.RawObservation, error) {
	return h.post(ctx, "/reset", resetRequest{Goal: goal})
}

// Step implements core.Environment.
func (h *HTTP) Step(ctx context.Context, action string) (core.RawObservation, error) {
	return h.post(ctx, "/step", stepRequest{Action: action})
}

func (h *HTTP) post(ctx context.Context, path string, payload any) (core.RawObservation, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("environment %s: %w", path, err)
	}
	defer resp.Body.Close()
	h.logger.Debug("environment call", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("environment %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(msg)))
	}

	var out observationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode environment %s response: %w", path, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("environment %s: %s", path, out.Error)
	}
	if out.Observation == nil {
		return nil, fmt.Errorf("environment %s: empty observation", path)
	}
	return out.Observation, nil
}
