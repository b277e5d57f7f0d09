// Package client is a thin HTTP/websocket client for cmd/hybridsim-server,
// mirroring the request/response shape of the teacher's pkg/client
// ApplySchema helper: build a URL, marshal a body, send it with a context,
// check the status code. It carries no model-authoring API of its own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daniacca/hybridchem/internal/snapshot"
)

// Client talks to a running cmd/hybridsim-server instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client against baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// StepResult reports whether a native step fired and the resulting time.
type StepResult struct {
	Fired bool    `json:"fired"`
	T     float64 `json:"t"`
}

// Seed loads runConfigJSON as the environment's wiring configuration (a
// runconfig.RunConfig encoded as JSON) and (re)initializes envID.
func (c *Client) Seed(ctx context.Context, envID string, runConfigJSON []byte) error {
	_, err := c.post(ctx, c.envURL(envID, "seed"), runConfigJSON)
	return err
}

// Step requests one coordinator step (or fast-forward) up to the deadline.
func (c *Client) Step(ctx context.Context, envID string, upto float64) (StepResult, error) {
	body, err := json.Marshal(struct {
		Upto float64 `json:"upto"`
	}{Upto: upto})
	if err != nil {
		return StepResult{}, fmt.Errorf("client: encode step request: %w", err)
	}

	data, err := c.post(ctx, c.envURL(envID, "step"), body)
	if err != nil {
		return StepResult{}, err
	}

	var res StepResult
	if err := json.Unmarshal(data, &res); err != nil {
		return StepResult{}, fmt.Errorf("client: decode step response: %w", err)
	}
	return res, nil
}

// Snapshot fetches envID's current state.
func (c *Client) Snapshot(ctx context.Context, envID string) (snapshot.Snapshot, error) {
	u, err := url.JoinPath(c.baseURL, "env", envID, "snapshot")
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("client: build snapshot url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("client: build snapshot request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("client: snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("client: read snapshot response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return snapshot.Snapshot{}, fmt.Errorf("client: snapshot returned status %d: %s", resp.StatusCode, string(data))
	}

	return snapshot.DecodeJSON(data)
}

// Watch opens the live transfer-event websocket feed for envID. The caller
// owns the returned connection and must close it.
func (c *Client) Watch(ctx context.Context, envID string) (*websocket.Conn, error) {
	wsURL := strings.Replace(c.baseURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	u, err := url.JoinPath(wsURL, "env", envID, "ws")
	if err != nil {
		return nil, fmt.Errorf("client: build watch url: %w", err)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("client: watch dial failed: %w", err)
	}
	if resp != nil {
		defer resp.Body.Close()
	}
	return conn, nil
}

func (c *Client) envURL(envID, suffix string) string {
	u, _ := url.JoinPath(c.baseURL, "env", envID, suffix)
	return u
}

func (c *Client) post(ctx context.Context, u string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: build request for %s: %w", u, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request to %s failed: %w", u, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response from %s: %w", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("client: %s returned status %d: %s", u, resp.StatusCode, string(data))
	}
	return data, nil
}
