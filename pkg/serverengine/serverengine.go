// Package serverengine invokes a remote Tangle server over HTTP. It owns
// the wire contract: POST {server_url}/v1/execute with a {"query","data"}
// body and a {"success","result","message"} response envelope.
package serverengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/tanglelang/tangle-go/pkg/config"
)

const executePath = "/v1/execute"

// Caller issues execute requests against a Tangle server. The zero value
// is ready to use; a nil Client falls back to a shared default. Any
// http.Client-compatible backend may be injected — the Caller relies only
// on the Do contract, so behavior is identical regardless of the client.
type Caller struct {
	Client *http.Client
	Logger *slog.Logger // Optional; nil discards.

	clientOnce    sync.Once
	defaultClient *http.Client
}

type envelope struct {
	Success bool   `json:"success"`
	Result  any    `json:"result"`
	Message string `json:"message"`
}

// Run executes one transformation and returns the envelope's result value
// as-is. When queryFile is set its trimmed contents become the query.
// Call deadlines come from the caller's context; the Caller itself sets no
// timeout.
func (c *Caller) Run(ctx context.Context, query, queryFile string, data any, cfg config.Config) (any, error) {
	if queryFile != "" {
		raw, err := os.ReadFile(queryFile) //nolint:gosec // path was validated by the dispatcher
		if err != nil {
			return nil, fmt.Errorf("tangle server: read query file: %w", err)
		}
		query = strings.TrimSpace(string(raw))
	}

	payload := map[string]any{
		"query": query,
		"data":  wireData(data),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tangle server: marshal payload: %w", err)
	}

	url := strings.TrimRight(cfg.ServerURL, "/") + executePath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tangle server: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("X-API-KEY", cfg.APIKey)
	}

	c.logger().DebugContext(ctx, "posting to engine server", "url", url)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &ConnectError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectError{URL: url, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &ServerError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ServerError{Message: strings.TrimSpace(string(raw))}
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, &ServerError{Message: msg}
	}

	return env.Result, nil
}

// wireData shapes the data payload for the wire. A string that is itself
// valid JSON is embedded verbatim so encoded input is never double-encoded;
// any other string travels as a JSON string. nil normalizes to the empty
// object.
func wireData(data any) any {
	switch v := data.(type) {
	case nil:
		return map[string]any{}
	case string:
		trimmed := strings.TrimSpace(v)
		if json.Valid([]byte(trimmed)) {
			return json.RawMessage(trimmed)
		}
		return v
	default:
		return data
	}
}

// httpClient returns the injected client or a cached default.
func (c *Caller) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}

	c.clientOnce.Do(func() {
		c.defaultClient = &http.Client{}
	})

	return c.defaultClient
}

func (c *Caller) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
