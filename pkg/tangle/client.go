// Package tangle is the public client for the Tangle data-transformation
// engine. The client performs no transformation itself: it resolves
// configuration, picks a transport — a local engine process or a remote
// HTTP server — and normalizes the result or error. One synchronous call
// per invocation, no retries at any layer.
package tangle

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tanglelang/tangle-go/pkg/cliengine"
	"github.com/tanglelang/tangle-go/pkg/config"
	"github.com/tanglelang/tangle-go/pkg/serverengine"
)

// Client invokes the engine. Defaults form the instance tier of
// configuration resolution; per-call options on a Request override them.
// Safe for concurrent use: every call resolves a fresh Config and shares
// no mutable state.
type Client struct {
	Defaults   config.Options
	HTTPClient *http.Client // Optional; injected into the HTTP transport.
	Logger     *slog.Logger // Optional; nil discards.

	once   sync.Once
	cli    *cliengine.Runner
	server *serverengine.Caller
}

// New creates a Client whose instance defaults sit between per-call
// options and environment variables in the resolution order.
func New(defaults config.Options) *Client {
	return &Client{Defaults: defaults}
}

// Transform runs an inline query against data. data may be nil (treated
// as an empty object), a JSON-encoded string (passed through without
// re-encoding), or any JSON-marshalable value.
func (c *Client) Transform(ctx context.Context, query string, data any) (any, error) {
	return c.Do(ctx, Request{Query: query, Data: data})
}

// TransformFile runs the query stored in the given file against data.
func (c *Client) TransformFile(ctx context.Context, queryFile string, data any) (any, error) {
	return c.Do(ctx, Request{QueryFile: queryFile, Data: data})
}

// Do runs a fully specified Request. Input is validated before any
// process is spawned or connection opened. The configured timeout bounds
// the whole call on both transports.
func (c *Client) Do(ctx context.Context, req Request) (any, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	// Prove the payload marshals before any transport is attempted, so
	// both providers reject bad data identically.
	dataJSON, err := NormalizeData(req.Data)
	if err != nil {
		return nil, &InvalidInputError{Reason: "data payload is not JSON-marshalable", Err: err}
	}

	cfg := config.Resolve(req.Options, c.Defaults)

	if timeout := cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	c.once.Do(func() {
		c.cli = &cliengine.Runner{Logger: c.Logger}
		c.server = &serverengine.Caller{Client: c.HTTPClient, Logger: c.Logger}
	})

	if cfg.Provider == config.ProviderServer {
		return c.server.Run(ctx, req.Query, req.QueryFile, req.Data, cfg)
	}

	return c.cli.Run(ctx, req.Query, req.QueryFile, dataJSON, cfg)
}
