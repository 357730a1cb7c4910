// Package cliengine runs the Tangle engine as a local child process and
// captures its output. It owns the command-line invocation contract:
// -q/-Q for the query, -i for the JSON data payload, --cache-dir for the
// engine's cache directory.
package cliengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/tanglelang/tangle-go/pkg/config"
)

// Runner executes engine invocations. The zero value is ready to use.
type Runner struct {
	Logger *slog.Logger // Optional; nil discards.
}

// Run invokes the engine once and returns its trimmed stdout.
// Exactly one of query / queryFile is used; queryFile wins when both are
// set. dataJSON is passed inline via -i. Stdin is connected to the null
// device: the engine receives no streaming input.
func (r *Runner) Run(ctx context.Context, query, queryFile, dataJSON string, cfg config.Config) (string, error) {
	argv, err := resolveInvocation(cfg)
	if err != nil {
		return "", err
	}

	args := argv[1:]
	if queryFile != "" {
		args = append(args, "-Q", queryFile)
	} else {
		args = append(args, "-q", query)
	}
	args = append(args, "-i", dataJSON, "--cache-dir", cfg.CacheDir)

	cmd := osexec.CommandContext(ctx, argv[0], args...) //nolint:gosec // argv comes from resolved configuration
	// Inherit the environment; silence interpreter warnings so they never
	// pollute the captured stderr.
	cmd.Env = append(os.Environ(), "NODE_NO_WARNINGS=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger().DebugContext(ctx, "running engine", "path", argv[0], "args", args)

	runErr := cmd.Run()

	if ctx.Err() != nil {
		return "", fmt.Errorf("tangle cli: %w", ctx.Err())
	}

	if runErr != nil {
		var exitErr *osexec.ExitError
		if errors.As(runErr, &exitErr) {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = strings.TrimSpace(stdout.String())
			}
			return "", &ExecError{ExitCode: exitErr.ExitCode(), Output: detail}
		}
		return "", &StartError{Path: argv[0], Err: runErr}
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
