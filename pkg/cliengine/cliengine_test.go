package cliengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanglelang/tangle-go/pkg/config"
)

// writeScript drops an executable shell script into a temp dir so tests
// can stand in for the engine binary.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)) //nolint:gosec // test fixture must be executable

	return path
}

func testConfig(cliPath string) config.Config {
	return config.Config{
		Provider:   config.ProviderCLI,
		Runtime:    config.RuntimeNode,
		CLIPath:    cliPath,
		NodePath:   "node",
		BunPath:    "bun",
		CacheDir:   os.TempDir(),
		TimeoutSec: 30,
	}
}

func TestRun_TrimmedStdout(t *testing.T) {
	script := writeScript(t, "engine", `echo "  hello  "`)

	var r Runner
	out, err := r.Run(context.Background(), "$.name", "", "{}", testConfig(script))
	require.NoError(t, err)

	assert.Equal(t, "hello", out)
}

func TestRun_PassesFlags(t *testing.T) {
	script := writeScript(t, "engine", `printf '%s\n' "$@"`)

	cfg := testConfig(script)
	cfg.CacheDir = "/tmp/tangle-test-cache"

	var r Runner
	out, err := r.Run(context.Background(), "$.a", "", `{"a":1}`, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "-q\n$.a")
	assert.Contains(t, out, "-i\n{\"a\":1}")
	assert.Contains(t, out, "--cache-dir\n/tmp/tangle-test-cache")
}

func TestRun_QueryFileWins(t *testing.T) {
	script := writeScript(t, "engine", `printf '%s\n' "$@"`)

	queryFile := filepath.Join(t.TempDir(), "query.tng")
	require.NoError(t, os.WriteFile(queryFile, []byte("$.b"), 0o600))

	var r Runner
	out, err := r.Run(context.Background(), "$.a", queryFile, "{}", testConfig(script))
	require.NoError(t, err)

	assert.Contains(t, out, "-Q\n"+queryFile)
	assert.NotContains(t, out, "-q")
}

func TestRun_SuppressesInterpreterWarnings(t *testing.T) {
	script := writeScript(t, "engine", `echo "$NODE_NO_WARNINGS"`)

	var r Runner
	out, err := r.Run(context.Background(), "$", "", "{}", testConfig(script))
	require.NoError(t, err)

	assert.Equal(t, "1", out)
}

func TestRun_NonZeroExit(t *testing.T) {
	script := writeScript(t, "engine", "echo 'parse error' >&2\nexit 3")

	var r Runner
	_, err := r.Run(context.Background(), "$", "", "{}", testConfig(script))
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 3, execErr.ExitCode)
	assert.Equal(t, "parse error", execErr.Output)
}

func TestRun_StderrEmptyFallsBackToStdout(t *testing.T) {
	script := writeScript(t, "engine", "echo 'wrote to stdout'\nexit 1")

	var r Runner
	_, err := r.Run(context.Background(), "$", "", "{}", testConfig(script))

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 1, execErr.ExitCode)
	assert.Equal(t, "wrote to stdout", execErr.Output)
}

func TestRun_SpawnFailure(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "does-not-exist"))

	var r Runner
	_, err := r.Run(context.Background(), "$", "", "{}", cfg)
	require.Error(t, err)

	var startErr *StartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, cfg.CLIPath, startErr.Path)
}

func TestRun_ContextTimeout(t *testing.T) {
	script := writeScript(t, "engine", "sleep 5")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var r Runner
	_, err := r.Run(ctx, "$", "", "{}", testConfig(script))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_BundleMissing(t *testing.T) {
	dir := t.TempDir()
	restore := bundleDir
	bundleDir = func() string { return dir }
	t.Cleanup(func() { bundleDir = restore })

	cfg := testConfig("")
	cfg.Runtime = config.RuntimeBun

	var r Runner
	_, err := r.Run(context.Background(), "$", "", "{}", cfg)

	var resErr *ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, filepath.Join(dir, bundleScriptName), resErr.Path)
}

func TestRun_BundlePresent(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, bundleScriptName)
	require.NoError(t, os.WriteFile(bundle, []byte("echo bun-ok\n"), 0o600))

	restore := bundleDir
	bundleDir = func() string { return dir }
	t.Cleanup(func() { bundleDir = restore })

	cfg := testConfig("")
	cfg.Runtime = config.RuntimeBun
	cfg.BunPath = "/bin/sh" // stands in for the bun interpreter

	var r Runner
	out, err := r.Run(context.Background(), "$", "", "{}", cfg)
	require.NoError(t, err)

	assert.Equal(t, "bun-ok", out)
}

func TestResolveInvocation_NodeEntryScript(t *testing.T) {
	root := t.TempDir()

	script := filepath.Join(root, entryScriptRel)
	require.NoError(t, os.MkdirAll(filepath.Dir(script), 0o755))
	require.NoError(t, os.WriteFile(script, []byte("// engine entry\n"), 0o600))

	// The walk must find the entry script from a nested working
	// directory, and it outranks a configured executable path.
	nested := filepath.Join(root, "sub", "dir")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	cfg := testConfig("/opt/ignored/tangle")
	cfg.NodePath = "/usr/local/bin/node"

	argv, err := resolveInvocation(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/local/bin/node", script}, argv)
}

func TestResolveInvocation_ConfiguredPathBeforeFallback(t *testing.T) {
	cfg := testConfig("/opt/tangle/bin/tangle")

	argv, err := resolveInvocation(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/tangle/bin/tangle"}, argv)

	cfg.CLIPath = ""

	argv, err = resolveInvocation(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{fallbackExecutable}, argv)
}
