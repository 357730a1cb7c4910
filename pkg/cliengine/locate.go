package cliengine

import (
	"os"
	"path/filepath"

	"github.com/tanglelang/tangle-go/pkg/config"
)

// fallbackExecutable is the system-installed engine binary consulted via
// $PATH when nothing more specific is configured.
const fallbackExecutable = "tangle"

// entryScriptRel is the engine's npm entry point, relative to a
// node_modules root.
var entryScriptRel = filepath.Join("node_modules", "@tangle", "cli", "bin", "tangle.js")

// bundleScriptName is the bun-targeted single-file build shipped alongside
// the client binary.
const bundleScriptName = "tangle.bun.js"

// bundleDir returns the directory searched for the bundled bun script.
// A variable so tests can point it at a fixture directory.
var bundleDir = func() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}

// resolveInvocation picks the command that will run the engine, in priority
// order: the npm entry script under the node interpreter, the bundled
// script under bun, a directly configured executable, then the
// system-installed binary from $PATH.
func resolveInvocation(cfg config.Config) ([]string, error) {
	switch cfg.Runtime {
	case config.RuntimeNode:
		if script, ok := locateEntryScript(); ok {
			return []string{cfg.NodePath, script}, nil
		}
	case config.RuntimeBun:
		script := filepath.Join(bundleDir(), bundleScriptName)
		if _, err := os.Stat(script); err != nil {
			return nil, &ResourceError{Path: script}
		}
		return []string{cfg.BunPath, script}, nil
	}

	if cfg.CLIPath != "" {
		return []string{cfg.CLIPath}, nil
	}

	return []string{fallbackExecutable}, nil
}

// locateEntryScript walks up from the working directory looking for the
// engine's npm entry point, the way node itself resolves node_modules.
func locateEntryScript() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, entryScriptRel)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
