// Package config holds the tangle client configuration surface and the
// four-tier resolver that produces a concrete Config for a single call.
// Tiers, highest priority first: call options, instance defaults,
// environment variables, hard-coded defaults. Each key resolves
// independently; no value is ever composed from two tiers.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Provider selects the transport strategy.
type Provider string

const (
	ProviderCLI    Provider = "cli"
	ProviderServer Provider = "server"
)

// Runtime selects how the CLI transport locates and runs the engine.
type Runtime string

const (
	RuntimeNode Runtime = "node"
	RuntimeBun  Runtime = "bun"
)

// Environment variable for each configuration key. An exported map so
// callers can document or audit the recognized set.
var EnvVars = map[string]string{
	"provider":   "TANGLE_PROVIDER",
	"runtime":    "TANGLE_RUNTIME",
	"cli_path":   "TANGLE_CLI_PATH",
	"node_path":  "TANGLE_NODE_PATH",
	"bun_path":   "TANGLE_BUN_PATH",
	"cache_dir":  "TANGLE_CACHE_DIR",
	"server_url": "TANGLE_SERVER_URL",
	"api_key":    "TANGLE_API_KEY",
	"timeout":    "TANGLE_TIMEOUT",
}

// Options is a partial configuration record: one resolver tier. The zero
// value of a field ("" or 0) means "unset" and lets lower tiers through.
type Options struct {
	Provider   Provider `yaml:"provider"`
	Runtime    Runtime  `yaml:"runtime"`
	CLIPath    string   `yaml:"cli_path"`
	NodePath   string   `yaml:"node_path"`
	BunPath    string   `yaml:"bun_path"`
	CacheDir   string   `yaml:"cache_dir"`
	ServerURL  string   `yaml:"server_url"`
	APIKey     string   `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	TimeoutSec int      `yaml:"timeout"`
}

// Config is the fully resolved configuration for one call. Immutable once
// returned by Resolve; never persisted.
type Config struct {
	Provider   Provider
	Runtime    Runtime
	CLIPath    string
	NodePath   string
	BunPath    string
	CacheDir   string
	ServerURL  string
	APIKey     string
	TimeoutSec int
}

// Timeout converts the configured seconds to a duration. Coercion happens
// here, at the point of use, not during resolution.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Resolve merges call options, instance defaults, environment variables and
// hard defaults into a Config. It never fails: unparseable or unset values
// fall through to the next tier. The only side effect is reading the
// process environment.
func Resolve(call, instance Options) Config {
	k := koanf.New(".")

	// Load tiers lowest priority first; later loads win per key.
	_ = k.Load(confmap.Provider(defaultsMap(), "."), nil)
	_ = k.Load(confmap.Provider(envMap(), "."), nil)
	_ = k.Load(confmap.Provider(instance.tierMap(), "."), nil)
	_ = k.Load(confmap.Provider(call.tierMap(), "."), nil)

	return Config{
		Provider:   Provider(k.String("provider")),
		Runtime:    Runtime(k.String("runtime")),
		CLIPath:    k.String("cli_path"),
		NodePath:   k.String("node_path"),
		BunPath:    k.String("bun_path"),
		CacheDir:   k.String("cache_dir"),
		ServerURL:  k.String("server_url"),
		APIKey:     k.String("api_key"),
		TimeoutSec: coerceSeconds(k.Get("timeout"), defaultTimeoutSec),
	}
}

const (
	defaultServerURL  = "http://localhost:3342"
	defaultTimeoutSec = 30
)

func defaultsMap() map[string]any {
	return map[string]any{
		"provider":   string(ProviderCLI),
		"runtime":    string(RuntimeNode),
		"cli_path":   "",
		"node_path":  "node",
		"bun_path":   "bun",
		"cache_dir":  filepath.Join(os.TempDir(), "tangle-cache"),
		"server_url": defaultServerURL,
		"api_key":    "",
		"timeout":    defaultTimeoutSec,
	}
}

// envMap builds the environment tier. A variable that is set but empty is
// treated as unset so inherited empty shell variables cannot override
// defaults with an empty value.
func envMap() map[string]any {
	m := make(map[string]any, len(EnvVars))
	for key, name := range EnvVars {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		m[key] = v
	}
	return m
}

// tierMap converts an Options tier to a key map, omitting unset fields so
// they never shadow a lower tier.
func (o Options) tierMap() map[string]any {
	m := make(map[string]any, 9)
	if o.Provider != "" {
		m["provider"] = string(o.Provider)
	}
	if o.Runtime != "" {
		m["runtime"] = string(o.Runtime)
	}
	if o.CLIPath != "" {
		m["cli_path"] = o.CLIPath
	}
	if o.NodePath != "" {
		m["node_path"] = o.NodePath
	}
	if o.BunPath != "" {
		m["bun_path"] = o.BunPath
	}
	if o.CacheDir != "" {
		m["cache_dir"] = o.CacheDir
	}
	if o.ServerURL != "" {
		m["server_url"] = o.ServerURL
	}
	if o.APIKey != "" {
		m["api_key"] = o.APIKey
	}
	if o.TimeoutSec != 0 {
		m["timeout"] = o.TimeoutSec
	}
	return m
}

// coerceSeconds accepts the int the default tier stores, the string an
// environment variable carries, or a float from decoded YAML/JSON.
func coerceSeconds(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return int(parsed)
		}
	}
	return fallback
}
