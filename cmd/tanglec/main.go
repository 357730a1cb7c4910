// Command tanglec runs a single transformation against the Tangle engine,
// either by spawning the local engine CLI or by calling a Tangle server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/tanglelang/tangle-go/pkg/config"
	"github.com/tanglelang/tangle-go/pkg/tangle"
)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tanglec [flags]\n\nRun one transformation through the Tangle engine.\n\nFlags:\n")
		flag.PrintDefaults()
	}

	query := flag.String("q", "", "inline query")
	queryFile := flag.String("f", "", "path to a query file (takes precedence over -q)")
	dataArg := flag.String("i", "", "JSON data payload, or @path to read it from a file")
	optsPath := flag.String("c", ".tangle.yaml", "path to an options YAML file (ignored if missing)")
	envFile := flag.String("env", ".env", "path to a .env file (ignored if missing)")
	provider := flag.String("provider", "", "transport provider: cli or server")
	serverURL := flag.String("server", "", "server base URL")
	timeout := flag.Int("timeout", 0, "timeout in seconds")
	verbose := flag.Bool("verbose", false, "log transport activity to stderr")
	flag.Parse()

	call := config.Options{
		Provider:   config.Provider(*provider),
		ServerURL:  *serverURL,
		TimeoutSec: *timeout,
	}

	if err := run(*query, *queryFile, *dataArg, *optsPath, *envFile, call, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(query, queryFile, dataArg, optsPath, envFile string, call config.Options, verbose bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := loadDotEnv(envFile); err != nil {
		return err
	}

	defaults, err := config.LoadOptions(optsPath)
	if err != nil {
		return err
	}

	data, err := readData(dataArg)
	if err != nil {
		return err
	}

	client := tangle.New(defaults)
	if verbose {
		client.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	result, err := client.Do(ctx, tangle.Request{
		Query:     query,
		QueryFile: queryFile,
		Data:      data,
		Options:   call,
	})
	if err != nil {
		return err
	}

	return printResult(result)
}

// loadDotEnv loads environment variables from path. A missing file is fine.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// readData turns the -i argument into a data payload: empty means no
// payload, @path reads the payload from a file, anything else is used
// verbatim.
func readData(arg string) (any, error) {
	if arg == "" {
		return nil, nil
	}

	if strings.HasPrefix(arg, "@") {
		raw, err := os.ReadFile(arg[1:]) //nolint:gosec // user-named input file by design
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		return string(raw), nil
	}

	return arg, nil
}

// printResult writes the transformation result to stdout. CLI results are
// plain strings and print as-is; server results are decoded JSON values
// and are re-encoded indented.
func printResult(result any) error {
	if s, ok := result.(string); ok {
		fmt.Println(s)
		return nil
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
