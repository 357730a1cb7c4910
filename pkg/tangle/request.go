package tangle

import (
	"fmt"
	"os"

	"github.com/tanglelang/tangle-go/pkg/config"
)

// Request is the by-record calling form: one transformation, fully
// specified. Query and QueryFile are mutually exclusive at the API
// surface; QueryFile wins when both are set. Options is the per-call
// configuration tier and overrides everything below it.
type Request struct {
	Query     string
	QueryFile string
	Data      any
	Options   config.Options
}

// validate rejects bad input before any transport is attempted.
func (r Request) validate() error {
	if r.Query == "" && r.QueryFile == "" {
		return &InvalidInputError{Reason: `missing required "query" option`}
	}

	if r.QueryFile != "" {
		f, err := os.Open(r.QueryFile) //nolint:gosec // caller-provided query file path by design
		if err != nil {
			return &InvalidInputError{
				Reason: fmt.Sprintf("query file %q", r.QueryFile),
				Err:    err,
			}
		}
		_ = f.Close()
	}

	return nil
}
