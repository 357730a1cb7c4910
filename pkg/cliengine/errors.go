package cliengine

import "fmt"

// StartError reports that the engine process could not be spawned at all.
type StartError struct {
	Path string // Executable that failed to start.
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("tangle cli: start %s: %v", e.Path, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExecError reports that the engine ran but exited non-zero. Output is the
// captured stderr, or stdout when stderr was empty.
type ExecError struct {
	ExitCode int
	Output   string
}

func (e *ExecError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("tangle cli: engine exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("tangle cli: engine exited with status %d: %s", e.ExitCode, e.Output)
}

// ResourceError reports that a required bundled artifact is missing on
// disk. Raised before any process is spawned.
type ResourceError struct {
	Path string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("tangle cli: bundled engine script not found at %s", e.Path)
}
