package serverengine

import "fmt"

// ConnectError reports that the server could not be reached: connection
// refused, DNS failure, or a timeout while waiting for the response.
type ConnectError struct {
	URL string
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("tangle server: %s unreachable: %v", e.URL, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ServerError reports a reply the server itself marked as failed: an HTTP
// status of 400 or above, or a well-formed envelope without a truthy
// success field. Status is zero when the failure came from the envelope
// rather than the HTTP layer.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tangle server: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("tangle server: %s", e.Message)
}
