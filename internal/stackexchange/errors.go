package stackexchange

import "fmt"

// TransportError reports a failed API call. StatusCode is zero when no
// response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("stackexchange %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("stackexchange %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
