package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a delivery failure. The UI shows the same fallback for
// every kind; the distinction exists for logs and the one-shot CLI.
type Kind string

const (
	KindTransport Kind = "transport" // unreachable, timeout, cancelled
	KindStatus    Kind = "status"    // non-2xx response
	KindDecode    Kind = "decode"    // malformed or incomplete body
)

// DeliveryError is returned by Client.Send for every failed call.
type DeliveryError struct {
	Kind       Kind
	RequestID  string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("delivery failed (%s, status %d, req %s): %v", e.Kind, e.StatusCode, e.RequestID, e.Err)
	}
	return fmt.Sprintf("delivery failed (%s, req %s): %v", e.Kind, e.RequestID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" if err is not a DeliveryError.
func KindOf(err error) Kind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
