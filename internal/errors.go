package internal

import (
	"errors"
	"fmt"
)

// ErrDemoPayload is returned when synthetic demo data reaches a real-data path
var ErrDemoPayload = errors.New("payload is tagged as demo data")

// TransportErrorKind classifies why a payload could not be obtained
type TransportErrorKind string

const (
	TransportRequest   TransportErrorKind = "request"   // network / client failure
	TransportStatus    TransportErrorKind = "status"    // non-2xx response
	TransportEmpty     TransportErrorKind = "empty"     // 2xx with no body
	TransportMalformed TransportErrorKind = "malformed" // body is not JSON
)

// TransportError is a fatal failure loading a payload from a webhook or file
type TransportError struct {
	Kind     TransportErrorKind
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case TransportStatus:
		return fmt.Sprintf("transport error [%s] %s: unexpected HTTP status %d", e.Kind, e.Endpoint, e.Status)
	case TransportEmpty:
		return fmt.Sprintf("transport error [%s] %s: response body is empty", e.Kind, e.Endpoint)
	case TransportMalformed:
		return fmt.Sprintf("transport error [%s] %s: response is not valid JSON: %v", e.Kind, e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("transport error [%s] %s: %v", e.Kind, e.Endpoint, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ShapeError reports a payload that matches none of the tolerated shapes
type ShapeError struct {
	Shape  string // what was received, e.g. "string", "array of unrecognized records"
	Detail string
}

func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("unexpected payload shape: got %s; expected an object with conversations/appointments/orders arrays, or an array of conversation, appointment or order records", e.Shape)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// StorageError represents errors accessing the settings database or payload cache
type StorageError struct {
	Path string
	Op   string // "open", "read", "write", "migrate"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Failure is the structured form of a fatal aggregation error
type Failure struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// ErrorKind names the failure class of err for API responses and CLI output.
func ErrorKind(err error) string {
	var transportErr *TransportError
	var shapeErr *ShapeError
	var storageErr *StorageError
	var exportErr *ExportError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return "transport_" + string(transportErr.Kind)
	case errors.As(err, &shapeErr):
		return "shape"
	case errors.Is(err, ErrDemoPayload):
		return "demo"
	case errors.As(err, &storageErr):
		return "storage"
	case errors.As(err, &exportErr):
		return "export"
	default:
		return "internal"
	}
}

// AsFailure converts err into a Failure
func AsFailure(err error) Failure {
	return Failure{Kind: ErrorKind(err), Detail: err.Error()}
}
