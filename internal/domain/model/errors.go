package model

import (
	"errors"
	"fmt"
)

// ErrNoCredential is returned when an operation needs a bot token but no
// Slack workspace has been authorized yet.
var ErrNoCredential = errors.New("no token stored, connect Slack first")

// GatewayErrorKind classifies failures reported by the Slack gateway.
type GatewayErrorKind string

const (
	// KindAuth covers OAuth exchange failures and missing tokens.
	KindAuth GatewayErrorKind = "auth_error"
	// KindDelivery covers chat.postMessage failures.
	KindDelivery GatewayErrorKind = "delivery_error"
	// KindGateway covers every other Slack Web API failure.
	KindGateway GatewayErrorKind = "gateway_error"
)

// RemoteMetadata is the diagnostic detail Slack attaches to a rejection
// (response_metadata), such as which argument it refused.
type RemoteMetadata struct {
	Messages []string
	Warnings []string
}

// Empty reports whether Slack sent no diagnostic detail.
func (m RemoteMetadata) Empty() bool {
	return len(m.Messages) == 0 && len(m.Warnings) == 0
}

// GatewayError is the normalized failure shape of every Slack call.
// Remote holds Slack's error code when Slack answered ok:false, with any
// response_metadata in Metadata; Err holds the transport cause otherwise.
type GatewayError struct {
	Kind     GatewayErrorKind
	Op       string // Slack method, e.g. "chat.postMessage"
	Remote   string
	Metadata RemoteMetadata
	Err      error
}

// Error implements error. Remote failures render as the bare Slack code.
func (e *GatewayError) Error() string {
	if e.Remote != "" {
		return e.Remote
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the transport cause, if any.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// RemoteReported reports whether Slack itself rejected the call (ok:false),
// as opposed to the call never completing.
func (e *GatewayError) RemoteReported() bool {
	return e.Remote != ""
}

// RemoteCode extracts the Slack error code from err, or "" when err is not a
// remote-reported gateway failure.
func RemoteCode(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Remote
	}
	return ""
}
