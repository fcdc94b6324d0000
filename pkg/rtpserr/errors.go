// Package rtpserr defines the discovery subsystem's error taxonomy (§7).
// Each kind is a sentinel or a small wrapper type so callers can use
// errors.Is/errors.As instead of matching strings.
package rtpserr

import "fmt"

// Sentinel errors for conditions that are not wrapped with extra context.
var (
	// ErrSelfEcho marks a message whose origin is this participant itself.
	// Not a failure; dropped silently by callers.
	ErrSelfEcho = fmt.Errorf("rtpserr: self-echo")

	// ErrUnknownParticipant marks an inbound endpoint descriptor whose
	// owning participant prefix is not yet known to the proxy store.
	ErrUnknownParticipant = fmt.Errorf("rtpserr: unknown participant")

	// ErrIncompatibleProtocol marks a remote participant whose protocol
	// major version is lower than ours. Dropped permanently, no retry.
	ErrIncompatibleProtocol = fmt.Errorf("rtpserr: incompatible protocol version")

	// ErrGuidCollision marks an attempt to insert a proxy whose GUID
	// already names a different live proxy.
	ErrGuidCollision = fmt.Errorf("rtpserr: guid collision")
)

// MalformedMessage wraps a parameter-list decode failure (§4.1, §7).
type MalformedMessage struct {
	Reason string
}

func (e *MalformedMessage) Error() string {
	return fmt.Sprintf("rtpserr: malformed parameter list: %s", e.Reason)
}

// NewMalformedMessage builds a MalformedMessage with the given reason.
func NewMalformedMessage(reason string) *MalformedMessage {
	return &MalformedMessage{Reason: reason}
}

// TransportUnavailable wraps a failed send; the caller logs and continues,
// relying on the periodic resend to retry (§7).
type TransportUnavailable struct {
	Locator string
	Cause   error
}

func (e *TransportUnavailable) Error() string {
	return fmt.Sprintf("rtpserr: transport unavailable sending to %s: %s", e.Locator, e.Cause)
}

func (e *TransportUnavailable) Unwrap() error {
	return e.Cause
}

// XMLParseError wraps a Static EDP XML load failure. Init aborts and
// surfaces this to the caller of PDP.Init (§7).
type XMLParseError struct {
	Path  string
	Cause error
}

func (e *XMLParseError) Error() string {
	return fmt.Sprintf("rtpserr: failed to parse static EDP XML %q: %s", e.Path, e.Cause)
}

func (e *XMLParseError) Unwrap() error {
	return e.Cause
}
