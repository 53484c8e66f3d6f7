package types

import (
	"errors"
	"fmt"
	"time"
)

// The device-facing layers classify every I/O failure into one of five
// error kinds before it crosses a package boundary. Raw transport errors
// stay wrapped inside and are reachable through errors.Unwrap.

// ConnectionError reports a transport-level failure to reach a device
// (TCP dial, SSH handshake, SNMP socket).
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthenticationError reports rejected credentials on a CLI login.
type AuthenticationError struct {
	Target string
	User   string
	Reason string
}

func (e *AuthenticationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("authentication failed for %s@%s: %s", e.User, e.Target, e.Reason)
	}
	return fmt.Sprintf("authentication failed for %s@%s", e.User, e.Target)
}

// CommandError reports a CLI command the device rejected, or an SNMP
// query that errored. Output carries whatever the device printed.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q failed: %s", e.Command, firstLine(e.Output))
}

func (e *CommandError) Unwrap() error { return e.Err }

// ProtocolError reports malformed protocol input, notably CWMP XML that
// does not parse as a SOAP envelope.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// TimeoutError reports a blocking call that exceeded its deadline.
// Timeout is a first-class failure mode here, not an exceptional case.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err classifies as a transport failure.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsAuthenticationError reports whether err classifies as rejected credentials.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsCommandError reports whether err classifies as a rejected command or query.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}

// IsProtocolError reports whether err classifies as malformed protocol input.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsTimeout reports whether err classifies as an exceeded deadline.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			return s[:i]
		}
	}
	return s
}
