// Package soup strips the SOUP session framing from capture lines.
package soup

import (
	"strings"

	"github.com/erain9/pitchvolume/pkg/diag"
	"github.com/rs/zerolog/log"
)

// FrameType is the leading marker byte of a SOUP frame
type FrameType byte

// SOUP frame types
const (
	SequencedData   FrameType = 'S'
	ClientHeartbeat FrameType = 'R'
	ServerHeartbeat FrameType = 'H'
	Debug           FrameType = '+'
	LoginAccepted   FrameType = 'A'
	LoginRejected   FrameType = 'J'
	LoginRequest    FrameType = 'L'
	UnsequencedData FrameType = 'U'
	LogoutRequest   FrameType = 'O'
)

// String returns frame type as string
func (f FrameType) String() string {
	switch f {
	case SequencedData:
		return "SEQUENCED_DATA"
	case ClientHeartbeat:
		return "CLIENT_HEARTBEAT"
	case ServerHeartbeat:
		return "SERVER_HEARTBEAT"
	case Debug:
		return "DEBUG"
	case LoginAccepted:
		return "LOGIN_ACCEPTED"
	case LoginRejected:
		return "LOGIN_REJECTED"
	case LoginRequest:
		return "LOGIN_REQUEST"
	case UnsequencedData:
		return "UNSEQUENCED_DATA"
	case LogoutRequest:
		return "LOGOUT_REQUEST"
	default:
		return "UNKNOWN"
	}
}

// IsControl reports whether f is a known frame that never carries market data
func (f FrameType) IsControl() bool {
	switch f {
	case ClientHeartbeat, ServerHeartbeat, Debug, LoginAccepted, LoginRejected,
		LoginRequest, UnsequencedData, LogoutRequest:
		return true
	}
	return false
}

// Unwrap returns the payload of a sequenced data frame.
// Control frames yield nothing; unrecognised markers additionally report a
// diag.UnknownFrame diagnostic to sink. Unwrap never fails.
func Unwrap(line string, sink diag.Sink) (string, bool) {
	if line == "" {
		diag.Report(sink, diag.Diagnostic{Kind: diag.UnknownFrame, Detail: line})
		return "", false
	}

	frame := FrameType(line[0])
	if frame != SequencedData {
		if !frame.IsControl() {
			diag.Report(sink, diag.Diagnostic{Kind: diag.UnknownFrame, Detail: line})
			return "", false
		}
		log.Debug().Stringer("frame", frame).Msg("Skipping control frame")
		return "", false
	}

	payload := strings.TrimSpace(line[1:])
	if payload == "" {
		return "", false
	}
	return payload, true
}
