package search

import "fmt"

// Kind tags an attempt outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindRetryable
	KindAuthOrRateLimited
	KindFatalHTTP
	KindTransportFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRetryable:
		return "retryable"
	case KindAuthOrRateLimited:
		return "auth_or_rate_limited"
	case KindFatalHTTP:
		return "fatal_http"
	case KindTransportFailure:
		return "transport_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of a single provider attempt. Status is zero for
// transport failures; Payload is set only on success. Truncated marks a
// success whose payload was cut off at the read limit.
type Outcome struct {
	Kind      Kind
	Status    int
	Payload   []byte
	Reason    string
	Truncated bool
}

// Success wraps a raw response payload.
func Success(payload []byte) Outcome {
	return Outcome{Kind: KindSuccess, Status: 200, Payload: payload}
}

// TransportFailure records an attempt that produced no HTTP response.
func TransportFailure(reason string) Outcome {
	return Outcome{Kind: KindTransportFailure, Reason: reason}
}

// Terminal reports whether the retry loop must stop at this outcome.
func (o Outcome) Terminal() bool {
	switch o.Kind {
	case KindSuccess, KindAuthOrRateLimited, KindFatalHTTP:
		return true
	default:
		return false
	}
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindTransportFailure:
		return fmt.Sprintf("%s (%s)", o.Kind, o.Reason)
	default:
		return fmt.Sprintf("%s (status %d)", o.Kind, o.Status)
	}
}
