package search

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Classify maps one attempt's transport result to an Outcome. A non-nil err
// means no response was obtained; status is ignored in that case. The
// payload of a successful response is attached by the caller.
func Classify(status int, err error) Outcome {
	if err != nil {
		return TransportFailure(transportReason(err))
	}

	switch status {
	case http.StatusOK:
		return Outcome{Kind: KindSuccess, Status: status}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Outcome{Kind: KindAuthOrRateLimited, Status: status}
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return Outcome{Kind: KindRetryable, Status: status}
	default:
		return Outcome{Kind: KindFatalHTTP, Status: status}
	}
}

// transportPatterns are substrings of error messages that identify a
// transport failure when the error carries no typed cause. Checked
// case-insensitively, in order.
var transportPatterns = []struct {
	substr string
	reason string
}{
	{"no such host", "dns"},
	{"connection refused", "connection refused"},
	{"connection reset", "connection reset"},
	{"deadline exceeded", "timeout"},
	{"timeout", "timeout"},
	{"eof", "connection reset"},
}

// transportReason condenses a transport error into a short log-friendly reason.
func transportReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return "connection reset"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	lower := strings.ToLower(err.Error())
	for _, p := range transportPatterns {
		if strings.Contains(lower, p.substr) {
			return p.reason
		}
	}
	return "network"
}
