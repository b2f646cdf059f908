package search

import (
	"fmt"

	"searchtool/internal/domain"
)

// authMessage is returned when the provider rejects the credentials (401/403).
func authMessage(v domain.Variant, status int) string {
	if v == domain.VariantNews {
		return fmt.Sprintf("News unavailable: API key invalid or rate-limited (status %d).", status)
	}
	return fmt.Sprintf("Search unavailable: API key invalid or rate-limited (status %d).", status)
}

// failedMessage is returned for unclassified statuses and for retryable
// statuses that outlived every attempt.
func failedMessage(v domain.Variant, status int) string {
	if v == domain.VariantNews {
		return fmt.Sprintf("News fetch failed with status code: %d.", status)
	}
	return fmt.Sprintf("Search failed with status code: %d.", status)
}
