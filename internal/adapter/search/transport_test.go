package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSONBodyLimit(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		wantLen   int
		truncated bool
	}{
		{"under limit", 10, 10, false},
		{"exactly limit", 16, 16, false},
		{"over limit", 17, 16, true},
		{"far over limit", 4096, 16, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, strings.Repeat("a", tt.size))
			}))
			defer srv.Close()

			resp, err := postJSON(context.Background(), srv.Client(), srv.URL, "k", []byte(`{}`), 16)

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.status)
			assert.Len(t, resp.body, tt.wantLen)
			assert.Equal(t, tt.truncated, resp.truncated)
		})
	}
}
