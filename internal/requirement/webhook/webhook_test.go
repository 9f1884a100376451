package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPostJobDeliversPayload(t *testing.T) {
	var got map[string]string
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	err := client.PostJob(context.Background(), "Backend Engineer", "We are hiring.", "hr@example.com")
	require.NoError(t, err)

	// The downstream board's field names contain spaces.
	assert.Equal(t, "Backend Engineer", got["job title"])
	assert.Equal(t, "We are hiring.", got["job description"])
	assert.Equal(t, "hr@example.com", got["email"])
	assert.Equal(t, 1, calls)
}

func TestPostJobNon2xxIsFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	err := client.PostJob(context.Background(), "Backend Engineer", "", "hr@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	// One attempt only.
	assert.Equal(t, 1, calls)
}

func TestPostJobUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, zaptest.NewLogger(t))
	err := client.PostJob(context.Background(), "Backend Engineer", "", "hr@example.com")
	assert.Error(t, err)
}

func TestPostJobMissingEndpoint(t *testing.T) {
	client := NewClient("", zaptest.NewLogger(t))
	err := client.PostJob(context.Background(), "Backend Engineer", "", "hr@example.com")
	assert.Error(t, err)
}
