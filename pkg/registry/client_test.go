package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lookup(t *testing.T) {
	t.Run("returns entry for known package", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/f5_tts/json", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name": "f5_tts", "versions": ["0.9.0", "1.0.0"]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, 3)
		entry, err := client.Lookup(context.Background(), "f5_tts")

		require.NoError(t, err)
		assert.Equal(t, "f5_tts", entry.Name)
		assert.Equal(t, []string{"0.9.0", "1.0.0"}, entry.Versions)
	})

	t.Run("unknown package maps to not found without retries", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, 3)
		_, err := client.Lookup(context.Background(), "no_such_pkg")

		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
		assert.Equal(t, int32(1), calls.Load(), "404 is permanent, no retry expected")
	})

	t.Run("server errors retry until the attempt budget runs out", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, 3)
		_, err := client.Lookup(context.Background(), "f5_tts")

		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDependencyFetch))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("recovers when a retry succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"name": "f5_tts", "versions": ["1.0.0"]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, 3)
		entry, err := client.Lookup(context.Background(), "f5_tts")

		require.NoError(t, err)
		assert.Equal(t, "f5_tts", entry.Name)
	})

	t.Run("malformed index entry is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		client := NewClient(server.URL, 3)
		_, err := client.Lookup(context.Background(), "f5_tts")

		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestNewClient(t *testing.T) {
	t.Run("clamps attempts to at least one", func(t *testing.T) {
		client := NewClient("http://example.test", 0)
		assert.Equal(t, 1, client.attempts)
	})
}
