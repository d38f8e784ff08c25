package memobird

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindHandler(bindCalls *atomic.Int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != bindEndpoint {
			http.NotFound(w, r)
			return
		}
		bindCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"showapi_res_code": 1,
			"showapi_userid":   "user-123",
		})
	}
}

func TestClient_token(t *testing.T) {
	var bindCalls atomic.Int64
	server := httptest.NewServer(bindHandler(&bindCalls))
	defer server.Close()

	client := New("test-key", "device-1", WithBaseURL(server.URL))

	token, err := client.token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-123", token)

	// Second call must come from the cache.
	token, err = client.token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-123", token)
	assert.Equal(t, int64(1), bindCalls.Load())
}

func TestClient_token_sendsBindingParams(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"ak":              q.Get("ak"),
			"memobirdID":      q.Get("memobirdID"),
			"useridentifying": q.Get("useridentifying"),
		}
		assert.NotEmpty(t, q.Get("timestamp"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"showapi_res_code": 1,
			"showapi_userid":   "user-123",
		})
	}))
	defer server.Close()

	client := New("test-key", "device-1", WithBaseURL(server.URL), WithIdentity("desk-bird"))
	_, err := client.token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-key", got["ak"])
	assert.Equal(t, "device-1", got["memobirdID"])
	assert.Equal(t, "desk-bird", got["useridentifying"])
}

func TestClient_token_concurrentResolutionBindsOnce(t *testing.T) {
	var bindCalls atomic.Int64
	server := httptest.NewServer(bindHandler(&bindCalls))
	defer server.Close()

	client := New("test-key", "device-1", WithBaseURL(server.URL))

	const callers = 16
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := client.token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "user-123", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), bindCalls.Load())
}

func TestClient_invalidateToken(t *testing.T) {
	var bindCalls atomic.Int64
	server := httptest.NewServer(bindHandler(&bindCalls))
	defer server.Close()

	client := New("test-key", "device-1", WithBaseURL(server.URL))

	_, err := client.token(context.Background())
	require.NoError(t, err)

	client.invalidateToken()

	_, err = client.token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), bindCalls.Load())
}

func TestClient_bindDevice_errors(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantTemporary bool
	}{
		{
			name: "service rejects binding",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"showapi_res_code":  -1,
					"showapi_res_error": "device not registered",
				})
			},
			wantTemporary: false,
		},
		{
			name: "user ID missing from success response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"showapi_res_code": 1,
				})
			},
			wantTemporary: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := New("test-key", "device-1", WithBaseURL(server.URL))
			_, err := client.token(context.Background())

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantTemporary, authErr.Temporary())
		})
	}
}

func TestClient_bindDevice_networkFailureIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Refuse connections from now on.

	client := New("test-key", "device-1", WithBaseURL(server.URL))
	_, err := client.token(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, authErr.Temporary())
}
