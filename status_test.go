package memobird

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Status(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]interface{}
		want     PrintStatus
	}{
		{
			name:     "pending",
			response: map[string]interface{}{"showapi_res_code": 1, "printflag": 0},
			want:     StatusPending,
		},
		{
			name:     "printed",
			response: map[string]interface{}{"showapi_res_code": 1, "printflag": 1},
			want:     StatusPrinted,
		},
		{
			name:     "failed",
			response: map[string]interface{}{"showapi_res_code": 1, "printflag": 2},
			want:     StatusFailed,
		},
		{
			name:     "unrecognized code maps to unknown",
			response: map[string]interface{}{"showapi_res_code": 1, "printflag": 3},
			want:     StatusUnknown,
		},
		{
			name:     "missing flag maps to unknown",
			response: map[string]interface{}{"showapi_res_code": 1},
			want:     StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotContentID string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, statusEndpoint, r.URL.Path)
				gotContentID = r.URL.Query().Get("printcontentid")
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client := New("test-key", "device-1", WithBaseURL(server.URL))

			status, err := client.Status(context.Background(), 42)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, "42", gotContentID)
		})
	}
}

func TestClient_Status_serviceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"showapi_res_code":  -1,
			"showapi_res_error": "no such content",
		})
	}))
	defer server.Close()

	client := New("test-key", "device-1", WithBaseURL(server.URL))

	_, err := client.Status(context.Background(), 999)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "no such content", apiErr.Message)
}
