package memobird

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_fetchImage(t *testing.T) {
	body := pngBytes(t, 20, 20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer server.Close()

	client := New("test-key", "device-1")
	data, err := client.fetchImage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, body, data)
}

func TestClient_fetchImage_nonImageContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>a page, not a picture</html>"))
	}))
	defer server.Close()

	client := New("test-key", "device-1")
	_, err := client.fetchImage(context.Background(), server.URL)

	var imgErr *ImageError
	require.ErrorAs(t, err, &imgErr)
}

func TestClient_fetchImage_httpError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New("test-key", "device-1")
	_, err := client.fetchImage(context.Background(), server.URL)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestClient_fetchImage_timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := New("test-key", "device-1", WithTimeout(50*time.Millisecond))
	_, err := client.fetchImage(context.Background(), server.URL)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestClient_fetchImage_connectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New("test-key", "device-1")
	_, err := client.fetchImage(context.Background(), server.URL)

	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
}
