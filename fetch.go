package memobird

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// Remote images larger than this are refused rather than buffered.
const maxRemoteImageBytes = 32 << 20

// fetch performs a GET against an arbitrary URL using the client's HTTP
// client. The response body is a stream owned by the caller, who must
// close it on every path.
func (c *Client) fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(rawURL, err)
	}

	return resp, nil
}

// fetchImage streams the image at rawURL into memory, gating on the
// response content type and capping the total size. The connection is
// released on every exit path, including mid-stream failures.
func (c *Client) fetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") &&
		!strings.HasPrefix(contentType, "application/octet-stream") {
		return nil, &ImageError{Reason: fmt.Sprintf("remote resource has content type %q, not an image", contentType)}
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, maxRemoteImageBytes+1))
	if err != nil {
		return nil, classifyTransportError(rawURL, err)
	}
	if n > maxRemoteImageBytes {
		return nil, &ImageError{Reason: fmt.Sprintf("remote image exceeds %d bytes", maxRemoteImageBytes)}
	}

	return buf.Bytes(), nil
}

// classifyTransportError maps a transport failure to the package error
// kinds, distinguishing timeouts from connectivity problems.
func classifyTransportError(rawURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{URL: rawURL, Err: err}
	}
	return &ConnectError{URL: rawURL, Err: err}
}
