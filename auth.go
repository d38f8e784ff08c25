package memobird

import (
	"context"
	"net/http"
	"net/url"
	"sync"
)

// session holds the lazily resolved user token for the device binding.
// The mutex is held for the duration of a binding request so that
// concurrent callers waiting on an unresolved token collapse into a
// single request and all observe its result.
type session struct {
	mu    sync.Mutex
	token string
}

// token returns the cached user token, performing the device binding
// request on first use.
func (c *Client) token(ctx context.Context) (string, error) {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	if c.session.token != "" {
		return c.session.token, nil
	}

	token, err := c.bindDevice(ctx)
	if err != nil {
		return "", err
	}

	c.session.token = token
	return token, nil
}

// invalidateToken drops the cached token so the next call re-binds.
func (c *Client) invalidateToken() {
	c.session.mu.Lock()
	c.session.token = ""
	c.session.mu.Unlock()
}

// bindDevice associates the API key with the configured device and
// returns the user token the service issues for the binding.
func (c *Client) bindDevice(ctx context.Context) (string, error) {
	query := url.Values{
		"ak":              {c.apiKey},
		"timestamp":       {timestamp()},
		"memobirdID":      {c.deviceID},
		"useridentifying": {c.identity},
	}

	resp, err := c.doRequest(ctx, http.MethodGet, bindEndpoint, query, nil)
	if err != nil {
		return "", &AuthError{Err: err}
	}

	var bind bindResponse
	if err := parseAPIResponse(resp, &bind); err != nil {
		return "", &AuthError{Err: err}
	}

	if bind.UserID == "" {
		return "", &AuthError{Err: &APIError{
			Code:       bind.ResCode,
			Message:    "user ID missing from bind response",
			HTTPStatus: resp.StatusCode,
		}}
	}

	return bind.UserID, nil
}
