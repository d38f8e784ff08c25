package memobird

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "http://open.memobird.cn/home"
	defaultTimeout = 15 * time.Second

	bindEndpoint     = "/setuserbind"
	printEndpoint    = "/printpaper"
	printURLEndpoint = "/printpaperFromUrl"
	statusEndpoint   = "/getprintstatus"

	// The service expects local time in this layout on every request.
	timestampLayout = "2006-01-02 15:04:05"

	apiCodeSuccess = 1
	// Code the service uses for a stale or unknown user binding. Print
	// requests failing with it are retried once with a fresh token.
	apiCodeUserUnbound = 2

	defaultMaxImageWidth  = 384
	defaultTextChunkLimit = 2000
)

// Client is a client for the Memobird cloud print API, bound to a single
// device. It is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	deviceID       string
	identity       string
	maxImageWidth  int
	textChunkLimit int
	session        session
}

// Option is a function that configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the request timeout. It has no effect when a custom
// HTTP client is supplied.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMaxImageWidth sets the widest image, in pixels, the device can
// print. Wider images are scaled down; narrower ones are never scaled up.
func WithMaxImageWidth(width int) Option {
	return func(c *Client) {
		c.maxImageWidth = width
	}
}

// WithTextChunkLimit sets the largest number of runes submitted in a
// single text print request. Longer text is split into sequential
// submissions.
func WithTextChunkLimit(limit int) Option {
	return func(c *Client) {
		c.textChunkLimit = limit
	}
}

// WithIdentity sets the user-identifying string sent with the device
// binding request. A random identity is generated when not set.
func WithIdentity(identity string) Option {
	return func(c *Client) {
		c.identity = identity
	}
}

// New creates a new Memobird client for the given API key and device ID.
func New(apiKey, deviceID string, opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: defaultTimeout},
		baseURL:        defaultBaseURL,
		apiKey:         apiKey,
		deviceID:       deviceID,
		maxImageWidth:  defaultMaxImageWidth,
		textChunkLimit: defaultTextChunkLimit,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.identity == "" {
		c.identity = uuid.NewString()
	}

	return c
}

// timestamp returns the current time in the layout the API requires.
func timestamp() string {
	return time.Now().Format(timestampLayout)
}

// doRequest performs an HTTP request against the printer service.
// Transport failures are classified into the package error kinds; the
// response body is left for the caller to consume and close.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Response, error) {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(fullURL, err)
	}

	return resp, nil
}

// envelope is the common part of every Memobird response. The service
// reports success with showapi_res_code == 1; any other code is a
// business failure. Additive fields are ignored.
type envelope struct {
	ResCode  int    `json:"showapi_res_code"`
	ResError string `json:"showapi_res_error"`
}

// apiEnvelope is implemented by response types embedding envelope.
type apiEnvelope interface {
	result() (code int, message string)
}

func (e *envelope) result() (int, string) { return e.ResCode, e.ResError }

type bindResponse struct {
	envelope
	UserID string `json:"showapi_userid"`
}

type printResponse struct {
	envelope
	ContentID int64 `json:"printcontentid"`
}

type statusResponse struct {
	envelope
	PrintFlag *int `json:"printflag"`
}

// parseAPIResponse reads and parses a printer service response, checking
// both the HTTP status and the Memobird envelope.
func parseAPIResponse(resp *http.Response, v apiEnvelope) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if code, message := v.result(); code != apiCodeSuccess {
		if message == "" {
			message = "unknown API error"
		}
		return &APIError{Code: code, Message: message, HTTPStatus: resp.StatusCode}
	}

	return nil
}
