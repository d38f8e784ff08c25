package memobird

import (
	"context"
	"errors"
	"net/http"
)

// Receipt identifies a submitted print job. The content ID is assigned by
// the printer service and is the key for later status queries.
type Receipt struct {
	ContentID int64 `json:"printcontentid"`
}

// printRequest is the body of a content submission.
type printRequest struct {
	AK           string `json:"ak"`
	Timestamp    string `json:"timestamp"`
	PrintContent string `json:"printcontent"`
	MemobirdID   string `json:"memobirdID"`
	UserID       string `json:"userID"`
}

// printURLRequest is the body of a web page submission. The service
// fetches and renders the page itself.
type printURLRequest struct {
	AK         string `json:"ak"`
	Timestamp  string `json:"timestamp"`
	PrintURL   string `json:"printUrl"`
	MemobirdID string `json:"memobirdID"`
	UserID     string `json:"userID"`
}

// Submit sends a single piece of content to the bound device and returns
// the service-assigned receipt. The user token is resolved lazily; if the
// service rejects it as stale, the token is invalidated and the
// submission retried exactly once with a fresh one. A second rejection
// surfaces as *AuthError.
func (c *Client) Submit(ctx context.Context, content Content) (*Receipt, error) {
	if page, ok := content.(WebPage); ok {
		return c.submit(ctx, printURLEndpoint, func(token string) any {
			return printURLRequest{
				AK:         c.apiKey,
				Timestamp:  timestamp(),
				PrintURL:   page.URL,
				MemobirdID: c.deviceID,
				UserID:     token,
			}
		})
	}

	payload, err := c.encodeContent(ctx, content)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, ErrEmptyContent
	}

	return c.submit(ctx, printEndpoint, func(token string) any {
		return printRequest{
			AK:           c.apiKey,
			Timestamp:    timestamp(),
			PrintContent: payload,
			MemobirdID:   c.deviceID,
			UserID:       token,
		}
	})
}

// submit posts a submission body built around the current token,
// performing the single bounded re-authentication retry.
func (c *Client) submit(ctx context.Context, endpoint string, makeBody func(token string) any) (*Receipt, error) {
	receipt, err := c.submitOnce(ctx, endpoint, makeBody)
	if err == nil || !isAuthFailure(err) {
		return receipt, err
	}

	c.invalidateToken()

	receipt, err = c.submitOnce(ctx, endpoint, makeBody)
	if err != nil && isAuthFailure(err) {
		return nil, &AuthError{Err: err}
	}
	return receipt, err
}

func (c *Client) submitOnce(ctx context.Context, endpoint string, makeBody func(token string) any) (*Receipt, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, endpoint, nil, makeBody(token))
	if err != nil {
		return nil, err
	}

	var pr printResponse
	if err := parseAPIResponse(resp, &pr); err != nil {
		return nil, err
	}

	if pr.ContentID == 0 {
		return nil, &APIError{
			Code:       pr.ResCode,
			Message:    "content ID missing from print response",
			HTTPStatus: resp.StatusCode,
		}
	}

	return &Receipt{ContentID: pr.ContentID}, nil
}

// isAuthFailure reports whether err indicates the user token was rejected
// and a re-bind is worth one attempt.
func isAuthFailure(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == apiCodeUserUnbound
	}
	return false
}

// PrintText prints text on the bound device. Text longer than the
// configured chunk limit is split into sequential submissions in original
// order; the returned receipt is for the final chunk, which is the last
// to come off the device.
func (c *Client) PrintText(ctx context.Context, text string) (*Receipt, error) {
	var receipt *Receipt
	for _, chunk := range splitTextChunks(text, c.textChunkLimit) {
		r, err := c.Submit(ctx, Text{Body: chunk})
		if err != nil {
			return nil, err
		}
		receipt = r
	}
	return receipt, nil
}

// PrintImage prints an image from raw bytes.
func (c *Client) PrintImage(ctx context.Context, data []byte) (*Receipt, error) {
	return c.Submit(ctx, Image{Data: data})
}

// PrintImageFromURL fetches a remote image and prints it.
func (c *Client) PrintImageFromURL(ctx context.Context, rawURL string) (*Receipt, error) {
	return c.Submit(ctx, ImageURL{URL: rawURL})
}

// PrintURL has the printer service fetch, render and print the given web
// page. No local fetching or encoding takes place.
func (c *Client) PrintURL(ctx context.Context, rawURL string) (*Receipt, error) {
	return c.Submit(ctx, WebPage{URL: rawURL})
}

// PrintPayload prints a pre-built multi-part payload.
func (c *Client) PrintPayload(ctx context.Context, payload *Payload) (*Receipt, error) {
	if payload == nil || payload.Len() == 0 {
		return nil, ErrEmptyContent
	}
	return c.Submit(ctx, payload)
}
