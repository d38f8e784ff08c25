package memobird

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PrintStatus is the delivery state of a submitted print job.
type PrintStatus string

const (
	StatusPending PrintStatus = "pending"
	StatusPrinted PrintStatus = "printed"
	StatusFailed  PrintStatus = "failed"
	StatusUnknown PrintStatus = "unknown"
)

// Status queries the delivery state of a previously submitted job. Status
// codes the service may add in the future map to StatusUnknown rather
// than failing.
func (c *Client) Status(ctx context.Context, contentID int64) (PrintStatus, error) {
	query := url.Values{
		"ak":             {c.apiKey},
		"timestamp":      {timestamp()},
		"printcontentid": {strconv.FormatInt(contentID, 10)},
	}

	resp, err := c.doRequest(ctx, http.MethodGet, statusEndpoint, query, nil)
	if err != nil {
		return StatusUnknown, err
	}

	var sr statusResponse
	if err := parseAPIResponse(resp, &sr); err != nil {
		return StatusUnknown, err
	}

	if sr.PrintFlag == nil {
		return StatusUnknown, nil
	}

	switch *sr.PrintFlag {
	case 0:
		return StatusPending, nil
	case 1:
		return StatusPrinted, nil
	case 2:
		return StatusFailed, nil
	default:
		return StatusUnknown, nil
	}
}
