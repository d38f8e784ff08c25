// Package tools exposes the Memobird client as MCP tools.
package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/localrivet/gomcp/protocol"
	"github.com/localrivet/gomcp/server"

	"github.com/inkbeak/memobird"
)

// Printer is the subset of the Memobird client the tools drive. It is an
// interface so tests can substitute a fake service.
type Printer interface {
	PrintText(ctx context.Context, text string) (*memobird.Receipt, error)
	PrintImage(ctx context.Context, data []byte) (*memobird.Receipt, error)
	PrintImageFromURL(ctx context.Context, rawURL string) (*memobird.Receipt, error)
	PrintURL(ctx context.Context, rawURL string) (*memobird.Receipt, error)
	Status(ctx context.Context, contentID int64) (memobird.PrintStatus, error)
}

// Register registers every printer tool on the MCP server.
func Register(srv *server.Server, printer Printer) error {
	registrations := []struct {
		tool    protocol.Tool
		handler server.ToolHandlerFunc
	}{
		{printTextTool, printTextHandler(printer)},
		{printImageTool, printImageHandler(printer)},
		{printImageFromURLTool, printImageFromURLHandler(printer)},
		{printURLTool, printURLHandler(printer)},
		{checkPrintStatusTool, checkPrintStatusHandler(printer)},
	}

	for _, r := range registrations {
		if err := srv.RegisterTool(r.tool, r.handler); err != nil {
			return fmt.Errorf("registering tool %s: %w", r.tool.Name, err)
		}
	}
	return nil
}

var printTextTool = protocol.Tool{
	Name:        "print_text",
	Description: "Print text on the Memobird thermal printer.",
	InputSchema: protocol.ToolInputSchema{
		Type: "object",
		Properties: map[string]protocol.PropertyDetail{
			"text": {Type: "string", Description: "The text content to print."},
		},
		Required: []string{"text"},
	},
}

var printImageTool = protocol.Tool{
	Name:        "print_image",
	Description: "Print an image supplied as base64-encoded bytes (PNG, JPEG, GIF, BMP or WebP).",
	InputSchema: protocol.ToolInputSchema{
		Type: "object",
		Properties: map[string]protocol.PropertyDetail{
			"data": {Type: "string", Description: "Base64-encoded image bytes."},
		},
		Required: []string{"data"},
	},
}

var printImageFromURLTool = protocol.Tool{
	Name:        "print_image_from_url",
	Description: "Fetch an image from a URL and print it on the Memobird thermal printer.",
	InputSchema: protocol.ToolInputSchema{
		Type: "object",
		Properties: map[string]protocol.PropertyDetail{
			"url": {Type: "string", Description: "URL of the image to fetch and print."},
		},
		Required: []string{"url"},
	},
}

var printURLTool = protocol.Tool{
	Name:        "print_url",
	Description: "Have the printer service fetch, render and print a web page.",
	InputSchema: protocol.ToolInputSchema{
		Type: "object",
		Properties: map[string]protocol.PropertyDetail{
			"url": {Type: "string", Description: "URL of the web page to print."},
		},
		Required: []string{"url"},
	},
}

var checkPrintStatusTool = protocol.Tool{
	Name:        "check_print_status",
	Description: "Check the delivery status of a previously submitted print job.",
	InputSchema: protocol.ToolInputSchema{
		Type: "object",
		Properties: map[string]protocol.PropertyDetail{
			"content_id": {Type: "integer", Description: "Content ID returned by a print tool."},
		},
		Required: []string{"content_id"},
	},
}

func printTextHandler(printer Printer) server.ToolHandlerFunc {
	return func(ctx context.Context, _ interface{}, arguments any) ([]protocol.Content, bool) {
		text, err := stringArg(arguments, "text")
		if err != nil {
			return errorContent(err), true
		}

		receipt, err := printer.PrintText(ctx, text)
		if err != nil {
			return errorContent(fmt.Errorf("printing text: %w", err)), true
		}
		return receiptContent(receipt)
	}
}

func printImageHandler(printer Printer) server.ToolHandlerFunc {
	return func(ctx context.Context, _ interface{}, arguments any) ([]protocol.Content, bool) {
		encoded, err := stringArg(arguments, "data")
		if err != nil {
			return errorContent(err), true
		}

		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return errorContent(fmt.Errorf("argument 'data' is not valid base64: %w", err)), true
		}

		receipt, err := printer.PrintImage(ctx, data)
		if err != nil {
			return errorContent(fmt.Errorf("printing image: %w", err)), true
		}
		return receiptContent(receipt)
	}
}

func printImageFromURLHandler(printer Printer) server.ToolHandlerFunc {
	return func(ctx context.Context, _ interface{}, arguments any) ([]protocol.Content, bool) {
		rawURL, err := stringArg(arguments, "url")
		if err != nil {
			return errorContent(err), true
		}

		receipt, err := printer.PrintImageFromURL(ctx, rawURL)
		if err != nil {
			return errorContent(fmt.Errorf("printing image from URL: %w", err)), true
		}
		return receiptContent(receipt)
	}
}

func printURLHandler(printer Printer) server.ToolHandlerFunc {
	return func(ctx context.Context, _ interface{}, arguments any) ([]protocol.Content, bool) {
		rawURL, err := stringArg(arguments, "url")
		if err != nil {
			return errorContent(err), true
		}

		receipt, err := printer.PrintURL(ctx, rawURL)
		if err != nil {
			return errorContent(fmt.Errorf("printing URL: %w", err)), true
		}
		return receiptContent(receipt)
	}
}

func checkPrintStatusHandler(printer Printer) server.ToolHandlerFunc {
	return func(ctx context.Context, _ interface{}, arguments any) ([]protocol.Content, bool) {
		contentID, err := intArg(arguments, "content_id")
		if err != nil {
			return errorContent(err), true
		}

		status, err := printer.Status(ctx, contentID)
		if err != nil {
			return errorContent(fmt.Errorf("checking print status: %w", err)), true
		}

		return jsonContent(struct {
			Status string `json:"status"`
		}{Status: string(status)})
	}
}

func argsMap(arguments any) (map[string]interface{}, error) {
	m, ok := arguments.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an arguments object, got %T", arguments)
	}
	return m, nil
}

func stringArg(arguments any, name string) (string, error) {
	m, err := argsMap(arguments)
	if err != nil {
		return "", err
	}
	v, ok := m[name]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", name)
	}
	return s, nil
}

func intArg(arguments any, name string) (int64, error) {
	m, err := argsMap(arguments)
	if err != nil {
		return 0, err
	}
	v, ok := m[name]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", name)
	}
	switch n := v.(type) {
	case float64: // JSON numbers decode to float64
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be an integer", name)
	}
}

func receiptContent(receipt *memobird.Receipt) ([]protocol.Content, bool) {
	return jsonContent(struct {
		ContentID int64 `json:"contentId"`
	}{ContentID: receipt.ContentID})
}

func jsonContent(v any) ([]protocol.Content, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorContent(fmt.Errorf("encoding result: %w", err)), true
	}
	return []protocol.Content{protocol.TextContent{Type: "text", Text: string(data)}}, false
}

func errorContent(err error) []protocol.Content {
	return []protocol.Content{protocol.TextContent{Type: "text", Text: err.Error()}}
}
