// Command memobird-mcp exposes a Memobird thermal printer as MCP tools
// over stdio or SSE.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/localrivet/gomcp/logx"
	"github.com/localrivet/gomcp/server"

	"github.com/inkbeak/memobird"
	"github.com/inkbeak/memobird/internal/config"
	"github.com/inkbeak/memobird/internal/tools"
)

const serverName = "memobird-printer"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "memobird-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		transport  = flag.String("transport", "stdio", "transport protocol: stdio or sse")
		port       = flag.Int("port", 0, "port for the SSE server (default from config)")
		configPath = flag.String("config", "", "path to the config file")
		apiKey     = flag.String("ak", "", "Memobird API key (overrides config and env)")
		deviceID   = flag.String("device-id", "", "Memobird device ID (overrides config and env)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}
	if *deviceID != "" {
		cfg.DeviceID = *deviceID
	}
	if *port > 0 {
		cfg.SSEPort = *port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := memobird.New(cfg.APIKey, cfg.DeviceID,
		memobird.WithBaseURL(cfg.APIBaseURL),
		memobird.WithTimeout(cfg.RequestTimeout),
		memobird.WithMaxImageWidth(cfg.MaxImageWidth),
		memobird.WithTextChunkLimit(cfg.TextChunkLimit),
	)

	// Logs go to stderr; stdout carries the protocol framing.
	logger := logx.NewDefaultLogger()

	srv := server.NewServer(serverName,
		server.WithLogger(logger),
		server.WithInstructions("Tools for printing text, images and web pages on a Memobird thermal printer, and for polling print delivery status."),
	)

	if err := tools.Register(srv, client); err != nil {
		return err
	}

	switch *transport {
	case "stdio":
		return server.ServeStdio(srv)
	case "sse":
		return server.ServeSSE(srv, fmt.Sprintf(":%d", cfg.SSEPort), "/")
	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", *transport)
	}
}
