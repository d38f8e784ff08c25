package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the bridge needs to talk to the printer
// service and expose its tools.
type Config struct {
	APIKey         string
	DeviceID       string
	APIBaseURL     string
	RequestTimeout time.Duration
	MaxImageWidth  int
	TextChunkLimit int
	SSEPort        int
}

const (
	defaultConfigPath     = "~/.config/memobird-mcp/config.toml"
	defaultAPIBaseURL     = "http://open.memobird.cn/home"
	defaultTimeoutSeconds = 15
	defaultMaxImageWidth  = 384
	defaultTextChunkLimit = 2000
	defaultSSEPort        = 8000
)

// Environment variable names, matching what Memobird integrations
// conventionally use.
const (
	EnvAPIKey     = "MEMOBIRD_AK"
	EnvDeviceID   = "MEMOBIRD_DEVICE_ID"
	EnvAPIBaseURL = "MEMOBIRD_API_BASE_URL"
)

// Load locates and parses the config file, falling back to defaults when
// it is missing, then applies environment overrides. Credentials are not
// validated here; call Validate once overrides from flags are in.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBaseURL:     defaultAPIBaseURL,
		RequestTimeout: defaultTimeoutSeconds * time.Second,
		MaxImageWidth:  defaultMaxImageWidth,
		TextChunkLimit: defaultTextChunkLimit,
		SSEPort:        defaultSSEPort,
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		AK                    string `toml:"ak"`
		DeviceID              string `toml:"device_id"`
		APIBaseURL            string `toml:"api_base_url"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
		MaxImageWidth         int    `toml:"max_image_width"`
		TextChunkLimit        int    `toml:"text_chunk_limit"`
		SSEPort               int    `toml:"sse_port"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(raw.AK)
	cfg.DeviceID = strings.TrimSpace(raw.DeviceID)
	if s := strings.TrimSpace(raw.APIBaseURL); s != "" {
		cfg.APIBaseURL = s
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.MaxImageWidth > 0 {
		cfg.MaxImageWidth = raw.MaxImageWidth
	}
	if raw.TextChunkLimit > 0 {
		cfg.TextChunkLimit = raw.TextChunkLimit
	}
	if raw.SSEPort > 0 {
		cfg.SSEPort = raw.SSEPort
	}

	cfg.applyEnv()
	return cfg, nil
}

// Validate reports whether the credentials required to reach the printer
// service are present.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "API key")
	}
	if strings.TrimSpace(c.DeviceID) == "" {
		missing = append(missing, "device ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s (set %s/%s or the config file)", strings.Join(missing, " and "), EnvAPIKey, EnvDeviceID)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvDeviceID); v != "" {
		c.DeviceID = v
	}
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.APIBaseURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
