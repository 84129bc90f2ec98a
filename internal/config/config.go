package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultBatchInterval      = 5 * time.Second
	DefaultKeepaliveThreshold = 5 * time.Minute
	DefaultStatsInterval      = 24 * time.Hour
	DefaultHTTPPort           = 8080
	DefaultMinPriority        = "low"
)

// Config is the top-level farmsentry configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Monitor   MonitorConfig   `yaml:"monitor"`
	Keepalive KeepaliveConfig `yaml:"keepalive"`
	Stats     StatsConfig     `yaml:"stats"`
	Notify    NotifyConfig    `yaml:"notify"`
	Server    ServerConfig    `yaml:"server"`
}

// MonitorConfig controls the log source.
type MonitorConfig struct {
	// LogPath is the path of the node's debug log file.
	LogPath string `yaml:"log_path"`

	// FromBeginning reads the file from offset zero instead of seeking to the
	// end. Useful for backfill and tests; on a live deployment it replays the
	// whole history on startup.
	FromBeginning bool `yaml:"from_beginning"`

	// BatchInterval is how often accumulated log lines are handed to the
	// handlers as one batch.
	BatchInterval time.Duration `yaml:"batch_interval"`
}

// KeepaliveConfig controls the liveness watchdog.
type KeepaliveConfig struct {
	Enabled bool `yaml:"enabled"`

	// Threshold is how long a monitored service may stay silent before a
	// high-priority offline notification fires.
	Threshold time.Duration `yaml:"threshold"`
}

// StatsConfig controls the periodic farm summary.
type StatsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// NotifyConfig holds delivery settings for user-facing events.
type NotifyConfig struct {
	// MinPriority is the lowest priority that reaches the sinks:
	// low | normal | high.
	MinPriority string `yaml:"min_priority"`

	// Webhooks is the list of webhook delivery targets.
	Webhooks []WebhookTarget `yaml:"webhooks"`

	// ScriptPath, when set, is an executable invoked once per delivered event
	// with the event fields in its environment.
	ScriptPath string `yaml:"script_path"`
}

// WebhookTarget defines one webhook delivery target.
type WebhookTarget struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookTarget) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	// HTTPPort is the port serving /metrics, /healthz and the /ws event feed.
	HTTPPort int `yaml:"http_port"`
}

// Load reads and parses the config file at path.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.Monitor.LogPath = expandHome(cfg.Monitor.LogPath)
	return cfg, nil
}

// expandHome resolves a leading "~/" against the current user's home
// directory. The path is returned unchanged if the home directory is unknown.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			BatchInterval: DefaultBatchInterval,
		},
		Keepalive: KeepaliveConfig{
			Enabled:   true,
			Threshold: DefaultKeepaliveThreshold,
		},
		Stats: StatsConfig{
			Enabled:  true,
			Interval: DefaultStatsInterval,
		},
		Notify: NotifyConfig{
			MinPriority: DefaultMinPriority,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Monitor.LogPath == "" {
		return fmt.Errorf("monitor.log_path is required")
	}
	if cfg.Monitor.BatchInterval <= 0 {
		return fmt.Errorf("monitor.batch_interval must be positive")
	}
	if cfg.Keepalive.Enabled && cfg.Keepalive.Threshold <= 0 {
		return fmt.Errorf("keepalive.threshold must be positive")
	}
	if cfg.Stats.Enabled && cfg.Stats.Interval <= 0 {
		return fmt.Errorf("stats.interval must be positive")
	}
	switch cfg.Notify.MinPriority {
	case "low", "normal", "high":
	default:
		return fmt.Errorf("notify.min_priority %q unknown: want low|normal|high", cfg.Notify.MinPriority)
	}
	for _, wh := range cfg.Notify.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("notify.webhooks type %q unknown: want slack|teams|http", wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("notify.webhooks entry of type %q is missing url_env", wh.Type)
		}
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	return nil
}
