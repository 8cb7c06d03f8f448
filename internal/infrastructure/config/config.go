package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env           string `env:"ENV,           default=development"`
	LogLevel      string `env:"LOG_LEVEL,     default=info"`
	LogFile       string `env:"LOG_FILE,      default=fleetdesk.log"`
	SuggestedRole string `env:"SUGGESTED_ROLE"`
	DownloadDir   string `env:"DOWNLOAD_DIR,  default=."`

	Platform      PlatformConfig
	Notifications NotificationConfig
	Bridge        BridgeConfig
	Relay         RelayConfig
}

type PlatformConfig struct {
	URL           string        `env:"PLATFORM_URL,            default=http://localhost:8080"`
	Timeout       time.Duration `env:"PLATFORM_TIMEOUT,        default=10s"`
	ProbeInterval time.Duration `env:"PROBE_INTERVAL,          default=5s"`
}

type NotificationConfig struct {
	TTL time.Duration `env:"NOTIFICATION_TTL, default=4s"`
}

// BridgeConfig controls the loopback HTTP bridge. An empty Addr disables it.
type BridgeConfig struct {
	Addr string `env:"BRIDGE_ADDR, default=127.0.0.1:7410"`
}

// RelayConfig controls the optional Redis relay. An empty Addr disables it.
type RelayConfig struct {
	Addr    string `env:"REDIS_ADDR"`
	DB      int    `env:"REDIS_DB,      default=0"`
	Channel string `env:"REDIS_CHANNEL, default=fleetdesk:notifications"`
}

// Load reads an optional .env file and then the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return Process(ctx, envconfig.OsLookuper())
}

// Process builds a Config from l. Tests pass envconfig.MapLookuper.
func Process(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if cfg.Notifications.TTL <= 0 {
		return nil, fmt.Errorf("config: NOTIFICATION_TTL must be positive, got %s", cfg.Notifications.TTL)
	}
	if cfg.Platform.ProbeInterval <= 0 {
		return nil, fmt.Errorf("config: PROBE_INTERVAL must be positive, got %s", cfg.Platform.ProbeInterval)
	}
	return &cfg, nil
}
