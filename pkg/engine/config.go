package engine

import (
	"fmt"
	"time"

	"github.com/carverauto/pulse/pkg/alerts"
	"github.com/carverauto/pulse/pkg/alerts/channels"
	"github.com/carverauto/pulse/pkg/config"
	"github.com/carverauto/pulse/pkg/kv"
	"github.com/carverauto/pulse/pkg/metrics/sources"
	"github.com/carverauto/pulse/pkg/models"
)

const (
	defaultListenAddr          = ":8090"
	defaultGRPCAddr            = ":50090"
	defaultDBPath              = "pulse.db"
	defaultMaintenanceInterval = time.Hour
	defaultNotifyBurst         = 10
)

// Config is the complete engine configuration file.
type Config struct {
	ListenAddr string `json:"listen_addr" toml:"listen_addr"`
	GRPCAddr   string `json:"grpc_addr" toml:"grpc_addr"`
	DBPath     string `json:"db_path" toml:"db_path"`

	// Redis selects the shared store. Without it the engine keeps its state
	// in process and cannot share it with other instances.
	Redis *kv.RedisConfig `json:"redis,omitempty" toml:"redis"`

	Monitoring config.MonitoringSettings `json:"monitoring" toml:"monitoring"`
	Sources    SourcesConfig             `json:"sources" toml:"sources"`

	Channels        channels.Config       `json:"channels" toml:"channels"`
	DefaultChannels []models.AlertChannel `json:"default_channels,omitempty" toml:"default_channels"`
	NotifyRate      float64               `json:"notify_rate" toml:"notify_rate"` // per channel, per second
	NotifyBurst     int                   `json:"notify_burst" toml:"notify_burst"`

	Cleanup             alerts.CleanupConfig `json:"cleanup" toml:"cleanup"`
	MaintenanceInterval config.Duration      `json:"maintenance_interval" toml:"maintenance_interval"`

	// RulesFile is imported on startup when set.
	RulesFile string `json:"rules_file,omitempty" toml:"rules_file"`
}

// SourcesConfig selects the metric sources registered with the collector.
type SourcesConfig struct {
	DisableRuntime  bool                 `json:"disable_runtime" toml:"disable_runtime"`
	DisableDatabase bool                 `json:"disable_database" toml:"disable_database"`
	SNMP            []sources.SNMPConfig `json:"snmp,omitempty" toml:"snmp"`
}

// Validate implements config.Validator and fills defaults.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.GRPCAddr == "" {
		c.GRPCAddr = defaultGRPCAddr
	}

	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}

	if c.NotifyRate < 0 || c.NotifyBurst < 0 {
		return fmt.Errorf("%w: notify_rate and notify_burst must not be negative", errInvalidConfig)
	}

	if c.NotifyBurst == 0 {
		c.NotifyBurst = defaultNotifyBurst
	}

	for _, ch := range c.DefaultChannels {
		if !models.KnownChannel(ch) {
			return fmt.Errorf("%w: unknown default channel %q", errInvalidConfig, ch)
		}
	}

	if err := c.Monitoring.Validate(); err != nil {
		return fmt.Errorf("%w: monitoring: %w", errInvalidConfig, err)
	}

	for i := range c.Sources.SNMP {
		if err := c.Sources.SNMP[i].Validate(); err != nil {
			return fmt.Errorf("%w: snmp source %d: %w", errInvalidConfig, i, err)
		}
	}

	return nil
}

func (c *Config) maintenanceInterval() time.Duration {
	return c.MaintenanceInterval.Or(defaultMaintenanceInterval)
}

// Load reads path (JSON or TOML), applies channel secrets from the
// environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := config.LoadFile(path, &cfg); err != nil {
		return nil, err
	}

	cfg.Channels.ApplyEnv()

	if cfg.Redis != nil && cfg.Redis.Password == "" {
		cfg.Redis.Password = config.EnvOr(EnvRedisPassword, "")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// EnvRedisPassword supplies the redis password when the file leaves it out.
const EnvRedisPassword = "REDIS_PASSWORD"
