package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the nextalarm binaries.
type Config struct {
	// KafkaBrokers lists the Kafka bootstrap addresses for the event bus.
	KafkaBrokers []string `yaml:"kafka_brokers"`
	// KafkaTopic is the topic carrying companion-app event envelopes.
	KafkaTopic string `yaml:"kafka_topic"`
	// KafkaGroup is the consumer group the server joins.
	KafkaGroup string `yaml:"kafka_group"`
	// RedisAddress is the Redis endpoint used for update notifications.
	RedisAddress string `yaml:"redis_addr"`
	// RedisPassword authenticates against Redis when set.
	RedisPassword string `yaml:"redis_password"`
	// RedisDB selects the Redis logical database.
	RedisDB int `yaml:"redis_db"`
	// NotifyChannel is the pub/sub channel for update signals.
	NotifyChannel string `yaml:"notify_channel"`
	// StateFile is the path to the JSON snapshot of person state.
	StateFile string `yaml:"state_file"`
	// WeekdayLocale selects the day-name locale, or "auto" for detection.
	WeekdayLocale string `yaml:"weekday_locale"`
	// WeekdayCustomMap is an optional JSON override merged into the
	// built-in weekday tables.
	WeekdayCustomMap string `yaml:"weekday_custom_map"`
	// RefreshTimeoutSeconds is how long after a refresh-start signal alarm
	// data may take before the person is flagged with a refresh problem.
	RefreshTimeoutSeconds int `yaml:"refresh_timeout"`
	// Timezone names the IANA timezone all alarms are interpreted in.
	// Empty means the process-local timezone.
	Timezone string `yaml:"timezone"`
}

const (
	// DefaultConfigFilename is the default filename for service settings.
	DefaultConfigFilename = "nextalarm-settings.yaml"

	// DefaultStateFilename is the default filename for the state snapshot.
	DefaultStateFilename = "nextalarm-state.json"

	// DefaultKafkaTopic is the default event topic.
	DefaultKafkaTopic = "ha-ios-nextalarm-events"

	// DefaultKafkaGroup is the default consumer group.
	DefaultKafkaGroup = "ha-ios-nextalarm"

	// DefaultNotifyChannel is the default Redis pub/sub channel.
	DefaultNotifyChannel = "ha_ios_nextalarm_signals"

	// DefaultWeekdayLocale requests automatic locale detection.
	DefaultWeekdayLocale = "auto"

	// DefaultWeekdayCustomMap is an empty override.
	DefaultWeekdayCustomMap = "{}"

	// DefaultRefreshTimeoutSeconds flags a refresh problem after 15 minutes.
	DefaultRefreshTimeoutSeconds = 900

	// DefaultFilePermissions is the default file permission for config and
	// snapshot files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Load reads configuration from the provided path and validates essential
// fields. A missing file yields the defaults rather than an error so the
// server can start unconfigured on a development machine.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults. Unusable
// option values (non-positive refresh timeout, blank locale) fall back to
// built-in defaults instead of failing.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}

	for _, broker := range cfg.KafkaBrokers {
		if err := validateHostPort(broker); err != nil {
			return fmt.Errorf("invalid kafka broker %q: %w", broker, err)
		}
	}

	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = DefaultKafkaTopic
	}

	if cfg.KafkaGroup == "" {
		cfg.KafkaGroup = DefaultKafkaGroup
	}

	if cfg.RedisAddress == "" {
		cfg.RedisAddress = "localhost:6379"
	}

	if err := validateHostPort(cfg.RedisAddress); err != nil {
		return fmt.Errorf("invalid redis address %q: %w", cfg.RedisAddress, err)
	}

	if cfg.NotifyChannel == "" {
		cfg.NotifyChannel = DefaultNotifyChannel
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if strings.TrimSpace(cfg.WeekdayLocale) == "" {
		cfg.WeekdayLocale = DefaultWeekdayLocale
	}

	if strings.TrimSpace(cfg.WeekdayCustomMap) == "" {
		cfg.WeekdayCustomMap = DefaultWeekdayCustomMap
	}

	if cfg.RefreshTimeoutSeconds <= 0 {
		cfg.RefreshTimeoutSeconds = DefaultRefreshTimeoutSeconds
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}

	return nil
}

// validateHostPort checks the host:port shape without resolving the host,
// so settings naming brokers unreachable from this machine still load.
func validateHostPort(address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}

	if host == "" || port == "" {
		return errors.New("host and port must both be set")
	}

	return nil
}

// RefreshTimeout returns the refresh timeout as a duration.
func (c *Config) RefreshTimeout() time.Duration {
	return time.Duration(c.RefreshTimeoutSeconds) * time.Second
}

// Location resolves the configured timezone, defaulting to the process-local one.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return loc, nil
}
