package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the monitor daemon.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Devices DevicesConfig `mapstructure:"devices"`
	Poll    PollConfig    `mapstructure:"poll"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// File records the raw diagnostic event stream next to the console
	// output. Empty disables recording.
	File string `mapstructure:"file"`
}

type DevicesConfig struct {
	// Addresses are polled unconditionally, independent of discovery.
	Addresses []string `mapstructure:"addresses"`

	// Discovery adds appliances announced on the local network.
	Discovery  bool `mapstructure:"discovery"`
	DebounceMS int  `mapstructure:"debounce_ms"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         int    `mapstructure:"qos"`
}

// LoadConfig reads configuration from the given file and from HWENERGY_*
// environment variables. An empty path uses defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HWENERGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	v.SetDefault("devices.addresses", []string{})
	v.SetDefault("devices.discovery", true)
	v.SetDefault("devices.debounce_ms", 750)

	v.SetDefault("poll.interval", "5s")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.host", "127.0.0.1")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "hwenergy-monitor")
	v.SetDefault("mqtt.topic_prefix", "hwenergy")
	v.SetDefault("mqtt.qos", 1)
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not text or json", c.Logging.Format)
	}

	if c.Poll.Interval < 0 {
		return fmt.Errorf("poll.interval %v is negative", c.Poll.Interval)
	}
	if c.Devices.DebounceMS < 0 {
		return fmt.Errorf("devices.debounce_ms %d is negative", c.Devices.DebounceMS)
	}
	if !c.Devices.Discovery && len(c.Devices.Addresses) == 0 {
		return fmt.Errorf("nothing to poll: set devices.addresses or enable devices.discovery")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Host == "" {
			return fmt.Errorf("mqtt.host is required when mqtt.enabled is true")
		}
		if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
			return fmt.Errorf("mqtt.port %d is out of range", c.MQTT.Port)
		}
		if c.MQTT.ClientID == "" {
			return fmt.Errorf("mqtt.client_id is required when mqtt.enabled is true")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos %d is not 0, 1 or 2", c.MQTT.QoS)
		}
		if strings.TrimSuffix(c.MQTT.TopicPrefix, "/") == "" {
			return fmt.Errorf("mqtt.topic_prefix is required when mqtt.enabled is true")
		}
	}
	return nil
}
