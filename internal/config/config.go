package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/message/network"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/transport"
	"github.com/spf13/viper"
)

// Config holds every setting the LAN client reads at startup.
type Config struct {
	// Base URL of the host's WebSocket server, without the path.
	HostUrl string `mapstructure:"host_url"`
	// Appended to HostUrl to build the endpoint.
	Path string `mapstructure:"path"`
	// Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`
	// How often the consumer loop calls Client.Tick.
	TickRate time.Duration `mapstructure:"tick_rate"`
	// How long the "failed to connect" overlay stays up.
	OverlayCloseDelay time.Duration `mapstructure:"overlay_close_delay"`

	MagicNumber     uint32 `mapstructure:"magic_number"`
	ProtocolVersion uint8  `mapstructure:"protocol_version"`

	Websocket struct {
		HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
		WriteTimeout     time.Duration `mapstructure:"write_timeout"`
		MaxMessageSize   int64         `mapstructure:"max_message_size"`
		SendQueueLength  int           `mapstructure:"send_queue_length"`
	} `mapstructure:"websocket"`

	Metrics struct {
		Enabled       bool   `mapstructure:"enabled"`
		ListenAddress string `mapstructure:"listen_address"`
	} `mapstructure:"metrics"`
}

const envVarPrefix = "MPLAN"

func setDefaults(v *viper.Viper) {
	v.SetDefault("host_url", "ws://localhost:8080")
	v.SetDefault("path", "/oni")
	v.SetDefault("log_level", "info")
	v.SetDefault("tick_rate", 50*time.Millisecond)
	v.SetDefault("overlay_close_delay", 2*time.Second)
	v.SetDefault("magic_number", network.DefaultMagicNumber)
	v.SetDefault("protocol_version", network.DefaultVersion)
	v.SetDefault("websocket.handshake_timeout", 10*time.Second)
	v.SetDefault("websocket.write_timeout", 5*time.Second)
	v.SetDefault("websocket.max_message_size", 1<<20)
	v.SetDefault("websocket.send_queue_length", 256)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen_address", "127.0.0.1:9464")
}

// LoadConfig reads config.yaml from configPath (if present), then applies a
// .env file from the same directory and MPLAN_* environment variables on top.
// Nested keys are set through the environment with underscores, e.g.
// websocket.handshake_timeout from MPLAN_WEBSOCKET_HANDSHAKE_TIMEOUT.
func LoadConfig(configPath string) (*Config, error) {
	dotenvPath := filepath.Join(configPath, ".env")
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading %s: %w", dotenvPath, err)
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for _, k := range v.AllKeys() {
		envVar := envVarPrefix + "_" + strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVar); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", k, envVar, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config object: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.HostUrl == "" {
		return errors.New("host_url must not be empty")
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %s", c.TickRate)
	}
	return nil
}

// Endpoint joins the host URL and path.
func (c *Config) Endpoint() transport.Endpoint {
	host := strings.TrimRight(c.HostUrl, "/")
	if c.Path == "" {
		return transport.Endpoint(host)
	}
	return transport.Endpoint(host + "/" + strings.TrimLeft(c.Path, "/"))
}
