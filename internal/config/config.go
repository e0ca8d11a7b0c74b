package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds all server configuration, loaded from a YAML file. Missing
// fields fall back to defaults so the server runs with no file at all.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

type ServerConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// HTTP rate limit for the REST surface (requests/sec and burst).
	RequestRate  float64 `yaml:"request_rate"`
	RequestBurst int     `yaml:"request_burst"`
}

type RealtimeConfig struct {
	SendBufferSize      int     `yaml:"send_buffer_size"`
	MaxMessageBytes     int64   `yaml:"max_message_bytes"`
	WriteWaitSeconds    int     `yaml:"write_wait_seconds"`
	PongWaitSeconds     int     `yaml:"pong_wait_seconds"`
	PingIntervalSeconds int     `yaml:"ping_interval_seconds"`
	EventRate           float64 `yaml:"event_rate"`
	EventBurst          int     `yaml:"event_burst"`
}

func (c RealtimeConfig) WriteWait() time.Duration {
	return time.Duration(c.WriteWaitSeconds) * time.Second
}

func (c RealtimeConfig) PongWait() time.Duration {
	return time.Duration(c.PongWaitSeconds) * time.Second
}

func (c RealtimeConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalSeconds) * time.Second
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			RequestRate:  20,
			RequestBurst: 40,
		},
		Realtime: RealtimeConfig{
			SendBufferSize:      256,
			MaxMessageBytes:     512,
			WriteWaitSeconds:    10,
			PongWaitSeconds:     60,
			PingIntervalSeconds: 30,
			EventRate:           10,
			EventBurst:          20,
		},
	}
}

// Load reads configuration from a YAML file, layering it over the defaults.
// A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.RequestRate <= 0 {
		c.Server.RequestRate = def.Server.RequestRate
	}
	if c.Server.RequestBurst <= 0 {
		c.Server.RequestBurst = def.Server.RequestBurst
	}
	if c.Realtime.SendBufferSize <= 0 {
		c.Realtime.SendBufferSize = def.Realtime.SendBufferSize
	}
	if c.Realtime.MaxMessageBytes <= 0 {
		c.Realtime.MaxMessageBytes = def.Realtime.MaxMessageBytes
	}
	if c.Realtime.WriteWaitSeconds <= 0 {
		c.Realtime.WriteWaitSeconds = def.Realtime.WriteWaitSeconds
	}
	if c.Realtime.PongWaitSeconds <= 0 {
		c.Realtime.PongWaitSeconds = def.Realtime.PongWaitSeconds
	}
	if c.Realtime.PingIntervalSeconds <= 0 {
		c.Realtime.PingIntervalSeconds = def.Realtime.PingIntervalSeconds
	}
	if c.Realtime.EventRate <= 0 {
		c.Realtime.EventRate = def.Realtime.EventRate
	}
	if c.Realtime.EventBurst <= 0 {
		c.Realtime.EventBurst = def.Realtime.EventBurst
	}
}
