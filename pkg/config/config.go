package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/actor"
)

// SystemConfig Actor 系统配置
type SystemConfig struct {
	Name              string        `koanf:"name"`
	MailboxSize       int           `koanf:"mailbox_size"` // 0 表示不限容量
	DeadLetterSize    int           `koanf:"dead_letter_size"`
	DeadLetterLogging bool          `koanf:"dead_letter_logging"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	ResponseTimeout   time.Duration `koanf:"response_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
	Color bool   `koanf:"color"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	Path    string `koanf:"path"`
}

// Config 完整配置
type Config struct {
	System  SystemConfig  `koanf:"system"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			Name:              "receive",
			MailboxSize:       0,
			DeadLetterSize:    1000,
			DeadLetterLogging: true,
			ShutdownTimeout:   5 * time.Second,
			ResponseTimeout:   time.Second,
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
	}
}

// Load 在默认配置之上加载 YAML 文件，path 为空时只使用默认值
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.System.Name == "" {
		return errors.New("system.name cannot be empty")
	}
	if c.System.MailboxSize < 0 {
		return fmt.Errorf("system.mailbox_size cannot be negative: %d", c.System.MailboxSize)
	}
	if c.System.DeadLetterSize <= 0 {
		return fmt.Errorf("system.dead_letter_size must be positive: %d", c.System.DeadLetterSize)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr cannot be empty when metrics are enabled")
	}
	return nil
}

// SlogLevel 解析日志级别
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// SystemConfig 转换为 actor.SystemConfig
func (c *Config) SystemConfig(logger *slog.Logger) *actor.SystemConfig {
	cfg := actor.DefaultSystemConfig()
	cfg.DefaultActorMailboxSize = c.System.MailboxSize
	cfg.DeadLetterSize = c.System.DeadLetterSize
	cfg.EnableDeadLetterLogging = c.System.DeadLetterLogging
	cfg.Logger = logger
	return cfg
}
