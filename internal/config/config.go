package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/palemoky/checkers-duel/internal/logger"
)

// 默认值
const (
	defaultHost              = "0.0.0.0"
	defaultPort              = 3000
	defaultMaxConnections    = 10000
	defaultRedisAddr         = "localhost:6379"
	defaultSnapshotTTL       = 120 // 分钟
	defaultTurnTimeout       = 120 // 秒
	defaultDisconnectTimeout = 180 // 秒
	defaultTickIntervalMs    = 1000
	defaultShutdownTimeout   = 30 // 秒
	defaultMessagePerSecond  = 20
	defaultBoardMessageCost  = 4
	defaultMaxRateStrikes    = 5
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	StaticDir      string `yaml:"static_dir"` // 为空时不提供静态文件
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig Redis 配置（仅作为房间快照镜像和排行榜）
type RedisConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Addr        string `yaml:"addr"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	SnapshotTTL int    `yaml:"snapshot_ttl"` // 房间快照过期时间（分钟）
}

// SnapshotTTLDuration 返回快照过期时长
func (c *RedisConfig) SnapshotTTLDuration() time.Duration {
	return time.Duration(c.SnapshotTTL) * time.Minute
}

// GameConfig 游戏配置
type GameConfig struct {
	TurnTimeout       int `yaml:"turn_timeout"`       // 走子超时（秒）
	DisconnectTimeout int `yaml:"disconnect_timeout"` // 掉线等待（秒）
	TickIntervalMs    int `yaml:"tick_interval_ms"`   // 计时器间隔（毫秒）
	ShutdownTimeout   int `yaml:"shutdown_timeout"`   // 优雅关闭等待（秒）
}

// TurnTimeoutDuration 返回走子超时时长
func (c *GameConfig) TurnTimeoutDuration() time.Duration {
	return time.Duration(c.TurnTimeout) * time.Second
}

// DisconnectTimeoutDuration 返回掉线等待时长
func (c *GameConfig) DisconnectTimeoutDuration() time.Duration {
	return time.Duration(c.DisconnectTimeout) * time.Second
}

// TickIntervalDuration 返回计时器间隔
func (c *GameConfig) TickIntervalDuration() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// ShutdownTimeoutDuration 返回优雅关闭等待时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// MessageLimitConfig 单连接消息预算：每秒额度，带棋盘快照的消息按 BoardCost 计费，
// 连续超额 MaxStrikes 次以上断开连接
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	BoardCost    int `yaml:"board_cost"`
	MaxStrikes   int `yaml:"max_strikes"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"` // console/json
	File      string `yaml:"file"`
	ToConsole *bool  `yaml:"to_console"`
}

// Options 转换为 logger 配置
func (c *LogConfig) Options() logger.Options {
	toConsole := true
	if c.ToConsole != nil {
		toConsole = *c.ToConsole
	}
	return logger.Options{
		Level:     c.Level,
		Format:    c.Format,
		File:      c.File,
		ToConsole: toConsole,
	}
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if c.Redis.SnapshotTTL == 0 {
		c.Redis.SnapshotTTL = defaultSnapshotTTL
	}
	if c.Game.TurnTimeout == 0 {
		c.Game.TurnTimeout = defaultTurnTimeout
	}
	if c.Game.DisconnectTimeout == 0 {
		c.Game.DisconnectTimeout = defaultDisconnectTimeout
	}
	if c.Game.TickIntervalMs == 0 {
		c.Game.TickIntervalMs = defaultTickIntervalMs
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = defaultShutdownTimeout
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = defaultMessagePerSecond
	}
	if c.Security.MessageLimit.BoardCost == 0 {
		c.Security.MessageLimit.BoardCost = defaultBoardMessageCost
	}
	if c.Security.MessageLimit.MaxStrikes == 0 {
		c.Security.MessageLimit.MaxStrikes = defaultMaxRateStrikes
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}
}

// ApplyEnv 用环境变量覆盖配置：PORT、REDIS_ADDR、REDIS_PASSWORD
func (c *Config) ApplyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT %q", port)
		}
		c.Server.Port = p
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
		c.Redis.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
	return nil
}
