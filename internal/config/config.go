package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Game     GameConfig     `mapstructure:"game"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin 模式: release / debug / test
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql / postgres
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	DSN          string `mapstructure:"dsn"` // 非空时直接使用，忽略上面的字段
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool             `mapstructure:"enabled"`
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	GameEvent string `mapstructure:"game_event"`
}

type AuthConfig struct {
	AccessSecret     string        `mapstructure:"access_secret"`
	RefreshSecret    string        `mapstructure:"refresh_secret"`
	AccessTTL        time.Duration `mapstructure:"access_ttl"`
	RefreshTTL       time.Duration `mapstructure:"refresh_ttl"`
	MaxLoginFailures int           `mapstructure:"max_login_failures"`
	Lockout          time.Duration `mapstructure:"lockout"`
	SecureCookie     bool          `mapstructure:"secure_cookie"`
}

type GameConfig struct {
	StartingHealth  int64 `mapstructure:"starting_health"`
	StartingPower   int64 `mapstructure:"starting_power"`
	StartingMoney   int64 `mapstructure:"starting_money"`
	RootGold        int64 `mapstructure:"root_gold"`
	SellRatePercent int64 `mapstructure:"sell_rate_percent"`
	InventorySize   int   `mapstructure:"inventory_size"`
}

type JobsConfig struct {
	OutboxInterval     time.Duration `mapstructure:"outbox_interval"`
	OutboxBatch        int           `mapstructure:"outbox_batch"`
	MaxRetryCount      int           `mapstructure:"max_retry_count"`
	TokenSweepInterval time.Duration `mapstructure:"token_sweep_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const envPrefix = "RPG"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3018)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "rpg")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.port", 6379)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic.game_event", "game-event")

	// 密钥没有默认值，但需要注册 key 才能被 AutomaticEnv 覆盖
	v.SetDefault("auth.access_secret", "")
	v.SetDefault("auth.refresh_secret", "")
	v.SetDefault("auth.secure_cookie", false)
	v.SetDefault("auth.access_ttl", 30*time.Minute)
	v.SetDefault("auth.refresh_ttl", 24*time.Hour)
	v.SetDefault("auth.max_login_failures", 5)
	v.SetDefault("auth.lockout", 15*time.Minute)

	v.SetDefault("game.starting_health", 500)
	v.SetDefault("game.starting_power", 100)
	v.SetDefault("game.starting_money", 10000)
	v.SetDefault("game.root_gold", 1000)
	v.SetDefault("game.sell_rate_percent", 60)
	v.SetDefault("game.inventory_size", 100)

	v.SetDefault("jobs.outbox_interval", time.Second)
	v.SetDefault("jobs.outbox_batch", 100)
	v.SetDefault("jobs.max_retry_count", 5)
	v.SetDefault("jobs.token_sweep_interval", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig 加载配置文件
//
// 优先级: 环境变量 (RPG_ 前缀) > 配置文件 > 默认值。
// configPath 为空或文件不存在时只使用环境变量和默认值。
func LoadConfig(configPath string) (*Config, error) {
	// .env 只是开发便利，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查必须由部署方提供的配置项
func (c *Config) Validate() error {
	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return errors.New("auth.access_secret 和 auth.refresh_secret 不能为空")
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.New("auth.access_secret 与 auth.refresh_secret 不能相同")
	}
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	if c.Game.SellRatePercent < 0 || c.Game.SellRatePercent > 100 {
		return fmt.Errorf("game.sell_rate_percent 必须在 0-100 之间: %d", c.Game.SellRatePercent)
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("auth.access_ttl 和 auth.refresh_ttl 必须大于 0")
	}
	return nil
}
