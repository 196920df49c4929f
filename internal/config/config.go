// Package config 读取服务配置：.env -> 环境变量 -> 可选 YAML。
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP    HTTPConfig    `yaml:"http"`
	DB      DBConfig      `yaml:"db"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Voting  VotingConfig  `yaml:"voting"`
	Queue   QueueConfig   `yaml:"queue"`
	Cache   CacheConfig   `yaml:"cache"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
}

type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-default:"host=localhost user=postgres password=postgres dbname=forumvote port=5432 sslmode=disable"`
}

type SessionConfig struct {
	Secret string `yaml:"secret" env:"SESSION_SECRET" env-default:"secret_key_change_me"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// VotingConfig 投票权重与分数衰减参数
type VotingConfig struct {
	SmallVotePower float64 `yaml:"small_vote_power" env:"SMALL_VOTE_POWER" env-default:"1"`
	// 强投票权重按 karma 分档，形如 "0:2,1000:3,2500:4"
	BigVoteTiers string  `yaml:"big_vote_tiers" env:"BIG_VOTE_TIERS" env-default:"0:2,1000:3,2500:4,5000:5,10000:6,25000:7,50000:8,75000:9,100000:10"`
	Gravity      float64 `yaml:"gravity" env:"SCORE_GRAVITY" env-default:"1.15"`
	// 同类警告的冷却时间
	WarningCooldown time.Duration `yaml:"warning_cooldown" env:"WARNING_COOLDOWN" env-default:"60m"`
	// 限流检查拉取的历史窗口
	HistoryWindow time.Duration `yaml:"history_window" env:"HISTORY_WINDOW" env-default:"24h"`
}

type QueueConfig struct {
	Size    int `yaml:"size" env:"QUEUE_SIZE" env-default:"1000"`
	Workers int `yaml:"workers" env:"QUEUE_WORKERS" env-default:"4"`
}

type CacheConfig struct {
	Size int           `yaml:"size" env:"CACHE_SIZE" env-default:"500"`
	TTL  time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

// MustLoad 同 Load，出错时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load 先加载 .env（不存在则忽略），CONFIG_PATH 指定时读取 YAML 并以环境变量覆盖。
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}
	if c.Queue.Size <= 0 {
		return fmt.Errorf("queue.size must be > 0")
	}
	if c.Queue.Workers <= 0 {
		return fmt.Errorf("queue.workers must be > 0")
	}
	if c.Voting.Gravity < 0 {
		return fmt.Errorf("voting.gravity must be >= 0")
	}
	if c.Voting.SmallVotePower <= 0 {
		return fmt.Errorf("voting.small_vote_power must be > 0")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be > 0")
	}
	return nil
}
