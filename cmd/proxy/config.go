package main

import (
	"fmt"
	"os"
	"time"

	"judgecore/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8091"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultEngineTimeout   = 15 * time.Second
	defaultProblemTimeout  = 3 * time.Second
	defaultRateLimitRPS    = 20.0
	defaultRateLimitBurst  = 40
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// EngineConfig points at the evaluation engine this proxy forwards to.
type EngineConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// ProblemConfig points at the problem catalog's gRPC endpoint.
type ProblemConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// RateLimitConfig bounds the rate of incoming requests with a token
// bucket shared across all clients.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// AppConfig holds proxy service config.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    logging.Config  `yaml:"logger"`
	Engine    EngineConfig    `yaml:"engine"`
	Problem   ProblemConfig   `yaml:"problem"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

func loadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Engine.Timeout == 0 {
		cfg.Engine.Timeout = defaultEngineTimeout
	}
	if cfg.Problem.Timeout == 0 {
		cfg.Problem.Timeout = defaultProblemTimeout
	}
	if cfg.Engine.Addr == "" {
		return nil, fmt.Errorf("engine addr is required")
	}
	if cfg.Problem.Addr == "" {
		return nil, fmt.Errorf("problem addr is required")
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = defaultRateLimitRPS
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = defaultRateLimitBurst
	}
	return &cfg, nil
}
