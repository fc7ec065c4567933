// Package config provides configuration management for the judging
// service: defaults per concern, an optional YAML file, and
// CWE_-prefixed environment overrides.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the judging service.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Queue   QueueConfig   `mapstructure:"queue"`
}

// ServerConfig holds HTTP server configuration for the thin adapter.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// SandboxConfig holds isolate invocation configuration.
type SandboxConfig struct {
	IsolateBinary   string        `mapstructure:"isolate_binary"`
	PathEnv         string        `mapstructure:"path_env"`
	HomeEnv         string        `mapstructure:"home_env"`
	CompileWallTime time.Duration `mapstructure:"compile_wall_time"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	PopTimeout        time.Duration `mapstructure:"pop_timeout"`
	QueueErrorBackoff time.Duration `mapstructure:"queue_error_backoff"`
}

// QueueConfig names the queue and key conventions.
type QueueConfig struct {
	JobsQueueName string `mapstructure:"jobs_queue_name"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 32)

	v.SetDefault("sandbox.isolate_binary", "isolate")
	v.SetDefault("sandbox.path_env", "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin")
	v.SetDefault("sandbox.home_env", "/tmp")
	v.SetDefault("sandbox.compile_wall_time", 10*time.Second)

	v.SetDefault("worker.concurrency", 8)
	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.pop_timeout", 1*time.Second)
	v.SetDefault("worker.queue_error_backoff", 1*time.Second)

	v.SetDefault("queue.jobs_queue_name", "jobs")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/cwe-judge")
	}

	v.SetEnvPrefix("CWE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
