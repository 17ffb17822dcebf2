package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。3 つのプロセス
// （gateway / authservice / absenceservice）が同じ型を共有し、
// プロセスごとに必要なセクションだけを検証します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Backends BackendsConfig `yaml:"backends"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig はバックエンドの gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// GatewayConfig はエッジ HTTP サーバーに関する設定です。
type GatewayConfig struct {
	ListenAddr        string   `yaml:"listen_addr"`
	ThrottlePerMinute int      `yaml:"throttle_per_minute"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
}

// JWTConfig はトークンの署名と有効期間に関する設定です。発行側と検証側の
// 全コンポーネントで secret が一致していなければ、すべての検証が失敗します。
type JWTConfig struct {
	Secret        string        `yaml:"secret"`
	SessionTTL    time.Duration `yaml:"-"`
	SessionTTLRaw string        `yaml:"session_ttl"`
}

// Endpoint はバックエンドサービスのトランスポート宛先です。
type Endpoint struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr は host:port 形式の宛先を返します。
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// BackendsConfig はエッジから見た各バックエンドの宛先です。
type BackendsConfig struct {
	Auth    Endpoint `yaml:"auth"`
	Absence Endpoint `yaml:"absence"`
}

// LoggingConfig はログ出力に関する設定です。File が空の場合は標準出力へ
// 書き出します。
type LoggingConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// envOverrides は環境変数による上書きです。名前が構成契約そのものです。
type envOverrides struct {
	JWTSecret   string `envconfig:"JWT_SECRET"`
	AuthHost    string `envconfig:"AUTH_HOST"`
	AuthPort    int    `envconfig:"AUTH_PORT"`
	AbsenceHost string `envconfig:"ABSENCE_HOST"`
	AbsencePort int    `envconfig:"ABSENCE_PORT"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数による上書きを
// 適用します。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("config: process environment: %w", err)
	}

	if env.JWTSecret != "" {
		c.JWT.Secret = env.JWTSecret
	}
	if env.AuthHost != "" {
		c.Backends.Auth.Host = env.AuthHost
	}
	if env.AuthPort != 0 {
		c.Backends.Auth.Port = env.AuthPort
	}
	if env.AbsenceHost != "" {
		c.Backends.Absence.Host = env.AbsenceHost
	}
	if env.AbsencePort != 0 {
		c.Backends.Absence.Port = env.AbsencePort
	}
	return nil
}

func (c *Config) normalize() error {
	ttl, err := parseDurationAllowEmpty(c.JWT.SessionTTLRaw)
	if err != nil {
		return fmt.Errorf("config: jwt.session_ttl: %w", err)
	}
	c.JWT.SessionTTL = ttl

	lifetime, err := parseDurationAllowEmpty(c.Database.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	c.Database.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(c.Database.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	c.Database.ConnMaxIdleTime = idleTime

	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	return nil
}

// ValidateBackend はバックエンドプロセスに必要なセクションを検証します。
func (c *Config) ValidateBackend() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret must be set")
	}
	return c.Database.validate()
}

// ValidateGateway はエッジプロセスに必要なセクションを検証します。
func (c *Config) ValidateGateway() error {
	if c.Gateway.ListenAddr == "" {
		return fmt.Errorf("config: gateway.listen_addr must be set")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret must be set")
	}
	if c.Backends.Auth.Host == "" || c.Backends.Auth.Port == 0 {
		return fmt.Errorf("config: backends.auth host and port must be set")
	}
	if c.Backends.Absence.Host == "" || c.Backends.Absence.Port == 0 {
		return fmt.Errorf("config: backends.absence host and port must be set")
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}
