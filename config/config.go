package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	GRPC         GRPCConfig         `yaml:"grpc"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Reservations ReservationsConfig `yaml:"reservations"`
	Worker       WorkerConfig       `yaml:"worker"`
	Log          LogConfig          `yaml:"log"`
	Tracing      TracingConfig      `yaml:"tracing"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Driver             string `yaml:"driver"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Name               string `yaml:"name"`
	SSLMode            string `yaml:"ssl_mode"`
	MaxConns           int32  `yaml:"max_conns"`
	LockTimeoutMS      int    `yaml:"lock_timeout_ms"`
	StatementTimeoutMS int    `yaml:"statement_timeout_ms"`
	SeedOnStart        bool   `yaml:"seed_on_start"`
}

// DSN returns a keyword/value connection string. Statement timeout is applied
// per session; lock timeout is set per transaction by the repository layer.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", d.MaxConns)
	}
	if d.StatementTimeoutMS > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", d.StatementTimeoutMS)
	}
	return dsn
}

func (d DatabaseConfig) LockTimeout() time.Duration {
	return time.Duration(d.LockTimeoutMS) * time.Millisecond
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ReservationTopic   string   `yaml:"reservation_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type ReservationsConfig struct {
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
	TxTimeoutMS     int `yaml:"tx_timeout_ms"`
}

func (r ReservationsConfig) CacheTTL() time.Duration {
	return time.Duration(r.FlightsCacheTTL) * time.Second
}

func (r ReservationsConfig) TxTimeout() time.Duration {
	return time.Duration(r.TxTimeoutMS) * time.Millisecond
}

type WorkerConfig struct {
	AuditIntervalSeconds int `yaml:"audit_interval_seconds"`
}

func (w WorkerConfig) AuditInterval() time.Duration {
	return time.Duration(w.AuditIntervalSeconds) * time.Second
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TracingConfig struct {
	JaegerEndpoint string `yaml:"jaeger_endpoint"`
	ServiceName    string `yaml:"service_name"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate fills defaults for unset values and rejects settings that would
// let a transaction wait on a row lock forever.
func (c *Config) Validate() error {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory {
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.LockTimeoutMS == 0 {
		c.Database.LockTimeoutMS = 2000
	}
	if c.Database.LockTimeoutMS < 0 {
		return errors.New("database.lock_timeout_ms must be positive")
	}
	if c.Reservations.TxTimeoutMS == 0 {
		c.Reservations.TxTimeoutMS = 5000
	}
	if c.Reservations.FlightsCacheTTL == 0 {
		c.Reservations.FlightsCacheTTL = 30
	}
	if c.Worker.AuditIntervalSeconds == 0 {
		c.Worker.AuditIntervalSeconds = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "airreservation"
	}
	return nil
}
