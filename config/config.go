package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Events    EventsConfig    `yaml:"events"`
	Inventory InventoryConfig `yaml:"inventory"`
	Booking   BookingConfig   `yaml:"booking"`
	Flights   FlightsConfig   `yaml:"flights"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address               string `yaml:"address"`
	SwaggerDir            string `yaml:"swagger_dir"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL               string `yaml:"url"`
	EventsQueue       string `yaml:"events_queue"`
	NotificationQueue string `yaml:"notifications_queue"`
}

// EventsConfig selects the broker booking events are published to: "kafka" or "rabbitmq".
type EventsConfig struct {
	Driver string `yaml:"driver"`
}

type InventoryConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type BookingConfig struct {
	PNRLength               int    `yaml:"pnr_length"`
	CancellationWindowHours int    `yaml:"cancellation_window_hours"`
	Timezone                string `yaml:"timezone"`
	RequestTimeoutSeconds   int    `yaml:"request_timeout_seconds"`
	CacheTTLSeconds         int    `yaml:"cache_ttl_seconds"`
}

type FlightsConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	EventsDriverKafka    = "kafka"
	EventsDriverRabbitMQ = "rabbitmq"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RequestTimeoutSeconds <= 0 {
		c.HTTP.RequestTimeoutSeconds = 15
	}
	if c.Booking.PNRLength <= 0 {
		c.Booking.PNRLength = 6
	}
	if c.Booking.CancellationWindowHours <= 0 {
		c.Booking.CancellationWindowHours = 24
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "UTC"
	}
	if c.Booking.RequestTimeoutSeconds <= 0 {
		c.Booking.RequestTimeoutSeconds = 10
	}
	if c.Booking.CacheTTLSeconds <= 0 {
		c.Booking.CacheTTLSeconds = 600
	}
	if c.Flights.CacheTTLSeconds <= 0 {
		c.Flights.CacheTTLSeconds = 60
	}
	if c.Inventory.TimeoutSeconds <= 0 {
		c.Inventory.TimeoutSeconds = 5
	}
	if c.Events.Driver == "" {
		c.Events.Driver = EventsDriverKafka
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Events.Driver {
	case EventsDriverKafka, EventsDriverRabbitMQ:
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid booking timezone %q: %w", c.Booking.Timezone, err)
	}
	return nil
}

// Location returns the reference timezone journeys are computed in.
func (b BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (b BookingConfig) CancellationWindow() time.Duration {
	return time.Duration(b.CancellationWindowHours) * time.Hour
}

func (b BookingConfig) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

func (b BookingConfig) CacheTTL() time.Duration {
	return time.Duration(b.CacheTTLSeconds) * time.Second
}

func (i InventoryConfig) Timeout() time.Duration {
	return time.Duration(i.TimeoutSeconds) * time.Second
}

func (h HTTPConfig) RequestTimeout() time.Duration {
	return time.Duration(h.RequestTimeoutSeconds) * time.Second
}

func (f FlightsConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSeconds) * time.Second
}
