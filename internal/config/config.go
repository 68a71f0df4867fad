package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gameroom/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Booking    BookingConfig    `yaml:"booking"`
	Devices    []models.Device  `yaml:"devices"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type BookingConfig struct {
	// LockTTL bounds how long a crashed holder can keep a device lock.
	LockTTL time.Duration `yaml:"lock_ttl"`
	// ReconcileInterval paces the derived-status write-back job.
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	// ReconcileRPS caps status writes per second during reconciliation.
	ReconcileRPS float64 `yaml:"reconcile_rps"`
	// ExportPath is where schedule workbooks are written.
	ExportPath string `yaml:"export_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment wins either way.
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	return ValidateDevices(c.Devices)
}

func ValidateDevices(devices []models.Device) error {
	seen := make(map[int64]bool)
	for _, d := range devices {
		if d.ID == 0 {
			return fmt.Errorf("device %q has invalid ID 0", d.Name)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate device ID found: %d", d.ID)
		}
		if d.Quantity < 0 {
			return fmt.Errorf("device %q has negative quantity", d.Name)
		}
		seen[d.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "gameroom"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Booking.LockTTL == 0 {
		c.Booking.LockTTL = 5 * time.Second
	}
	if c.Booking.ReconcileInterval == 0 {
		c.Booking.ReconcileInterval = time.Minute
	}
	if c.Booking.ReconcileRPS == 0 {
		c.Booking.ReconcileRPS = 50
	}
	if c.Booking.ExportPath == "" {
		c.Booking.ExportPath = "exports"
	}
}
