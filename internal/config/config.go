package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects and connects the equipment store
type DatabaseConfig struct {
	Driver              string `yaml:"driver" validate:"required,oneof=sqlite postgres"`
	DSN                 string `yaml:"dsn" validate:"required"`
	MigrationsOnStartup bool   `yaml:"migrationsOnStartup,omitempty"`
}

// OptimizerConfig holds the tunables of the workload scorer.
// Nil fields fall back to the built-in defaults.
type OptimizerConfig struct {
	WorkloadWeight *float64 `yaml:"workloadWeight,omitempty" validate:"omitempty,gte=0"`
	LocationWeight *float64 `yaml:"locationWeight,omitempty" validate:"omitempty,gte=0"`
	DeadlineWeight *float64 `yaml:"deadlineWeight,omitempty" validate:"omitempty,gte=0"`
	MinWorkload    *int     `yaml:"minWorkload,omitempty" validate:"omitempty,gte=0"`
	Band           *int     `yaml:"band,omitempty" validate:"omitempty,gte=0"`
	DueDateOrder   string   `yaml:"dueDateOrder,omitempty" validate:"omitempty,oneof=lexical calendar"`
	DueDateLayouts []string `yaml:"dueDateLayouts,omitempty" validate:"dive,required"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Address string `yaml:"address,omitempty"`
}

// ScheduleConfig defines when the server re-runs the optimizer on its own
type ScheduleConfig struct {
	RRule    string `yaml:"rrule" validate:"required"`
	Division string `yaml:"division,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Optimizer OptimizerConfig `yaml:"optimizer,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Schedule  *ScheduleConfig `yaml:"schedule,omitempty" validate:"omitempty"`
}

const (
	configFileBaseName   = "calibration_config"
	defaultServerAddress = ":8080"
	defaultDueDateLayout = "2006-01-02"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from calibration_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads calibration_config_<env>.yaml, falling back to calibration_config.yaml
func LoadWithEnv(env string) (*Config, error) {
	var names []string
	if env != "" {
		names = append(names, fmt.Sprintf("%s_%s.yaml", configFileBaseName, env))
	}
	names = append(names, configFileBaseName+".yaml")

	configPath, err := findConfigFile(names)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Schedule != nil {
		if _, err := rrule.StrToRRule(cfg.Schedule.RRule); err != nil {
			return fmt.Errorf("invalid rrule in schedule: %w", err)
		}
	}

	return nil
}

// ApplyDefaults fills optional fields that have a non-zero default
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultServerAddress
	}
	if cfg.Optimizer.DueDateOrder == "" {
		cfg.Optimizer.DueDateOrder = "lexical"
	}
	if len(cfg.Optimizer.DueDateLayouts) == 0 {
		cfg.Optimizer.DueDateLayouts = []string{defaultDueDateLayout}
	}
}

// findConfigFile searches for the first of names in the current directory, then the home directory
func findConfigFile(names []string) (string, error) {
	// Check current directory
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, name := range names {
		homeConfigPath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homeConfigPath); err == nil {
			return homeConfigPath, nil
		}
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
