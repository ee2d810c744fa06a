// Package config defines the application configuration and loads it, along
// with solution workbooks, from disk.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iwvelando/valuecalc/pkg/constants"
	"github.com/iwvelando/valuecalc/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for valuecalc.
type Configuration struct {
	Service ServiceConfig
	Store   StoreConfig
	Logging LoggingConfig
	Output  OutputConfig
}

// ServiceConfig locates the calculation service.
type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig locates the solution store.
type StoreConfig struct {
	Path string
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration loads the YAML configuration at configPath. A .env file
// next to it (or in the working directory) is loaded into the environment
// first, and VALUECALC_* variables override file values, e.g.
// VALUECALC_SERVICE_BASEURL. An empty configPath yields defaults plus
// environment overrides.
func LoadConfiguration(configPath string) (*Configuration, error) {
	if err := loadDotEnv(configPath); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	configuration.Service.BaseURL = strings.TrimRight(strings.TrimSpace(configuration.Service.BaseURL), "/")
	if configuration.Output.Format != "" {
		if err := validation.ValidateOutputFormat(configuration.Output.Format); err != nil {
			return nil, err
		}
	}

	return &configuration, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.baseURL", constants.DefaultServiceBaseURL)
	v.SetDefault("service.timeout", time.Duration(constants.DefaultServiceTimeoutSeconds)*time.Second)
	v.SetDefault("store.path", constants.DefaultStorePath)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
}

// loadDotEnv loads .env from the config file's directory and the working
// directory. Variables already set in the environment win.
func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		if dir := filepath.Dir(configPath); dir != "." {
			candidates = append([]string{filepath.Join(dir, ".env")}, candidates...)
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Service.BaseURL == "" {
		warnings = append(warnings, "Service base URL is empty; calculations will fail")
	} else if u, err := url.Parse(c.Service.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		warnings = append(warnings, "Service base URL '"+c.Service.BaseURL+"' is not an absolute URL")
	}
	if c.Service.Timeout < 0 {
		warnings = append(warnings, "Service timeout is negative; requests will not time out")
	} else if c.Service.Timeout == 0 {
		warnings = append(warnings, "Service timeout is disabled; a hung service will block calculations")
	}
	if c.Store.Path == "" {
		warnings = append(warnings, "Store path is empty; solution persistence is unavailable")
	}

	return warnings
}
