// Package config resolves runtime options from flags, environment variables
// and an optional config file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "OPSWORKS_CURATOR"

	DefaultRegion       = "us-east-1"
	DefaultLogLevel     = "info"
	DefaultPollInterval = 10 * time.Second
	DefaultTimeout      = time.Hour
)

// Config holds the options shared by all commands
type Config struct {
	// OpsWorks API region. OpsWorks stacks created in other regions are still listed from here.
	Region string `mapstructure:"region" validate:"required"`

	// Shared config profile.
	Profile string `mapstructure:"profile"`

	// IAM Role ARN to be assumed.
	RoleARN string `mapstructure:"role-arn" validate:"omitempty,startswith=arn:"`

	LogLevel string `mapstructure:"log-level" validate:"oneof=debug info warn warning error"`
	LogFile  string `mapstructure:"log-file"`

	// Log AWS requests and responses.
	Debug bool `mapstructure:"debug"`

	// Interval between deployment status checks.
	PollInterval time.Duration `mapstructure:"poll-interval" validate:"gt=0"`

	// Maximum time to wait for dispatched deployments.
	Timeout time.Duration `mapstructure:"timeout" validate:"gtfield=PollInterval"`
}

// BindFlags attaches the global flags to the given flag set.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("region", DefaultRegion, "OpsWorks API region")
	fs.String("profile", "", "Shared config profile to use")
	fs.String("role-arn", "", "IAM Role ARN to assume")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String("log-file", "", "Also write debug logs to this file")
	fs.Bool("debug", false, "Turn on AWS request/response logging")
	fs.Duration("poll-interval", DefaultPollInterval, "Interval between deployment status checks")
	fs.Duration("timeout", DefaultTimeout, "Maximum time to wait for deployments to complete")
}

// New returns a viper instance reading OPSWORKS_CURATOR_* variables and the config file.
// An explicit path must exist; otherwise the search directories are tried.
func New(explicitPath string) *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return v
	}
	v.SetConfigName("config")
	for _, dir := range searchDirs() {
		v.AddConfigPath(dir)
	}
	return v
}

// Load binds the flag set and decodes the merged settings.
func Load(v *viper.Viper, fs *pflag.FlagSet, strict bool) (*Config, error) {
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if strict || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "opsworks-curator"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "opsworks-curator"))
		dirs = append(dirs, filepath.Join(home, ".opsworks-curator"))
	}
	return dirs
}
