// Package config holds the installation-level configuration for n8nctl.
package config

import (
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	// DefaultBaseDir is where the panel places the stock n8n installation.
	DefaultBaseDir = "/root/n8n"
	// DefaultTimezone is used when the existing environment carries none.
	DefaultTimezone = "Europe/Moscow"
)

// Paths groups the well-known files inside the installation directory.
type Paths struct {
	BaseDir     string `yaml:"base_dir"`
	EnvFile     string `yaml:"env_file"`
	ComposeFile string `yaml:"compose_file"`
	BackupRoot  string `yaml:"backup_root"`
	DataDir     string `yaml:"data_dir"`
	FilesDir    string `yaml:"files_dir"`
	ShimDir     string `yaml:"shim_dir"`
}

// Health configures the post-start readiness probe.
type Health struct {
	URL      string        `yaml:"url"`
	Interval time.Duration `yaml:"interval"`
	Attempts int           `yaml:"attempts"`
}

// Backup configures snapshot retention.
type Backup struct {
	Keep int `yaml:"keep"`
}

// Docker configures how the external container runtime is reached.
type Docker struct {
	FallbackAPIVersion string `yaml:"fallback_api_version"`
	GroupID            int    `yaml:"group_id"`
	Project            string `yaml:"project"`
}

// Log configures the structured logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full n8nctl configuration.
type Config struct {
	Paths    Paths  `yaml:"paths"`
	Health   Health `yaml:"health"`
	Backup   Backup `yaml:"backup"`
	Docker   Docker `yaml:"docker"`
	Log      Log    `yaml:"log"`
	Timezone string `yaml:"timezone"`
}

// Default returns the configuration for a stock panel installation.
func Default() *Config {
	base := DefaultBaseDir
	return &Config{
		Paths: Paths{
			BaseDir:     base,
			EnvFile:     filepath.Join(base, ".env"),
			ComposeFile: filepath.Join(base, "docker-compose.yml"),
			BackupRoot:  filepath.Join(base, "backups"),
			DataDir:     filepath.Join(base, "n8n_data"),
			FilesDir:    filepath.Join(base, "files"),
			ShimDir:     "/usr/local/bin",
		},
		Health: Health{
			URL:      "http://127.0.0.1:5678/healthz",
			Interval: 5 * time.Second,
			Attempts: 12,
		},
		Backup: Backup{Keep: 7},
		Docker: Docker{
			FallbackAPIVersion: "1.43",
			GroupID:            999,
			Project:            "n8n",
		},
		Log:      Log{Level: "info", Format: "text"},
		Timezone: DefaultTimezone,
	}
}

// Rebase points every derived path at a new base directory. Used by tests
// and by the --base-dir override.
func (c *Config) Rebase(base string) {
	c.Paths.BaseDir = base
	c.Paths.EnvFile = filepath.Join(base, ".env")
	c.Paths.ComposeFile = filepath.Join(base, "docker-compose.yml")
	c.Paths.BackupRoot = filepath.Join(base, "backups")
	c.Paths.DataDir = filepath.Join(base, "n8n_data")
	c.Paths.FilesDir = filepath.Join(base, "files")
}

// Load reads the configuration file, layering it over Default(). A missing
// file is not an error; the defaults describe a stock installation.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if path == "" {
		v.SetConfigName("n8nctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")            // Local development override
		v.AddConfigPath("/etc/n8nctl/") // System-wide production config
	}
	cfg := Default()
	if err := v.ReadInConfig(); err == nil {
		// Field names carry yaml tags; point the decoder at them.
		withYAMLTags := func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }
		if err := v.Unmarshal(cfg, withYAMLTags); err != nil {
			return nil, err
		}
		if base := v.GetString("paths.base_dir"); base != "" && base != DefaultBaseDir {
			cfg.Rebase(base)
		}
	}
	return cfg, nil
}
