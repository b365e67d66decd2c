package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	BTEngine  BTEngineConfig  `mapstructure:"btengine"`
	Indexer   IndexerConfig   `mapstructure:"indexer"`
	SeaDex    SeaDexConfig    `mapstructure:"seadex"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// BTEngineConfig holds the BT Engine (qBittorrent) client configuration,
// per spec.md §6.
type BTEngineConfig struct {
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Category string `mapstructure:"category"`
}

// IndexerConfig holds the Nyaa-style indexer client configuration.
type IndexerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	RequestTimeout int    `mapstructure:"request_timeout"` // seconds
}

// RequestTimeoutDuration returns the indexer request timeout as a Duration.
func (c *IndexerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// SeaDexConfig holds the SeaDex recommender client configuration, per
// spec.md §6.
type SeaDexConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	RequestTimeout int    `mapstructure:"request_timeout"` // seconds
}

// RequestTimeoutDuration returns the SeaDex request timeout as a Duration.
func (c *SeaDexConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// SchedulerConfig holds the intervals the Scheduler (spec.md §4.7) uses to
// register its recurring tasks.
type SchedulerConfig struct {
	AutoDownloadInterval  time.Duration `mapstructure:"autodownload_interval"`   // default: 1h
	RSSInterval           time.Duration `mapstructure:"rss_interval"`            // default: 15m
	ImportInterval        time.Duration `mapstructure:"import_interval"`         // default: 1m
	ProgressInterval      time.Duration `mapstructure:"progress_interval"`       // default: 2s
	SeaDexRefreshInterval time.Duration `mapstructure:"seadex_refresh_interval"` // default: 6h
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // Max size in MB before rotation (default: 10)
	MaxBackups int    `mapstructure:"max_backups"`  // Max number of old log files to keep (default: 5)
	MaxAgeDays int    `mapstructure:"max_age_days"` // Max age in days to keep old files (default: 30)
	Compress   bool   `mapstructure:"compress"`     // Compress rotated files (default: true)
}

// Default returns a Config with default values.
func Default() *Config {
	dataDir := getDataDir()
	logDir := getLogDir()

	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dataDir, "slipstream.db"),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Path:     logDir,
			Compress: true,
		},
		BTEngine: BTEngineConfig{
			Host:     "http://localhost:8090",
			Category: "anime",
		},
		Indexer: IndexerConfig{
			BaseURL:        "https://nyaa.si",
			RequestTimeout: 30,
		},
		SeaDex: SeaDexConfig{
			BaseURL:        "https://releases.moe/api",
			RequestTimeout: 15,
		},
		Scheduler: SchedulerConfig{
			AutoDownloadInterval:  1 * time.Hour,
			RSSInterval:           15 * time.Minute,
			ImportInterval:        1 * time.Minute,
			ProgressInterval:      2 * time.Second,
			SeaDexRefreshInterval: 6 * time.Hour,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > .env file > config file > defaults
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists (secrets go here)
	// Try multiple locations: current dir, configs dir
	envFiles := []string{".env", "configs/.env"}
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile) // Ignore error, env vars are optional
			break
		}
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		// Add platform-specific config paths
		switch runtime.GOOS {
		case "windows":
			if appData := os.Getenv("APPDATA"); appData != "" {
				v.AddConfigPath(filepath.Join(appData, "SlipStream"))
			}
		case "darwin":
			if home, err := os.UserHomeDir(); err == nil {
				v.AddConfigPath(filepath.Join(home, "Library", "Application Support", "SlipStream"))
			}
		case "linux":
			configHome := os.Getenv("XDG_CONFIG_HOME")
			if configHome == "" {
				if home, err := os.UserHomeDir(); err == nil {
					configHome = filepath.Join(home, ".config")
				}
			}
			if configHome != "" {
				v.AddConfigPath(filepath.Join(configHome, "slipstream"))
			}
		}
		v.AddConfigPath("$HOME/.slipstream")
	}

	// Environment variable settings
	v.SetEnvPrefix("SLIPSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	// Unmarshal into struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	dataDir := getDataDir()
	logDir := getLogDir()

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	// Database defaults
	v.SetDefault("database.path", filepath.Join(dataDir, "slipstream.db"))

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", logDir)
	v.SetDefault("logging.compress", true)

	// BT Engine defaults
	v.SetDefault("btengine.host", "http://localhost:8090")
	v.SetDefault("btengine.category", "anime")

	// Indexer defaults
	v.SetDefault("indexer.base_url", "https://nyaa.si")
	v.SetDefault("indexer.request_timeout", 30)

	// SeaDex defaults
	v.SetDefault("seadex.base_url", "https://releases.moe/api")
	v.SetDefault("seadex.request_timeout", 15)

	// Scheduler defaults
	v.SetDefault("scheduler.autodownload_interval", time.Hour)
	v.SetDefault("scheduler.rss_interval", 15*time.Minute)
	v.SetDefault("scheduler.import_interval", time.Minute)
	v.SetDefault("scheduler.progress_interval", 2*time.Second)
	v.SetDefault("scheduler.seadex_refresh_interval", 6*time.Hour)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getDataDir returns the platform-specific data directory.
// Windows: %APPDATA%\SlipStream
// macOS: ~/Library/Application Support/SlipStream
// Linux: XDG_CONFIG_HOME/slipstream or ~/.config/slipstream
// Others: ./data
func getDataDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "SlipStream")
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", "SlipStream")
		}
	case "linux":
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			if home, err := os.UserHomeDir(); err == nil {
				configHome = filepath.Join(home, ".config")
			}
		}
		if configHome != "" {
			return filepath.Join(configHome, "slipstream")
		}
	}
	return "./data"
}

// getLogDir returns the platform-specific log directory.
// Windows: %APPDATA%\SlipStream\logs
// macOS: ~/Library/Logs/SlipStream
// Linux: XDG_CONFIG_HOME/slipstream/logs or ~/.config/slipstream/logs
// Others: ./data/logs
func getLogDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "SlipStream", "logs")
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Logs", "SlipStream")
		}
	case "linux":
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			if home, err := os.UserHomeDir(); err == nil {
				configHome = filepath.Join(home, ".config")
			}
		}
		if configHome != "" {
			return filepath.Join(configHome, "slipstream", "logs")
		}
	}
	return "./data/logs"
}


// FindAvailablePort finds an available port starting from preferredPort.
// It will try maxAttempts consecutive ports before returning an error.
// Returns the actual available port.
func FindAvailablePort(preferredPort, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := preferredPort + i
		addr := fmt.Sprintf(":%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found in range %d-%d", preferredPort, preferredPort+maxAttempts-1)
}
