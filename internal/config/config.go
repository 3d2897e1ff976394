package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/locadoc/locadoc/internal/pdf/fill"
)

const (
	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMaxTemplateSize = 10 * 1024 * 1024 // 10MB
	DefaultDatabasePath    = "locadoc.db"
	DefaultStorageDir      = "data"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the document generation server
type Config struct {
	// Server configuration
	Host string
	Port int

	// Persistence configuration
	DatabasePath string
	StorageDir   string

	// Generation configuration
	MaxTemplateSize int64    // Maximum template file size in bytes
	SignSecret      string   // HMAC secret for signed download URLs
	FillOrder       []string // overrides the positional fill order

	// SMTP configuration, empty host disables mail
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		DatabasePath:    DefaultDatabasePath,
		StorageDir:      DefaultStorageDir,
		MaxTemplateSize: DefaultMaxTemplateSize,
		SignSecret:      "",
		SMTPPort:        587,
		Version:         "1.0.0",
		ServerName:      "locadoc",
		LogLevel:        DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.StorageDir != "" {
		if expandedPath, err := filepath.Abs(cfg.StorageDir); err == nil {
			cfg.StorageDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("LOCADOC")
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("db", cfg.DatabasePath)
	viper.SetDefault("storage", cfg.StorageDir)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxtemplatesize", cfg.MaxTemplateSize)
	viper.SetDefault("signsecret", cfg.SignSecret)
	viper.SetDefault("fillorder", cfg.FillOrder)
	viper.SetDefault("smtphost", cfg.SMTPHost)
	viper.SetDefault("smtpport", cfg.SMTPPort)
	viper.SetDefault("smtpusername", cfg.SMTPUsername)
	viper.SetDefault("smtppassword", cfg.SMTPPassword)
	viper.SetDefault("smtpfrom", cfg.SMTPFrom)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "Server host address")
	pflag.Int("port", cfg.Port, "Server port")
	pflag.String("db", cfg.DatabasePath, "SQLite database path")
	pflag.String("storage", cfg.StorageDir, "Root directory for stored documents and templates")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxtemplatesize", cfg.MaxTemplateSize, "Maximum template file size in bytes")
	pflag.String("signsecret", cfg.SignSecret, "HMAC secret for signed download URLs")
	pflag.StringSlice("fillorder", cfg.FillOrder, "Positional fill order override (semantic keys)")
	pflag.String("smtphost", cfg.SMTPHost, "SMTP host, empty disables mail")
	pflag.Int("smtpport", cfg.SMTPPort, "SMTP port")
	pflag.String("smtpusername", cfg.SMTPUsername, "SMTP username")
	pflag.String("smtppassword", cfg.SMTPPassword, "SMTP password")
	pflag.String("smtpfrom", cfg.SMTPFrom, "Sender address for outgoing mail")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"host", "port", "db", "storage", "loglevel", "maxtemplatesize",
		"signsecret", "fillorder", "smtphost", "smtpport", "smtpusername",
		"smtppassword", "smtpfrom",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nLocadoc - rental document generation service\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                        # defaults, local only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --storage=/var/lib/locadoc             # custom storage root\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --host=0.0.0.0 --port=8081             # listen on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  LOCADOC_HOST             Server host\n")
		fmt.Fprintf(os.Stderr, "  LOCADOC_PORT             Server port\n")
		fmt.Fprintf(os.Stderr, "  LOCADOC_DB               SQLite database path\n")
		fmt.Fprintf(os.Stderr, "  LOCADOC_STORAGE          Storage root directory\n")
		fmt.Fprintf(os.Stderr, "  LOCADOC_LOGLEVEL         Log level\n")
		fmt.Fprintf(os.Stderr, "  LOCADOC_MAXTEMPLATESIZE  Maximum template size\n")
		fmt.Fprintf(os.Stderr, "  LOCADOC_SIGNSECRET       Signed URL secret\n")
		fmt.Fprintf(os.Stderr, "  LOCADOC_SMTPHOST         SMTP host (empty disables mail)\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DatabasePath = viper.GetString("db")
	cfg.StorageDir = viper.GetString("storage")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxTemplateSize = viper.GetInt64("maxtemplatesize")
	cfg.SignSecret = viper.GetString("signsecret")
	cfg.FillOrder = viper.GetStringSlice("fillorder")
	cfg.SMTPHost = viper.GetString("smtphost")
	cfg.SMTPPort = viper.GetInt("smtpport")
	cfg.SMTPUsername = viper.GetString("smtpusername")
	cfg.SMTPPassword = viper.GetString("smtppassword")
	cfg.SMTPFrom = viper.GetString("smtpfrom")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DatabasePath == "" {
		return errors.New("database path cannot be empty")
	}

	if c.StorageDir == "" {
		return errors.New("storage directory cannot be empty")
	}

	// Check if the storage directory exists, create if it doesn't
	if _, err := os.Stat(c.StorageDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.StorageDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create storage directory %s: %w", c.StorageDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access storage directory %s: %w", c.StorageDir, err)
	}

	if c.MaxTemplateSize <= 0 {
		return errors.New("maximum template size must be positive")
	}

	for _, key := range c.FillOrder {
		if !fill.IsKey(key) {
			return fmt.Errorf("unknown fill order key: %s", key)
		}
	}

	if c.SMTPHost != "" && c.SMTPFrom == "" {
		return errors.New("smtpfrom is required when smtphost is set")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// MailEnabled returns true if SMTP delivery is configured
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, DatabasePath: %s, StorageDir: %s, LogLevel: %s, MaxTemplateSize: %d}",
		c.Host, c.Port, c.DatabasePath, c.StorageDir, c.LogLevel, c.MaxTemplateSize)
}
