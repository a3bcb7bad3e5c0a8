package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Storage backends
	StorageS3     = "s3"
	StorageMemory = "memory"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultRegion        = "ap-northeast-1"
	DefaultDBDriver      = "sqlite"
	DefaultDSN           = "bridge-inspection.db"
	DefaultPhotoWorkers  = 8
	DefaultFrameLayer    = "Defpoints"
	DefaultTitleFallback = "損傷図"
)

// Config holds all configuration for the bridge inspection server
type Config struct {
	// Server configuration
	Mode        string // "server" or "stdio"
	Host        string
	Port        int
	MetricsAddr string

	// Object store configuration
	Storage         string // "s3" or "memory"
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string

	// Database configuration
	DBDriver string // "pgx" or "sqlite"
	DSN      string

	// Pipeline configuration
	MaxFileSize   int64 // Maximum drawing size in bytes
	PhotoWorkers  int
	PhotoReuse    bool
	FrameLayer    string
	TitleFallback string
	NamesFile     string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:          ModeStdio, // Default to stdio mode for MCP compatibility
		Host:          DefaultHost,
		Port:          DefaultPort,
		Storage:       StorageMemory,
		Region:        DefaultRegion,
		DBDriver:      DefaultDBDriver,
		DSN:           DefaultDSN,
		MaxFileSize:   DefaultMaxFileSize,
		PhotoWorkers:  DefaultPhotoWorkers,
		PhotoReuse:    true,
		FrameLayer:    DefaultFrameLayer,
		TitleFallback: DefaultTitleFallback,
		Version:       "1.0.0",
		ServerName:    "mcp-bridge-inspector",
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
// Commands may define extra flags on pflag.CommandLine before calling it.
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

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// flagKeys lists every key that is both a flag and a viper setting
var flagKeys = []string{
	"mode", "host", "port", "metrics-addr",
	"storage", "bucket", "region", "endpoint", "pathstyle",
	"dbdriver", "dsn",
	"maxfilesize", "photoworkers", "photo-reuse", "frame-layer", "title-fallback", "names-file",
	"loglevel", "logformat",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix; "frame-layer" reads BRIDGE_FRAME_LAYER
	viper.SetEnvPrefix("BRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("metrics-addr", cfg.MetricsAddr)
	viper.SetDefault("storage", cfg.Storage)
	viper.SetDefault("bucket", cfg.Bucket)
	viper.SetDefault("region", cfg.Region)
	viper.SetDefault("endpoint", cfg.Endpoint)
	viper.SetDefault("pathstyle", cfg.PathStyle)
	viper.SetDefault("accesskey", cfg.AccessKeyID)
	viper.SetDefault("secretkey", cfg.SecretAccessKey)
	viper.SetDefault("dbdriver", cfg.DBDriver)
	viper.SetDefault("dsn", cfg.DSN)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("photoworkers", cfg.PhotoWorkers)
	viper.SetDefault("photo-reuse", cfg.PhotoReuse)
	viper.SetDefault("frame-layer", cfg.FrameLayer)
	viper.SetDefault("title-fallback", cfg.TitleFallback)
	viper.SetDefault("names-file", cfg.NamesFile)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("metrics-addr", cfg.MetricsAddr, "Address serving Prometheus metrics, empty to disable")
	pflag.String("storage", cfg.Storage, "Object store: 's3' or 'memory'")
	pflag.String("bucket", cfg.Bucket, "Bucket holding drawings and photos")
	pflag.String("region", cfg.Region, "Object store region")
	pflag.String("endpoint", cfg.Endpoint, "Custom S3 endpoint, e.g. a MinIO host")
	pflag.Bool("pathstyle", cfg.PathStyle, "Use path-style S3 addressing")
	pflag.String("dbdriver", cfg.DBDriver, "Database driver: 'pgx' or 'sqlite'")
	pflag.String("dsn", cfg.DSN, "Database connection string")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum drawing file size in bytes")
	pflag.Int("photoworkers", cfg.PhotoWorkers, "Concurrent photo folder listings")
	pflag.Bool("photo-reuse", cfg.PhotoReuse, "Reuse the previous photos when a numbered annotation has none")
	pflag.String("frame-layer", cfg.FrameLayer, "Layer holding span frames and photo labels")
	pflag.String("title-fallback", cfg.TitleFallback, "Title searched when the first span title is missing")
	pflag.String("names-file", cfg.NamesFile, "YAML file mapping photographer initials to names")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (json, console)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range flagKeys {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nBridge Inspector - damage records from annotated inspection drawings\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                            "+
			"# stdio mode, in-memory store (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --storage=s3 --bucket=inspection           "+
			"# stdio mode against S3\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dbdriver=pgx --dsn=$DB_URL # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  BRIDGE_MODE         Server mode\n")
		fmt.Fprintf(os.Stderr, "  BRIDGE_BUCKET       Bucket name\n")
		fmt.Fprintf(os.Stderr, "  BRIDGE_ACCESSKEY    Static access key (optional)\n")
		fmt.Fprintf(os.Stderr, "  BRIDGE_SECRETKEY    Static secret key (optional)\n")
		fmt.Fprintf(os.Stderr, "  BRIDGE_DSN          Database connection string\n")
		fmt.Fprintf(os.Stderr, "  BRIDGE_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  Every flag can be set as BRIDGE_<FLAG>, dashes as underscores.\n")
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
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.MetricsAddr = viper.GetString("metrics-addr")
	cfg.Storage = viper.GetString("storage")
	cfg.Bucket = viper.GetString("bucket")
	cfg.Region = viper.GetString("region")
	cfg.Endpoint = viper.GetString("endpoint")
	cfg.PathStyle = viper.GetBool("pathstyle")
	cfg.AccessKeyID = viper.GetString("accesskey")
	cfg.SecretAccessKey = viper.GetString("secretkey")
	cfg.DBDriver = viper.GetString("dbdriver")
	cfg.DSN = viper.GetString("dsn")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.PhotoWorkers = viper.GetInt("photoworkers")
	cfg.PhotoReuse = viper.GetBool("photo-reuse")
	cfg.FrameLayer = viper.GetString("frame-layer")
	cfg.TitleFallback = viper.GetString("title-fallback")
	cfg.NamesFile = viper.GetString("names-file")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate object store
	switch c.Storage {
	case StorageMemory:
	case StorageS3:
		if c.Bucket == "" {
			return errors.New("bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("invalid storage: %s (must be one of: s3, memory)", c.Storage)
	}

	// Validate database
	if c.DBDriver != "pgx" && c.DBDriver != "sqlite" {
		return fmt.Errorf("invalid database driver: %s (must be one of: pgx, sqlite)", c.DBDriver)
	}
	if c.DBDriver == "pgx" && c.DSN == "" {
		return errors.New("dsn is required for the pgx driver")
	}

	// Validate names file
	if c.NamesFile != "" {
		if _, err := os.Stat(c.NamesFile); err != nil {
			return fmt.Errorf("cannot access names file %s: %w", c.NamesFile, err)
		}
	}

	// Validate limits
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.PhotoWorkers < 1 {
		return errors.New("photo workers must be at least 1")
	}
	if c.FrameLayer == "" {
		return errors.New("frame layer cannot be empty")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("invalid log format: %s (must be one of: json, console)", c.LogFormat)
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

// String returns a string representation of the configuration. Secrets and
// the DSN are left out.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Storage: %s, Bucket: %s, DBDriver: %s, "+
		"FrameLayer: %s, PhotoWorkers: %d, PhotoReuse: %t, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.Storage, c.Bucket, c.DBDriver,
		c.FrameLayer, c.PhotoWorkers, c.PhotoReuse, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// UsesS3 reports whether drawings and photos live in S3
func (c *Config) UsesS3() bool {
	return c.Storage == StorageS3
}
