package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.ServerName != "mcp-bridge-inspector" {
		t.Errorf("Expected default server name to be 'mcp-bridge-inspector', got '%s'", cfg.ServerName)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("Expected default storage to be 'memory', got '%s'", cfg.Storage)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("Expected default database driver to be 'sqlite', got '%s'", cfg.DBDriver)
	}
	if cfg.FrameLayer != "Defpoints" {
		t.Errorf("Expected default frame layer to be 'Defpoints', got '%s'", cfg.FrameLayer)
	}
	if cfg.TitleFallback != "損傷図" {
		t.Errorf("Expected default title fallback to be '損傷図', got '%s'", cfg.TitleFallback)
	}
	if !cfg.PhotoReuse {
		t.Error("Expected photo reuse to be enabled by default")
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	namesFile := filepath.Join(t.TempDir(), "names.yaml")
	if err := os.WriteFile(namesFile, []byte("default: []\n"), 0o600); err != nil {
		t.Fatalf("Failed to write names file: %v", err)
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid config - stdio mode", modify: func(*Config) {}},
		{name: "valid config - server mode", modify: func(c *Config) { c.Mode = ModeServer }},
		{
			name:    "invalid mode",
			modify:  func(c *Config) { c.Mode = "invalid" },
			wantErr: "mode must be either 'stdio' or 'server'",
		},
		{
			name:    "invalid port - too low (server mode)",
			modify:  func(c *Config) { c.Mode = ModeServer; c.Port = 0 },
			wantErr: "port must be between 1 and 65535",
		},
		{
			name:    "invalid port - too high (server mode)",
			modify:  func(c *Config) { c.Mode = ModeServer; c.Port = 70000 },
			wantErr: "port must be between 1 and 65535",
		},
		{name: "invalid port ignored in stdio mode", modify: func(c *Config) { c.Port = 0 }},
		{
			name:    "s3 without bucket",
			modify:  func(c *Config) { c.Storage = StorageS3 },
			wantErr: "bucket is required",
		},
		{name: "s3 with bucket", modify: func(c *Config) { c.Storage = StorageS3; c.Bucket = "inspection" }},
		{
			name:    "unknown storage",
			modify:  func(c *Config) { c.Storage = "ftp" },
			wantErr: "invalid storage",
		},
		{
			name:    "unknown database driver",
			modify:  func(c *Config) { c.DBDriver = "mysql" },
			wantErr: "invalid database driver",
		},
		{
			name:    "pgx without dsn",
			modify:  func(c *Config) { c.DBDriver = "pgx"; c.DSN = "" },
			wantErr: "dsn is required",
		},
		{name: "names file present", modify: func(c *Config) { c.NamesFile = namesFile }},
		{
			name:    "names file missing",
			modify:  func(c *Config) { c.NamesFile = namesFile + ".missing" },
			wantErr: "cannot access names file",
		},
		{
			name:    "invalid max file size",
			modify:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: "maximum file size must be positive",
		},
		{
			name:    "no photo workers",
			modify:  func(c *Config) { c.PhotoWorkers = 0 },
			wantErr: "photo workers",
		},
		{
			name:    "empty frame layer",
			modify:  func(c *Config) { c.FrameLayer = "" },
			wantErr: "frame layer",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Config.Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{logLevel: "debug", want: true},
		{logLevel: "info", want: false},
		{logLevel: "warn", want: false},
		{logLevel: "error", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeServer
	cfg.Storage = StorageS3
	cfg.Bucket = "inspection"
	cfg.SecretAccessKey = "do-not-print"
	cfg.DSN = "postgres://user:secret@db/bridges"

	result := cfg.String()

	for _, substr := range []string{
		"Mode: server",
		"Storage: s3",
		"Bucket: inspection",
		"DBDriver: sqlite",
		"FrameLayer: Defpoints",
		"PhotoReuse: true",
	} {
		if !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
	for _, secret := range []string{"do-not-print", "secret@db"} {
		if strings.Contains(result, secret) {
			t.Errorf("Config.String() leaks %q: %s", secret, result)
		}
	}
}

func TestConfigModes(t *testing.T) {
	server := &Config{Mode: ModeServer}
	stdio := &Config{Mode: ModeStdio}

	if !server.IsServerMode() || server.IsStdioMode() {
		t.Error("server mode misreported")
	}
	if !stdio.IsStdioMode() || stdio.IsServerMode() {
		t.Error("stdio mode misreported")
	}
	if (&Config{Storage: StorageS3}).UsesS3() != true {
		t.Error("UsesS3() should be true for s3 storage")
	}
	if DefaultConfig().UsesS3() {
		t.Error("UsesS3() should be false for the default storage")
	}
}
