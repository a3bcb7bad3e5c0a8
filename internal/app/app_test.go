package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-bridge-inspector/internal/blob"
	"github.com/a3tai/mcp-bridge-inspector/internal/config"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
)

func memoryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.DSN = ":memory:"
	return cfg
}

func TestNewWithMemoryStore(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &blob.Memory{}, a.Blobs)
	assert.NotNil(t, a.Service)

	records, err := a.Service.Records(context.Background(), "p", "d")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewWithS3Store(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage = config.StorageS3
	cfg.Bucket = "inspection"
	cfg.Endpoint = "localhost:9000"
	cfg.PathStyle = true
	cfg.AccessKeyID = "minio"
	cfg.SecretAccessKey = "minio123"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.IsType(t, &blob.S3{}, a.Blobs)
}

func TestNewLoadsNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default:\n  - alphabet: S\n    name: 佐藤\n"), 0o600))

	cfg := memoryConfig()
	cfg.NamesFile = path
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	cfg.NamesFile = path + ".missing"
	_, err = New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	cfg := memoryConfig()
	cfg.FrameLayer = "枠"
	cfg.PhotoWorkers = 3
	cfg.PhotoReuse = false
	names := &catalog.NameBook{}

	opts := Options(cfg, names)
	assert.Equal(t, "枠", opts.FrameLayer)
	assert.Equal(t, "損傷図", opts.TitleFallback)
	assert.Equal(t, 3, opts.PhotoWorkers)
	assert.False(t, opts.PhotoReuse)
	assert.Same(t, names, opts.Names)
}

func TestNewLogger(t *testing.T) {
	cfg := memoryConfig()
	cfg.LogFormat = "console"
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
