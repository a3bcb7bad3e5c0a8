package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Upload(ctx, "p/d/d.dxf", []byte("0\nEOF\n"), "application/dxf"))
	data, err := m.Download(ctx, "p/d/d.dxf")
	require.NoError(t, err)
	assert.Equal(t, "0\nEOF\n", string(data))

	_, err = m.Download(ctx, "p/d/missing.dxf")
	assert.True(t, errors.Is(err, ErrNotFound))

	m.Put("p/d/photos/a.jpg", nil)
	m.Put("q/x.jpg", nil)
	keys, err := m.List(ctx, "p/")
	require.NoError(t, err)
	assert.Equal(t, []string{"p/d/d.dxf", "p/d/photos/a.jpg"}, keys)
	assert.Equal(t, 1, m.ListCalls())
}

func TestFindDrawing(t *testing.T) {
	ctx := context.Background()

	t.Run("canonical", func(t *testing.T) {
		m := NewMemory()
		m.Put("長生/橋A/橋A.dxf", nil)
		m.Put("長生/旧橋A/橋A.dxf", nil)
		key, err := FindDrawing(ctx, m, "長生", "橋A")
		require.NoError(t, err)
		assert.Equal(t, DrawingKey("長生", "橋A"), key)
	})

	t.Run("fallback folder", func(t *testing.T) {
		m := NewMemory()
		m.Put("長生/01_橋A/橋A.dxf", nil)
		key, err := FindDrawing(ctx, m, "長生", "橋A")
		require.NoError(t, err)
		assert.Equal(t, "長生/01_橋A/橋A.dxf", key)
	})

	t.Run("missing", func(t *testing.T) {
		m := NewMemory()
		m.Put("長生/橋B/橋B.dxf", nil)
		_, err := FindDrawing(ctx, m, "長生", "橋A")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewS3WithStaticKeys(t *testing.T) {
	s, err := NewS3(context.Background(), S3Config{
		Bucket:          "inspection",
		Endpoint:        "localhost:9000",
		PathStyle:       true,
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "inspection", s.bucket)
}

var _ Store = (*S3)(nil)
var _ Store = (*Memory)(nil)
