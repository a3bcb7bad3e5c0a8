package report

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-bridge-inspector/internal/blob"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/record"
)

func tinyJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestRender(t *testing.T) {
	photos := blob.NewMemory()
	photos.Put("長生/橋A/佐藤/P0047.jpg", tinyJPEG(t))

	records := []record.DamageRecord{
		{
			Span:          "1",
			PartName:      "主桁",
			Symbol:        "Mg",
			ElementNumber: "0101",
			Member:        "主桁 Mg01",
			DamageName:    "①腐食",
			Severity:      "c",
			Comment:       "主桁に腐食が見られる。",
			PictureNumber: 1,
			PhotoRefs:     []string{"長生/橋A/佐藤/P0047.jpg"},
			Memo:          "主桁 01,①腐食-c",
		},
		{
			Span:          "1",
			PartName:      "横桁",
			Symbol:        "Cr",
			ElementNumber: "0102",
			DamageName:    "⑦剥離・鉄筋露出",
			Severity:      "d",
			PhotoRefs:     []string{"長生/橋A/佐藤/missing.jpg"},
		},
		{
			Span:          "2",
			PartName:      "床版",
			Symbol:        "Ds",
			ElementNumber: "0101",
			DamageName:    "NON",
			PhotoRefs:     []string{},
		},
	}

	var buf bytes.Buffer
	r := NewRenderer(photos, zap.NewNop())
	require.NoError(t, r.Render(context.Background(), &buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DamageSheet, PhotoSheet}, f.GetSheetList())

	rows, err := f.GetRows(DamageSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, damageHeader, rows[0])
	assert.Equal(t, "主桁", rows[1][2])
	assert.Equal(t, "Mg0101", rows[1][3])
	assert.Equal(t, "主桁に腐食が見られる。", rows[1][7])
	assert.Equal(t, "1", rows[1][8])
	assert.Equal(t, "長生/橋A/佐藤/P0047.jpg", rows[1][9])

	ledger, err := f.GetRows(PhotoSheet)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, "主桁 Mg0101", ledger[1][1])
	assert.Equal(t, "①腐食-c", ledger[1][2])
	assert.Equal(t, "missing.jpg", ledger[2][4])

	pics, err := f.GetPictures(PhotoSheet, "E2")
	require.NoError(t, err)
	assert.Len(t, pics, 1)

	pics, err = f.GetPictures(PhotoSheet, "E3")
	require.NoError(t, err)
	assert.Empty(t, pics)
}

func TestRenderWithoutFetcher(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(nil, nil)
	require.NoError(t, r.Render(context.Background(), &buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DamageSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRenderDownloadsSharedPhotoOnce(t *testing.T) {
	photos := blob.NewMemory()
	photos.Put("長生/橋A/佐藤/P0047.jpg", tinyJPEG(t))
	shared := []string{"長生/橋A/佐藤/P0047.jpg"}

	records := []record.DamageRecord{
		{PartName: "主桁", Symbol: "Mg", ElementNumber: "0101", DamageName: "①腐食", Severity: "c", PhotoRefs: shared},
		{PartName: "主桁", Symbol: "Mg", ElementNumber: "0102", DamageName: "①腐食", Severity: "c", PhotoRefs: shared},
	}

	r := NewRenderer(photos, nil)
	require.NoError(t, r.Render(context.Background(), &bytes.Buffer{}, records))

	stats := r.CacheStats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Hits)
}
