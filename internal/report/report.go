// Package report renders damage records into the inspection spreadsheet:
// a damage list sheet and a photo ledger sheet with embedded photos.
package report

import (
	"context"
	"fmt"
	_ "image/jpeg" // decoder for embedded photos
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-bridge-inspector/internal/cache"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/record"
)

// Sheet names.
const (
	DamageSheet = "損傷一覧"
	PhotoSheet  = "写真台帳"
)

var damageHeader = []string{"番号", "径間", "部材名", "要素番号", "部材記号", "損傷の種類", "程度", "所見", "写真番号", "写真"}

var photoHeader = []string{"写真番号", "部材", "損傷", "メモ", "写真"}

// Fetcher downloads photo bytes. blob.Store satisfies it.
type Fetcher interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// PhotoCacheSize bounds the photos kept in memory while rendering.
const PhotoCacheSize = 64

// Renderer writes reports. Photos shared by several records are downloaded
// once.
type Renderer struct {
	photos Fetcher
	cache  *cache.LRU[string, []byte]
	logger *zap.Logger
}

// NewRenderer creates a Renderer. photos may be nil, in which case the
// ledger lists photo keys without embedding them.
func NewRenderer(photos Fetcher, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{photos: photos, cache: cache.New[string, []byte](PhotoCacheSize), logger: logger}
}

// Render writes records, in the order given, as an xlsx workbook to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, records []record.DamageRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DamageSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(PhotoSheet); err != nil {
		return fmt.Errorf("create photo sheet: %w", err)
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := r.damageList(f, records, wrap); err != nil {
		return err
	}
	if err := r.photoLedger(ctx, f, records, wrap); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func header(names []string) []interface{} {
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func (r *Renderer) damageList(f *excelize.File, records []record.DamageRecord, style int) error {
	if err := writeRow(f, DamageSheet, 1, header(damageHeader)); err != nil {
		return err
	}
	for i, rec := range records {
		picture := ""
		if rec.PictureNumber > 0 {
			picture = fmt.Sprint(rec.PictureNumber)
		}
		row := []interface{}{
			i + 1,
			rec.Span,
			rec.PartName,
			rec.Symbol + rec.ElementNumber,
			rec.Member,
			rec.DamageName,
			rec.Severity,
			rec.Comment,
			picture,
			strings.Join(rec.PhotoRefs, "\n"),
		}
		if err := writeRow(f, DamageSheet, i+2, row); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(damageHeader), len(records)+1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(DamageSheet, "A1", last, style); err != nil {
		return err
	}
	if err := f.SetColWidth(DamageSheet, "C", "F", 16); err != nil {
		return err
	}
	return f.SetColWidth(DamageSheet, "H", "H", 48)
}

func (r *Renderer) photoLedger(ctx context.Context, f *excelize.File, records []record.DamageRecord, style int) error {
	if err := writeRow(f, PhotoSheet, 1, header(photoHeader)); err != nil {
		return err
	}
	if err := f.SetColWidth(PhotoSheet, "B", "D", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(PhotoSheet, "E", "E", 40); err != nil {
		return err
	}

	row := 2
	for _, rec := range records {
		if len(rec.PhotoRefs) == 0 {
			continue
		}
		key := rec.PhotoRefs[0]
		values := []interface{}{
			rec.PictureNumber,
			rec.Part(),
			rec.Damage(),
			rec.Memo,
			path.Base(key),
		}
		if err := writeRow(f, PhotoSheet, row, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(PhotoSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), style); err != nil {
			return err
		}
		if r.embed(ctx, f, fmt.Sprintf("E%d", row), key) {
			if err := f.SetRowHeight(PhotoSheet, row, 150); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

// embed places the photo at cell. Failures are logged and leave the key text
// in place.
func (r *Renderer) embed(ctx context.Context, f *excelize.File, cell, key string) bool {
	if r.photos == nil {
		return false
	}
	data, err := r.photo(ctx, key)
	if err != nil {
		r.logger.Warn("photo download failed", zap.String("key", key), zap.Error(err))
		return false
	}
	err = f.AddPictureFromBytes(PhotoSheet, cell, &excelize.Picture{
		Extension: strings.ToLower(path.Ext(key)),
		File:      data,
		Format:    &excelize.GraphicOptions{AutoFit: true},
	})
	if err != nil {
		r.logger.Warn("photo could not be embedded", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *Renderer) photo(ctx context.Context, key string) ([]byte, error) {
	if data, ok := r.cache.Get(key); ok {
		return data, nil
	}
	data, err := r.photos.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	r.cache.Put(key, data)
	return data, nil
}

// CacheStats reports how often photos were served from memory.
func (r *Renderer) CacheStats() cache.Stats {
	return r.cache.Stats()
}
