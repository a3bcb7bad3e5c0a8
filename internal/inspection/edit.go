package inspection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-bridge-inspector/internal/dxf"
	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
)

// CoordinateTolerance is how close a text's insertion point must be to an
// edit coordinate.
const CoordinateTolerance = 0.001

// ErrTextNotFound is returned when no text sits at the requested coordinate.
var ErrTextNotFound = errors.New("no text at coordinate")

// EditResult describes an applied annotation edit.
type EditResult struct {
	Key     string `json:"key"`
	Handle  string `json:"handle"`
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
	Deleted int64  `json:"deleted_records"`
}

// AnnotationText returns the text inserted at (x, y) on a stored drawing.
func (s *Service) AnnotationText(ctx context.Context, project, drawing string, x, y float64) (string, error) {
	doc, _, err := s.LoadDrawing(ctx, project, drawing)
	if err != nil {
		return "", err
	}
	e := doc.FindTextAt(x, y, CoordinateTolerance)
	if e == nil {
		return "", fmt.Errorf("%s at %g,%g: %w", drawing, x, y, ErrTextNotFound)
	}
	return e.PlainText(), nil
}

// EditAnnotation replaces the text at (x, y), uploads the rewritten drawing
// and then deletes the records imported from that coordinate. The records are
// recreated by the next import. A failed upload leaves the records alone.
func (s *Service) EditAnnotation(ctx context.Context, project, drawing string, x, y float64, text string) (*EditResult, error) {
	doc, key, err := s.LoadDrawing(ctx, project, drawing)
	if err != nil {
		return nil, err
	}
	e := doc.FindTextAt(x, y, CoordinateTolerance)
	if e == nil {
		return nil, fmt.Errorf("%s at %g,%g: %w", drawing, x, y, ErrTextNotFound)
	}

	result := &EditResult{Key: key, Handle: e.Handle, OldText: e.PlainText(), NewText: text}

	e.SetText(text)
	if e.Kind == dxf.KindMText {
		e.SetAttachment(dxf.AttachBottomLeft)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, inserrors.NewDocumentParse("failed to serialise "+key, err).WithDrawing(project, drawing)
	}
	if err := s.blobs.Upload(ctx, key, buf.Bytes(), "application/dxf"); err != nil {
		return nil, inserrors.NewBlobAccess(key, err).WithDrawing(project, drawing)
	}

	deleted, err := s.sink.DeleteAt(ctx, project, drawing, x, y, CoordinateTolerance)
	if err != nil {
		return nil, fmt.Errorf("drawing %s uploaded but records at %g,%g were kept: %w", key, x, y, err)
	}
	result.Deleted = deleted

	s.logger.Info("annotation edited",
		zap.String("project", project),
		zap.String("drawing", drawing),
		zap.String("handle", e.Handle),
		zap.Int64("deleted_records", deleted))
	return result, nil
}

// RenderReport writes the spreadsheet report of a drawing to w.
func (s *Service) RenderReport(ctx context.Context, w io.Writer, project, drawing string) error {
	records, err := s.Records(ctx, project, drawing)
	if err != nil {
		return err
	}
	return s.NewRenderer().Render(ctx, w, records)
}
