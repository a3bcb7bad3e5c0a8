// Package inspection runs the damage-record pipeline for whole drawings:
// it downloads a drawing, walks its spans in order, turns every annotation
// into damage records with photos and hands them to the store.
package inspection

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-bridge-inspector/internal/blob"
	"github.com/a3tai/mcp-bridge-inspector/internal/dxf"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/geometry"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/photo"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/record"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/shorthand"
	"github.com/a3tai/mcp-bridge-inspector/internal/logging"
	"github.com/a3tai/mcp-bridge-inspector/internal/metrics"
	"github.com/a3tai/mcp-bridge-inspector/internal/report"
	"github.com/a3tai/mcp-bridge-inspector/internal/store"
)

// Options configures a Service.
type Options struct {
	FrameLayer    string
	TitleFallback string
	MaxFileSize   int64
	PhotoWorkers  int
	PhotoReuse    bool
	Names         *catalog.NameBook
}

// DefaultOptions matches the drawing conventions of the inspection office.
func DefaultOptions() Options {
	return Options{
		FrameLayer:    "Defpoints",
		TitleFallback: "損傷図",
		MaxFileSize:   100 * 1024 * 1024,
		PhotoWorkers:  photo.DefaultWorkers,
		PhotoReuse:    true,
	}
}

// Service imports drawings into a store.
type Service struct {
	blobs  blob.Store
	sink   store.Sink
	opts   Options
	logger *zap.Logger
}

// NewService creates a Service.
func NewService(blobs blob.Store, sink store.Sink, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{blobs: blobs, sink: sink, opts: opts, logger: logger}
}

// ImportRequest names the drawing to import. A SpanCount of zero imports
// every span titled in the drawing.
type ImportRequest struct {
	Project   string `json:"project"`
	Drawing   string `json:"drawing"`
	SpanCount int    `json:"span_count,omitempty"`
}

// SpanResult summarizes one span.
type SpanResult struct {
	Span        string `json:"span"`
	Skipped     bool   `json:"skipped,omitempty"`
	Annotations int    `json:"annotations"`
	Records     int    `json:"records"`
	Inserted    int    `json:"inserted"`
	Unchanged   int    `json:"unchanged"`
}

// ImportResult is the outcome of ImportDrawing.
type ImportResult struct {
	RunID       string                 `json:"run_id"`
	Project     string                 `json:"project"`
	Drawing     string                 `json:"drawing"`
	Key         string                 `json:"key"`
	Spans       []SpanResult           `json:"spans"`
	Records     []record.DamageRecord  `json:"records"`
	Inserted    int                    `json:"inserted"`
	Unchanged   int                    `json:"unchanged"`
	Diagnostics *inserrors.Diagnostics `json:"diagnostics"`
	State       ParserState            `json:"-"`
	Duration    time.Duration          `json:"duration"`
}

var spanTitleRe = regexp.MustCompile(`^(\d+)` + catalog.SpanTitleSuffix + `$`)

// SpanTitle returns the title text of span n, e.g. "2径間".
func SpanTitle(n int) string {
	return fmt.Sprintf("%d%s", n, catalog.SpanTitleSuffix)
}

// CountSpans returns the highest span number titled in the drawing, or 1
// when no numbered span title is present. Gaps are not closed here: a missing
// title is reported when that span is imported.
func CountSpans(doc *dxf.Document) int {
	count := 1
	for _, e := range doc.Query(dxf.KindMText, nil) {
		m := spanTitleRe.FindStringSubmatch(strings.TrimSpace(e.PlainText()))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > count {
			count = n
		}
	}
	return count
}

func (s *Service) geometryOptions() geometry.Options {
	opts := geometry.DefaultOptions()
	if s.opts.FrameLayer != "" {
		opts.FrameLayer = s.opts.FrameLayer
	}
	return opts
}

// LoadDrawing downloads and parses a drawing. It returns the key the
// drawing was found under.
func (s *Service) LoadDrawing(ctx context.Context, project, drawing string) (*dxf.Document, string, error) {
	key, err := blob.FindDrawing(ctx, s.blobs, project, drawing)
	if err != nil {
		return nil, "", inserrors.NewBlobAccess(blob.DrawingKey(project, drawing), err).WithDrawing(project, drawing)
	}

	data, err := s.blobs.Download(ctx, key)
	if err != nil {
		return nil, "", inserrors.NewBlobAccess(key, err).WithDrawing(project, drawing)
	}
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return nil, "", inserrors.NewDocumentParse(
			fmt.Sprintf("drawing is %d bytes, limit is %d", len(data), s.opts.MaxFileSize), nil,
		).WithDrawing(project, drawing)
	}

	doc, err := dxf.ParseBytes(data)
	if err != nil {
		return nil, "", inserrors.NewDocumentParse("failed to parse "+key, err).WithDrawing(project, drawing)
	}
	return doc, key, nil
}

// ImportDrawing imports every requested span of a drawing, strictly in
// span order. A drawing that cannot be fetched or parsed fails the import;
// span-level problems are collected in the result's diagnostics.
func (s *Service) ImportDrawing(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	start := time.Now()
	if req.Project == "" || req.Drawing == "" {
		return nil, errors.New("project and drawing are required")
	}

	result := &ImportResult{
		RunID:       uuid.NewString(),
		Project:     req.Project,
		Drawing:     req.Drawing,
		Diagnostics: inserrors.NewDiagnostics(req.Drawing),
		State:       NewParserState(),
	}
	logger := logging.Drawing(s.logger, req.Project, req.Drawing).With(zap.String("run_id", result.RunID))

	doc, key, err := s.LoadDrawing(ctx, req.Project, req.Drawing)
	if err != nil {
		metrics.RecordImport("failed", time.Since(start))
		logger.Error("drawing import failed", zap.Error(err))
		return nil, err
	}
	result.Key = key

	spans := req.SpanCount
	if spans <= 0 {
		spans = CountSpans(doc)
	}

	resolver := s.newResolver(req.Project, req.Drawing, logger)

	for n := 1; n <= spans; n++ {
		span, records, state, err := s.importSpan(ctx, doc, n, result.State, resolver, result.Diagnostics, logger)
		if err != nil {
			metrics.RecordImport("failed", time.Since(start))
			return nil, err
		}
		result.State = state
		result.Spans = append(result.Spans, span)
		result.Records = append(result.Records, records...)
		result.Inserted += span.Inserted
		result.Unchanged += span.Unchanged
	}

	result.Duration = time.Since(start)
	metrics.RecordImport("succeeded", result.Duration)
	logger.Info("drawing imported",
		zap.String("key", key),
		zap.Int("spans", spans),
		zap.Int("records", len(result.Records)),
		zap.Int("inserted", result.Inserted),
		zap.Int("unchanged", result.Unchanged),
		zap.String("diagnostics", result.Diagnostics.Summary()),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// importSpan processes span n and persists its records before returning.
func (s *Service) importSpan(
	ctx context.Context,
	doc *dxf.Document,
	n int,
	state ParserState,
	resolver *photo.Resolver,
	diag *inserrors.Diagnostics,
	logger *zap.Logger,
) (SpanResult, []record.DamageRecord, ParserState, error) {
	label := fmt.Sprint(n)
	out := SpanResult{Span: label}
	logger = logger.With(zap.String("span", label))

	fallback := ""
	if n == 1 {
		fallback = s.opts.TitleFallback
	}
	annotations, err := geometry.Locate(doc, SpanTitle(n), fallback, s.geometryOptions())
	if err != nil {
		var ie *inserrors.InspectionError
		if errors.As(err, &ie) {
			ie.WithSpan(label)
			metrics.RecordSpanSkipped(ie.Type.String())
		}
		diag.Add(err)
		logger.Warn("span skipped", zap.Error(err))
		out.Skipped = true
		return out, nil, state, nil
	}
	out.Annotations = len(annotations)

	var records []record.DamageRecord
	for _, a := range annotations {
		metrics.RecordAnnotation(a.Unspecified())
		for _, parsed := range shorthand.Normalize(a) {
			recs, next, err := s.buildRecords(ctx, parsed, label, state, resolver, diag, logger)
			if err != nil {
				return out, nil, state, err
			}
			state = next
			records = append(records, recs...)
		}
	}

	record.Sort(records)
	for _, rec := range records {
		outcome, err := s.sink.Upsert(ctx, rec)
		if err != nil {
			return out, nil, state, fmt.Errorf("span %s: %w", label, err)
		}
		if outcome == store.OutcomeInserted {
			out.Inserted++
		} else {
			out.Unchanged++
		}
	}
	out.Records = len(records)

	logger.Debug("span imported",
		zap.Int("annotations", out.Annotations),
		zap.Int("records", out.Records),
		zap.Int("inserted", out.Inserted))
	return out, records, state, nil
}

// buildRecords assembles one parsed annotation and attaches its photos.
func (s *Service) buildRecords(
	ctx context.Context,
	parsed shorthand.Parsed,
	span string,
	state ParserState,
	resolver *photo.Resolver,
	diag *inserrors.Diagnostics,
	logger *zap.Logger,
) ([]record.DamageRecord, ParserState, error) {
	rctx := record.Context{
		Project:          resolver.Project(),
		Drawing:          resolver.Drawing(),
		Span:             span,
		DamageCoordinate: record.Coordinate{X: parsed.Source.Position.X, Y: parsed.Source.Position.Y},
	}
	if lp := parsed.Source.LinkedPosition; lp != nil {
		rctx.PictureCoordinate = &record.Coordinate{X: lp.X, Y: lp.Y}
	}

	asm := record.Assemble(parsed, rctx)
	for _, w := range asm.Warnings {
		var ie *inserrors.InspectionError
		if errors.As(w, &ie) {
			ie.WithSpan(span)
		}
		diag.Add(w)
		logger.Warn("annotation assembled with warnings",
			zap.String("annotation", parsed.Source.Text),
			zap.String("policy", asm.Policy.String()),
			zap.Error(w))
	}
	if len(asm.Records) == 0 {
		return nil, state, nil
	}

	var found []string
	if parsed.PhotoSpec != "" {
		keys, err := resolver.ResolveSpec(ctx, parsed.PhotoSpec)
		if err != nil {
			return nil, state, err
		}
		found = keys
		if len(found) == 0 {
			diag.Add(inserrors.NewPhotoResolutionEmpty(parsed.PhotoSpec).WithSpan(span))
			logger.Info("no photo matched", zap.String("photo_spec", parsed.PhotoSpec))
		}
	}

	state.Fallback.Observe(found)
	if s.opts.PhotoReuse {
		reused, ok := state.Fallback.Reuse(found, len(parsed.PictureNumbers) > 0)
		if ok {
			logger.Warn("reusing previous photos for annotation without a match",
				zap.String("annotation", parsed.Source.Text),
				zap.Strings("photos", reused))
			found = reused
		}
	}

	for i, refs := range state.Rotator.Assign(found, len(asm.Records)) {
		asm.Records[i].PhotoRefs = refs
	}
	state = state.NumberPictures(parsed, asm.Records)
	return asm.Records, state, nil
}

// Records lists the stored records of a drawing in report order.
func (s *Service) Records(ctx context.Context, project, drawing string) ([]record.DamageRecord, error) {
	return s.sink.List(ctx, project, drawing)
}

// ExtractAnnotations returns the raw annotations of one span of a stored
// drawing.
func (s *Service) ExtractAnnotations(ctx context.Context, project, drawing string, span int) ([]geometry.RawAnnotation, error) {
	doc, _, err := s.LoadDrawing(ctx, project, drawing)
	if err != nil {
		return nil, err
	}
	return s.Locate(doc, span)
}

// Locate returns the raw annotations of span n of doc.
func (s *Service) Locate(doc *dxf.Document, n int) ([]geometry.RawAnnotation, error) {
	fallback := ""
	if n == 1 {
		fallback = s.opts.TitleFallback
	}
	return geometry.Locate(doc, SpanTitle(n), fallback, s.geometryOptions())
}

// NewResolver returns a photo resolver for one drawing.
func (s *Service) NewResolver(project, drawing string) *photo.Resolver {
	return s.newResolver(project, drawing, s.logger)
}

func (s *Service) newResolver(project, drawing string, logger *zap.Logger) *photo.Resolver {
	return photo.NewResolver(s.blobs, photo.Options{
		Project: project,
		Drawing: drawing,
		Names:   s.opts.Names.For(project),
		Workers: s.opts.PhotoWorkers,
	}, logger)
}

// NewRenderer returns a report renderer fetching photos from the blob store.
func (s *Service) NewRenderer() *report.Renderer {
	return report.NewRenderer(s.blobs, s.logger)
}
