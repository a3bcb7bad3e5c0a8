package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-bridge-inspector/internal/config"
	"github.com/a3tai/mcp-bridge-inspector/internal/descriptions"
	"github.com/a3tai/mcp-bridge-inspector/internal/dxf"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection"
	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/geometry"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/record"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/shorthand"
	"github.com/a3tai/mcp-bridge-inspector/internal/metrics"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *inspection.Service
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *inspection.Service, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("inspection service cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // The tool set is fixed
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"dxf_extract_annotations",
		mcp.WithDescription(descriptions.DXFExtractAnnotationsDescription),
		mcp.WithString("project", mcp.Description("Project folder in the object store")),
		mcp.WithString("drawing", mcp.Description("Drawing name in the object store")),
		mcp.WithString("path", mcp.Description("Local DXF file, used instead of project and drawing")),
		mcp.WithNumber("span", mcp.Description("Span number, default 1")),
	), s.handleExtractAnnotations)

	s.mcpServer.AddTool(mcp.NewTool(
		"dxf_edit_annotation",
		mcp.WithDescription(descriptions.DXFEditAnnotationDescription),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder in the object store")),
		mcp.WithString("drawing", mcp.Required(), mcp.Description("Drawing name in the object store")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Insertion point X")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Insertion point Y")),
		mcp.WithString("text", mcp.Description("Replacement text; omit to read the current text")),
	), s.handleEditAnnotation)

	s.mcpServer.AddTool(mcp.NewTool(
		"shorthand_normalize",
		mcp.WithDescription(descriptions.ShorthandNormalizeDescription),
		mcp.WithString("text", mcp.Required(), mcp.Description("Annotation text, one line per row")),
		mcp.WithString("label", mcp.Description("Linked frame-layer label")),
	), s.handleShorthandNormalize)

	s.mcpServer.AddTool(mcp.NewTool(
		"photo_resolve",
		mcp.WithDescription(descriptions.PhotoResolveDescription),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder in the object store")),
		mcp.WithString("drawing", mcp.Required(), mcp.Description("Drawing name in the object store")),
		mcp.WithString("spec", mcp.Required(), mcp.Description("Photo specification, e.g. '9月8日 S47,53'")),
	), s.handlePhotoResolve)

	s.mcpServer.AddTool(mcp.NewTool(
		"damage_import",
		mcp.WithDescription(descriptions.DamageImportDescription),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder in the object store")),
		mcp.WithString("drawing", mcp.Required(), mcp.Description("Drawing name in the object store")),
		mcp.WithNumber("spans", mcp.Description("Number of spans to import, default every titled span")),
	), s.handleDamageImport)

	s.mcpServer.AddTool(mcp.NewTool(
		"damage_records",
		mcp.WithDescription(descriptions.DamageRecordsDescription),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder in the object store")),
		mcp.WithString("drawing", mcp.Required(), mcp.Description("Drawing name in the object store")),
	), s.handleDamageRecords)

	s.mcpServer.AddTool(mcp.NewTool(
		"damage_report",
		mcp.WithDescription(descriptions.DamageReportDescription),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder in the object store")),
		mcp.WithString("drawing", mcp.Required(), mcp.Description("Drawing name in the object store")),
		mcp.WithString("output", mcp.Required(), mcp.Description("Local .xlsx path to write")),
	), s.handleDamageReport)

	s.mcpServer.AddTool(mcp.NewTool(
		"inspection_server_info",
		mcp.WithDescription(descriptions.InspectionServerInfoDescription),
	), s.handleServerInfo)
}

// Handler functions
func (s *Server) handleExtractAnnotations(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	span := request.GetInt("span", 1)
	if span < 1 {
		return mcp.NewToolResultError("span must be at least 1"), nil
	}

	var (
		annotations []geometry.RawAnnotation
		source      string
		err         error
	)
	if path := request.GetString("path", ""); path != "" {
		source = path
		annotations, err = s.extractLocal(path, span)
	} else {
		project, perr := request.RequireString("project")
		if perr != nil {
			return mcp.NewToolResultError("either path or project and drawing are required"), nil
		}
		drawing, derr := request.RequireString("drawing")
		if derr != nil {
			return mcp.NewToolResultError("either path or project and drawing are required"), nil
		}
		source = project + "/" + drawing
		annotations, err = s.service.ExtractAnnotations(ctx, project, drawing, span)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAnnotations(source, span, annotations)), nil
}

// extractLocal locates a span of a DXF file on local disk.
func (s *Server) extractLocal(path string, span int) ([]geometry.RawAnnotation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.Size() > s.config.MaxFileSize {
		return nil, inserrors.NewDocumentParse(
			fmt.Sprintf("%s is %d bytes, limit is %d", path, info.Size(), s.config.MaxFileSize), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := dxf.ParseBytes(data)
	if err != nil {
		return nil, inserrors.NewDocumentParse("failed to parse "+path, err)
	}
	return s.service.Locate(doc, span)
}

func (s *Server) handleEditAnnotation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	drawing, err := request.RequireString("drawing")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := request.GetString("text", "")
	if text == "" {
		current, err := s.service.AnnotationText(ctx, project, drawing, x, y)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Text at %g, %g:\n%s", x, y, current)), nil
	}

	result, err := s.service.EditAnnotation(ctx, project, drawing, x, y, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Edited %s (handle %s)\n", result.Key, result.Handle)
	responseText += fmt.Sprintf("Old text: %s\n", result.OldText)
	responseText += fmt.Sprintf("New text: %s\n", result.NewText)
	responseText += fmt.Sprintf("Deleted records: %d\n", result.Deleted)
	responseText += "\nRun damage_import to rebuild the records of this annotation."
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleShorthandNormalize(_ context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	annotation := geometry.RawAnnotation{
		Text:        strings.ReplaceAll(text, `\n`, "\n"),
		LinkedLabel: strings.ReplaceAll(request.GetString("label", ""), `\n`, "\n"),
	}

	parsed := shorthand.Normalize(annotation)
	if len(parsed) == 0 {
		return mcp.NewToolResultText("No damaged parts found"), nil
	}
	return mcp.NewToolResultText(formatParsed(parsed)), nil
}

func (s *Server) handlePhotoResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	drawing, err := request.RequireString("drawing")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec, err := request.RequireString("spec")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	keys, err := s.service.NewResolver(project, drawing).ResolveSpec(ctx, spec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(keys) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No photos found for: %s", spec)), nil
	}

	responseText := fmt.Sprintf("Found %d photo(s) for: %s\n", len(keys), spec)
	for i, key := range keys {
		responseText += fmt.Sprintf("%d. %s\n", i+1, key)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleDamageImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	drawing, err := request.RequireString("drawing")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ImportDrawing(ctx, inspection.ImportRequest{
		Project:   project,
		Drawing:   drawing,
		SpanCount: request.GetInt("spans", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result.Summary()), nil
}

func (s *Server) handleDamageRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	drawing, err := request.RequireString("drawing")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := s.service.Records(ctx, project, drawing)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No damage records for %s/%s", project, drawing)), nil
	}
	return mcp.NewToolResultText(formatRecords(project, drawing, records)), nil
}

func (s *Server) handleDamageReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	drawing, err := request.RequireString("drawing")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := os.Create(output)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot create %s: %v", output, err)), nil
	}
	renderErr := s.service.RenderReport(ctx, f, project, drawing)
	closeErr := f.Close()
	if err := errors.Join(renderErr, closeErr); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Report of %s/%s written to %s", project, drawing, output)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// Formatting methods
func formatAnnotations(source string, span int, annotations []geometry.RawAnnotation) string {
	text := fmt.Sprintf("%s: %d annotation(s) in %s\n", source, len(annotations), inspection.SpanTitle(span))
	for i, a := range annotations {
		text += fmt.Sprintf("\n%d. (%g, %g)", i+1, a.Position.X, a.Position.Y)
		if a.Handle != "" {
			text += fmt.Sprintf(" handle %s", a.Handle)
		}
		if a.Unspecified() {
			text += " [unspecified]"
		}
		text += "\n   " + strings.ReplaceAll(a.Text, "\n", "\n   ") + "\n"
		if a.LinkedLabel != "" {
			text += "   Label: " + strings.ReplaceAll(a.LinkedLabel, "\n", " / ") + "\n"
		}
	}
	return text
}

func formatParsed(parsed []shorthand.Parsed) string {
	var text string
	for i, p := range parsed {
		asm := record.Assemble(p, record.Context{})
		if len(parsed) > 1 {
			text += fmt.Sprintf("Line %d\n", i+1)
		}
		text += fmt.Sprintf("Parts groups: %d, damage groups: %d, alignment: %s\n",
			len(p.Parts), len(p.Damages), asm.Policy)
		for _, r := range asm.Records {
			text += fmt.Sprintf("  • %s %s\n", r.Part(), r.Damage())
		}
		if asm.Comment != "" {
			text += fmt.Sprintf("Comment: %s\n", asm.Comment)
		}
		if p.PhotoSpec != "" {
			text += fmt.Sprintf("Photos: %s\n", p.PhotoSpec)
		}
		if len(p.PictureNumbers) > 0 {
			text += fmt.Sprintf("Picture numbers: %v\n", p.PictureNumbers)
		}
		for _, w := range asm.Warnings {
			text += fmt.Sprintf("⚠️  %v\n", w)
		}
		if i < len(parsed)-1 {
			text += "\n"
		}
	}
	return text
}

func formatRecords(project, drawing string, records []record.DamageRecord) string {
	text := fmt.Sprintf("%d damage record(s) for %s/%s\n", len(records), project, drawing)
	for i, r := range records {
		text += fmt.Sprintf("\n%d. [%s] %s %s\n", i+1, r.Span, r.Part(), r.Damage())
		text += fmt.Sprintf("   Member: %s\n", r.Member)
		text += fmt.Sprintf("   Comment: %s\n", r.Comment)
		text += fmt.Sprintf("   At: (%g, %g)\n", r.DamageCoordinate.X, r.DamageCoordinate.Y)
		if len(r.PhotoRefs) > 0 {
			text += fmt.Sprintf("   Photos: %s\n", strings.Join(r.PhotoRefs, ", "))
		}
		if r.PictureNumber > 0 {
			text += fmt.Sprintf("   Picture number: %d\n", r.PictureNumber)
		}
	}
	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	store := s.config.Storage
	if s.config.UsesS3() {
		store += " (bucket " + s.config.Bucket + ")"
	}
	text += fmt.Sprintf("🗄️  Object store: %s\n", store)
	text += fmt.Sprintf("💾 Database: %s\n", s.config.DBDriver)
	text += fmt.Sprintf("📐 Frame layer: %s, fallback title: %s\n", s.config.FrameLayer, s.config.TitleFallback)
	text += fmt.Sprintf("📏 Max drawing size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("📷 Photo workers: %d, photo reuse: %t\n", s.config.PhotoWorkers, s.config.PhotoReuse)
	if s.config.MetricsAddr != "" {
		text += fmt.Sprintf("📈 Metrics: http://%s/metrics\n", s.config.MetricsAddr)
	}

	text += "\n🛠️  Available Tools:\n"
	for _, name := range descriptions.GetAllToolNames() {
		text += fmt.Sprintf("• %s: %s\n", name, descriptions.Summary(name))
	}
	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.MetricsAddr != "" {
		stop := s.serveMetrics()
		defer stop()
	}
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug("starting MCP server in stdio mode",
		zap.String("storage", s.config.Storage),
		zap.String("dbdriver", s.config.DBDriver))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server in SSE mode", zap.String("address", addr))
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}

// serveMetrics exposes /metrics on MetricsAddr and returns a stop function.
func (s *Server) serveMetrics() func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: s.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		s.logger.Info("serving metrics", zap.String("address", s.config.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
