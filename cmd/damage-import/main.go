// Command damage-import imports one drawing into damage records and
// optionally writes its spreadsheet report.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-bridge-inspector/internal/app"
	"github.com/a3tai/mcp-bridge-inspector/internal/blob"
	"github.com/a3tai/mcp-bridge-inspector/internal/config"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection"
)

// options are the flags of this command on top of the shared configuration.
type options struct {
	project string
	drawing string
	spans   int
	file    string
	report  string
	format  string
}

func defineFlags(fs *pflag.FlagSet) *options {
	o := &options{}
	fs.StringVar(&o.project, "project", "", "Project folder in the object store (required)")
	fs.StringVar(&o.drawing, "drawing", "", "Drawing name (required)")
	fs.IntVar(&o.spans, "spans", 0, "Number of spans to import, 0 for every titled span")
	fs.StringVar(&o.file, "file", "", "Local DXF uploaded as the drawing before import")
	fs.StringVar(&o.report, "report", "", "Write the spreadsheet report to this .xlsx path")
	fs.StringVar(&o.format, "format", "text", "Output format: text, json")
	return o
}

func (o *options) validate() error {
	if o.project == "" || o.drawing == "" {
		return errors.New("--project and --drawing are required")
	}
	if o.spans < 0 {
		return errors.New("--spans cannot be negative")
	}
	if o.format != "text" && o.format != "json" {
		return fmt.Errorf("invalid format: %s (must be one of: text, json)", o.format)
	}
	return nil
}

func main() {
	opts := defineFlags(pflag.CommandLine)

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := opts.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		pflag.Usage()
		os.Exit(2)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger, os.Stdout); err != nil {
		logger.Error("import failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts *options, logger *zap.Logger, out io.Writer) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.file != "" {
		if err := upload(ctx, a.Blobs, opts, cfg.MaxFileSize); err != nil {
			return err
		}
	}

	result, err := a.Service.ImportDrawing(ctx, inspection.ImportRequest{
		Project:   opts.project,
		Drawing:   opts.drawing,
		SpanCount: opts.spans,
	})
	if err != nil {
		return err
	}

	if opts.report != "" {
		if err := writeReport(ctx, a.Service, opts); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", opts.report))
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = io.WriteString(out, result.Summary())
	return err
}

func upload(ctx context.Context, blobs blob.Store, opts *options, limit int64) error {
	info, err := os.Stat(opts.file)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", opts.file, err)
	}
	if info.Size() > limit {
		return fmt.Errorf("%s is %d bytes, limit is %d", opts.file, info.Size(), limit)
	}
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.file, err)
	}
	return blobs.Upload(ctx, blob.DrawingKey(opts.project, opts.drawing), data, "application/dxf")
}

func writeReport(ctx context.Context, service *inspection.Service, opts *options) error {
	f, err := os.Create(opts.report)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", opts.report, err)
	}
	if err := service.RenderReport(ctx, f, opts.project, opts.drawing); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
