package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ebiiii/lineal/pkg/errors"
	"github.com/ebiiii/lineal/pkg/observability"
	"github.com/ebiiii/lineal/pkg/render/ascii"
	"github.com/ebiiii/lineal/pkg/render/nodelink"
	"github.com/ebiiii/lineal/pkg/source"
)

// Runner encapsulates load → validate → render execution.
// Both CLI and API use this to avoid duplicating the sequencing and
// observability logic.
//
// The Runner is stateless except for the source and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Source source.Source
	Logger *log.Logger
}

// NewRunner creates a runner reading graphs from src.
// If logger is nil, the default logger is used.
func NewRunner(src source.Source, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Source: src, Logger: logger}
}

// Execute runs the complete load → validate → render pipeline.
func (r *Runner) Execute(ctx context.Context, name string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, sourceName(r.Source), name)
	g, err := r.Source.Load(ctx, name)
	result.Stats.LoadTime = time.Since(loadStart)
	nodeCount := 0
	if g != nil {
		nodeCount = g.Len()
	}
	observability.Pipeline().OnLoadComplete(ctx, sourceName(r.Source), name, nodeCount, result.Stats.LoadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	result.Graph = g
	result.Stats.NodeCount = g.Len()

	r.Logger.Debug("loaded lineage graph",
		"name", name,
		"nodes", g.Len(),
		"duration", result.Stats.LoadTime)

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Format, g.Len())
	err = r.render(ctx, result, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.RowCount = len(result.Rows)
	observability.Pipeline().OnRenderComplete(ctx, opts.Format, len(result.Rows), result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("rendered lineage graph",
		"name", name,
		"format", opts.Format,
		"rows", len(result.Rows),
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) render(ctx context.Context, result *Result, opts Options) error {
	switch opts.Format {
	case FormatText:
		rows, err := ascii.Render(result.Graph, opts.asciiOptions()...)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRenderFailed, err, "render text diagram")
		}
		result.Rows = rows
		return nil

	case FormatDOT:
		dot := nodelink.ToDOT(result.Graph, nodelink.Options{Detailed: opts.Detailed})
		result.Data = []byte(dot)
		return nil

	case FormatSVG:
		dot := nodelink.ToDOT(result.Graph, nodelink.Options{Detailed: opts.Detailed})
		data, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRenderFailed, err, "render SVG")
		}
		result.Data = data
		return nil

	case FormatPNG:
		dot := nodelink.ToDOT(result.Graph, nodelink.Options{Detailed: opts.Detailed})
		data, err := nodelink.RenderPNG(ctx, dot)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRenderFailed, err, "render PNG")
		}
		result.Data = data
		return nil

	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", opts.Format)
	}
}

// sourceName reports a short descriptor for hook payloads.
func sourceName(s source.Source) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
