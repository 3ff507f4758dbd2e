// Package pipeline provides the load-validate-render pipeline shared by
// the CLI and the HTTP server.
//
// Centralizing this logic keeps behavior consistent across entry
// points: a graph name is resolved through a [source.Source], the
// validated graph is rendered in the requested format, and hooks and
// logging fire in one place.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, logger)
//	opts := pipeline.Options{Format: pipeline.FormatText}
//	result, err := runner.Execute(ctx, "pipeline", opts)
//	if err != nil {
//	    return err
//	}
//	for _, row := range result.Rows {
//	    fmt.Println(row)
//	}
package pipeline

import (
	"time"

	"github.com/ebiiii/lineal/pkg/dag"
	"github.com/ebiiii/lineal/pkg/errors"
	"github.com/ebiiii/lineal/pkg/render/ascii"
	"github.com/ebiiii/lineal/pkg/render/styles"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// Options contains all configuration for the render pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Render options
	Format     string `json:"format,omitempty"`   // text (default), dot, svg, png
	Compact    bool   `json:"compact"`            // drop shift rows without diagonals
	Separators bool   `json:"separators"`         // blank row after completed lineages
	Color      bool   `json:"color,omitempty"`    // style labels for terminals
	Detailed   bool   `json:"detailed,omitempty"` // include metadata in DOT labels
}

// ValidateAndSetDefaults fills in defaults and rejects unknown formats.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = FormatText
	}
	if !ValidFormats[o.Format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q (valid: text, dot, svg, png)", o.Format)
	}
	return nil
}

// Defaults returns the canonical pipeline options.
func Defaults() Options {
	return Options{
		Format:     FormatText,
		Compact:    true,
		Separators: true,
	}
}

// asciiOptions translates pipeline options into render options.
func (o Options) asciiOptions() []ascii.Option {
	opts := []ascii.Option{
		ascii.WithCompact(o.Compact),
		ascii.WithSeparators(o.Separators),
	}
	if o.Color {
		opts = append(opts, ascii.WithLabels(styles.Labels))
	} else {
		opts = append(opts, ascii.WithLabels(styles.PlainLabels))
	}
	return opts
}

// Result holds the output of one pipeline execution.
type Result struct {
	Graph *dag.Graph // the validated graph
	Rows  []string   // text rows (FormatText)
	Data  []byte     // binary/DOT output (other formats)
	Stats Stats
}

// Stats captures timing and size information for one execution.
type Stats struct {
	LoadTime   time.Duration `json:"load_time"`
	RenderTime time.Duration `json:"render_time"`
	NodeCount  int           `json:"node_count"`
	RowCount   int           `json:"row_count"`
}
