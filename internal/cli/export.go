package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebiiii/lineal/pkg/errors"
	"github.com/ebiiii/lineal/pkg/pipeline"
)

// exportCommand creates the export command for DOT/SVG/PNG output.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		srcFlags sourceFlags
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "export <graph>",
		Short: "Export a lineage graph as DOT, SVG, or PNG",
		Long: `Export a lineage graph as a node-link diagram.

The format is inferred from the output file extension (.dot, .svg,
.png) unless set explicitly with --format. Without --output the DOT
source is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runExport(ctx, args[0], srcFlags, output, format, detailed)
		},
	}

	srcFlags.register(cmd, c.Config)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout, DOT)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: dot, svg, png")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include workflow tags and metadata in labels")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, name string, f sourceFlags, output, format string, detailed bool) error {
	if format == "" {
		format = formatFromPath(output)
	}

	opts := c.renderOptions()
	opts.Format = format
	opts.Detailed = detailed

	runner, closer, err := c.newRunner(ctx, f)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}

	p := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, name, opts)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Exported %d entries as %s", result.Stats.NodeCount, format))

	if output == "" {
		if format != pipeline.FormatDOT {
			return errors.New(errors.ErrCodeInvalidInput, "binary format %s needs --output", format)
		}
		_, err := os.Stdout.Write(result.Data)
		return err
	}

	if err := os.WriteFile(output, result.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Wrote %s", output)
	return nil
}

// formatFromPath infers the export format from a file extension,
// defaulting to DOT.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return pipeline.FormatSVG
	case ".png":
		return pipeline.FormatPNG
	default:
		return pipeline.FormatDOT
	}
}
