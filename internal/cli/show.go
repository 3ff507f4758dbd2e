package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ebiiii/lineal/pkg/pipeline"
)

// showCommand creates the show command for rendering text diagrams.
func (c *CLI) showCommand() *cobra.Command {
	var (
		srcFlags sourceFlags
		noColor  bool
		full     bool
	)
	opts := c.renderOptions()

	cmd := &cobra.Command{
		Use:   "show <graph>",
		Short: "Render a lineage graph as a text diagram",
		Long: `Render a lineage graph as a column-based text diagram.

The argument is a manifest file path by default. With --remote it names
a graph on a knowledge-graph service, with --mongo a graph stored in
MongoDB.

Entries appear newest first. Each entry occupies one column; edges to
parents are drawn with |, /, \ and - characters. Entries without
parents are marked @, all others *.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if full {
				opts.Compact = false
			}
			opts.Color = !noColor && isTerminal(os.Stdout)
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runShow(ctx, args[0], srcFlags, opts)
		},
	}

	srcFlags.register(cmd, c.Config)
	cmd.Flags().BoolVar(&full, "full", false, "keep all transition rows (no compaction)")
	cmd.Flags().BoolVar(&opts.Separators, "separators", opts.Separators, "blank row after completed lineages")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable styled labels")

	return cmd
}

func (c *CLI) runShow(ctx context.Context, name string, f sourceFlags, opts pipeline.Options) error {
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
	p.done(fmt.Sprintf("Rendered %d entries", result.Stats.NodeCount))

	if result.Stats.NodeCount == 0 {
		printError("No entries in %s", name)
		return nil
	}

	for _, row := range result.Rows {
		fmt.Println(row)
	}
	return nil
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
