package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ebiiii/lineal/internal/server"
)

// serveCommand creates the serve command exposing graphs over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		srcFlags sourceFlags
		addr     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lineage graphs over HTTP",
		Long: `Serve lineage graphs over HTTP.

Graphs are resolved through the configured source (--remote or
--mongo) and rendered per request:

  GET /graphs/{name}          text diagram (?format=dot|svg|png)
  GET /graphs/{name}/dot      Graphviz DOT source
  GET /graphs                 graph names (MongoDB source only)
  GET /healthz                liveness probe

The server shuts down cleanly on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, closer, err := c.newRunner(ctx, srcFlags)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer()
			}

			srv := server.New(runner, c.Logger, c.renderOptions())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	srcFlags.register(cmd, c.Config)
	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")

	return cmd
}
