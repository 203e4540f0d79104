package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/njchilds90/symcalc/internal/mcpserver"
	"github.com/njchilds90/symcalc/internal/telemetry"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tools over MCP on stdin/stdout",
		Long: `Run symcalc as a Model Context Protocol server over stdio, for agent
clients that launch tools as subprocesses. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := opts.logger(cfg, cmd.ErrOrStderr())
			// no scrape endpoint on stdio; the registry only backs the recorder
			rec := telemetry.NewRecorder(prometheus.NewRegistry())

			s, err := mcpserver.New(mcpserver.NewEngine(cfg.Engine.Symcalc(), logger, rec))
			if err != nil {
				return err
			}
			logger.Info("serving MCP on stdio", "version", mcpserver.Version)
			return mcpserver.ServeStdio(s)
		},
	}
}
