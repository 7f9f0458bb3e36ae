package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/repcoach/callscore/internal/orchestration"
	"github.com/repcoach/callscore/internal/webapi"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring HTTP API",
		Long: `Serve the scoring HTTP API on the loopback interface.

Endpoints:
  POST /api/score         Score one attempt
  POST /api/batch         Score {"attempts": [...]}
  GET  /api/health        Health check
  GET  /api/results       Attempt records saved by batch runs
  GET  /api/results/{id}  One saved attempt record

Invalid transcripts and rubrics are answered with 422 and a JSON body
{"error": "...", "kind": "invalid_transcript" | "invalid_rubric"}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}

			engine := newEngine(cfg)
			runner := orchestration.NewRunner(engine,
				orchestration.WithWorkers(cfg.Defaults.Workers),
				orchestration.WithThresholds(orchestration.Thresholds{Low: cfg.Thresholds.Low, High: cfg.Thresholds.High}),
				orchestration.WithResultsDir(cfg.Defaults.ResultsDir),
			)

			webapi.Version = version
			srv, err := webapi.New(webapi.Config{
				Port:         port,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				ResultsDir:   cfg.Defaults.ResultsDir,
				Scorer:       engine,
				Runner:       runner,
				Logger:       slog.Default(),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "callscore API: http://%s\n", srv.Addr()) //nolint:errcheck
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (default from config)")

	return cmd
}
