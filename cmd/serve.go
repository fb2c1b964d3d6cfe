package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ncc-airhealth/korea-geovariable/internal/jobs"
	"github.com/ncc-airhealth/korea-geovariable/internal/server"
)

var (
	servePort     int
	serveNoWorker bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and job worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.Migrate(ctx); err != nil {
			return err
		}

		run := jobs.NewRunner(env.pool)
		srv := server.New(env.store, run, cfg.Server.APIKey)

		if !serveNoWorker {
			worker := jobs.NewWorker(env.store, run, cfg.Worker.Concurrency,
				time.Duration(cfg.Worker.PollIntervalSecs)*time.Second)
			go func() {
				if err := worker.Start(ctx); err != nil {
					zap.L().Error("worker stopped", zap.Error(err))
				}
			}()
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			httpSrv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoWorker, "no-worker", false, "serve the API only, without the background worker")
	rootCmd.AddCommand(serveCmd)
}
