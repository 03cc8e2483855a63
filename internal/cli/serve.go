package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/edumind/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the study tools over HTTP",
	Long: `Serve a JSON API on --addr (default :8088).

  GET  /health
  POST /api/render    {"content": "...", "html": false}
  POST /api/explain   {"topic": "...", "level": "simple|detailed"}
  POST /api/quiz      {"topic": "..."}
  POST /api/analyze   {"image": "<data URL or base64>", "prompt": "..."}
  POST /api/research  {"query": "..."}
  POST /api/plan      {"subjects": "...", "days": 5}

Set server.api_key (or EDUMIND_SERVER_API_KEY) to require a bearer token.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()

	svc, err := rt.service(ctx)
	if err != nil {
		rt.logger.Warn("no provider, serving render only", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\nOnly /health and /api/render are available.\n", err)
		svc = nil
	}

	addr := rt.settings.Server.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewServer(svc, rt.logger, rt.settings.Server.APIKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	rt.logger.Info("server listening", "addr", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rt.logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
