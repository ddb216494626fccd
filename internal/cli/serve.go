package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sghaida/remoteresource/naming/httpdir"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured directory over HTTP",
	Long: `Serves the configured directory on REMOTE_SERVER_ADDR using the httpdir
protocol. File directories are reloaded when the file changes unless
REMOTE_DIRECTORY_WATCH=false. Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, b, err := open()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // best effort
	defer b.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Directory.Watch {
		go func() {
			if err := b.Watch(ctx); err != nil {
				log.Warn("directory watch stopped", zap.Error(err))
			}
		}()
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	srv := &http.Server{
		Handler:           httpdir.NewHandler(b.Directory, httpdir.WithLogger(log)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	log.Info("serving directory", zap.String("addr", ln.Addr().String()), zap.String("kind", b.Kind))
	cmd.Printf("listening on %s\n", ln.Addr())

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
