package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pashto-learning-app/backend/internal/bootstrap"
	"github.com/pashto-learning-app/backend/internal/logger"
)

const shutdownTimeout = 15 * time.Second

// httpServer is the part of *http.Server that Run drives.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type realServer struct{ *http.Server }

func (r realServer) Addr() string { return r.Server.Addr }

type serverBuilder func() (httpServer, func(), error)

// Run serves until a signal arrives or the listener fails. The returned
// value is the process exit code.
func Run(build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	// cleanup closes the store, redis and broker after the listener is gone
	defer cleanup()

	crashed := serve(srv, lg)

	select {
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		drain(srv, lg)
		return 0
	case err := <-crashed:
		lg.Error().Err(err).Msg("server crashed")
		return 1
	}
}

func serve(srv httpServer, lg zerolog.Logger) <-chan error {
	crashed := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr()).Msg("listening")
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			crashed <- err
		}
	}()
	return crashed
}

// drain gives in-flight requests shutdownTimeout to finish, then drops
// whatever is left.
func drain(srv httpServer, lg zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
	lg.Info().Msg("shutdown complete")
}

func buildFromBootstrap() (httpServer, func(), error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, nil, err
	}
	return realServer{srv}, cleanup, nil
}

func main() {
	logger.Init()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	code := Run(buildFromBootstrap, sigCh, logger.Logger)
	signal.Stop(sigCh)
	os.Exit(code)
}
