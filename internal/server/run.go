package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests get to finish
var ShutdownTimeout = 30 * time.Second

// Run listens on the server address and serves until ctx is cancelled.
func Run(ctx context.Context, srv *Server, closers ...Closer) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}
	return Serve(ctx, srv, ln, closers...)
}

// Serve serves on ln until ctx is cancelled or the server fails, then shuts
// down gracefully and runs the server's own closers followed by closers.
func Serve(ctx context.Context, srv *Server, ln net.Listener, closers ...Closer) error {
	if srv.lifecycle != nil {
		if err := srv.lifecycle.Advance(PhaseServing); err != nil {
			_ = ln.Close()
			return err
		}
	}

	srv.logger.Info("Server listening",
		zap.String("service", string(srv.config.Server.Service)),
		zap.String("addr", ln.Addr().String()),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		srv.logger.Info("Shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.logger.Error("Server forced to shutdown", zap.Error(err))
			errs = append(errs, err)
		}

		for _, c := range srv.closers {
			if err := c(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		for _, c := range closers {
			if err := c(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			srv.logger.Error("Error closing server resources", zap.Error(err))
			return err
		}

		srv.logger.Info("Server exiting")
		return nil
	})

	return g.Wait()
}
