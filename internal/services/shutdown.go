package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// StopFunc stops one component within the deadline of ctx
type StopFunc func(context.Context) error

type ShutdownHandler struct {
	Component string
	StopFunc  StopFunc
}

// MonitorShutdown waits for SIGINT/SIGTERM or triggerCh, then runs every
// handler in order. The returned channel closes once all handlers ran.
func MonitorShutdown(triggerCh <-chan struct{}, timeout time.Duration, handlers ...ShutdownHandler) <-chan struct{} {
	sigCh := make(chan os.Signal, 2)
	out := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Warnw("received shutdown", "signal", sig)
		case <-triggerCh:
			logger.Warn("received shutdown")
		}
		signal.Stop(sigCh)

		logger.Warn("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		for _, h := range handlers {
			if err := h.StopFunc(ctx); err != nil {
				logger.Errorf("shutting down %s failed: %s", h.Component, err)
				continue
			}
			logger.Infof("%s shut down successfully", h.Component)
		}

		logger.Warn("Graceful shutdown successful")
		close(out)
	}()

	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	return out
}

// ServeHTTP binds addr and serves h in the background. Bind errors are
// returned immediately; a later serve failure is sent on errCh.
func ServeHTTP(h http.Handler, name, addr string) (StopFunc, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("listening", "service", name, "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("serve failed", "service", name, "error", err)
			errCh <- err
		}
		close(errCh)
	}()

	return srv.Shutdown, errCh, nil
}
