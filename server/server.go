package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/personalboard/internal/profile"
	"github.com/hrygo/personalboard/plugin/ai/timeout"
	apiv1 "github.com/hrygo/personalboard/server/router/api/v1"
)

// Server owns the HTTP listener of the board API.
type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
	httpServer *http.Server
	listener   net.Listener
}

func NewServer(_ context.Context, profile *profile.Profile, apiV1Service *apiv1.APIV1Service) *Server {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	apiV1Service.RegisterRoutes(echoServer)

	return &Server{
		Profile:    profile,
		echoServer: echoServer,
		httpServer: &http.Server{
			Handler:           echoServer,
			ReadHeaderTimeout: timeout.ReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start binds the listener and serves in the background.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", slog.String("error", err.Error()))
		}
	}()
	slog.Info("server started", slog.String("address", listener.Addr().String()), slog.String("mode", s.Profile.Mode))
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting requests and waits for in-flight ones to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeout.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown server")
	}
	slog.Info("server stopped properly")
	return nil
}
