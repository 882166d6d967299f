package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/internal/agent/core"
	"github.com/mohammad-safakhou/oratriage/internal/checkpoint"
)

// Runner executes one troubleshooting run.
type Runner interface {
	Run(ctx context.Context, req core.Request) (core.Result, error)
}

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Runner      Runner
	Checkpoints checkpoint.Store
	// JWTSecret enables bearer auth on the API routes when set.
	JWTSecret []byte
	Logger    *zap.Logger
}

// Server is the echo HTTP surface.
type Server struct {
	echo        *echo.Echo
	runner      Runner
	checkpoints checkpoint.Store
	logger      *zap.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := deps.Checkpoints
	if store == nil {
		store = checkpoint.Noop{}
	}
	s := &Server{
		echo:        echo.New(),
		runner:      deps.Runner,
		checkpoints: store,
		logger:      logger.Named("http"),
	}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/graph", s.graph)

	var protected []echo.MiddlewareFunc
	if len(deps.JWTSecret) > 0 {
		protected = append(protected, AuthMiddleware(deps.JWTSecret))
	}
	e.POST("/troubleshoot", s.troubleshoot, protected...)
	e.GET("/runs/:id", s.run, protected...)
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) Start(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

// handleError maps domain errors to status codes and writes a JSON error body.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	case errors.Is(err, core.ErrInvalidRequest):
		code = http.StatusBadRequest
	case errors.Is(err, core.ErrMissingIndex):
		code = http.StatusNotFound
	case errors.Is(err, checkpoint.ErrNotFound):
		code = http.StatusNotFound
	}
	req := c.Request()
	fields := []zap.Field{
		zap.Int("status", code),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("remote", c.RealIP()),
		zap.Error(err),
	}
	if sub, ok := SubjectFromContext(req.Context()); ok {
		fields = append(fields, zap.String("subject", sub))
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Info("request rejected", fields...)
	}
	if !c.Response().Committed {
		_ = writeJSON(c, code, HTTPError{Error: msg})
	}
}

func writeJSON(c echo.Context, code int, v interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/json; charset=utf-8")
	return c.JSON(code, v)
}
