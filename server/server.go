package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/adforge/adforge/model"
)

// WorkflowRunner runs one workflow and streams its step events.
type WorkflowRunner interface {
	Run(ctx context.Context, turns []model.Turn, models []model.ModelID, emit model.EmitFunc) error
}

// Server is the HTTP front of the workflow.
type Server struct {
	echo   *echo.Echo
	runner WorkflowRunner
	logger *log.Logger
}

// New creates the server and registers its routes.
func New(runner WorkflowRunner, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{echo: e, runner: runner, logger: logger}
	e.POST("/api/chat", s.handleChat)
	e.GET("/healthz", s.handleHealth)
	return s
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.logger.Printf("[server] listening on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleChat runs the workflow and streams step events as SSE. Events that
// cannot be flushed are dropped with a logged warning; the workflow keeps
// running so the remaining branches still finish.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	turns, err := req.Turns()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	models, err := ParseModels(req.Models)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	emit := func(ev model.StepEvent) {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.logger.Printf("[server] encode event failed: %v", err)
			return
		}
		if _, err := fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
			s.logger.Printf("[server] write event failed: %v", err)
			return
		}
		resp.Flush()
	}

	if err := s.runner.Run(c.Request().Context(), turns, models, emit); err != nil {
		// Headers are already written; report the failure in-stream.
		emit(model.StepEvent{Kind: model.StepError, Content: err.Error()})
	}
	return nil
}
