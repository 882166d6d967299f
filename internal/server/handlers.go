package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/oratriage/internal/agent/core"
)

func (s *Server) troubleshoot(c echo.Context) error {
	var req TroubleshootRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	strict := true
	if req.Strict != nil {
		strict = *req.Strict
	}
	locale := req.Locale
	if locale == "" {
		locale = "en"
	}
	res, err := s.runner.Run(c.Request().Context(), core.Request{
		Query:     req.Query,
		CorpusDir: req.DBDir,
		Strict:    strict,
		AllowWeb:  req.AllowWeb,
		Locale:    locale,
	})
	if err != nil {
		return err
	}
	return writeJSON(c, http.StatusOK, res)
}

func (s *Server) run(c echo.Context) error {
	data, err := s.checkpoints.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/json; charset=utf-8")
	return c.JSONBlob(http.StatusOK, data)
}

func (s *Server) graph(c echo.Context) error {
	return c.String(http.StatusOK, core.RenderGraph())
}
