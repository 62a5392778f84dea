package handler

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/deppfellow/hackreg/internal/server"
	"github.com/labstack/echo/v4"
)

// StaticDir holds the docs UI and the OpenAPI document.
const StaticDir = "static"

// OpenAPIHandler serves the API docs UI.
type OpenAPIHandler struct {
	Handler
	static fs.FS
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return NewOpenAPIHandlerWithFS(s, os.DirFS(StaticDir))
}

func NewOpenAPIHandlerWithFS(s *server.Server, static fs.FS) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		static:  static,
	}
}

// ServeOpenAPIUI serves openapi.html uncached so doc edits show up at once.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := fs.ReadFile(h.static, "openapi.html")

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTML(http.StatusOK, string(templateBytes)); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
