package handler

import (
	"net/http"

	"github.com/Eursukkul/parking-reservation/pkg/blobstore"
	"github.com/labstack/echo/v4"
)

// FileHandler serves documents held by an in-memory store through the
// signed URLs it issues. Only mounted when no S3 bucket is configured.
type FileHandler struct {
	store *blobstore.MemoryStore
}

func NewFileHandler(store *blobstore.MemoryStore) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/files/*", h.Serve)
}

func (h *FileHandler) Serve(c echo.Context) error {
	path := c.Param("*")
	if err := h.store.VerifySignature(path, c.QueryParam("expires"), c.QueryParam("signature")); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}

	data, contentType, ok := h.store.Read(path)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	return c.Blob(http.StatusOK, contentType, data)
}
