package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
	"github.com/noah-isme/deck-tracker-api/pkg/response"
	"github.com/noah-isme/deck-tracker-api/pkg/storage"
)

type deckImporter interface {
	ImportCSV(ctx context.Context, r io.Reader) (*models.ImportResult, error)
}

type artifactResolver interface {
	Resolve(token string) (*os.File, storage.SignedObject, error)
}

// UploadHandler accepts deck sheets and serves generated artifacts.
type UploadHandler struct {
	importer  deckImporter
	artifacts artifactResolver
	maxBytes  int64
}

// NewUploadHandler constructs an upload handler. maxBytes <= 0 disables the size check.
func NewUploadHandler(importer deckImporter, artifacts artifactResolver, maxBytes int64) *UploadHandler {
	return &UploadHandler{importer: importer, artifacts: artifacts, maxBytes: maxBytes}
}

// Upload godoc
// @Summary Bulk import decks
// @Description Reconciles a CSV sheet into decks row by row; failed rows are written to a downloadable error report
// @Tags Decks
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Deck sheet (CSV)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /decks/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only .csv sheets are supported"))
		return
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		response.Error(c, appErrors.New("FILE_TOO_LARGE", http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxBytes)))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read file"))
		return
	}
	defer file.Close()

	result, err := h.importer.ImportCSV(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a generated artifact
// @Description Streams an import error report or label PDF by its signed token
// @Tags Artifacts
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /static/{token} [get]
func (h *UploadHandler) Download(c *gin.Context) {
	file, obj, err := h.artifacts.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Dependency(err, "failed to read file"))
		return
	}
	name := filepath.Base(obj.Path)
	headers := map[string]string{"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name)}
	c.DataFromReader(http.StatusOK, info.Size(), contentTypeFor(name), file, headers)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}
