package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/deck-tracker-api/internal/dto"
	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/internal/service"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
	"github.com/noah-isme/deck-tracker-api/pkg/response"
)

type deckLifecycle interface {
	Transition(ctx context.Context, qr string, action models.DeckAction) (*models.Deck, error)
	TransitionBulk(ctx context.Context, ids []string, action models.DeckAction) (*models.BulkTransitionResult, error)
	SetAnswerSheetCount(ctx context.Context, qr string, count int) (*models.Deck, error)
}

type deckInventory interface {
	AddDeck(ctx context.Context, req service.CreateDeckRequest) (*models.Deck, error)
	GetByQRCode(ctx context.Context, qr string) (*models.Deck, error)
	List(ctx context.Context, req service.DeckListRequest) ([]models.Deck, *models.Pagination, error)
	ListAssigned(ctx context.Context, evaluatorID string, req service.DeckListRequest) ([]models.Deck, *models.Pagination, error)
	Update(ctx context.Context, id string, req service.UpdateDeckRequest) (*models.Deck, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type pamphletPrinter interface {
	Pamphlets(ctx context.Context, req service.PamphletRequest) (*service.PamphletResult, error)
}

type mailTrigger interface {
	SendOverdueReminders(ctx context.Context) (int, error)
	SendAssignmentMails(ctx context.Context) (int, error)
}

// DeckHandler exposes deck lifecycle and inventory endpoints.
type DeckHandler struct {
	lifecycle deckLifecycle
	decks     deckInventory
	labels    pamphletPrinter
	mail      mailTrigger
}

// NewDeckHandler constructs a deck handler.
func NewDeckHandler(lifecycle deckLifecycle, decks deckInventory, labels pamphletPrinter, mail mailTrigger) *DeckHandler {
	return &DeckHandler{lifecycle: lifecycle, decks: decks, labels: labels, mail: mail}
}

// ChangeStatus godoc
// @Summary Pick up or drop a deck
// @Description Applies a lifecycle action to the deck identified by its QR string
// @Tags Decks
// @Accept json
// @Produce json
// @Param action query string true "pickup or drop"
// @Param payload body dto.TransitionDeckRequest true "Scanned deck"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /decks/status [post]
func (h *DeckHandler) ChangeStatus(c *gin.Context) {
	action, err := service.ParseAction(c.Query("action"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.TransitionDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "qrCodeString is required"))
		return
	}
	deck, err := h.lifecycle.Transition(c.Request.Context(), req.QRCodeString, action)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, deck, nil)
}

// ChangeStatusBulk godoc
// @Summary Apply a lifecycle action to many decks
// @Description Non-atomic; each deck succeeds or fails on its own
// @Tags Decks
// @Accept json
// @Produce json
// @Param payload body dto.BulkTransitionRequest true "Deck IDs and action"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /decks/status/bulk [post]
func (h *DeckHandler) ChangeStatusBulk(c *gin.Context) {
	var req dto.BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk status payload"))
		return
	}
	action, err := service.ParseAction(req.Action)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.lifecycle.TransitionBulk(c.Request.Context(), req.DeckIDs, action)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SetCount godoc
// @Summary Record answer sheet count
// @Tags Decks
// @Accept json
// @Produce json
// @Param payload body dto.AnswerSheetCountRequest true "Count payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /decks/count [post]
func (h *DeckHandler) SetCount(c *gin.Context) {
	var req dto.AnswerSheetCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "qrCodeString and numberOfAnswerSheets are required"))
		return
	}
	deck, err := h.lifecycle.SetAnswerSheetCount(c.Request.Context(), req.QRCodeString, *req.NumberOfAnswerSheets)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, deck, nil)
}

// Create godoc
// @Summary Register a deck manually
// @Tags Decks
// @Accept json
// @Produce json
// @Param payload body service.CreateDeckRequest true "Deck"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /decks [post]
func (h *DeckHandler) Create(c *gin.Context) {
	var req service.CreateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid deck payload"))
		return
	}
	deck, err := h.decks.AddDeck(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, deck)
}

// List godoc
// @Summary List decks
// @Tags Decks
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sortBy query string false "Sort column"
// @Param sortOrder query string false "asc or desc"
// @Param search query string false "Free text"
// @Param status query string false "Deck status"
// @Success 200 {object} response.Envelope
// @Router /decks [get]
func (h *DeckHandler) List(c *gin.Context) {
	decks, pagination, err := h.decks.List(c.Request.Context(), listRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decks, pagination)
}

// Assigned godoc
// @Summary List decks assigned to the caller
// @Tags Decks
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /decks/assigned [get]
func (h *DeckHandler) Assigned(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	decks, pagination, err := h.decks.ListAssigned(c.Request.Context(), claims.UserID, listRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decks, pagination)
}

// GetByQRCode godoc
// @Summary Get a deck by QR string
// @Tags Decks
// @Produce json
// @Param qr path string true "QR code string"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /decks/qr/{qr} [get]
func (h *DeckHandler) GetByQRCode(c *gin.Context) {
	deck, err := h.decks.GetByQRCode(c.Request.Context(), c.Param("qr"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, deck, nil)
}

// Update godoc
// @Summary Edit descriptive deck fields
// @Tags Decks
// @Accept json
// @Produce json
// @Param id path string true "Deck ID"
// @Param payload body service.UpdateDeckRequest true "Patch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /decks/{id} [patch]
func (h *DeckHandler) Update(c *gin.Context) {
	var req service.UpdateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid deck payload"))
		return
	}
	deck, err := h.decks.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, deck, nil)
}

// Delete godoc
// @Summary Delete a deck
// @Tags Decks
// @Param id path string true "Deck ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /decks/{id} [delete]
func (h *DeckHandler) Delete(c *gin.Context) {
	if err := h.decks.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteAll godoc
// @Summary Delete every deck
// @Tags Decks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /decks [delete]
func (h *DeckHandler) DeleteAll(c *gin.Context) {
	deleted, err := h.decks.DeleteAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PurgeResponse{Deleted: deleted}, nil)
}

// Pamphlets godoc
// @Summary Print deck labels
// @Description Streams a PDF of deck labels; format=json returns a download link instead
// @Tags Decks
// @Produce application/pdf
// @Param page query int false "Page"
// @Param limit query int false "Labels per file"
// @Param examName query string false "Heading printed on each label"
// @Param format query string false "pdf or json"
// @Success 200 {file} file
// @Router /decks/pamphlets [get]
func (h *DeckHandler) Pamphlets(c *gin.Context) {
	req := service.PamphletRequest{
		Page:     parseQueryInt(c, "page", 1),
		Limit:    parseQueryInt(c, "limit", 0),
		ExamName: c.Query("examName"),
		Status:   c.Query("status"),
	}
	result, err := h.labels.Pamphlets(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := dto.PamphletResponse{Filename: result.Filename, Labels: result.Count}
	if result.Download != nil {
		payload.DownloadURL = result.Download.URL
		c.Header("X-Download-URL", result.Download.URL)
	}
	if c.Query("format") == "json" {
		response.JSON(c, http.StatusOK, payload, nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}

// SendReminders godoc
// @Summary Queue overdue reminder mails
// @Tags Decks
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /decks/reminders [post]
func (h *DeckHandler) SendReminders(c *gin.Context) {
	queued, err := h.mail.SendOverdueReminders(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.DispatchResponse{Queued: queued})
}

// SendAssignmentMails godoc
// @Summary Queue assignment mails
// @Tags Decks
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /decks/assignment-email [post]
func (h *DeckHandler) SendAssignmentMails(c *gin.Context) {
	queued, err := h.mail.SendAssignmentMails(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.DispatchResponse{Queued: queued})
}

func listRequest(c *gin.Context) service.DeckListRequest {
	return service.DeckListRequest{
		Page:      parseQueryInt(c, "page", 1),
		Limit:     parseQueryInt(c, "limit", 10),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Search:    c.Query("search"),
		Status:    c.Query("status"),
	}
}
