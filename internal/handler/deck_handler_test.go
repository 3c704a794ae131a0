package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/deck-tracker-api/internal/middleware"
	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/internal/service"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type lifecycleMock struct {
	deck      *models.Deck
	err       error
	bulk      *models.BulkTransitionResult
	gotQR     string
	gotAction models.DeckAction
	gotIDs    []string
	gotCount  int
}

func (m *lifecycleMock) Transition(_ context.Context, qr string, action models.DeckAction) (*models.Deck, error) {
	m.gotQR, m.gotAction = qr, action
	return m.deck, m.err
}

func (m *lifecycleMock) TransitionBulk(_ context.Context, ids []string, action models.DeckAction) (*models.BulkTransitionResult, error) {
	m.gotIDs, m.gotAction = ids, action
	return m.bulk, m.err
}

func (m *lifecycleMock) SetAnswerSheetCount(_ context.Context, qr string, count int) (*models.Deck, error) {
	m.gotQR, m.gotCount = qr, count
	return m.deck, m.err
}

type inventoryMock struct {
	decks       []models.Deck
	err         error
	listReq     service.DeckListRequest
	evaluatorID string
	deleted     int64
}

func (m *inventoryMock) AddDeck(_ context.Context, req service.CreateDeckRequest) (*models.Deck, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Deck{ID: "new", CourseCode: req.CourseCode, StatusOfDeck: models.DeckStatusPending}, nil
}

func (m *inventoryMock) GetByQRCode(_ context.Context, qr string) (*models.Deck, error) {
	for i := range m.decks {
		if m.decks[i].QRCodeString == qr {
			return &m.decks[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "deck not found")
}

func (m *inventoryMock) List(_ context.Context, req service.DeckListRequest) ([]models.Deck, *models.Pagination, error) {
	m.listReq = req
	return m.decks, &models.Pagination{Page: req.Page, PageSize: req.Limit, TotalCount: len(m.decks)}, m.err
}

func (m *inventoryMock) ListAssigned(_ context.Context, evaluatorID string, req service.DeckListRequest) ([]models.Deck, *models.Pagination, error) {
	m.evaluatorID = evaluatorID
	return m.List(context.Background(), req)
}

func (m *inventoryMock) Update(_ context.Context, id string, _ service.UpdateDeckRequest) (*models.Deck, error) {
	return &models.Deck{ID: id}, m.err
}

func (m *inventoryMock) DeleteByID(context.Context, string) error { return m.err }

func (m *inventoryMock) DeleteAll(context.Context) (int64, error) { return m.deleted, m.err }

type pamphletMock struct {
	result *service.PamphletResult
	req    service.PamphletRequest
}

func (m *pamphletMock) Pamphlets(_ context.Context, req service.PamphletRequest) (*service.PamphletResult, error) {
	m.req = req
	return m.result, nil
}

type mailTriggerMock struct{ queued int }

func (m *mailTriggerMock) SendOverdueReminders(context.Context) (int, error) { return m.queued, nil }
func (m *mailTriggerMock) SendAssignmentMails(context.Context) (int, error) { return m.queued, nil }

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Error      *appErrors.Error   `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
	Meta       map[string]any     `json:"meta"`
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestDeckHandlerChangeStatus(t *testing.T) {
	lifecycle := &lifecycleMock{deck: &models.Deck{ID: "d1", StatusOfDeck: models.DeckStatusPickedUp}}
	handler := NewDeckHandler(lifecycle, &inventoryMock{}, nil, nil)

	c, w := newTestContext(http.MethodPost, "/decks/status?action=PICKUP", []byte(`{"qrCodeString":"qr-1"}`))
	handler.ChangeStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "qr-1", lifecycle.gotQR)
	require.Equal(t, models.DeckActionPickup, lifecycle.gotAction)

	var deck models.Deck
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &deck))
	require.Equal(t, models.DeckStatusPickedUp, deck.StatusOfDeck)
}

func TestDeckHandlerChangeStatusRejections(t *testing.T) {
	lifecycle := &lifecycleMock{}
	handler := NewDeckHandler(lifecycle, &inventoryMock{}, nil, nil)

	c, w := newTestContext(http.MethodPost, "/decks/status?action=return", []byte(`{"qrCodeString":"qr-1"}`))
	handler.ChangeStatus(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)

	c, w = newTestContext(http.MethodPost, "/decks/status?action=drop", []byte(`{}`))
	handler.ChangeStatus(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	lifecycle.err = &service.TransitionError{
		Reason: models.ReasonZeroSheets,
		Err:    appErrors.Clone(appErrors.ErrInvalidTransition, "number of answer sheets must be greater than zero"),
	}
	c, w = newTestContext(http.MethodPost, "/decks/status?action=drop", []byte(`{"qrCodeString":"qr-1"}`))
	handler.ChangeStatus(c)
	require.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, "INVALID_TRANSITION", env.Error.Code)
	require.Contains(t, env.Error.Message, "greater than zero")
}

func TestDeckHandlerBulkAndCount(t *testing.T) {
	lifecycle := &lifecycleMock{
		bulk: &models.BulkTransitionResult{Updated: 1, Failed: 1, Errors: []models.BulkTransitionError{{ID: "d2", Reason: models.ReasonNotFound}}},
		deck: &models.Deck{ID: "d1", NumberOfAnswerSheets: 30},
	}
	handler := NewDeckHandler(lifecycle, &inventoryMock{}, nil, nil)

	c, w := newTestContext(http.MethodPost, "/decks/status/bulk", []byte(`{"deckIds":["d1","d2"],"action":"drop"}`))
	handler.ChangeStatusBulk(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"d1", "d2"}, lifecycle.gotIDs)
	var result models.BulkTransitionResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	require.Equal(t, 1, result.Failed)

	c, w = newTestContext(http.MethodPost, "/decks/status/bulk", []byte(`{"deckIds":[],"action":"drop"}`))
	handler.ChangeStatusBulk(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodPost, "/decks/count", []byte(`{"qrCodeString":"qr-1","numberOfAnswerSheets":0}`))
	handler.SetCount(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, lifecycle.gotCount)

	c, w = newTestContext(http.MethodPost, "/decks/count", []byte(`{"qrCodeString":"qr-1"}`))
	handler.SetCount(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeckHandlerListAndAssigned(t *testing.T) {
	inventory := &inventoryMock{decks: []models.Deck{{ID: "d1", QRCodeString: "qr-1"}}}
	handler := NewDeckHandler(&lifecycleMock{}, inventory, nil, nil)

	c, w := newTestContext(http.MethodGet, "/decks?page=2&limit=5&status=pending&search=cs", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, service.DeckListRequest{Page: 2, Limit: 5, Status: "pending", Search: "cs"}, inventory.listReq)
	require.Equal(t, 1, decodeEnvelope(t, w).Pagination.TotalCount)

	c, w = newTestContext(http.MethodGet, "/decks/assigned", nil)
	handler.Assigned(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newTestContext(http.MethodGet, "/decks/assigned", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "eval-1", Role: models.RoleFaculty})
	handler.Assigned(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "eval-1", inventory.evaluatorID)

	c, w = newTestContext(http.MethodGet, "/decks/qr/missing", nil)
	c.Params = gin.Params{{Key: "qr", Value: "missing"}}
	handler.GetByQRCode(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeckHandlerPurgeAndCreate(t *testing.T) {
	inventory := &inventoryMock{deleted: 4}
	handler := NewDeckHandler(&lifecycleMock{}, inventory, nil, nil)

	c, w := newTestContext(http.MethodDelete, "/decks", nil)
	handler.DeleteAll(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"deleted":4}`, string(decodeEnvelope(t, w).Data))

	c, w = newTestContext(http.MethodPost, "/decks", []byte(`{"courseCode":"CS101"}`))
	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext(http.MethodPost, "/decks", []byte(`not-json`))
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeckHandlerPamphlets(t *testing.T) {
	labels := &pamphletMock{result: &service.PamphletResult{
		Filename: "pamphlets_x.pdf",
		PDF:      []byte("%PDF-1.3"),
		Count:    2,
		Download: &service.ExportResult{URL: "/api/v1/static/tok"},
	}}
	handler := NewDeckHandler(&lifecycleMock{}, &inventoryMock{}, labels, nil)

	c, w := newTestContext(http.MethodGet, "/decks/pamphlets?page=3&examName=Finals", nil)
	handler.Pamphlets(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.Equal(t, "/api/v1/static/tok", w.Header().Get("X-Download-URL"))
	require.Equal(t, "%PDF-1.3", w.Body.String())
	require.Equal(t, 3, labels.req.Page)
	require.Equal(t, "Finals", labels.req.ExamName)

	c, w = newTestContext(http.MethodGet, "/decks/pamphlets?format=json", nil)
	handler.Pamphlets(c)
	require.JSONEq(t, `{"filename":"pamphlets_x.pdf","labels":2,"downloadUrl":"/api/v1/static/tok"}`, string(decodeEnvelope(t, w).Data))
}

func TestDeckHandlerMailTriggers(t *testing.T) {
	handler := NewDeckHandler(&lifecycleMock{}, &inventoryMock{}, nil, &mailTriggerMock{queued: 3})

	c, w := newTestContext(http.MethodPost, "/decks/reminders", nil)
	handler.SendReminders(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.JSONEq(t, `{"queued":3}`, string(decodeEnvelope(t, w).Data))

	c, w = newTestContext(http.MethodPost, "/decks/assignment-email", nil)
	handler.SendAssignmentMails(c)
	require.Equal(t, http.StatusAccepted, w.Code)
}
