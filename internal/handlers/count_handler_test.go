// internal/handlers/count_handler_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
	"github.com/LucasDeWerk/vstcount/internal/core/services"
	"github.com/LucasDeWerk/vstcount/internal/handlers"
	"github.com/LucasDeWerk/vstcount/test/helpers"
	"github.com/LucasDeWerk/vstcount/test/mocks"
)

type handlerFixture struct {
	ctrl    *gomock.Controller
	service *mocks.MockCountService
	mux     *http.ServeMux
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := mocks.NewMockCountService(ctrl)
	h := handlers.NewCountHandler(service, helpers.TestLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/count/sessions", h.OpenSession)
	mux.HandleFunc("GET /api/v1/count/sessions/{id}/items", h.ListItems)
	mux.HandleFunc("POST /api/v1/count/sessions/{id}/attempts", h.BeginAttempt)
	mux.HandleFunc("POST /api/v1/count/attempts/{attemptId}/detect", h.Detect)
	mux.HandleFunc("POST /api/v1/count/attempts/{attemptId}/adjustments", h.Adjust)
	mux.HandleFunc("DELETE /api/v1/count/attempts/{attemptId}", h.Cancel)
	mux.HandleFunc("POST /api/v1/count/attempts/{attemptId}/confirm", h.Confirm)
	mux.HandleFunc("POST /api/v1/count/sessions/{id}/items/{productId}/manual", h.SubmitManual)
	mux.HandleFunc("GET /api/v1/count/attempts/{attemptId}", h.GetAttempt)

	return &handlerFixture{ctrl: ctrl, service: service, mux: mux}
}

func (f *handlerFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCountHandler_OpenSession(t *testing.T) {
	f := newHandlerFixture(t)

	session := helpers.CreateTestSession()
	items := helpers.CreateTestCountItems(2)
	state := &ports.SessionState{
		Key:     "ACME:01",
		Session: session,
		Items:   []*domain.CountItem{&items[0], &items[1]},
	}

	f.service.EXPECT().
		OpenSession(gomock.Any(), session).
		Return(state, nil)

	rec := f.do(http.MethodPost, "/api/v1/count/sessions", map[string]string{
		"company_id":   session.CompanyID,
		"branch_id":    session.BranchID,
		"inventory_id": session.InventoryID,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ACME:01", body["key"])
	assert.Len(t, body["items"], 2)
}

func TestCountHandler_OpenSession_MissingCompany(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/count/sessions", map[string]string{
		"branch_id": "01",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountHandler_ListItems(t *testing.T) {
	f := newHandlerFixture(t)

	items := helpers.CreateTestCountItems(3)
	f.service.EXPECT().
		Items(gomock.Any(), "ACME:01").
		Return([]*domain.CountItem{&items[0], &items[1], &items[2]}, nil)

	rec := f.do(http.MethodGet, "/api/v1/count/sessions/ACME:01/items", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ACME:01", body["session_key"])
	assert.Len(t, body["items"], 3)
}

func TestCountHandler_ListItems_UnknownSession(t *testing.T) {
	f := newHandlerFixture(t)

	f.service.EXPECT().
		Items(gomock.Any(), "NOPE:00").
		Return(nil, services.ErrSessionNotFound)

	rec := f.do(http.MethodGet, "/api/v1/count/sessions/NOPE:00/items", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCountHandler_BeginAttempt(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	f.service.EXPECT().
		BeginAttempt(gomock.Any(), "ACME:01", "P-100", domain.ObjectRoundTube).
		Return(&ports.AttemptView{
			ID:         attemptID,
			SessionKey: "ACME:01",
			ProductID:  "P-100",
			ObjectType: domain.ObjectRoundTube,
			State:      ports.StateCapturing,
		}, nil)

	rec := f.do(http.MethodPost, "/api/v1/count/sessions/ACME:01/attempts", map[string]string{
		"product_id":  "P-100",
		"object_type": "round_tube",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(ports.StateCapturing), body["state"])
	assert.Equal(t, attemptID.String(), body["id"])
}

func TestCountHandler_BeginAttempt_BadObjectType(t *testing.T) {
	f := newHandlerFixture(t)

	// Rejected before the service is reached
	rec := f.do(http.MethodPost, "/api/v1/count/sessions/ACME:01/attempts", map[string]string{
		"product_id":  "P-100",
		"object_type": "banana",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountHandler_Detect(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	f.service.EXPECT().
		Detect(gomock.Any(), attemptID, []byte("jpeg-bytes"), "shelf.jpg").
		Return(&ports.AttemptView{
			ID:             attemptID,
			State:          ports.StateReconciling,
			EstimatedCount: 5,
			FinalCount:     5,
		}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "shelf.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/count/attempts/%s/detect", attemptID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(ports.StateReconciling), body["state"])
	assert.EqualValues(t, 5, body["estimated_count"])
}

func TestCountHandler_Detect_MissingImage(t *testing.T) {
	f := newHandlerFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/count/attempts/%s/detect", uuid.New()), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountHandler_Detect_ServiceUnavailable(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	f.service.EXPECT().
		Detect(gomock.Any(), attemptID, gomock.Any(), gomock.Any()).
		Return(nil, domain.E("vision.detect", domain.KindServiceUnavailable, fmt.Errorf("probe failed")))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "shelf.jpg")
	_, _ = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/count/attempts/%s/detect", attemptID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(domain.KindServiceUnavailable), body["kind"])
	assert.NotEmpty(t, body["error"])
}

func TestCountHandler_Adjust(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	f.service.EXPECT().
		Adjust(gomock.Any(), attemptID, domain.AdjustmentAdd).
		Return(&ports.AttemptView{
			ID:             attemptID,
			State:          ports.StateReconciling,
			EstimatedCount: 5,
			Adds:           1,
			FinalCount:     6,
		}, nil)

	rec := f.do(http.MethodPost,
		fmt.Sprintf("/api/v1/count/attempts/%s/adjustments", attemptID),
		map[string]string{"kind": "add"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 6, body["final_count"])
}

func TestCountHandler_Cancel(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	f.service.EXPECT().
		Cancel(gomock.Any(), attemptID).
		Return(nil)

	rec := f.do(http.MethodDelete,
		fmt.Sprintf("/api/v1/count/attempts/%s", attemptID), nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCountHandler_Cancel_Confirmed(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	f.service.EXPECT().
		Cancel(gomock.Any(), attemptID).
		Return(fmt.Errorf("%w: confirmed attempts cannot be cancelled", services.ErrInvalidState))

	rec := f.do(http.MethodDelete,
		fmt.Sprintf("/api/v1/count/attempts/%s", attemptID), nil)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCountHandler_Cancel_BadID(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodDelete, "/api/v1/count/attempts/not-a-uuid", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountHandler_Confirm(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	variance := decimal.NewFromInt(-4)
	f.service.EXPECT().
		Confirm(gomock.Any(), attemptID).
		Return(&ports.AttemptView{
			ID:         attemptID,
			ProductID:  "P-100",
			State:      ports.StateConfirmed,
			FinalCount: 6,
			Variance:   &variance,
		}, nil)

	rec := f.do(http.MethodPost,
		fmt.Sprintf("/api/v1/count/attempts/%s/confirm", attemptID), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(ports.StateConfirmed), body["state"])
	assert.Equal(t, "-4", body["variance"])
}

func TestCountHandler_Confirm_Timeout(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	f.service.EXPECT().
		Confirm(gomock.Any(), attemptID).
		Return(nil, domain.E("erp.submit", domain.KindTimeout, fmt.Errorf("deadline exceeded")))

	rec := f.do(http.MethodPost,
		fmt.Sprintf("/api/v1/count/attempts/%s/confirm", attemptID), nil)

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(domain.KindTimeout), body["kind"])
}

func TestCountHandler_SubmitManual(t *testing.T) {
	f := newHandlerFixture(t)

	counted := 12
	item := helpers.CreateTestCountItem(func(i *domain.CountItem) {
		i.ProductID = "P-200"
		i.ExpectedStock = decimal.NewFromInt(15)
		i.CountedQuantity = &counted
	})

	f.service.EXPECT().
		SubmitManual(gomock.Any(), "ACME:01", "P-200", 12).
		Return(item, nil)

	rec := f.do(http.MethodPost,
		"/api/v1/count/sessions/ACME:01/items/P-200/manual",
		map[string]int{"counted": 12})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 12, body["counted_quantity"])
}

func TestCountHandler_SubmitManual_Negative(t *testing.T) {
	f := newHandlerFixture(t)

	f.service.EXPECT().
		SubmitManual(gomock.Any(), "ACME:01", "P-200", -3).
		Return(nil, services.ErrNegativeQuantity)

	rec := f.do(http.MethodPost,
		"/api/v1/count/sessions/ACME:01/items/P-200/manual",
		map[string]int{"counted": -3})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountHandler_GetAttempt_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	attemptID := uuid.New()
	f.service.EXPECT().
		Attempt(gomock.Any(), attemptID).
		Return(nil, services.ErrAttemptNotFound)

	rec := f.do(http.MethodGet,
		fmt.Sprintf("/api/v1/count/attempts/%s", attemptID), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournalHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	journal := mocks.NewMockCountJournal(ctrl)
	h := handlers.NewJournalHandler(journal, helpers.TestLogger())

	entry := helpers.CreateTestJournalEntry()
	journal.EXPECT().
		List(gomock.Any(), ports.JournalParams{
			CompanyID: "ACME",
			BranchID:  "01",
			Outcome:   "confirmed",
			Page:      2,
			PageSize:  10,
		}).
		Return(&ports.JournalResult{
			Entries:    []*domain.JournalEntry{entry},
			Page:       2,
			PageSize:   10,
			TotalCount: 11,
			TotalPages: 2,
		}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/count/journal?company_id=ACME&branch_id=01&outcome=confirmed&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), entry.ProductID))
}
