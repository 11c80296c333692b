// internal/handlers/count.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
	"github.com/LucasDeWerk/vstcount/internal/core/services"
)

// maxImageBytes caps the multipart capture upload.
const maxImageBytes = 32 << 20 // 32 MB

// CountHandler handles the counting workflow HTTP requests
type CountHandler struct {
	service ports.CountService
	logger  *slog.Logger
}

// NewCountHandler creates a new count handler
func NewCountHandler(service ports.CountService, logger *slog.Logger) *CountHandler {
	return &CountHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "count")),
	}
}

// OpenSession handles POST /api/v1/count/sessions
func (h *CountHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session := domain.CountSession{
		CompanyID:   req.CompanyID,
		BranchID:    req.BranchID,
		InventoryID: req.InventoryID,
	}
	if err := session.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.service.OpenSession(ctx, session)
	if err != nil {
		h.handleServiceError(ctx, w, "failed to open count session", err)
		return
	}

	h.logger.InfoContext(ctx, "count session opened",
		slog.String("session_key", state.Key),
		slog.Int("items", len(state.Items)))

	h.respondJSON(w, http.StatusCreated, state)
}

// ListItems handles GET /api/v1/count/sessions/{id}/items
func (h *CountHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionKey := r.PathValue("id")

	items, err := h.service.Items(ctx, sessionKey)
	if err != nil {
		h.handleServiceError(ctx, w, "failed to list count items", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_key": sessionKey,
		"items":       items,
	})
}

// BeginAttempt handles POST /api/v1/count/sessions/{id}/attempts
func (h *CountHandler) BeginAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionKey := r.PathValue("id")

	var req BeginAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.service.BeginAttempt(ctx, sessionKey, req.ProductID, domain.ObjectType(req.ObjectType))
	if err != nil {
		h.handleServiceError(ctx, w, "failed to begin counting attempt", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, view)
}

// Detect handles POST /api/v1/count/attempts/{attemptId}/detect. The capture
// is a multipart upload under the "image" field.
func (h *CountHandler) Detect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attemptID, ok := h.attemptID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	view, err := h.service.Detect(ctx, attemptID, image, header.Filename)
	if err != nil {
		h.handleServiceError(ctx, w, "detection failed", err)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// Adjust handles POST /api/v1/count/attempts/{attemptId}/adjustments
func (h *CountHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attemptID, ok := h.attemptID(w, r)
	if !ok {
		return
	}

	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.service.Adjust(ctx, attemptID, domain.AdjustmentKind(req.Kind))
	if err != nil {
		h.handleServiceError(ctx, w, "adjustment failed", err)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// Cancel handles DELETE /api/v1/count/attempts/{attemptId}
func (h *CountHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attemptID, ok := h.attemptID(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(ctx, attemptID); err != nil {
		h.handleServiceError(ctx, w, "cancel failed", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Attempt cancelled",
		"attempt_id": attemptID.String(),
	})
}

// Confirm handles POST /api/v1/count/attempts/{attemptId}/confirm
func (h *CountHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attemptID, ok := h.attemptID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Confirm(ctx, attemptID)
	if err != nil {
		h.handleServiceError(ctx, w, "confirm failed", err)
		return
	}

	h.logger.InfoContext(ctx, "count confirmed",
		slog.String("attempt_id", attemptID.String()),
		slog.String("product_id", view.ProductID),
		slog.Int("final_count", view.FinalCount))

	h.respondJSON(w, http.StatusOK, view)
}

// SubmitManual handles POST /api/v1/count/sessions/{id}/items/{productId}/manual
func (h *CountHandler) SubmitManual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionKey := r.PathValue("id")
	productID := r.PathValue("productId")

	var req ManualCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.SubmitManual(ctx, sessionKey, productID, req.Counted)
	if err != nil {
		h.handleServiceError(ctx, w, "manual count failed", err)
		return
	}

	h.logger.InfoContext(ctx, "manual count recorded",
		slog.String("session_key", sessionKey),
		slog.String("product_id", productID),
		slog.Int("counted", req.Counted))

	h.respondJSON(w, http.StatusOK, item)
}

// GetAttempt handles GET /api/v1/count/attempts/{attemptId}
func (h *CountHandler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attemptID, ok := h.attemptID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Attempt(ctx, attemptID)
	if err != nil {
		h.handleServiceError(ctx, w, "failed to fetch attempt", err)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// Helper methods

func (h *CountHandler) attemptID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("attemptId"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid attempt ID format")
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps service and boundary failures onto HTTP statuses.
// Boundary failures answer with the operator-facing message for their kind,
// so clients can show it verbatim.
func (h *CountHandler) handleServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))

	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrAttemptNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, services.ErrAttemptActive),
		errors.Is(err, services.ErrSubmissionInFlight),
		errors.Is(err, services.ErrInvalidState):
		h.respondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, services.ErrInvalidObjectType),
		errors.Is(err, services.ErrEmptyImage),
		errors.Is(err, services.ErrNegativeQuantity):
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.Canceled):
		// The client went away; the attempt is back in Capturing
		h.respondError(w, statusClientClosedRequest, "request cancelled")
		return
	}

	var boundary *domain.Error
	if errors.As(err, &boundary) {
		h.respondJSON(w, kindStatus(boundary.Kind), map[string]string{
			"error": domain.UserMessage(boundary.Kind),
			"kind":  string(boundary.Kind),
		})
		return
	}

	h.respondError(w, http.StatusInternalServerError, msg)
}

// statusClientClosedRequest is the de-facto status for a caller-cancelled
// request (nginx convention); no standard code exists.
const statusClientClosedRequest = 499

func kindStatus(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidImage, domain.KindInvalidParameters:
		return http.StatusUnprocessableEntity
	case domain.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *CountHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *CountHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request DTOs

// OpenSessionRequest represents the request body for opening a session
type OpenSessionRequest struct {
	CompanyID   string `json:"company_id"`
	BranchID    string `json:"branch_id"`
	InventoryID string `json:"inventory_id,omitempty"`
}

// BeginAttemptRequest represents the request body for starting an attempt
type BeginAttemptRequest struct {
	ProductID  string `json:"product_id"`
	ObjectType string `json:"object_type"`
}

// Validate validates the begin attempt request
func (r *BeginAttemptRequest) Validate() error {
	if r.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if !domain.ValidObjectType(domain.ObjectType(r.ObjectType)) {
		return fmt.Errorf("unsupported object_type: %s", r.ObjectType)
	}
	return nil
}

// AdjustmentRequest represents one manual correction
type AdjustmentRequest struct {
	Kind string `json:"kind"`
}

// ManualCountRequest represents an operator-entered quantity
type ManualCountRequest struct {
	Counted int `json:"counted"`
}
