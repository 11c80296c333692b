// internal/handlers/journal.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/LucasDeWerk/vstcount/internal/core/ports"
)

// JournalHandler serves the submission audit trail
type JournalHandler struct {
	journal ports.CountJournal
	logger  *slog.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(journal ports.CountJournal, logger *slog.Logger) *JournalHandler {
	return &JournalHandler{
		journal: journal,
		logger:  logger.With(slog.String("handler", "journal")),
	}
}

// List handles GET /api/v1/count/journal
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)

	result, err := h.journal.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list journal entries",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list journal entries")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// parseListParams parses query parameters for listing journal entries
func (h *JournalHandler) parseListParams(r *http.Request) ports.JournalParams {
	params := ports.JournalParams{
		Page:     1,
		PageSize: 50,
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				params.PageSize = 100
			} else {
				params.PageSize = l
			}
		}
	}

	params.CompanyID = r.URL.Query().Get("company_id")
	params.BranchID = r.URL.Query().Get("branch_id")
	params.InventoryID = r.URL.Query().Get("inventory_id")
	params.ProductID = r.URL.Query().Get("product_id")
	params.Outcome = r.URL.Query().Get("outcome")

	return params
}

func (h *JournalHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *JournalHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
