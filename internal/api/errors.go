package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fastprodman/fairledger/internal/infra/lock"
	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/services/auth"
	"github.com/fastprodman/fairledger/internal/services/cardqr"
	"github.com/fastprodman/fairledger/internal/services/catalog"
	"github.com/fastprodman/fairledger/internal/services/ledger"
	"github.com/go-chi/chi/v5/middleware"
)

type errorResponse struct {
	Error               string            `json:"error"`
	Details             map[string]string `json:"details,omitempty"`
	NeedsReconciliation bool              `json:"needs_reconciliation,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeValidationError(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: details})
}

// writeDomainError maps service errors to status codes. Unknown errors are
// logged and reported as 500 without detail.
func (h *HandlerProvider) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrCompensationFailed):
		h.logger.Error("request left ledger inconsistent",
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "compensation failed", NeedsReconciliation: true})
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid amount")
	case errors.Is(err, ledger.ErrInvalidHolderName):
		writeValidationError(w, map[string]string{"holder_name": "must not be blank"})
	case errors.Is(err, catalog.ErrUnknownItem):
		writeError(w, http.StatusBadRequest, "unknown item")
	case errors.Is(err, catalog.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, ledger.ErrInvalidOperator), errors.Is(err, cardqr.ErrEmptyID):
		writeError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, cards.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "card not found")
	case errors.Is(err, booths.ErrBoothNotFound):
		writeError(w, http.StatusNotFound, "booth not found")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient balance")
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, lock.ErrNotAcquired):
		writeError(w, http.StatusConflict, "card is busy, retry")
	default:
		h.logger.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()), "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
