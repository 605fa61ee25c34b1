package api

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/items"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/fastprodman/fairledger/internal/services/auth"
	"github.com/fastprodman/fairledger/internal/services/cardqr"
	"github.com/fastprodman/fairledger/internal/services/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Ledger is the part of the ledger engine the handlers drive.
type Ledger interface {
	Card(ctx context.Context, id string) (cards.Card, error)
	Booth(ctx context.Context, id string) (booths.Booth, error)
	IssueCard(ctx context.Context, holderName string, initialCredit decimal.Decimal, op ledger.Operator) (cards.Card, error)
	Credit(ctx context.Context, cardID string, amount decimal.Decimal, op ledger.Operator) (ledger.CreditResult, error)
	Debit(ctx context.Context, req ledger.DebitRequest, op ledger.Operator) (ledger.DebitResult, error)
	Query(ctx context.Context, filter string) iter.Seq2[transactions.Record, error]
	CardTransactions(ctx context.Context, cardID string) iter.Seq2[transactions.Record, error]
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (auth.Session, error)
	Parse(token string) (ledger.Operator, error)
}

type Catalog interface {
	Items(ctx context.Context, boothID string) ([]items.Item, error)
}

// HandlerProvider exposes the ledger, login and catalog over HTTP.
type HandlerProvider struct {
	ledger   Ledger
	auth     Authenticator
	catalog  Catalog
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(l Ledger, a Authenticator, c Catalog, logger *slog.Logger) *HandlerProvider {
	return &HandlerProvider{
		ledger:   l,
		auth:     a,
		catalog:  c,
		validate: newValidator(),
		logger:   logger,
	}
}

// Health handles GET /healthz
func (h *HandlerProvider) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login handles POST /auth/login
func (h *HandlerProvider) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	ok := h.decode(w, r, &req)
	if !ok {
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:      sess.Token,
		Role:       string(sess.Operator.Role),
		OperatorID: sess.Operator.ID,
		ExpiresAt:  sess.ExpiresAt,
	})
}

// GetCard handles GET /cards/{cardId}
func (h *HandlerProvider) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.ledger.Card(r.Context(), chi.URLParam(r, "cardId"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCardResponse(card))
}

// GetCardQR handles GET /cards/{cardId}/qr?size=
func (h *HandlerProvider) GetCardQR(w http.ResponseWriter, r *http.Request) {
	size := cardqr.DefaultSize

	raw := r.URL.Query().Get("size")
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid size")
			return
		}
		size = n
	}

	card, err := h.ledger.Card(r.Context(), chi.URLParam(r, "cardId"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	img, err := cardqr.PNG(card.ID, size)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)

	_, err = w.Write(img)
	if err != nil {
		h.logger.Warn("write qr png", "card_id", card.ID, "error", err)
	}
}

// GetCardTransactions handles GET /cards/{cardId}/transactions
func (h *HandlerProvider) GetCardTransactions(w http.ResponseWriter, r *http.Request) {
	card, err := h.ledger.Card(r.Context(), chi.URLParam(r, "cardId"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	recs, err := collect(h.ledger.CardTransactions(r.Context(), card.ID))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recs)
}

// IssueCard handles POST /cards
func (h *HandlerProvider) IssueCard(w http.ResponseWriter, r *http.Request) {
	var req issueCardRequest

	ok := h.decode(w, r, &req)
	if !ok {
		return
	}

	credit, err := parseAmount(req.InitialCredit)
	if err != nil {
		writeValidationError(w, map[string]string{"initial_credit": err.Error()})
		return
	}

	card, err := h.ledger.IssueCard(r.Context(), req.HolderName, credit, operatorFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

// Credit handles POST /credit
func (h *HandlerProvider) Credit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest

	ok := h.decode(w, r, &req)
	if !ok {
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeValidationError(w, map[string]string{"amount": err.Error()})
		return
	}

	res, err := h.ledger.Credit(r.Context(), req.CardID, amount, operatorFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, creditResponse{Balance: money(res.Balance)})
}

// Debit handles POST /debit. A booth may only charge for itself.
func (h *HandlerProvider) Debit(w http.ResponseWriter, r *http.Request) {
	var req debitRequest

	ok := h.decode(w, r, &req)
	if !ok {
		return
	}

	op := operatorFrom(r.Context())
	if op.ID != req.BoothID {
		writeError(w, http.StatusForbidden, "booth may only debit for itself")
		return
	}

	res, err := h.ledger.Debit(r.Context(), ledger.DebitRequest{
		CardID:  req.CardID,
		BoothID: req.BoothID,
		Lines:   req.LineItems,
	}, op)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, debitResponse{Balance: money(res.Balance), Total: money(res.Total)})
}

// ListTransactions handles GET /transactions?filter=
func (h *HandlerProvider) ListTransactions(w http.ResponseWriter, r *http.Request) {
	recs, err := collect(h.ledger.Query(r.Context(), r.URL.Query().Get("filter")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recs)
}

// GetBooth handles GET /booths/{boothId}. Booths see only themselves.
func (h *HandlerProvider) GetBooth(w http.ResponseWriter, r *http.Request) {
	boothID := chi.URLParam(r, "boothId")

	op := operatorFrom(r.Context())
	if op.Role == ledger.RoleBooth && op.ID != boothID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	booth, err := h.ledger.Booth(r.Context(), boothID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, boothResponse{ID: booth.ID, Name: booth.Name, Revenue: money(booth.Revenue)})
}

// ListBoothItems handles GET /booths/{boothId}/items
func (h *HandlerProvider) ListBoothItems(w http.ResponseWriter, r *http.Request) {
	booth, err := h.ledger.Booth(r.Context(), chi.URLParam(r, "boothId"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	list, err := h.catalog.Items(r.Context(), booth.ID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	out := make([]itemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, itemResponse{ID: it.ID, Name: it.Name, UnitPrice: money(it.UnitPrice)})
	}

	writeJSON(w, http.StatusOK, out)
}

func collect(seq iter.Seq2[transactions.Record, error]) ([]recordResponse, error) {
	out := make([]recordResponse, 0)

	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, toRecordResponse(rec))
	}

	return out, nil
}
