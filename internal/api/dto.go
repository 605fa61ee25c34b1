package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token      string    `json:"token"`
	Role       string    `json:"role"`
	OperatorID string    `json:"operator_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type issueCardRequest struct {
	HolderName    string `json:"holder_name" validate:"required,max=120"`
	InitialCredit amountText `json:"initial_credit" validate:"required"`
}

type creditRequest struct {
	CardID string `json:"card_id" validate:"required"`
	Amount amountText `json:"amount" validate:"required"`
}

type debitRequest struct {
	CardID    string         `json:"card_id" validate:"required"`
	BoothID   string         `json:"booth_id" validate:"required"`
	LineItems map[string]int `json:"line_items" validate:"required,min=1"`
}

type cardResponse struct {
	ID         string    `json:"id"`
	HolderName string    `json:"holder_name"`
	Balance    string    `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
}

type creditResponse struct {
	Balance string `json:"balance"`
}

type debitResponse struct {
	Balance string `json:"balance"`
	Total   string `json:"total"`
}

type boothResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Revenue string `json:"revenue"`
}

type itemResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
}

type recordResponse struct {
	ID          string    `json:"id"`
	CardID      string    `json:"card_id"`
	CardName    string    `json:"card_name"`
	Amount      string    `json:"amount"`
	Kind        string    `json:"kind"`
	ProcessedBy string    `json:"processed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCardResponse(c cards.Card) cardResponse {
	return cardResponse{ID: c.ID, HolderName: c.HolderName, Balance: money(c.Balance), CreatedAt: c.CreatedAt}
}

func toRecordResponse(r transactions.Record) recordResponse {
	return recordResponse{
		ID:          r.ID,
		CardID:      r.CardID,
		CardName:    r.CardName,
		Amount:      money(r.Amount),
		Kind:        string(r.Kind),
		ProcessedBy: r.ProcessedBy,
		CreatedAt:   r.CreatedAt,
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// amountText holds a money amount as sent, either a JSON string ("10.50")
// or a JSON number (10.5). Numbers keep their literal text.
type amountText string

func (a *amountText) UnmarshalJSON(b []byte) error {
	switch {
	case len(b) == 0 || string(b) == "null":
		return nil
	case b[0] == '"':
		var s string

		err := json.Unmarshal(b, &s)
		if err != nil {
			return err
		}

		*a = amountText(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*a = amountText(b)
	default:
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeFor[amountText]()}
	}

	return nil
}

// parseAmount reads a positive decimal with up to 2 fractional digits.
func parseAmount(a amountText) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(a)))
	if err != nil {
		return decimal.Zero, errors.New("not a decimal number")
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, errors.New("at most 2 decimal places")
	}
	if !d.IsPositive() {
		return decimal.Zero, errors.New("must be > 0")
	}

	return d, nil
}

// decode reads a single JSON object into dst and validates it. On failure it
// writes the 400 response and returns false.
func (h *HandlerProvider) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}

		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeValidationError(w, map[string]string{typeErr.Field: "wrong type"})
			return false
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "body must contain a single JSON object")
		return false
	}

	err = h.validate.Struct(dst)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "invalid request")
			return false
		}

		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fmt.Sprintf("failed on '%s' tag", fe.Tag())
		}

		writeValidationError(w, details)
		return false
	}

	return true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON keys
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}
