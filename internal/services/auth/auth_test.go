package auth

import (
	"context"
	"testing"
	"time"

	"github.com/fastprodman/fairledger/internal/config"
	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/repos/memory"
	"github.com/fastprodman/fairledger/internal/services/ledger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func hash(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

func newService(t *testing.T) *Service {
	t.Helper()

	store := memory.New()
	store.PutBooth(booths.Booth{ID: "booth-pastel", Name: "Pastel", Username: "pastel", PasswordHash: hash(t, "pastel123")})

	svc, err := New(store, config.AuthConfig{
		JWTSecret:           secret,
		TokenTTL:            time.Hour,
		CashierUsername:     "caixa",
		CashierPasswordHash: hash(t, "caixa123"),
		CashierTag:          "cashier",
	})
	require.NoError(t, err)

	return svc
}

func TestNew_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := New(memory.New(), config.AuthConfig{})
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
		want     ledger.Operator
		wantErr  error
	}{
		{
			name:     "cashier",
			username: "caixa",
			password: "caixa123",
			want:     ledger.Operator{ID: "cashier", Role: ledger.RoleCashier},
		},
		{
			name:     "booth",
			username: "pastel",
			password: "pastel123",
			want:     ledger.Operator{ID: "booth-pastel", Role: ledger.RoleBooth},
		},
		{name: "cashier_wrong_password", username: "caixa", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "booth_wrong_password", username: "pastel", password: "caixa123", wantErr: ErrInvalidCredentials},
		{name: "unknown_user", username: "ghost", password: "x", wantErr: ErrInvalidCredentials},
	}

	svc := newService(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sess, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, sess.Operator)
			assert.NotEmpty(t, sess.Token)

			op, err := svc.Parse(sess.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestLogin_CashierDisabledWithoutHash(t *testing.T) {
	t.Parallel()

	svc, err := New(memory.New(), config.AuthConfig{JWTSecret: secret, CashierUsername: "caixa", TokenTTL: time.Hour})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "caixa", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	sign := func(method jwt.SigningMethod, key []byte, claims Claims) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return tok
	}
	valid := func() Claims {
		return Claims{
			Role: "booth",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "booth-pastel",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	badRole := valid()
	badRole.Role = "admin"

	noSubject := valid()
	noSubject.Subject = ""

	otherIssuer := valid()
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong_secret", token: sign(jwt.SigningMethodHS256, []byte("other"), valid())},
		{name: "wrong_method", token: sign(jwt.SigningMethodHS384, []byte(secret), valid())},
		{name: "expired", token: sign(jwt.SigningMethodHS256, []byte(secret), expired)},
		{name: "no_expiry", token: sign(jwt.SigningMethodHS256, []byte(secret), noExpiry)},
		{name: "unknown_role", token: sign(jwt.SigningMethodHS256, []byte(secret), badRole)},
		{name: "empty_subject", token: sign(jwt.SigningMethodHS256, []byte(secret), noSubject)},
		{name: "other_issuer", token: sign(jwt.SigningMethodHS256, []byte(secret), otherIssuer)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Parse(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssue_UsesClock(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	svc.now = func() time.Time { return time.Date(2025, 6, 24, 12, 0, 0, 0, time.UTC) }

	sess, err := svc.Issue(ledger.Operator{ID: "cashier", Role: ledger.RoleCashier})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 24, 13, 0, 0, 0, time.UTC), sess.ExpiresAt)

	// the token is already expired by the real clock
	svc.now = time.Now
	_, err = svc.Parse(sess.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
