// Package auth logs in cashiers and booths and issues the bearer tokens the
// API uses to tell them apart.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/fairledger/internal/config"
	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/services/ledger"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoSecret           = errors.New("jwt secret is not configured")
)

const issuer = "fairledger"

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	Operator  ledger.Operator
	ExpiresAt time.Time
}

type Service struct {
	booths booths.Booths
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	cashierUsername string
	cashierHash     []byte
	cashierTag      string
}

func New(b booths.Booths, cfg config.AuthConfig) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrNoSecret
	}

	return &Service{
		booths:          b,
		secret:          []byte(cfg.JWTSecret),
		ttl:             cfg.TokenTTL,
		now:             time.Now,
		cashierUsername: cfg.CashierUsername,
		cashierHash:     []byte(cfg.CashierPasswordHash),
		cashierTag:      cfg.CashierTag,
	}, nil
}

// Login checks username and password against the configured cashier first
// and the booths second. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	op, err := s.authenticate(ctx, username, password)
	if err != nil {
		return Session{}, err
	}

	return s.Issue(op)
}

func (s *Service) authenticate(ctx context.Context, username, password string) (ledger.Operator, error) {
	if username == s.cashierUsername && len(s.cashierHash) > 0 {
		err := bcrypt.CompareHashAndPassword(s.cashierHash, []byte(password))
		if err != nil {
			return ledger.Operator{}, ErrInvalidCredentials
		}

		return ledger.Operator{ID: s.cashierTag, Role: ledger.RoleCashier}, nil
	}

	booth, err := s.booths.GetBoothByUsername(ctx, username)
	if errors.Is(err, booths.ErrBoothNotFound) {
		return ledger.Operator{}, ErrInvalidCredentials
	}
	if err != nil {
		return ledger.Operator{}, fmt.Errorf("get booth by username: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(booth.PasswordHash), []byte(password))
	if err != nil {
		return ledger.Operator{}, ErrInvalidCredentials
	}

	return ledger.Operator{ID: booth.ID, Role: ledger.RoleBooth}, nil
}

// Issue signs a token for op.
func (s *Service) Issue(op ledger.Operator) (Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)

	claims := Claims{
		Role: string(op.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   op.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	return Session{Token: token, Operator: op, ExpiresAt: exp}, nil
}

// Parse verifies token and returns the operator it was issued to.
func (s *Service) Parse(token string) (ledger.Operator, error) {
	claims := new(Claims)

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ledger.Operator{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	role := ledger.Role(claims.Role)
	if role != ledger.RoleCashier && role != ledger.RoleBooth {
		return ledger.Operator{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	if claims.Subject == "" {
		return ledger.Operator{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	return ledger.Operator{ID: claims.Subject, Role: role}, nil
}
