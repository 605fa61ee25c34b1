package main

import (
	"errors"

	"github.com/fastprodman/fairledger/internal/config"
)

// checkAPIConfig rejects settings the API cannot start with.
func checkAPIConfig(cfg *config.Config) error {
	switch {
	case cfg.App.Port == 0:
		return errors.New("app.port must be set")
	case cfg.Auth.JWTSecret == "":
		return errors.New("auth.jwt_secret must be set")
	case cfg.Auth.TokenTTL <= 0:
		return errors.New("auth.token_ttl must be positive")
	case cfg.Auth.CashierTag == "":
		return errors.New("auth.cashier_tag must be set")
	case cfg.Postgres.DSN == "":
		return errors.New("pg.dsn must be set")
	}

	return nil
}
