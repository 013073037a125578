// Package service implements the business logic behind the HTTP surface:
// cart mutations, coupon application, checkout consolidation, and the
// order state machine. Services code against repository.Querier so tests
// can substitute an in-memory store.
package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/aelshahawy/dokan/internal/repository"
)

// Store is the persistence surface services depend on: queries at pool
// level plus transaction execution.
type Store interface {
	repository.Querier
	repository.Transactor
}

// isNoRows reports whether err is the driver's empty-result sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
