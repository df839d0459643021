package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// rollbackOnError is deferred right after BeginTx with a pointer to the
// caller's named error result.
func rollbackOnError(ctx context.Context, tx pgx.Tx, err *error, logger zerolog.Logger) {
	if *err == nil {
		return
	}
	if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		logger.Error().Err(rbErr).Msg("failed to rollback transaction")
	}
}
