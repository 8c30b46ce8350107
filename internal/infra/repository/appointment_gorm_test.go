package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimworks/booking-api/internal/httperr"
)

func TestTranslateConflictMapsExclusionViolation(t *testing.T) {
	start := time.Date(2026, 3, 11, 13, 0, 0, 0, time.UTC)

	for _, code := range []string{"23P01", "23505"} {
		err := translateConflict(&pgconn.PgError{Code: code}, start)

		var conflict httperr.SlotConflictError
		require.ErrorAs(t, err, &conflict, "code %s", code)
		assert.True(t, conflict.ConflictingStart.Equal(start))
	}
}

func TestTranslateConflictUnwrapsNestedPgError(t *testing.T) {
	start := time.Date(2026, 3, 11, 13, 0, 0, 0, time.UTC)
	wrapped := fmt.Errorf("create appointment: %w", &pgconn.PgError{Code: "23P01"})

	var conflict httperr.SlotConflictError
	require.ErrorAs(t, translateConflict(wrapped, start), &conflict)
}

func TestTranslateConflictPassesOtherErrorsThrough(t *testing.T) {
	start := time.Date(2026, 3, 11, 13, 0, 0, 0, time.UTC)

	assert.NoError(t, translateConflict(nil, start))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translateConflict(plain, start))

	// A not-null violation is not a slot conflict.
	notNull := &pgconn.PgError{Code: "23502"}
	var conflict httperr.SlotConflictError
	assert.False(t, errors.As(translateConflict(notNull, start), &conflict))
}
