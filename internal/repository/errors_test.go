package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "pgx unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "pgx other code", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "pq unique violation", err: &pq.Error{Code: "23505"}, want: true},
		{name: "wrapped pgx error", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolationError(tt.err))
		})
	}
}

func TestIsExclusionViolationError(t *testing.T) {
	assert.True(t, IsExclusionViolationError(&pgconn.PgError{Code: "23P01"}))
	assert.True(t, IsExclusionViolationError(&pq.Error{Code: "23P01"}))
	assert.False(t, IsExclusionViolationError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsExclusionViolationError(nil))
}
