package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"duplicate key", gorm.ErrDuplicatedKey, true},
		{"value too long", &pgconn.PgError{Code: "22001"}, true},
		{"not null violation wrapped", fmt.Errorf("create: %w", &pgconn.PgError{Code: "23502"}), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, false},
		{"connection reset", errors.New("connection reset by peer"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermanent(tt.err))
		})
	}
}
