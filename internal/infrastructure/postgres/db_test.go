package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
)

func TestUserWriteError(t *testing.T) {
	u := entity.User{Username: "ana", Email: "ana@x.io"}
	tests := []struct {
		name  string
		err   error
		field string
		value string
	}{
		{"username", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}, "username", "ana"},
		{"email wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}), "email", "ana@x.io"},
		{"other unique index", &pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"}, "users_phone_key", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var conflict *errs.ConflictError
			require.ErrorAs(t, userWriteError(tt.err, u), &conflict)
			assert.Equal(t, tt.field, conflict.Field)
			assert.Equal(t, tt.value, conflict.Value)
		})
	}
}

func TestUserWriteErrorKeepsOtherFailures(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "user_roles_role_id_fkey"}
	err := userWriteError(fk, entity.User{})
	assert.False(t, errs.IsConflict(err))
	assert.ErrorIs(t, err, fk)

	cause := errors.New("conn reset")
	assert.ErrorIs(t, userWriteError(cause, entity.User{}), cause)
}

func TestValidID(t *testing.T) {
	assert.True(t, validID(uuid.NewString()))
	assert.False(t, validID(""))
	assert.False(t, validID("42"))
}
