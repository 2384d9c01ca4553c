package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-service/internal/domain/entity"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestJWTIssueAndParse(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := NewJWTManager("secret", time.Hour).WithClock(fixedClock(now))
	u := &entity.User{ID: "u1", Username: "ana", Roles: []string{entity.RoleUser}}

	token, err := m.Issue(u)
	require.NoError(t, err)
	assert.True(t, m.Verify(token))

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Subject)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, []string{entity.RoleUser}, claims.Roles)
	assert.True(t, now.Equal(claims.IssuedAt.Time))
	assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time))

	sub, err := m.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", sub)
}

func TestJWTVerifyIsStrictAboutExpiry(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	m := NewJWTManager("secret", time.Minute).WithClock(fixedClock(issued))
	token, err := m.Issue(&entity.User{ID: "u1", Username: "ana"})
	require.NoError(t, err)

	m.WithClock(fixedClock(issued.Add(time.Minute - time.Second)))
	assert.True(t, m.Verify(token))

	m.WithClock(fixedClock(issued.Add(time.Minute)))
	assert.False(t, m.Verify(token), "expiry equal to now is invalid")

	m.WithClock(fixedClock(issued.Add(time.Hour)))
	assert.False(t, m.Verify(token))
}

func TestJWTSubjectSkipsVerification(t *testing.T) {
	issued := time.Now().Add(-48 * time.Hour)
	token, err := NewJWTManager("other-secret", time.Minute).WithClock(fixedClock(issued)).Issue(&entity.User{ID: "u1", Username: "ana"})
	require.NoError(t, err)

	m := NewJWTManager("secret", time.Minute)
	assert.False(t, m.Verify(token))
	sub, err := m.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", sub)
}

func TestJWTRejectsGarbage(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	assert.False(t, m.Verify("not.a.token"))
	_, err := m.Subject("garbage")
	assert.Error(t, err)
}
