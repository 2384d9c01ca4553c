package application

import (
	"context"

	"github.com/oksasatya/user-service/internal/domain/entity"
)

// PasswordHasher hashes and checks passwords. Implementations run the
// blocking primitive off the caller's goroutine and honour ctx while waiting.
type PasswordHasher interface {
	Encode(ctx context.Context, plain string) (string, error)
	Matches(ctx context.Context, plain, hash string) (bool, error)
}

// TokenIssuer signs and inspects bearer tokens.
type TokenIssuer interface {
	Issue(u *entity.User) (string, error)
	Verify(token string) bool
	Subject(token string) (string, error)
}

// UserEventPublisher receives lifecycle events after a mutation is stored.
type UserEventPublisher interface {
	Publish(ctx context.Context, ev entity.UserEvent) error
}

// UserSearcher queries the user directory projection.
type UserSearcher interface {
	Search(ctx context.Context, query string, size int) ([]entity.UserSummary, error)
}

// Metrics counts authentication outcomes.
type Metrics interface {
	RecordRegistration()
	RecordLogin(success bool)
}

type nopMetrics struct{}

func (nopMetrics) RecordRegistration() {}
func (nopMetrics) RecordLogin(bool)    {}
