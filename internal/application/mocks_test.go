package application_test

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/user-service/internal/domain/entity"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	args := m.Called(ctx, u)
	if v := args.Get(0); v != nil {
		return v.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if v := args.Get(0); v != nil {
		return v.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) FindAll(ctx context.Context) iter.Seq2[*entity.User, error] {
	args := m.Called(ctx)
	return args.Get(0).(iter.Seq2[*entity.User, error])
}

func (m *mockUserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// recordingEvents keeps every published event.
type recordingEvents struct {
	mu     sync.Mutex
	events []entity.UserEvent
	fail   bool
}

func (r *recordingEvents) Publish(_ context.Context, ev entity.UserEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if r.fail {
		return errors.New("broker down")
	}
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type countingMetrics struct {
	mu            sync.Mutex
	registrations int
	logins        map[bool]int
}

func (c *countingMetrics) RecordRegistration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations++
}

func (c *countingMetrics) RecordLogin(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logins == nil {
		c.logins = map[bool]int{}
	}
	c.logins[success]++
}

type stubSearcher struct {
	hits  []entity.UserSummary
	query string
	size  int
}

func (s *stubSearcher) Search(_ context.Context, q string, size int) ([]entity.UserSummary, error) {
	s.query, s.size = q, size
	return s.hits, nil
}
