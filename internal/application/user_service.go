package application

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
	repo "github.com/oksasatya/user-service/internal/domain/repository"
)

const defaultSearchSize = 20

// UserService drives the user directory: creation with a default role,
// lookups, partial updates and deletion.
type UserService struct {
	Users  repo.UserRepository
	Hasher PasswordHasher
	Logger *logrus.Logger

	// Optional collaborators. A nil Events or Search disables that feature.
	Events UserEventPublisher
	Search UserSearcher

	PhoneRegion string
	Now         func() time.Time

	provisioner *provisioner
}

func NewUserService(users repo.UserRepository, roles repo.RoleRepository, hasher PasswordHasher, logger *logrus.Logger, defaultRole string) *UserService {
	s := &UserService{Users: users, Hasher: hasher, Logger: logger, Now: time.Now}
	s.provisioner = &provisioner{
		users:       users,
		roles:       roles,
		hasher:      hasher,
		defaultRole: defaultRole,
		phoneRegion: func() string { return s.PhoneRegion },
		now:         func() time.Time { return s.Now() },
	}
	return s
}

// CreateUser registers a new account with the default role.
func (s *UserService) CreateUser(ctx context.Context, reg entity.Registration) (*entity.User, error) {
	u, err := s.provisioner.provision(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user created")
	publish(ctx, s.Events, s.Logger, entity.NewUserEvent(entity.EventUserCreated, u, s.Now()))
	return u, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errs.UserNotFound("id", id)
	}
	return u, err
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.Users.FindByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errs.UserNotFound("username", username)
	}
	return u, err
}

// GetAllUsers streams every stored user. Nothing is read until the sequence
// is ranged over.
func (s *UserService) GetAllUsers(ctx context.Context) iter.Seq2[*entity.User, error] {
	return s.Users.FindAll(ctx)
}

// UpdateUser applies patch to the stored user. Absent fields keep their
// values; a supplied, non-empty password is re-hashed.
func (s *UserService) UpdateUser(ctx context.Context, patch entity.UserPatch) (*entity.User, error) {
	if strings.TrimSpace(patch.ID) == "" {
		return nil, &errs.InvalidArgumentError{Field: "id", Reason: "must not be empty"}
	}
	existing, err := s.GetUserByID(ctx, patch.ID)
	if err != nil {
		return nil, err
	}

	if patch.Phone != nil {
		phone, err := normalizePhone(*patch.Phone, s.PhoneRegion)
		if err != nil {
			return nil, err
		}
		patch.Phone = &phone
	}

	hash := existing.PasswordHash
	if patch.HasPassword() {
		if hash, err = encodePassword(ctx, s.Hasher, *patch.Password); err != nil {
			return nil, err
		}
	}

	merged := entity.MergePatch(*existing, patch, hash, s.Now())
	saved, err := s.Users.Save(ctx, &merged)
	if err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", saved.ID).Info("user updated")
	publish(ctx, s.Events, s.Logger, entity.NewUserEvent(entity.EventUserUpdated, saved, s.Now()))
	return saved, nil
}

// DeleteUserByID removes the user and its role links. A missing user is a
// NotFoundError and no delete is issued; any other store failure is wrapped
// in a PersistenceError.
func (s *UserService) DeleteUserByID(ctx context.Context, id string) error {
	u, err := s.Users.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return errs.UserNotFound("id", id)
	}
	if err != nil {
		return &errs.PersistenceError{Op: "load user", Err: err}
	}

	if err := s.Users.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errs.UserNotFound("id", id)
		}
		s.Logger.WithError(err).WithField("user_id", id).Error("delete user failed")
		return &errs.PersistenceError{Op: "delete user", Err: err}
	}
	s.Logger.WithField("user_id", id).Info("user deleted")
	publish(ctx, s.Events, s.Logger, entity.NewUserEvent(entity.EventUserDeleted, u, s.Now()))
	return nil
}

func (s *UserService) UserExists(ctx context.Context, id string) (bool, error) {
	return s.Users.ExistsByID(ctx, id)
}

// SearchUsers queries the directory projection. Without a configured
// searcher the result is always empty.
func (s *UserService) SearchUsers(ctx context.Context, query string, size int) ([]entity.UserSummary, error) {
	if s.Search == nil || strings.TrimSpace(query) == "" {
		return []entity.UserSummary{}, nil
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	return s.Search.Search(ctx, query, size)
}
