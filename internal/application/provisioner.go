package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
	repo "github.com/oksasatya/user-service/internal/domain/repository"
	"github.com/oksasatya/user-service/pkg/helpers"
)

// provisioner creates accounts: uniqueness check, password hash, default
// role, persist. UserService and AuthService each hold their own.
type provisioner struct {
	users       repo.UserRepository
	roles       repo.RoleRepository
	hasher      PasswordHasher
	defaultRole string
	phoneRegion func() string
	now         func() time.Time
}

func (p *provisioner) provision(ctx context.Context, reg entity.Registration) (*entity.User, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}
	phone, err := normalizePhone(reg.Phone, p.phoneRegion())
	if err != nil {
		return nil, err
	}

	if err := p.checkUnique(ctx, reg.Username, reg.Email); err != nil {
		return nil, err
	}

	hash, err := encodePassword(ctx, p.hasher, reg.Password)
	if err != nil {
		return nil, err
	}

	role, err := p.roles.FindByName(ctx, p.defaultRole)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errs.RoleNotConfigured(p.defaultRole)
	}
	if err != nil {
		return nil, fmt.Errorf("find default role: %w", err)
	}

	now := p.now()
	return p.users.Save(ctx, &entity.User{
		Username:     reg.Username,
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: hash,
		Phone:        phone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Roles:        []string{role.Name},
	})
}

// checkUnique looks up username and email concurrently. Both lookups are
// always issued; the first conflict (or store failure) observed is returned.
func (p *provisioner) checkUnique(ctx context.Context, username, email string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ensureFree(gctx, "username", username, p.users.FindByUsername)
	})
	g.Go(func() error {
		return ensureFree(gctx, "email", email, p.users.FindByEmail)
	})
	return g.Wait()
}

func ensureFree(ctx context.Context, field, value string, find func(context.Context, string) (*entity.User, error)) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return &errs.ConflictError{Field: field, Value: value}
	case errors.Is(err, repo.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("check %s: %w", field, err)
	}
}

func validateRegistration(reg entity.Registration) error {
	switch {
	case strings.TrimSpace(reg.Username) == "":
		return &errs.InvalidArgumentError{Field: "username", Reason: "must not be empty"}
	case strings.TrimSpace(reg.Email) == "":
		return &errs.InvalidArgumentError{Field: "email", Reason: "must not be empty"}
	case reg.Password == "":
		return &errs.InvalidArgumentError{Field: "password", Reason: "must not be empty"}
	}
	return nil
}

// encodePassword hashes plain. A password bcrypt cannot take is the
// caller's fault and comes back as an InvalidArgumentError.
func encodePassword(ctx context.Context, hasher PasswordHasher, plain string) (string, error) {
	hash, err := hasher.Encode(ctx, plain)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", &errs.InvalidArgumentError{Field: "password", Reason: "must be at most 72 bytes"}
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func normalizePhone(raw, region string) (string, error) {
	phone, err := helpers.NormalizePhone(raw, region)
	if err != nil {
		return "", &errs.InvalidArgumentError{Field: "phone", Reason: err.Error()}
	}
	return phone, nil
}

// publish hands ev to events without failing the caller.
func publish(ctx context.Context, events UserEventPublisher, logger *logrus.Logger, ev entity.UserEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, ev); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{"user_id": ev.UserID, "event": ev.Type}).Warn("publish user event failed")
	}
}
