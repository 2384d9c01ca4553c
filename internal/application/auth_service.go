package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-service/internal/domain/entity"
	"github.com/oksasatya/user-service/internal/domain/errs"
	repo "github.com/oksasatya/user-service/internal/domain/repository"
)

// AuthService handles self-registration and password login.
type AuthService struct {
	Users  repo.UserRepository
	Hasher PasswordHasher
	Tokens TokenIssuer
	Logger *logrus.Logger

	Events  UserEventPublisher
	Metrics Metrics

	PhoneRegion string
	Now         func() time.Time

	provisioner *provisioner
}

func NewAuthService(users repo.UserRepository, roles repo.RoleRepository, hasher PasswordHasher, tokens TokenIssuer, logger *logrus.Logger, defaultRole string) *AuthService {
	s := &AuthService{Users: users, Hasher: hasher, Tokens: tokens, Logger: logger, Metrics: nopMetrics{}, Now: time.Now}
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

// RegisterUser creates the account and returns a token for it.
func (s *AuthService) RegisterUser(ctx context.Context, reg entity.Registration) (*entity.AuthResponse, error) {
	u, err := s.provisioner.provision(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.Metrics.RecordRegistration()
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	publish(ctx, s.Events, s.Logger, entity.NewUserEvent(entity.EventUserCreated, u, s.Now()))
	return s.respond(u)
}

// Authenticate checks the password for username. Unknown users and wrong
// passwords both yield errs.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Users.FindByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		s.Metrics.RecordLogin(false)
		return nil, errs.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.Hasher.Matches(ctx, password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.Metrics.RecordLogin(false)
		return nil, errs.ErrInvalidCredentials
	}
	s.Metrics.RecordLogin(true)
	return u, nil
}

// AuthenticateAndGenerateToken logs the user in and issues a token.
func (s *AuthService) AuthenticateAndGenerateToken(ctx context.Context, creds entity.Credentials) (*entity.AuthResponse, error) {
	u, err := s.Authenticate(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, err
	}
	return s.respond(u)
}

func (s *AuthService) respond(u *entity.User) (*entity.AuthResponse, error) {
	token, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &entity.AuthResponse{Token: token, UserID: u.ID, Username: u.Username, Email: u.Email}, nil
}
