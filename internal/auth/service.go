package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"agency-portfolio-backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrNoSession          = errors.New("no active session")
	ErrProfileNotFound    = errors.New("profile not found")
)

// Identity is what the auth provider knows about an account, before the
// profile side table is joined in.
type Identity struct {
	ID           string
	Email        string
	MetadataName string
	AccessToken  string
	RefreshToken string
}

// Provider is the external auth service plus its profiles side table.
type Provider interface {
	// SignIn returns ErrInvalidCredentials for unknown accounts or bad passwords.
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	// SignUp returns ErrDuplicateEmail when the address is taken.
	SignUp(ctx context.Context, name, email, password string) (*Identity, error)
	// User resolves a live access token; ErrNoSession when it is not.
	User(ctx context.Context, accessToken string) (*Identity, error)
	SignOut(ctx context.Context, accessToken string) error
	// Profile returns ErrProfileNotFound when the side table has no row.
	Profile(ctx context.Context, userID string) (*models.ProfileRow, error)
}

type Service struct {
	provider Provider
	log      zerolog.Logger
}

func NewService(provider Provider, log zerolog.Logger) *Service {
	return &Service{provider: provider, log: log}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	id, err := s.provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		s.log.Debug().Err(err).Str("email", email).Msg("sign in rejected")
		return nil, ErrInvalidCredentials
	}
	if id == nil {
		return nil, ErrInvalidCredentials
	}
	return &models.Session{
		User:         s.join(ctx, id),
		AccessToken:  id.AccessToken,
		RefreshToken: id.RefreshToken,
	}, nil
}

// Register creates an account. Self-registered accounts are never admins.
// confirm is checked only when non-empty.
func (s *Service) Register(ctx context.Context, name, email, password, confirm string) (*models.Session, error) {
	if confirm != "" && confirm != password {
		return nil, ErrPasswordMismatch
	}
	id, err := s.provider.SignUp(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if id == nil {
		return nil, fmt.Errorf("registration failed: provider returned no user")
	}
	return &models.Session{
		User: models.User{
			ID:      id.ID,
			Email:   id.Email,
			Name:    strings.TrimSpace(name),
			IsAdmin: false,
		},
		AccessToken:  id.AccessToken,
		RefreshToken: id.RefreshToken,
	}, nil
}

// ActiveUser returns nil without error when there is no live session.
func (s *Service) ActiveUser(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, nil
	}
	id, err := s.provider.User(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if id == nil {
		return nil, nil
	}
	user := s.join(ctx, id)
	return &user, nil
}

func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// IsAdmin reports the profile flag for a user id; missing profiles are not admins.
func (s *Service) IsAdmin(ctx context.Context, userID string) bool {
	profile, err := s.provider.Profile(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			s.log.Error().Err(err).Str("user_id", userID).Msg("error fetching profile")
		}
		return false
	}
	return profile.IsAdmin != nil && *profile.IsAdmin
}

func (s *Service) join(ctx context.Context, id *Identity) models.User {
	user := models.User{ID: id.ID, Email: id.Email, Name: id.MetadataName}

	profile, err := s.provider.Profile(ctx, id.ID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			s.log.Error().Err(err).Str("user_id", id.ID).Msg("error fetching profile")
		}
		return user
	}
	if profile.Name != nil && *profile.Name != "" {
		user.Name = *profile.Name
	}
	user.IsAdmin = profile.IsAdmin != nil && *profile.IsAdmin
	return user
}
