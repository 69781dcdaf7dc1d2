package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go/types"

	"agency-portfolio-backend/internal/auth"
	"agency-portfolio-backend/internal/models"
)

// AuthProvider adapts Supabase Auth (GoTrue) and the profiles table.
type AuthProvider struct {
	client *Client
}

func NewAuthProvider(client *Client) *AuthProvider {
	return &AuthProvider{client: client}
}

func (a *AuthProvider) SignIn(ctx context.Context, email, password string) (*auth.Identity, error) {
	resp, err := a.client.Public.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		if isInvalidCredentials(err) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	return &auth.Identity{
		ID:           resp.User.ID.String(),
		Email:        resp.User.Email,
		MetadataName: metadataName(resp.User.UserMetadata),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// SignUp stores the display name in user metadata; a database trigger copies
// it into profiles.
func (a *AuthProvider) SignUp(ctx context.Context, name, email, password string) (*auth.Identity, error) {
	resp, err := a.client.Public.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     map[string]interface{}{"name": name},
	})
	if err != nil {
		if isDuplicateEmail(err) {
			return nil, auth.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}

	return &auth.Identity{
		ID:           resp.ID.String(),
		Email:        resp.Email,
		MetadataName: name,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (a *AuthProvider) User(ctx context.Context, accessToken string) (*auth.Identity, error) {
	resp, err := a.client.Public.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, auth.ErrNoSession
	}

	return &auth.Identity{
		ID:           resp.ID.String(),
		Email:        resp.Email,
		MetadataName: metadataName(resp.UserMetadata),
		AccessToken:  accessToken,
	}, nil
}

func (a *AuthProvider) SignOut(ctx context.Context, accessToken string) error {
	if err := a.client.Public.Auth.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (a *AuthProvider) Profile(ctx context.Context, userID string) (*models.ProfileRow, error) {
	var rows []models.ProfileRow
	_, err := a.client.Supabase.From(tableProfiles).
		Select("*", "", false).
		Eq("id", userID).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, auth.ErrProfileNotFound
	}
	return &rows[0], nil
}

func metadataName(meta map[string]interface{}) string {
	if name, ok := meta["name"].(string); ok {
		return name
	}
	return ""
}

func isInvalidCredentials(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid login credentials") ||
		strings.Contains(msg, "invalid_credentials")
}

func isDuplicateEmail(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already registered") ||
		strings.Contains(msg, "user_already_exists")
}

var _ auth.Provider = (*AuthProvider)(nil)
