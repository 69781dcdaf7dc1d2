package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agency-portfolio-backend/internal/auth"
	"agency-portfolio-backend/internal/models"
)

const tokenTTL = time.Hour

type account struct {
	id           string
	email        string
	name         string
	passwordHash []byte
}

// Auth is an in-process auth provider. Access tokens are HS256 JWTs signed
// with the same secret the HTTP middleware verifies, so they are accepted
// like Supabase-issued ones.
type Auth struct {
	mu       sync.RWMutex
	secret   []byte
	accounts map[string]*account // by lower-cased email
	profiles map[string]models.ProfileRow
	revoked  map[string]bool
}

func NewAuth(jwtSecret string) *Auth {
	return &Auth{
		secret:   []byte(jwtSecret),
		accounts: make(map[string]*account),
		profiles: make(map[string]models.ProfileRow),
		revoked:  make(map[string]bool),
	}
}

// SeedAdmin creates an account whose profile carries the admin flag.
func (a *Auth) SeedAdmin(ctx context.Context, name, email, password string) (string, error) {
	id, err := a.SignUp(ctx, name, email, password)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	admin := true
	profile := a.profiles[id.ID]
	profile.IsAdmin = &admin
	a.profiles[id.ID] = profile
	return id.ID, nil
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (*auth.Identity, error) {
	a.mu.RLock()
	acc, ok := a.accounts[strings.ToLower(email)]
	a.mu.RUnlock()
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return a.issue(acc)
}

func (a *Auth) SignUp(ctx context.Context, name, email, password string) (*auth.Identity, error) {
	key := strings.ToLower(email)
	if key == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	a.mu.Lock()
	if _, exists := a.accounts[key]; exists {
		a.mu.Unlock()
		return nil, auth.ErrDuplicateEmail
	}
	acc := &account{id: uuid.NewString(), email: email, name: name, passwordHash: hash}
	a.accounts[key] = acc
	// Mirrors the provider trigger that copies metadata into profiles.
	n := name
	a.profiles[acc.id] = models.ProfileRow{ID: acc.id, Name: &n}
	a.mu.Unlock()

	return a.issue(acc)
}

func (a *Auth) User(ctx context.Context, accessToken string) (*auth.Identity, error) {
	a.mu.RLock()
	revoked := a.revoked[accessToken]
	a.mu.RUnlock()
	if revoked {
		return nil, auth.ErrNoSession
	}

	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, auth.ErrNoSession
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, auth.ErrNoSession
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, acc := range a.accounts {
		if acc.id == sub {
			return &auth.Identity{
				ID:           acc.id,
				Email:        acc.email,
				MetadataName: acc.name,
				AccessToken:  accessToken,
			}, nil
		}
	}
	return nil, auth.ErrNoSession
}

func (a *Auth) SignOut(ctx context.Context, accessToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revoked[accessToken] = true
	return nil
}

func (a *Auth) Profile(ctx context.Context, userID string) (*models.ProfileRow, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.profiles[userID]
	if !ok {
		return nil, auth.ErrProfileNotFound
	}
	return &p, nil
}

func (a *Auth) issue(acc *account) (*auth.Identity, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":           acc.id,
		"email":         acc.email,
		"role":          "authenticated",
		"iat":           now.Unix(),
		"exp":           now.Add(tokenTTL).Unix(),
		"session_id":    uuid.NewString(),
		"user_metadata": map[string]interface{}{"name": acc.name},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &auth.Identity{
		ID:           acc.id,
		Email:        acc.email,
		MetadataName: acc.name,
		AccessToken:  signed,
		RefreshToken: uuid.NewString(),
	}, nil
}

var _ auth.Provider = (*Auth)(nil)
