package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"agency-portfolio-backend/internal/config"
	"agency-portfolio-backend/internal/models"
)

const (
	UserIDKey      = "user_id"
	AccessTokenKey = "access_token"
)

var (
	errMissingHeader = errors.New("missing authorization header")
	errHeaderFormat  = errors.New("invalid authorization header format")
	errMissingSub    = errors.New("missing user id in token")
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header, undoing URL encoding some clients apply.
func BearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errMissingHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errHeaderFormat
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", errHeaderFormat
	}

	if decoded, err := url.QueryUnescape(tokenString); err == nil && decoded != tokenString {
		tokenString = decoded
	}
	return tokenString, nil
}

// VerifyToken checks an HS256 Supabase access token and returns its subject.
func VerifyToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		if secret == "" {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errMissingSub
	}
	return sub, nil
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return "token signature is invalid - check JWT secret"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed - ensure you're using a valid Supabase JWT token"
	default:
		return err.Error()
	}
}

// AuthMiddleware rejects requests without a valid access token.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := BearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: err.Error(),
			})
			return
		}

		sub, err := VerifyToken(cfg.SupabaseJWTSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_token",
				Message: tokenErrorMessage(err),
			})
			return
		}

		c.Set(UserIDKey, sub)
		c.Set(AccessTokenKey, tokenString)
		c.Next()
	}
}

// OptionalAuth records the caller when a valid token is present and lets
// anonymous requests through otherwise. Browsers cannot set headers on a
// websocket handshake, so the token may also come as ?access_token=.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := BearerToken(c)
		if err != nil && c.Query("access_token") != "" {
			tokenString, err = c.Query("access_token"), nil
		}
		if err == nil {
			if sub, err := VerifyToken(cfg.SupabaseJWTSecret, tokenString); err == nil {
				c.Set(UserIDKey, sub)
				c.Set(AccessTokenKey, tokenString)
			}
		}
		c.Next()
	}
}

// AdminChecker reports the profile admin flag of a user.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) bool
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" || !checker.IsAdmin(c.Request.Context(), userID) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "forbidden",
				Message: "Admin access required",
			})
			return
		}
		c.Next()
	}
}
