package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portfolio-backend/internal/auth"
	"agency-portfolio-backend/internal/middleware"
	"agency-portfolio-backend/internal/models"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(auth *auth.Service) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignIn godoc
// @Summary     Sign in with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.SignInRequest true "Credentials"
// @Success     200 {object} models.Session
// @Failure     401 {object} models.ErrorResponse
// @Router      /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	session, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Register godoc
// @Summary     Create an account
// @Description Self-registered accounts are never admins
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.RegisterRequest true "Account"
// @Success     201 {object} models.Session
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	session, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, session)
	case errors.Is(err, auth.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "password_mismatch",
			Message: "Passwords do not match",
		})
	case errors.Is(err, auth.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "duplicate_email",
			Message: "Email already registered",
		})
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "registration_failed",
			Message: err.Error(),
		})
	}
}

// Session godoc
// @Summary     Current user
// @Description Returns {"user": null} when there is no live session
// @Tags        auth
// @Produce     json
// @Success     200 {object} models.ActiveUserResponse
// @Router      /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	token, err := middleware.BearerToken(c)
	if err != nil {
		c.JSON(http.StatusOK, models.ActiveUserResponse{})
		return
	}

	user, err := h.auth.ActiveUser(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "auth_unavailable",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ActiveUserResponse{User: user})
}

// SignOut godoc
// @Summary     End the current session
// @Tags        auth
// @Success     204
// @Router      /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	token, err := middleware.BearerToken(c)
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.auth.SignOut(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "auth_unavailable",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}
