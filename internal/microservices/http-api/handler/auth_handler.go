package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes mounts the auth endpoints on the API root, including the two
// legacy paths for requesting and exchanging a confirmation code.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/email-confirmation/", h.EmailConfirmation)
	rg.POST("/token/", h.Token)

	a := rg.Group("/auth")
	a.POST("/signup/", h.Signup)
	a.POST("/email/", h.EmailConfirmation)
	a.POST("/token/", h.Token)
	a.POST("/login/", h.Login)
	a.POST("/refresh/", h.Refresh)
	a.POST("/revoke/", h.Revoke)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.Signup(ctx, req.Username, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SignupResponse{Username: user.Username, Email: user.Email})
}

// EmailConfirmation mails a confirmation code to an existing account.
func (h *AuthHandler) EmailConfirmation(c *gin.Context) {
	var req dto.EmailConfirmationRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.RequestCode(ctx, req.Email); err != nil {
		respondError(c, err)
		return
	}

	const msg = "Confirmation code was sent to your email"
	if wantsText(c) {
		c.String(http.StatusOK, msg)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}

// Token exchanges a confirmation code for a token pair.
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	pair, err := h.authService.ExchangeCode(ctx, req.Email, req.ConfirmationCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidConfirmationCode) && wantsText(c) {
			c.String(http.StatusBadRequest, "Wrong confirmation_code")
			return
		}
		respondError(c, err)
		return
	}
	h.respondTokens(c, pair)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	pair, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondTokens(c, pair)
}

// Refresh rotates the refresh token: the old one is revoked and a new pair is
// returned.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	pair, err := h.authService.Refresh(ctx, req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondTokens(c, pair)
}

func (h *AuthHandler) Revoke(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// always report success to avoid token fishing
	if err := h.authService.Revoke(ctx, req.Refresh); err != nil {
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Refresh token revoked"})
}

func (h *AuthHandler) respondTokens(c *gin.Context, pair *dto.TokenResponse) {
	if wantsText(c) {
		c.String(http.StatusOK, fmt.Sprintf("refresh:%s\naccess:%s", pair.Refresh, pair.Access))
		return
	}
	c.JSON(http.StatusOK, pair)
}

// wantsText reports whether the client prefers the plain-text bodies of the
// confirmation code endpoints over JSON.
func wantsText(c *gin.Context) bool {
	if c.GetHeader("Accept") == "" {
		return false
	}
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEPlain) == gin.MIMEPlain
}
