package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careerhub/internal/auth"
	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/services"
	"go.uber.org/zap"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

// GoogleSignIn is the OAuth flow behind "Sign in with Google".
type GoogleSignIn interface {
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

type AuthHandler struct {
	Auth *services.AuthService
	// Google is nil when Google sign-in is not configured.
	Google GoogleSignIn
	Log    *zap.Logger
}

func NewAuthHandler(a *services.AuthService, google GoogleSignIn, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: a, Google: google, Log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, err := h.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), auth.SessionToken(c)); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, auth.CurrentUser(c))
}

// GoogleLogin redirects to the consent screen, remembering the state in a cookie.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "google sign-in is not enabled"})
		return
	}
	state, err := auth.NewState()
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(stateTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, h.Google.LoginURL(state))
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "google sign-in is not enabled"})
		return
	}
	want, err := c.Cookie(stateCookie)
	if err != nil || want == "" || c.Query("state") != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	// the state is single use
	c.SetCookie(stateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}
	profile, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.Log.Warn("google exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "google sign-in failed"})
		return
	}
	sess, err := h.Auth.LoginWithGoogle(c.Request.Context(), profile)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
