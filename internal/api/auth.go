package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/pantry/backend/internal/middleware"
	"github.com/pageza/pantry/backend/internal/service"
	"github.com/pageza/pantry/backend/internal/types"
)

// SessionMaxAge is the lifetime of the session cookies in seconds
const SessionMaxAge = int(24 * time.Hour / time.Second)

type AuthHandler struct {
	authService  service.IAuthService
	tokens       middleware.TokenVerifier
	loginLimit   gin.HandlerFunc
	resetLimit   gin.HandlerFunc
	secureCookie bool
	log          *zap.Logger
}

func NewAuthHandler(authService service.IAuthService, tokens middleware.TokenVerifier, loginLimiter, resetLimiter *middleware.RateLimiter, secureCookie bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokens:       tokens,
		loginLimit:   limit(loginLimiter),
		resetLimit:   limit(resetLimiter),
		secureCookie: secureCookie,
		log:          log,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.loginLimit, h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/forgot-password", h.resetLimit, h.ForgotPassword)
		auth.POST("/reset-password", h.resetLimit, h.ResetPassword)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(h.tokens))
		protected.GET("/me", h.Me)
		protected.PUT("/me", h.UpdateMe)
		protected.PUT("/password", h.ChangePassword)
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req types.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Name, email and password are required").write(c, h.log)
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusCreated, types.NewUserSummary(user)).write(c, h.log)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Email and password are required").write(c, h.log)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}

	h.setSession(c, token, SessionMaxAge)
	Ok(http.StatusOK, types.NewUserSummary(user)).write(c, h.log)
}

// Logout clears both session cookies; it does not require a valid session
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSession(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	token, _ := c.Cookie(middleware.TokenCookie)
	user, err := h.authService.ResolvePrincipal(c.Request.Context(), token)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, user).write(c, h.log)
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Invalid request body").write(c, h.log)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		Fail(err).write(c, h.log)
		return
	}
	Ok(http.StatusOK, user).write(c, h.log)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req types.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Current password is required").write(c, h.log)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated"})
}

// ForgotPassword answers the same way whether or not the email is registered
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req types.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Email is required").write(c, h.log)
		return
	}

	if err := h.authService.BeginPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.log.Error("password reset request failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req types.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest("Token is required").write(c, h.log)
		return
	}

	if err := h.authService.CompletePasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		Fail(err).write(c, h.log)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password has been reset"})
}

func (h *AuthHandler) setSession(c *gin.Context, token string, maxAge int) {
	loggedIn := "true"
	if maxAge < 0 {
		loggedIn = ""
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secureCookie, true)
	c.SetCookie(middleware.LoggedInCookie, loggedIn, maxAge, "/", "", h.secureCookie, false)
}

// limit returns the limiter middleware or a pass-through when rate limiting is off
func limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.Middleware()
}
