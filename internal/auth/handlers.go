package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/snipsnap/internal/config"
	"github.com/mrlokans/snipsnap/internal/entities"
)

// AuditLogger receives authentication events. It may be nil.
type AuditLogger interface {
	LogAuth(userID uint, action, ipAddr, userAgent string, success bool)
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful login. The session token itself
// only travels in the HttpOnly cookie.
type LoginResponse struct {
	AntiForgeryToken string         `json:"antiForgeryToken"`
	ExpiresAt        time.Time      `json:"expiresAt"`
	User             *entities.User `json:"user"`
}

// AuthController handles the authentication HTTP boundary.
type AuthController struct {
	service     *Service
	tokens      *TokenManager
	gate        *Gate
	config      config.Auth
	rateLimiter *RateLimiter
	audit       AuditLogger
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, tokens *TokenManager, cfg config.Auth, audit AuditLogger) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
		Now:             tokens.Now,
	})

	return &AuthController{
		service:     service,
		tokens:      tokens,
		gate:        NewGate(tokens),
		config:      cfg,
		rateLimiter: rateLimiter,
		audit:       audit,
	}
}

// RegisterRoutes registers the public authentication routes.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.POST("/api/auth/register", ac.Register)
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/logout", ac.Logout)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// Register creates an account. It does not log the user in.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := ac.service.Register(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "This email is taken"})
		case errors.Is(err, ErrEmailRequired),
			errors.Is(err, ErrEmailInvalid),
			errors.Is(err, ErrPasswordRequired),
			errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Failed to register user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		}
		return
	}

	ac.logAuth(c, user.ID, "register", true)
	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials, issues a token pair and sets the cookies.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	email := NormalizeEmail(req.Email)
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, email); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many login attempts. Please try again later.",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(email, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			ac.rateLimiter.RecordFailure(clientIP, email)
			ac.logAuth(c, 0, "login", false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Login lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, email)

	pair, err := ac.tokens.Issue(user.ID, user.Email, ac.tokens.Now().Add(ac.lifetime()))
	if err != nil {
		log.Printf("Token issuance failed for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue tokens"})
		return
	}

	SetTokenCookies(c, pair, ac.tokens.Now(), ac.config.SecureCookies)
	ac.logAuth(c, user.ID, "login", true)

	c.JSON(http.StatusOK, LoginResponse{
		AntiForgeryToken: pair.AntiForgery,
		ExpiresAt:        pair.ExpiresAt,
		User:             user,
	})
}

// Logout expires both cookies. Tokens are not revoked server-side, so a
// copied session stays usable until its exp.
func (ac *AuthController) Logout(c *gin.Context) {
	if outcome := ac.gate.Check(c); outcome.Authenticated {
		ac.logAuth(c, outcome.Principal.UserID, "logout", true)
	}

	ClearTokenCookies(c, ac.config.SecureCookies)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// CheckAuth answers 200 for any request the gate let through.
func (ac *AuthController) CheckAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"userId":        GetUserID(c),
		"email":         GetEmail(c),
	})
}

func (ac *AuthController) lifetime() time.Duration {
	if ac.config.TokenLifetime <= 0 {
		return 4 * time.Hour
	}
	return ac.config.TokenLifetime
}

func (ac *AuthController) logAuth(c *gin.Context, userID uint, action string, success bool) {
	if ac.audit == nil {
		return
	}
	ac.audit.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

// SetTokenCookies stores the pair on the response: the session in an
// HttpOnly cookie, the anti-forgery value in a script-readable one.
func SetTokenCookies(c *gin.Context, pair TokenPair, now time.Time, secure bool) {
	maxAge := int(pair.ExpiresAt.Sub(now).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, pair.Session, maxAge, "/", "", secure, true)
	c.SetCookie(AntiForgeryCookieName, pair.AntiForgery, maxAge, "/", "", secure, false)
}

// ClearTokenCookies expires both token cookies on the client.
func ClearTokenCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
	c.SetCookie(AntiForgeryCookieName, "", -1, "/", "", secure, false)
}
