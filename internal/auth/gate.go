package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated principal
const (
	ContextKeyUserID    = "auth_user_id"
	ContextKeyEmail     = "auth_email"
	ContextKeyGateState = "auth_gate_state"
)

// Transport names for the two halves of a token pair.
const (
	SessionCookieName     = "snipsnap_session"
	AntiForgeryCookieName = "snipsnap_csrf"
	AntiForgeryHeader     = "X-Anti-Forgery"
)

// GateState tracks the authorization decision for one request.
type GateState string

const (
	GateUnchecked     GateState = "unchecked"
	GateAuthenticated GateState = "authenticated"
	GateRejected      GateState = "rejected"
)

// Validator decides whether a presented token pair is valid.
type Validator interface {
	Authenticate(antiForgery, session string) Outcome
}

// Gate is the authorization check every protected route runs first.
type Gate struct {
	validator Validator
}

// NewGate creates a gate backed by validator.
func NewGate(validator Validator) *Gate {
	return &Gate{validator: validator}
}

// Handler returns middleware that rejects the request with 401 unless the
// session cookie and anti-forgery header form a valid pair.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyGateState, GateUnchecked)

		outcome := g.Check(c)
		if !outcome.Authenticated {
			c.Set(ContextKeyGateState, GateRejected)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		c.Set(ContextKeyUserID, outcome.Principal.UserID)
		c.Set(ContextKeyEmail, outcome.Principal.Email)
		c.Set(ContextKeyGateState, GateAuthenticated)
		c.Next()
	}
}

// Check runs the validator against the request's token pair without
// touching the response. A missing cookie or header is a rejection.
func (g *Gate) Check(c *gin.Context) Outcome {
	session, err := c.Cookie(SessionCookieName)
	if err != nil {
		return Rejected
	}
	return g.validator.Authenticate(c.GetHeader(AntiForgeryHeader), session)
}

// Helper functions to extract auth data from Gin context

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if the gate has not authenticated the request.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetEmail retrieves the authenticated user's email from the context.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

// GetGateState reports how far the gate got for this request.
func GetGateState(c *gin.Context) GateState {
	if s, exists := c.Get(ContextKeyGateState); exists {
		if state, ok := s.(GateState); ok {
			return state
		}
	}
	return GateUnchecked
}

// IsAuthenticated returns true if the gate accepted the request.
func IsAuthenticated(c *gin.Context) bool {
	return GetGateState(c) == GateAuthenticated && GetUserID(c) != 0
}
