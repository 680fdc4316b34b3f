// Package auth implements stateless double-token authentication.
//
// A successful login issues a token pair: a signed session token (HS256 JWT
// carrying the user id, email, iat, exp and an anti-forgery claim) and the
// anti-forgery value itself. The session token is stored in an HttpOnly
// cookie; the client reads the anti-forgery value from the login response or
// the readable cookie and echoes it in the X-Anti-Forgery header on every
// protected request. A request is authenticated only when the signature
// verifies, the token has not expired and the header matches the claim.
//
// Nothing is stored server-side. Logout only expires the cookies.
//
// # Configuration
//
//	AUTH_TOKEN_SECRET=<hex>      # HMAC key; an ephemeral one is generated if empty
//	AUTH_TOKEN_LIFETIME=4h       # Session token and cookie lifetime
//	AUTH_BCRYPT_COST=12          # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true     # HTTPS-only cookies
//
// # Usage
//
//	tokens, err := auth.NewTokenManager([]byte(cfg.Auth.TokenSecret))
//	gate := auth.NewGate(tokens)
//	protected := router.Group("/api", gate.Handler())
//
// Extract the principal in handlers:
//
//	userID := auth.GetUserID(c)
package auth
