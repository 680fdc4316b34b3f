package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/snipsnap/internal/auth"
	"github.com/mrlokans/snipsnap/internal/config"
	"github.com/mrlokans/snipsnap/internal/entities"
)

type session struct {
	cookie      *http.Cookie
	antiForgery string
}

type routerHarness struct {
	router http.Handler
	now    time.Time
}

func setupRouter(t *testing.T) (*routerHarness, *testStores) {
	t.Helper()
	s := setupStores(t)

	h := &routerHarness{now: time.Unix(1_700_000_000, 0)}
	tokens, err := auth.NewTokenManager([]byte("router-test-secret"), auth.WithClock(func() time.Time { return h.now }))
	require.NoError(t, err)

	controller := auth.NewAuthController(s.accounts, tokens, config.Auth{
		TokenLifetime:    4 * time.Hour,
		MaxLoginAttempts: 5,
		RateLimitWindow:  15 * time.Minute,
		LockoutDuration:  30 * time.Minute,
	}, nil)
	t.Cleanup(controller.Stop)

	h.router = NewRouter(RouterConfig{
		Database:       s.db,
		Version:        "test",
		AuthController: controller,
		Gate:           auth.NewGate(tokens),
		Accounts:       s.accounts,
		Snips:          s.snips,
		Collections:    s.collections,
		Contacts:       s.contacts,
		Activity:       s.activity,
		ActivityReader: s.audit,
		AllowedOrigins: []string{"https://app.example.com"},
	})
	return h, s
}

func (h *routerHarness) request(method, path string, body any, sess *session) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		if sess.cookie != nil {
			req.AddCookie(sess.cookie)
		}
		if sess.antiForgery != "" {
			req.Header.Set(auth.AntiForgeryHeader, sess.antiForgery)
		}
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *routerHarness) login(t *testing.T, email string) *session {
	t.Helper()
	w := h.request(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	sess := &session{antiForgery: resp.AntiForgeryToken}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			sess.cookie = c
		}
	}
	require.NotNil(t, sess.cookie)
	return sess
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	h, _ := setupRouter(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/auth/check"},
		{http.MethodGet, "/api/settings"},
		{http.MethodPatch, "/api/settings"},
		{http.MethodPatch, "/api/settings/password"},
		{http.MethodDelete, "/api/account"},
		{http.MethodGet, "/api/contacts"},
		{http.MethodPost, "/api/contacts"},
		{http.MethodDelete, "/api/contacts/1"},
		{http.MethodGet, "/api/collections"},
		{http.MethodPost, "/api/collections"},
		{http.MethodPatch, "/api/collections/1"},
		{http.MethodDelete, "/api/collections/1"},
		{http.MethodGet, "/api/collections/1/snips"},
		{http.MethodGet, "/api/snips"},
		{http.MethodGet, "/api/snips/init"},
		{http.MethodGet, "/api/snips/1"},
		{http.MethodPost, "/api/snips"},
		{http.MethodPatch, "/api/snips/1"},
		{http.MethodDelete, "/api/snips/1"},
		{http.MethodGet, "/api/shared"},
		{http.MethodGet, "/api/shared/1"},
		{http.MethodGet, "/api/activity"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w := h.request(r.method, r.path, gin.H{"name": "x", "email": "bob@example.com"}, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
		})
	}
}

func TestRouter_CookieWithoutHeaderRejected(t *testing.T) {
	h, _ := setupRouter(t)
	sess := h.login(t, "alice@example.com")

	w := h.request(http.MethodGet, "/api/snips", nil, &session{cookie: sess.cookie})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := h.login(t, "bob@example.com")
	w = h.request(http.MethodGet, "/api/snips", nil, &session{cookie: sess.cookie, antiForgery: other.antiForgery})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_PublicRoutes(t *testing.T) {
	h, _ := setupRouter(t)

	assert.Equal(t, http.StatusOK, h.request(http.MethodGet, "/health", nil, nil).Code)
	assert.Equal(t, http.StatusOK, h.request(http.MethodGet, "/ping", nil, nil).Code)
	assert.Equal(t, http.StatusOK, h.request(http.MethodPost, "/api/auth/logout", nil, nil).Code)

	w := h.request(http.MethodPost, "/api/auth/register", gin.H{
		"email":    "dave@example.com",
		"password": "long enough password",
	}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = h.request(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRouter_RetainedTokenAfterAccountDeletion(t *testing.T) {
	h, s := setupRouter(t)
	carol := h.login(t, "carol@example.com")

	w := h.request(http.MethodDelete, "/api/account", nil, carol)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The cookies were expired, but a client that kept the pair still
	// passes the gate until the token expires.
	writes := []struct {
		path string
		body gin.H
	}{
		{"/api/snips", gin.H{"name": "left behind", "content": "x"}},
		{"/api/collections", gin.H{"name": "left behind"}},
		{"/api/contacts", gin.H{"email": "alice@example.com"}},
	}
	for _, wr := range writes {
		w = h.request(http.MethodPost, wr.path, wr.body, carol)
		assert.Equal(t, http.StatusUnauthorized, w.Code, wr.path)
		assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
	}

	for _, model := range []any{&entities.Snip{}, &entities.Collection{}, &entities.Contact{}} {
		var count int64
		require.NoError(t, s.db.DB.Model(model).Where("user_id = ?", s.carol.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestRouter_SharingFlow(t *testing.T) {
	h, s := setupRouter(t)
	alice := h.login(t, "alice@example.com")
	bob := h.login(t, "bob@example.com")

	w := h.request(http.MethodPost, "/api/contacts", gin.H{"email": "bob@example.com"}, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.request(http.MethodPost, "/api/collections", gin.H{"name": "snippets"}, alice)
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.request(http.MethodPost, "/api/snips", gin.H{
		"name":        "hello",
		"language":    "go",
		"content":     `fmt.Println("hi")`,
		"shared_with": []uint{s.bob.ID},
	}, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var snip SnipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snip))

	w = h.request(http.MethodGet, fmt.Sprintf("/api/shared/%d", snip.ID), nil, bob)
	require.Equal(t, http.StatusOK, w.Code)

	// Bob cannot edit what was only shared with him
	w = h.request(http.MethodPatch, fmt.Sprintf("/api/snips/%d", snip.ID), gin.H{"name": "mine"}, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Tokens expire after their lifetime
	h.now = h.now.Add(4*time.Hour + time.Second)
	w = h.request(http.MethodGet, "/api/shared", nil, bob)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	h, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/snips", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), auth.AntiForgeryHeader)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewCORSMiddleware_IgnoresMalformedOrigins(t *testing.T) {
	router := gin.New()
	router.Use(newCORSMiddleware([]string{"app.example.com", " "}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
