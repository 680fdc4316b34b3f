package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/snipsnap/internal/auth"
	"github.com/mrlokans/snipsnap/internal/entities"
)

func TestSettingsController_GetSettings(t *testing.T) {
	s := setupStores(t)

	w := doJSON(t, s.routerFor(s.alice), http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	user := decode[map[string]any](t, w)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "Alice", user["first_name"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestSettingsController_UpdateSettings(t *testing.T) {
	s := setupStores(t)
	alice := s.routerFor(s.alice)

	w := doJSON(t, alice, http.MethodPatch, "/api/settings", gin.H{
		"email":     "Alice.New@Example.com",
		"firstName": "Alicia",
		"lastName":  "Doe",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode[entities.User](t, w)
	assert.Equal(t, "alice.new@example.com", user.Email)
	assert.Equal(t, "Alicia", user.FirstName)

	w = doJSON(t, alice, http.MethodPatch, "/api/settings", gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, alice, http.MethodPatch, "/api/settings", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []string{"profile_update"}, s.activity.actions())
}

func TestSettingsController_ChangePassword(t *testing.T) {
	s := setupStores(t)
	alice := s.routerFor(s.alice)

	w := doJSON(t, alice, http.MethodPatch, "/api/settings/password", gin.H{
		"currentPassword": "wrong password",
		"newPassword":     "brand new password",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, alice, http.MethodPatch, "/api/settings/password", gin.H{
		"currentPassword": testPassword,
		"newPassword":     "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, alice, http.MethodPatch, "/api/settings/password", gin.H{
		"currentPassword": testPassword,
		"newPassword":     "brand new password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err := s.accounts.Authenticate("alice@example.com", "brand new password")
	assert.NoError(t, err)
	_, err = s.accounts.Authenticate("alice@example.com", testPassword)
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestSettingsController_DeleteAccount(t *testing.T) {
	s := setupStores(t)
	alice := s.routerFor(s.alice)
	bob := s.routerFor(s.bob)

	addContact(t, alice, "bob@example.com")
	createSnip(t, alice, gin.H{"name": "bye", "shared_with": []uint{s.bob.ID}})

	w := doJSON(t, alice, http.MethodDelete, "/api/account", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, auth.SessionCookieName)
	require.Contains(t, cookies, auth.AntiForgeryCookieName)
	assert.True(t, cookies[auth.SessionCookieName].MaxAge < 0)

	_, err := s.accounts.GetUserByID(s.alice.ID)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	w = doJSON(t, bob, http.MethodGet, "/api/shared", nil)
	assert.Empty(t, decode[[]SharedSnipResponse](t, w))

	// A retained token for the deleted account reaches nothing
	w = doJSON(t, alice, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, alice, http.MethodGet, "/api/snips", nil)
	assert.Empty(t, decode[[]SnipResponse](t, w))
}
