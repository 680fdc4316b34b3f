package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/snipsnap/internal/entities"
)

func TestContactsController_AddContact(t *testing.T) {
	s := setupStores(t)
	alice := s.routerFor(s.alice)

	w := doJSON(t, alice, http.MethodPost, "/api/contacts", gin.H{"email": "  BOB@example.com "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	contact := decode[entities.Contact](t, w)
	assert.Equal(t, s.bob.ID, contact.ContactID)
	assert.Equal(t, "Bob Tester", contact.DisplayName)
	require.NotNil(t, contact.Person)
	assert.Equal(t, "bob@example.com", contact.Person.Email)

	w = doJSON(t, alice, http.MethodPost, "/api/contacts", gin.H{"email": "carol@example.com", "displayName": "C"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "C", decode[entities.Contact](t, w).DisplayName)

	w = doJSON(t, alice, http.MethodGet, "/api/contacts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entities.Contact](t, w), 2)
}

func TestContactsController_AddContactErrors(t *testing.T) {
	s := setupStores(t)
	alice := s.routerFor(s.alice)
	addContact(t, alice, "bob@example.com")

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing email", gin.H{}, http.StatusBadRequest},
		{"unknown user", gin.H{"email": "nobody@example.com"}, http.StatusNotFound},
		{"self", gin.H{"email": "alice@example.com"}, http.StatusBadRequest},
		{"duplicate", gin.H{"email": "bob@example.com"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, alice, http.MethodPost, "/api/contacts", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestContactsController_DeleteRevokesShares(t *testing.T) {
	s := setupStores(t)
	alice := s.routerFor(s.alice)
	bob := s.routerFor(s.bob)

	addContact(t, alice, "bob@example.com")
	createSnip(t, alice, gin.H{"name": "for bob", "shared_with": []uint{s.bob.ID}})

	w := doJSON(t, bob, http.MethodGet, "/api/shared", nil)
	require.Len(t, decode[[]SharedSnipResponse](t, w), 1)

	path := fmt.Sprintf("/api/contacts/%d", s.bob.ID)
	assert.Equal(t, http.StatusOK, doJSON(t, alice, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, alice, http.MethodDelete, path, nil).Code)

	w = doJSON(t, bob, http.MethodGet, "/api/shared", nil)
	assert.Empty(t, decode[[]SharedSnipResponse](t, w))

	assert.Equal(t, []string{"contact_add", "snip_create", "snip_share", "contact_remove"}, s.activity.actions())
}
