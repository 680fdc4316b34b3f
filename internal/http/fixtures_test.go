package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auditsvc "github.com/mrlokans/snipsnap/internal/audit"
	"github.com/mrlokans/snipsnap/internal/auth"
	"github.com/mrlokans/snipsnap/internal/database"
	auditrepo "github.com/mrlokans/snipsnap/internal/database/audit"
	"github.com/mrlokans/snipsnap/internal/database/collections"
	"github.com/mrlokans/snipsnap/internal/database/contacts"
	"github.com/mrlokans/snipsnap/internal/database/snips"
	"github.com/mrlokans/snipsnap/internal/database/users"
	"github.com/mrlokans/snipsnap/internal/entities"
)

const testPassword = "correct horse battery"

type testStores struct {
	db          *database.Database
	accounts    *auth.Service
	snips       *snips.Repository
	collections *collections.Repository
	contacts    *contacts.Repository
	audit       *auditsvc.Service
	activity    *recordingActivity

	alice, bob, carol *entities.User
}

func setupStores(t *testing.T) *testStores {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "snipsnap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	accounts := auth.NewService(users.NewRepository(db.DB), auth.NewBcryptHasher(bcrypt.MinCost))
	s := &testStores{
		db:          db,
		accounts:    accounts,
		snips:       snips.NewRepository(db.DB),
		collections: collections.NewRepository(db.DB),
		contacts:    contacts.NewRepository(db.DB),
		audit:       auditsvc.NewService(auditrepo.NewRepository(db.DB)),
		activity:    &recordingActivity{},
	}

	register := func(email, first string) *entities.User {
		u, err := accounts.Register(email, testPassword, first, "Tester")
		require.NoError(t, err)
		return u
	}
	s.alice = register("alice@example.com", "Alice")
	s.bob = register("bob@example.com", "Bob")
	s.carol = register("carol@example.com", "Carol")
	return s
}

// routerFor builds the protected routes with the gate replaced by a fixed principal.
func (s *testStores) routerFor(user *entities.User) *gin.Engine {
	router := gin.New()
	api := router.Group("/api", asUser(user))

	sc := NewSnipsController(s.snips, s.collections, s.contacts, s.activity)
	api.GET("/snips", sc.ListSnips)
	api.GET("/snips/init", sc.InitEditor)
	api.GET("/snips/:id", sc.GetSnip)
	api.POST("/snips", sc.CreateSnip)
	api.PATCH("/snips/:id", sc.UpdateSnip)
	api.DELETE("/snips/:id", sc.DeleteSnip)
	api.GET("/shared", sc.ListShared)
	api.GET("/shared/:id", sc.GetShared)

	cc := NewCollectionsController(s.collections, s.snips, s.activity)
	api.GET("/collections", cc.ListCollections)
	api.POST("/collections", cc.CreateCollection)
	api.PATCH("/collections/:id", cc.RenameCollection)
	api.DELETE("/collections/:id", cc.DeleteCollection)
	api.GET("/collections/:id/snips", cc.ListCollectionSnips)

	ct := NewContactsController(s.contacts, s.activity)
	api.GET("/contacts", ct.ListContacts)
	api.POST("/contacts", ct.AddContact)
	api.DELETE("/contacts/:id", ct.DeleteContact)

	st := NewSettingsController(s.accounts, s.activity, false)
	api.GET("/settings", st.GetSettings)
	api.PATCH("/settings", st.UpdateSettings)
	api.PATCH("/settings/password", st.ChangePassword)
	api.DELETE("/account", st.DeleteAccount)

	ac := NewAuditController(s.audit)
	api.GET("/activity", ac.GetActivity)

	return router
}

func asUser(user *entities.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, user.ID)
		c.Set(auth.ContextKeyEmail, user.Email)
		c.Set(auth.ContextKeyGateState, auth.GateAuthenticated)
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type activityEntry struct {
	userID uint
	action string
}

// recordingActivity captures controller audit calls synchronously.
type recordingActivity struct {
	mu      sync.Mutex
	entries []activityEntry
}

func (r *recordingActivity) add(userID uint, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, activityEntry{userID: userID, action: action})
}

func (r *recordingActivity) LogSnip(userID uint, action, entityType string, _ uint, _ string) {
	r.add(userID, entityType+"_"+action)
}

func (r *recordingActivity) LogSharing(userID uint, action, _ string, _ uint) {
	r.add(userID, action)
}

func (r *recordingActivity) LogAccount(userID uint, action, _ string, _ error) {
	r.add(userID, action)
}

func (r *recordingActivity) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.action)
	}
	return out
}
