package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/database/snips"
	"github.com/mrlokans/snipsnap/internal/entities"
)

// SnipResponse is a snip as its owner sees it.
type SnipResponse struct {
	entities.Snip
	SharedWith []uint `json:"shared_with"`
}

// OwnerInfo identifies who shared a snip.
type OwnerInfo struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SharedSnipResponse is a snip as a recipient sees it. Collection and
// recipient list belong to the owner and are omitted.
type SharedSnipResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Language    string    `json:"language"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Owner       OwnerInfo `json:"owner"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type snipRequest struct {
	CollectionID *uint  `json:"collection_id"`
	Name         string `json:"name"`
	Language     string `json:"language"`
	Description  string `json:"description"`
	Content      string `json:"content"`
	SharedWith   []uint `json:"shared_with"`
}

func (r snipRequest) input() (snips.SnipInput, bool) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return snips.SnipInput{}, false
	}
	return snips.SnipInput{
		CollectionID: r.CollectionID,
		Name:         name,
		Language:     strings.TrimSpace(r.Language),
		Description:  r.Description,
		Content:      r.Content,
		SharedWith:   r.SharedWith,
	}, true
}

type SnipsController struct {
	snips       SnipStore
	collections CollectionStore
	contacts    ContactStore
	activity    ActivityRecorder
}

func NewSnipsController(snipStore SnipStore, collections CollectionStore, contacts ContactStore, activity ActivityRecorder) *SnipsController {
	return &SnipsController{
		snips:       snipStore,
		collections: collections,
		contacts:    contacts,
		activity:    recorderOrNoop(activity),
	}
}

// ListSnips returns the user's own snips
// GET /api/snips
func (sc *SnipsController) ListSnips(c *gin.Context) {
	list, err := sc.snips.ListSnips(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list snips")
		return
	}
	c.JSON(http.StatusOK, toSnipResponses(list))
}

// InitEditor returns what the snip editor needs to populate its pickers
// GET /api/snips/init
func (sc *SnipsController) InitEditor(c *gin.Context) {
	userID := GetUserID(c)

	contacts, err := sc.contacts.ListContacts(userID)
	if err != nil {
		respondInternalError(c, err, "list contacts")
		return
	}
	collections, err := sc.collections.ListCollections(userID)
	if err != nil {
		respondInternalError(c, err, "list collections")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts":    contacts,
		"collections": collections,
	})
}

// GetSnip returns one of the user's snips
// GET /api/snips/:id
func (sc *SnipsController) GetSnip(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	snip, err := sc.snips.GetSnip(GetUserID(c), id)
	if err != nil {
		sc.respondStoreError(c, err, "get snip")
		return
	}
	c.JSON(http.StatusOK, toSnipResponse(*snip))
}

// CreateSnip stores a new snip
// POST /api/snips
func (sc *SnipsController) CreateSnip(c *gin.Context) {
	var req snipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	in, ok := req.input()
	if !ok {
		respondBadRequest(c, "name is required")
		return
	}

	userID := GetUserID(c)
	snip, err := sc.snips.CreateSnip(userID, in)
	if err != nil {
		sc.respondStoreError(c, err, "create snip")
		return
	}

	sc.activity.LogSnip(userID, "create", "snip", snip.ID, snip.Name)
	if snip.IsShared() {
		sc.activity.LogSharing(userID, "snip_share", "Shared "+snip.Name, snip.ID)
	}
	respondCreated(c, toSnipResponse(*snip))
}

// UpdateSnip replaces the snip's fields and recipients
// PATCH /api/snips/:id
func (sc *SnipsController) UpdateSnip(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req snipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	in, ok := req.input()
	if !ok {
		respondBadRequest(c, "name is required")
		return
	}

	userID := GetUserID(c)
	snip, err := sc.snips.UpdateSnip(userID, id, in)
	if err != nil {
		sc.respondStoreError(c, err, "update snip")
		return
	}

	sc.activity.LogSnip(userID, "update", "snip", snip.ID, snip.Name)
	c.JSON(http.StatusOK, toSnipResponse(*snip))
}

// DeleteSnip removes a snip and revokes its shares
// DELETE /api/snips/:id
func (sc *SnipsController) DeleteSnip(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)
	if err := sc.snips.DeleteSnip(userID, id); err != nil {
		sc.respondStoreError(c, err, "delete snip")
		return
	}

	sc.activity.LogSnip(userID, "delete", "snip", id, "")
	respondSuccess(c, "snip deleted")
}

// ListShared returns snips other users shared with the caller
// GET /api/shared
func (sc *SnipsController) ListShared(c *gin.Context) {
	list, err := sc.snips.ListSharedWith(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list shared snips")
		return
	}

	out := make([]SharedSnipResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSharedSnipResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

// GetShared returns a single snip shared with the caller
// GET /api/shared/:id
func (sc *SnipsController) GetShared(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	snip, err := sc.snips.GetSharedSnip(GetUserID(c), id)
	if err != nil {
		sc.respondStoreError(c, err, "get shared snip")
		return
	}
	c.JSON(http.StatusOK, toSharedSnipResponse(*snip))
}

func (sc *SnipsController) respondStoreError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, database.ErrAccountNotFound):
		respondUnauthorized(c)
	case errors.Is(err, database.ErrNotFound):
		respondNotFound(c, "snip")
	case errors.Is(err, database.ErrCollectionNotFound):
		respondBadRequest(c, "collection not found")
	case errors.Is(err, database.ErrNotAContact):
		respondBadRequest(c, database.ErrNotAContact.Error())
	default:
		respondInternalError(c, err, context)
	}
}

func toSnipResponse(s entities.Snip) SnipResponse {
	return SnipResponse{Snip: s, SharedWith: s.SharedWith()}
}

func toSnipResponses(list []entities.Snip) []SnipResponse {
	out := make([]SnipResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSnipResponse(s))
	}
	return out
}

func toSharedSnipResponse(s entities.Snip) SharedSnipResponse {
	resp := SharedSnipResponse{
		ID:          s.ID,
		Name:        s.Name,
		Language:    s.Language,
		Description: s.Description,
		Content:     s.Content,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.Owner != nil {
		resp.Owner = OwnerInfo{
			ID:        s.Owner.ID,
			Email:     s.Owner.Email,
			FirstName: s.Owner.FirstName,
			LastName:  s.Owner.LastName,
		}
	}
	return resp
}
