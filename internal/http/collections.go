package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/snipsnap/internal/database"
)

type collectionRequest struct {
	Name string `json:"name" binding:"required"`
}

type CollectionsController struct {
	collections CollectionStore
	snips       SnipStore
	activity    ActivityRecorder
}

func NewCollectionsController(collections CollectionStore, snipStore SnipStore, activity ActivityRecorder) *CollectionsController {
	return &CollectionsController{
		collections: collections,
		snips:       snipStore,
		activity:    recorderOrNoop(activity),
	}
}

// ListCollections returns the user's collections
// GET /api/collections
func (cc *CollectionsController) ListCollections(c *gin.Context) {
	list, err := cc.collections.ListCollections(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list collections")
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateCollection creates a collection
// POST /api/collections
func (cc *CollectionsController) CreateCollection(c *gin.Context) {
	name, ok := bindCollectionName(c)
	if !ok {
		return
	}

	userID := GetUserID(c)
	collection, err := cc.collections.CreateCollection(userID, name)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			respondUnauthorized(c)
			return
		}
		respondInternalError(c, err, "create collection")
		return
	}

	cc.activity.LogSnip(userID, "create", "collection", collection.ID, collection.Name)
	respondCreated(c, collection)
}

// RenameCollection changes a collection's name
// PATCH /api/collections/:id
func (cc *CollectionsController) RenameCollection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	name, ok := bindCollectionName(c)
	if !ok {
		return
	}

	userID := GetUserID(c)
	collection, err := cc.collections.RenameCollection(userID, id, name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondNotFound(c, "collection")
			return
		}
		respondInternalError(c, err, "rename collection")
		return
	}

	cc.activity.LogSnip(userID, "rename", "collection", collection.ID, collection.Name)
	c.JSON(http.StatusOK, collection)
}

// DeleteCollection removes a collection; its snips are kept
// DELETE /api/collections/:id
func (cc *CollectionsController) DeleteCollection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)
	if err := cc.collections.DeleteCollection(userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondNotFound(c, "collection")
			return
		}
		respondInternalError(c, err, "delete collection")
		return
	}

	cc.activity.LogSnip(userID, "delete", "collection", id, "")
	respondSuccess(c, "collection deleted")
}

// ListCollectionSnips returns the snips filed under a collection
// GET /api/collections/:id/snips
func (cc *CollectionsController) ListCollectionSnips(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := cc.snips.ListCollectionSnips(GetUserID(c), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondNotFound(c, "collection")
			return
		}
		respondInternalError(c, err, "list collection snips")
		return
	}
	c.JSON(http.StatusOK, toSnipResponses(list))
}

func bindCollectionName(c *gin.Context) (string, bool) {
	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondBadRequest(c, "name is required")
		return "", false
	}
	return name, true
}
