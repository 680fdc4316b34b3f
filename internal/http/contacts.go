package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/snipsnap/internal/auth"
	"github.com/mrlokans/snipsnap/internal/database"
)

type contactRequest struct {
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"displayName"`
}

type ContactsController struct {
	contacts ContactStore
	activity ActivityRecorder
}

func NewContactsController(contacts ContactStore, activity ActivityRecorder) *ContactsController {
	return &ContactsController{
		contacts: contacts,
		activity: recorderOrNoop(activity),
	}
}

// ListContacts returns the user's contacts
// GET /api/contacts
func (cc *ContactsController) ListContacts(c *gin.Context) {
	list, err := cc.contacts.ListContacts(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list contacts")
		return
	}
	c.JSON(http.StatusOK, list)
}

// AddContact adds a registered user by email
// POST /api/contacts
func (cc *ContactsController) AddContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email is required")
		return
	}

	userID := GetUserID(c)
	email := auth.NormalizeEmail(req.Email)
	contact, err := cc.contacts.AddContact(userID, email, strings.TrimSpace(req.DisplayName))
	if err != nil {
		switch {
		case errors.Is(err, database.ErrAccountNotFound):
			respondUnauthorized(c)
		case errors.Is(err, database.ErrNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, database.ErrSelfContact):
			respondBadRequest(c, database.ErrSelfContact.Error())
		case errors.Is(err, database.ErrContactExists):
			respondConflict(c, database.ErrContactExists.Error())
		default:
			respondInternalError(c, err, "add contact")
		}
		return
	}

	cc.activity.LogSharing(userID, "contact_add", "Added "+email, contact.ContactID)
	respondCreated(c, contact)
}

// DeleteContact removes a contact and revokes the user's shares to them
// DELETE /api/contacts/:id
func (cc *ContactsController) DeleteContact(c *gin.Context) {
	contactID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)
	if err := cc.contacts.DeleteContact(userID, contactID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondNotFound(c, "contact")
			return
		}
		respondInternalError(c, err, "delete contact")
		return
	}

	cc.activity.LogSharing(userID, "contact_remove", "", contactID)
	respondSuccess(c, "contact removed")
}
