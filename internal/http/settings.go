package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/snipsnap/internal/auth"
)

type profileRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// SettingsController serves the user's own account settings.
type SettingsController struct {
	accounts      AccountService
	activity      ActivityRecorder
	secureCookies bool
}

func NewSettingsController(accounts AccountService, activity ActivityRecorder, secureCookies bool) *SettingsController {
	return &SettingsController{
		accounts:      accounts,
		activity:      recorderOrNoop(activity),
		secureCookies: secureCookies,
	}
}

// GetSettings returns the user's profile
// GET /api/settings
func (sc *SettingsController) GetSettings(c *gin.Context) {
	user, err := sc.accounts.GetUserByID(GetUserID(c))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get settings")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateSettings changes email and names. The session token keeps the old
// email claim until the next login.
// PATCH /api/settings
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email is required")
		return
	}

	userID := GetUserID(c)
	user, err := sc.accounts.UpdateProfile(userID, req.Email, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondConflict(c, "This email is taken")
		case errors.Is(err, auth.ErrEmailInvalid), errors.Is(err, auth.ErrEmailRequired):
			respondBadRequest(c, err.Error())
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		default:
			respondInternalError(c, err, "update settings")
		}
		return
	}

	sc.activity.LogAccount(userID, "profile_update", "Profile updated", nil)
	c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the password after checking the current one.
// Existing sessions are not revoked.
// PATCH /api/settings/password
func (sc *SettingsController) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "currentPassword and newPassword are required")
		return
	}

	userID := GetUserID(c)
	err := sc.accounts.ChangePassword(userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadCredentials):
			sc.activity.LogAccount(userID, "password_change", "Password change rejected", err)
			respondError(c, http.StatusForbidden, "Current password is incorrect")
		case errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		default:
			respondInternalError(c, err, "change password")
		}
		return
	}

	sc.activity.LogAccount(userID, "password_change", "Password changed", nil)
	respondSuccess(c, "password changed")
}

// DeleteAccount removes the user with everything they own and expires the
// token cookies.
// DELETE /api/account
func (sc *SettingsController) DeleteAccount(c *gin.Context) {
	userID := GetUserID(c)
	if err := sc.accounts.DeleteAccount(userID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "delete account")
		return
	}

	auth.ClearTokenCookies(c, sc.secureCookies)
	respondSuccess(c, "account deleted")
}
