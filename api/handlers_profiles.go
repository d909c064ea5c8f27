package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"empowerher/db"
	"empowerher/models"
	"empowerher/utils"

	"github.com/gin-gonic/gin"
)

// guestProfileID identifies the local guest user.
const guestProfileID = "guest"

// ProfileResponse is a profile without its password hash.
type ProfileResponse struct {
	models.Profile
	Guest bool `json:"guest"`
}

// --- Get Current Profile ---

// GetProfileMeHandler returns the signed-in profile, or the guest profile.
// @Summary      Get the current profile
// @Description  Returns the profile of the signed-in user. Without a valid token the guest profile is returned instead.
// @Description
// @Description  Progress data is shared between guest and signed-in use, so this endpoint never fails for missing credentials.
// @Tags         Profiles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProfileResponse "The current profile. 'guest' is true when nobody is signed in."
// @Failure      404  {object}  utils.APIError  "Not Found: the token refers to a profile that no longer exists."
// @Failure      500  {object}  utils.APIError  "Internal Server Error: the profile store could not be read."
// @Router       /profiles/me [get]
func GetProfileMeHandler(c *gin.Context, store *db.Store) {
	userID := c.GetString(utils.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusOK, ProfileResponse{
			Profile: models.Profile{ID: guestProfileID, FirstName: "Guest"},
			Guest:   true,
		})
		return
	}

	profile, ok := loadProfile(c, store, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: *profile})
}

// --- Update Profile ---

// UpdateProfileRequest defines the fields allowed for updating a profile.
// Email and password cannot be changed here.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
}

// UpdateProfileMeHandler renames the signed-in profile.
// @Summary      Update the current profile
// @Description  Changes the first and last name of the signed-in user. Email and password are not editable here.
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile body UpdateProfileRequest true "New names. 'first_name' is required."
// @Success      200  {object}  ProfileResponse "The updated profile."
// @Failure      400  {object}  utils.APIError  "Bad Request: the body is invalid or 'first_name' is missing."
// @Failure      401  {object}  utils.APIError  "Unauthorized: the token is missing, invalid or expired."
// @Failure      404  {object}  utils.APIError  "Not Found: the token refers to a profile that no longer exists."
// @Failure      500  {object}  utils.APIError  "Internal Server Error: the profile could not be saved."
// @Router       /profiles/me [put]
func UpdateProfileMeHandler(c *gin.Context, store *db.Store) {
	userID := c.GetString(utils.ContextUserID)
	if userID == "" {
		utils.GinInternalServerError(c, "User ID not found in context.")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	_, found, err := store.Update(c.Request.Context(), models.EntityProfile, userID, map[string]any{
		"first_name": strings.TrimSpace(req.FirstName),
		"last_name":  strings.TrimSpace(req.LastName),
	})
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to update profile: %v", err))
		return
	}
	if !found {
		utils.GinNotFound(c, "Authenticated user profile not found.")
		return
	}

	profile, ok := loadProfile(c, store, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: *profile})
}

// loadProfile reads a profile and strips the hash. It writes the error
// response itself and reports false when it did.
func loadProfile(c *gin.Context, store *db.Store, id string) (*models.Profile, bool) {
	rec, err := store.Get(c.Request.Context(), models.EntityProfile, id)
	if errors.Is(err, db.ErrNotFound) {
		utils.GinNotFound(c, "Authenticated user profile not found.")
		return nil, false
	}
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to load profile: %v", err))
		return nil, false
	}
	var profile models.Profile
	if err := rec.Decode(&profile); err != nil {
		utils.GinInternalServerError(c, "Stored profile is unreadable.")
		return nil, false
	}
	profile.PasswordHash = ""
	return &profile, true
}
