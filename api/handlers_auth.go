package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"empowerher/config"
	"empowerher/db"
	"empowerher/models"
	"empowerher/utils"

	"github.com/gin-gonic/gin"
)

var errEmailTaken = errors.New("email already registered")

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token and the profile it belongs to.
type AuthResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

// SignupHandler registers a profile and signs it in.
// @Summary      Create an account
// @Description  Registers a profile with a bcrypt-hashed password and returns a bearer token.
// @Description
// @Description  Accounts are optional. Points, streaks and badges are tracked the same way for guests;
// @Description  signing in only changes the name shown on the profile screen.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        account body SignupRequest true "Name, email and a password of at least 8 characters."
// @Success      201  {object}  AuthResponse   "Account created. The token can be sent as 'Authorization: Bearer <token>'."
// @Failure      400  {object}  utils.APIError "Bad Request: a required field is missing, the email is malformed or the password is too short."
// @Failure      409  {object}  utils.APIError "Conflict: the email is already registered."
// @Failure      500  {object}  utils.APIError "Internal Server Error: the profile could not be stored."
// @Router       /auth/signup [post]
func SignupHandler(c *gin.Context, store *db.Store, cfg *config.Config) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	hash, err := utils.HashPassword(req.Password, cfg.BcryptCost)
	if err != nil {
		utils.GinInternalServerError(c, "Failed to secure password.")
		return
	}
	email := normalizeEmail(req.Email)

	var created models.Record
	err = store.Transact(c.Request.Context(), func(tx *db.Tx) error {
		existing, err := findProfileByEmail(c.Request.Context(), tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return errEmailTaken
		}
		fields, err := models.Fields(models.Profile{
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Email:        email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		created, err = tx.Create(c.Request.Context(), models.EntityProfile, fields)
		return err
	})
	if errors.Is(err, errEmailTaken) {
		utils.GinConflict(c, "An account with this email already exists.")
		return
	}
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to create profile: %v", err))
		return
	}

	respondWithToken(c, http.StatusCreated, created, cfg)
}

// LoginHandler checks credentials and issues a token.
// @Summary      Sign in
// @Description  Exchanges an email and password for a bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Registered email and password."
// @Success      200  {object}  AuthResponse   "Signed in."
// @Failure      400  {object}  utils.APIError "Bad Request: the body is not valid JSON or a field is missing."
// @Failure      401  {object}  utils.APIError "Unauthorized: unknown email or wrong password."
// @Failure      500  {object}  utils.APIError "Internal Server Error: the profile store could not be read."
// @Router       /auth/login [post]
func LoginHandler(c *gin.Context, store *db.Store, cfg *config.Config) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	rec, err := findProfileByEmail(c.Request.Context(), store, normalizeEmail(req.Email))
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to look up profile: %v", err))
		return
	}
	// Same message for unknown email and bad password.
	if rec == nil {
		utils.GinUnauthorized(c, "Invalid email or password.")
		return
	}
	hash, _ := rec["password_hash"].(string)
	if !utils.CheckPasswordHash(req.Password, hash) {
		utils.GinUnauthorized(c, "Invalid email or password.")
		return
	}

	respondWithToken(c, http.StatusOK, rec, cfg)
}

func respondWithToken(c *gin.Context, status int, rec models.Record, cfg *config.Config) {
	var profile models.Profile
	if err := rec.Decode(&profile); err != nil {
		utils.GinInternalServerError(c, "Stored profile is unreadable.")
		return
	}
	token, err := utils.GenerateJWT(&profile, cfg)
	if err != nil {
		utils.GinInternalServerError(c, "Failed to issue token.")
		return
	}
	profile.PasswordHash = ""
	c.JSON(status, AuthResponse{Token: token, Profile: profile})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func findProfileByEmail(ctx context.Context, rs db.Records, email string) (models.Record, error) {
	matches, err := rs.Filter(ctx, models.EntityProfile, db.FieldEquals("email", email))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}
