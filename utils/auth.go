package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"empowerher/config"
	"empowerher/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "empowerher"

// Context keys set by the auth middlewares.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
)

// --- Password Hashing ---

// HashPassword generates a bcrypt hash for the given password.
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plain text password with a stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// --- JWT Handling ---

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID string `json:"user_id"` // Profile record id
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a new JWT token for a given user profile.
func GenerateJWT(profile *models.Profile, cfg *config.Config) (string, error) {
	if cfg.JwtSecret == "" {
		return "", errors.New("JWT secret is not configured")
	}

	now := time.Now()
	claims := &Claims{
		UserID: profile.ID,
		Email:  profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   profile.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT parses and validates a JWT token string.
func ValidateJWT(tokenString string, cfg *config.Config) (*Claims, error) {
	if cfg.JwtSecret == "" {
		return nil, errors.New("JWT secret is not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JwtSecret), nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// ok is false when the header is present but malformed.
func bearerToken(c *gin.Context) (token string, present bool, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, true
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", true, false
	}
	return parts[1], true, true
}

// AuthMiddleware creates a Gin middleware function to protect routes.
// It validates the JWT token from the Authorization header.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, present, ok := bearerToken(c)
		if !present {
			GinUnauthorized(c, "Authorization header required")
			return
		}
		if !ok {
			GinError(c, http.StatusBadRequest, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := ValidateJWT(tokenString, cfg)
		if err != nil {
			GinUnauthorized(c, fmt.Sprintf("Invalid token: %v", err))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is sent and
// lets the request through as a guest otherwise. The progress data is the same
// either way; only the profile shown differs.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, present, ok := bearerToken(c)
		if present && ok {
			if claims, err := ValidateJWT(tokenString, cfg); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextUserEmail, claims.Email)
			}
		}
		c.Next()
	}
}
