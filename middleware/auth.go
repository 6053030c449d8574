package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/restoweb/pos-api/config"
	"github.com/restoweb/pos-api/models"
)

const currentUserKey = "current_user"

// tokenTTL matches the 30-day sessions the dashboards expect.
const tokenTTL = 30 * 24 * time.Hour

// GenerateToken issues a signed HS256 token for the given user id.
func GenerateToken(userID uint, secret string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// parseToken verifies a token string and returns the embedded user id.
func parseToken(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token claims")
	}

	id, ok := claims["id"].(float64)
	if !ok {
		return 0, errors.New("token missing user id")
	}
	return uint(id), nil
}

// resolveUser loads the user referenced by a bearer token, or fails.
func resolveUser(c *gin.Context) (*models.User, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.New("no token")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	cfg := config.GetConfig()
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}

	userID, err := parseToken(tokenString, cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := config.GetDB().First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Protect requires a valid bearer token resolving to an existing user.
// 401 for missing/invalid credentials; role checks come after and use 403.
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Not authorized, token failed",
				},
			})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalIdentity resolves the caller best-effort for public endpoints.
// A missing or invalid token is not an error; the request simply proceeds
// unauthenticated.
func OptionalIdentity(c *gin.Context) *models.User {
	if user, exists := c.Get(currentUserKey); exists {
		if u, ok := user.(*models.User); ok {
			return u
		}
	}
	user, err := resolveUser(c)
	if err != nil {
		return nil
	}
	return user
}

// CurrentUser returns the authenticated user placed by Protect.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	u, ok := user.(*models.User)
	return u, ok
}

// SetCurrentUser stores the authenticated user in the context
// (exported for test middleware).
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

func forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": message,
		},
	})
}

// Admin permits only users with the admin flag.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin {
			forbidden(c, "Not authorized as an admin")
			return
		}
		c.Next()
	}
}

// AdminOrKitchen permits admin or kitchen roles (kitchen dashboard).
func AdminOrKitchen() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !(user.IsAdmin || user.IsKitchen) {
			forbidden(c, "Not authorized")
			return
		}
		c.Next()
	}
}

// AdminOrKitchenOrWaiter permits any staff role (status updates).
func AdminOrKitchenOrWaiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !(user.IsAdmin || user.IsKitchen || user.IsWaiter) {
			forbidden(c, "Not authorized")
			return
		}
		c.Next()
	}
}
