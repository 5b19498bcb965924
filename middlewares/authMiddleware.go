package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"infrasense-be/apperrors"
	"infrasense-be/authz"
	"infrasense-be/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	userIDKey   = "user_id"
	authCookie  = "auth_token"
)

// AuthMiddleware verifies the HS256 identity token and stores the caller's
// Identity in the gin context. The role is taken from token claims only.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			return
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		subject := subjectOf(claims)
		if subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set(userIDKey, subject)
		c.Set(identityKey, &models.Identity{UserID: subject, Role: authz.ResolveRole(claims)})
		c.Next()
	}
}

// RequireGovRole admits government and admin callers. It must run after
// AuthMiddleware.
func RequireGovRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := authz.RequireGovernment(CurrentIdentity(c))
		var forbidden *apperrors.ForbiddenError
		switch {
		case err == nil:
			c.Next()
		case errors.As(err, &forbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "Forbidden: this action requires government authorization",
				"userRole": forbidden.Role,
			})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		}
	}
}

// CurrentIdentity returns the caller set by AuthMiddleware, or nil.
func CurrentIdentity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*models.Identity)
	return id
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	cookie, err := c.Cookie(authCookie)
	if err != nil {
		return ""
	}
	return cookie
}

func subjectOf(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id"} {
		if s, ok := claims[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
