package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"storage-service/internal/model/identity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token shape the auth collaborator issues: account id in the
// subject, plus the verified email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Auth verifies the bearer token and injects a request-scoped Identity into
// the request context. The core trusts this identity without re-verifying
// credentials.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"kind": "unauthorized", "message": "authorization header missing"},
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"kind": "unauthorized", "message": "invalid authorization header"},
			})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"kind": "unauthorized", "message": "invalid token"},
			})
			return
		}

		uid, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"kind": "unauthorized", "message": "invalid token subject"},
			})
			return
		}

		ctx := identity.WithContext(c.Request.Context(), identity.Identity{
			ID:    uint32(uid),
			Email: claims.Email,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
