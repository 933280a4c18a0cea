package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storage-service/internal/model/identity"
	"storage-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "very_very_secret_key"

func newRouter() (*gin.Engine, *identity.Identity) {
	gin.SetMode(gin.TestMode)
	var captured identity.Identity
	r := gin.New()
	r.Use(middleware.Auth(secret))
	r.GET("/whoami", func(c *gin.Context) {
		who, _ := identity.FromContext(c.Request.Context())
		captured = who
		c.JSON(http.StatusOK, gin.H{"id": who.ID})
	})
	return r, &captured
}

func signToken(t *testing.T, subject, email, key string, exp time.Time) string {
	t.Helper()
	claims := middleware.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestAuth_ValidToken(t *testing.T) {
	r, captured := newRouter()

	token := signToken(t, "42", "user@example.com", secret, time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint32(42), captured.ID)
	assert.Equal(t, "user@example.com", captured.Email)
}

func TestAuth_Rejections(t *testing.T) {
	r, _ := newRouter()

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong key", "Bearer " + signToken(t, "42", "user@example.com", "other-key", time.Now().Add(time.Hour))},
		{"expired", "Bearer " + signToken(t, "42", "user@example.com", secret, time.Now().Add(-time.Minute))},
		{"non-numeric subject", "Bearer " + signToken(t, "abc", "user@example.com", secret, time.Now().Add(time.Hour))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
