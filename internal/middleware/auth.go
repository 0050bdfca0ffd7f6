package middleware

import (
	"net/http"
	"strings"

	"github.com/nazim1903/Businesstracker/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ClaimsKey = "claims"

// JWTAuth checks a Bearer token issued by the external identity provider.
// The ledger has no notion of users; the subject is only logged. An empty
// secret disables the check.
func JWTAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
			func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Subject returns the authenticated token subject, or "" when auth is off.
func Subject(c *gin.Context) string {
	if claims, ok := c.Get(ClaimsKey); ok {
		if rc, ok := claims.(*jwt.RegisteredClaims); ok {
			return rc.Subject
		}
	}
	return ""
}
