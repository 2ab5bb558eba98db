package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const customerKey = "customer_id"

// RequireCustomer resolves the customer from an HS256 bearer token. The
// customer id is read from the customer_id claim, falling back to sub.
func RequireCustomer(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		customerID, _ := claims[customerKey].(string)
		if customerID == "" {
			customerID, _ = claims.GetSubject()
		}
		if customerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no customer"})
			return
		}

		c.Set(customerKey, customerID)
		c.Next()
	}
}

func customerFrom(c *gin.Context) string {
	return c.GetString(customerKey)
}
