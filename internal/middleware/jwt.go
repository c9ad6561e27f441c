package middleware

import (
	"net/http"
	"strings"

	"leadtrail/internal/service"

	"github.com/gin-gonic/gin"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (*service.UserClaims, error)
}

// DevOperatorID is the user id injected by the dev pass header.
const DevOperatorID = 1

func JWTMiddleware(parser TokenParser, devMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if devMode && c.GetHeader("X-Dev-Pass") == "true" {
			ctx := service.WithOperator(c.Request.Context(), &service.OperatorInfo{
				UserID: DevOperatorID,
				Name:   "dev-admin",
				Role:   "admin",
			})
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		}

		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		claims, err := parser.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
			return
		}

		op := &service.OperatorInfo{
			UserID: claims.UserID,
			Name:   claims.Name,
			Role:   claims.Role,
		}
		c.Set("operator_id", op.UserID)
		c.Request = c.Request.WithContext(service.WithOperator(c.Request.Context(), op))

		c.Next()
	}
}
