package middleware

import (
	"errors"
	"fmt"
	"strings"

	"go-timeoff/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextEmployeeID     = "employee_id"
	ContextOrganizationID = "organization_id"
	ContextUserID         = "user_id"
)

// AuthMiddleware reads the actor from a bearer token or the access_token
// cookie. Token issuance lives outside this service. With an empty secret
// every token is rejected.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.FromError(c, ErrTokenNotFound)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			if jwtSecret == "" {
				return nil, errors.New("signing key is not configured")
			}
			return []byte(jwtSecret), nil
		})

		if err != nil || !token.Valid {
			errObj := ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = ErrTokenExpired
			}
			response.FromError(c, errObj)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.FromError(c, ErrInvalidToken)
			c.Abort()
			return
		}

		employeeID, _ := claims["employee_id"].(string)
		organizationID, _ := claims["organization_id"].(string)
		if employeeID == "" || organizationID == "" {
			response.FromError(c, ErrInvalidToken.WithDetails(map[string]string{
				"claims": "employee_id and organization_id are required",
			}))
			c.Abort()
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			userID = employeeID
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextEmployeeID, employeeID)
		c.Set(ContextOrganizationID, organizationID)

		c.Next()
	}
}
