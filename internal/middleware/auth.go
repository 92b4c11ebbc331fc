package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/dto"
)

const (
	// ContextUserID gin context key holding the authenticated user id
	ContextUserID = "user_id"
	// ContextTier gin context key holding the caller's subscription tier
	ContextTier = "subscription_tier"
)

// Claims is the JWT payload issued and accepted by this service.
type Claims struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier,omitempty"`
	jwt.RegisteredClaims
}

// RequireAuth validates the Bearer token and stores the caller identity in
// the gin context. Requests without a valid token never reach handlers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "missing or malformed authorization header",
				Code:  "UNAUTHORIZED",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(config.AppConfig.Auth.JWTSecret), nil
		})
		if err != nil || !token.Valid || claims.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error: "invalid or expired token",
				Code:  "UNAUTHORIZED",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		if claims.Tier != "" {
			c.Set(ContextTier, claims.Tier)
		}
		c.Next()
	}
}

// IssueToken signs a token for the given user. Used by the dev token
// generator and by tests.
func IssueToken(secret, userID, tier string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Tier:   tier,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// UserID pulls the authenticated user id out of the gin context.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Tier pulls the caller's subscription tier, defaulting to free.
func Tier(c *gin.Context) string {
	if t := c.GetString(ContextTier); t != "" {
		return t
	}
	return "free"
}
