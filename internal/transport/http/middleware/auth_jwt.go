package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sweet-shop/internal/core/auth"
	"sweet-shop/internal/domain"
	resp "sweet-shop/internal/transport/http/response"
)

const (
	MsgNoToken     = "Not authorized, no token"
	MsgTokenFailed = "Not authorized, token failed"
	MsgNotAdmin    = "Not authorized as an admin"
)

// UserResolver turns a bearer token into the user it was issued for.
type UserResolver interface {
	ParseToken(token string) (*auth.Claims, error)
	UserByID(ctx context.Context, id string) (*domain.User, error)
}

// Protect requires a valid bearer token for an existing user and attaches
// that user to the request context.
func Protect(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, MsgNoToken))
			return
		}
		claims, err := users.ParseToken(strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, MsgTokenFailed))
			return
		}
		u, err := users.UserByID(c.Request.Context(), claims.ID)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(http.StatusInternalServerError, ""))
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, MsgTokenFailed))
			return
		}
		c.Request = c.Request.WithContext(domain.WithUser(c.Request.Context(), u))
		c.Set(KeyUserID, u.ID)
		c.Next()
	}
}

// AdminOnly must run after Protect. Non-admins get 401, not 403.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := CurrentUser(c); u == nil || !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(http.StatusUnauthorized, MsgNotAdmin))
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *domain.User { return domain.UserFrom(c.Request.Context()) }
