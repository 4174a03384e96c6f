package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourname/aidiary/internal"
	"github.com/yourname/aidiary/internal/response"
)

const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// UserKey is the gin context key holding the authenticated *internal.User.
const UserKey = "user"

func AuthMiddleware(provider Provider, mode string, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			var user *internal.User
			var err error
			if mode == ModeRemote {
				user, err = provider.ValidateTokenRemote(c.Request.Context(), token)
			} else {
				user, err = provider.ValidateTokenLocal(c.Request.Context(), token)
			}
			if err == nil {
				c.Set(UserKey, user)
				c.Next()
				return
			}
			if !errors.Is(err, ErrInvalidToken) {
				// Revocation store or auth API unavailable: not the caller's fault.
				logger.Errorw("token check failed", "request_id", c.GetString("request_id"), "error", err)
				c.AbortWithStatusJSON(response.Failure(internal.NewUpstreamError("token check failed", err)))
				return
			}
			logger.Infow("rejected request", "request_id", c.GetString("request_id"), "error", err)
		}
		c.AbortWithStatusJSON(response.Unauthorized())
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*internal.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*internal.User)
	return user, ok && user != nil
}
