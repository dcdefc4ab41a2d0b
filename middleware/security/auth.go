package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chat-relay/tools/errs"
	"chat-relay/tools/security"
)

// CtxUsernameKey is where the middleware stores the verified caller
// identity; downstream handlers read it via Username(c).
const CtxUsernameKey = "username"

// Middleware verifies the Bearer token and injects the caller's username
// into the gin context. Requests without a valid token are rejected before
// any handler runs.
func Middleware(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errs.ErrTokenInvalid.Msg})
			return
		}

		username, err := security.Verify(opts, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errs.ErrTokenInvalid.Msg})
			return
		}
		c.Set(CtxUsernameKey, username)
		c.Next()
	}
}

// Username returns the verified caller identity, or "" when the route is
// not behind the middleware.
func Username(c *gin.Context) string {
	v, _ := c.Get(CtxUsernameKey)
	s, _ := v.(string)
	return s
}
