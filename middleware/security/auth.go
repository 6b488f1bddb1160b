package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GabrielG71/online-chat/global"
	toolsec "github.com/GabrielG71/online-chat/tools/security"
)

// Context key the rest of the service reads the authenticated identity from.
const CtxUserIDKey = "userId"

type Options struct {
	Secret []byte
	// AllowQueryToken accepts ?token= as a fallback. EventSource cannot
	// set request headers, so the stream endpoint needs it.
	AllowQueryToken bool
}

func DefaultOptions() *Options {
	return &Options{Secret: global.GetJwtSecret(), AllowQueryToken: true}
}

// Middleware resolves the bearer token to a user id and stores it in the
// gin context. Requests without a valid identity are rejected before any
// registry interaction.
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := ""
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
		if token == "" && opts.AllowQueryToken {
			token = strings.TrimSpace(c.Query("token"))
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := toolsec.Verify(toolsec.DefaultOptions(opts.Secret), token)
		if err != nil || claims.UserID() == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(CtxUserIDKey, claims.UserID())
		c.Next()
	}
}

// UserID reads the authenticated user id set by Middleware, or "".
func UserID(c *gin.Context) string {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
