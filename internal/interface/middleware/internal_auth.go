package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/chatapp-auth/pkg/response"
)

// DefaultInternalTokenHeader carries the shared internal secret on
// service-to-service calls.
const DefaultInternalTokenHeader = "x-internal-token"

// InternalAuthOptions configures the internal-auth gate.
type InternalAuthOptions struct {
	HeaderName       string
	PathsToBeIgnored []string
}

// InternalAuth rejects any request that does not carry the shared internal
// secret in the configured header. Paths on the ignore list (health checks)
// pass through without the header. The first header value is the one
// compared, in constant time.
func InternalAuth(expectedToken string, opts InternalAuthOptions) gin.HandlerFunc {
	headerName := opts.HeaderName
	if headerName == "" {
		headerName = DefaultInternalTokenHeader
	}
	ignored := make(map[string]struct{}, len(opts.PathsToBeIgnored))
	for _, p := range opts.PathsToBeIgnored {
		ignored[p] = struct{}{}
	}
	expected := []byte(expectedToken)

	return func(c *gin.Context) {
		if _, ok := ignored[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		values := c.Request.Header.Values(headerName)
		if len(values) == 0 {
			abortUnauthorized(c)
			return
		}
		if subtle.ConstantTimeCompare([]byte(values[0]), expected) != 1 {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	resp := response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	c.AbortWithStatusJSON(resp.Status, resp)
}
