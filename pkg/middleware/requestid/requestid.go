package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation ID end to end; support asks users to quote
// it from the app's error screen.
const Header = "X-Request-ID"

const ctxKey = "request_id"

// Inbound IDs longer than this are treated as garbage and replaced.
const maxInboundLen = 64

// Middleware adopts the caller's correlation ID when one is present and
// sane, otherwise mints a UUID, and reflects it on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > maxInboundLen {
			id = uuid.NewString()
		}

		c.Set(ctxKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID for the current request, or "" when the
// middleware did not run.
func Value(c *gin.Context) string {
	v, _ := c.Get(ctxKey)
	id, _ := v.(string)
	return id
}
