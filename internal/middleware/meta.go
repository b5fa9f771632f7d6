package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const metaKey = "response_meta"

// ResponseMeta attaches a metadata map to every request. Handlers add
// entries (cache_hit, processing_time_ms) and response.JSON emits them
// under the envelope's meta field.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Set(metaKey, map[string]interface{}{})
		c.Next()
		meta := Meta(c)
		if _, set := meta["processing_time_ms"]; !set {
			meta["processing_time_ms"] = time.Since(started).Milliseconds()
		}
	}
}

// MarkCacheHit notes whether the handler served the request from cache.
func MarkCacheHit(c *gin.Context, hit bool) {
	Meta(c)["cache_hit"] = hit
}

// Meta returns the request's metadata map, creating it when the
// middleware did not run (tests, internal routes).
func Meta(c *gin.Context) map[string]interface{} {
	if value, ok := c.Get(metaKey); ok {
		if meta, ok := value.(map[string]interface{}); ok {
			return meta
		}
	}
	meta := map[string]interface{}{}
	c.Set(metaKey, meta)
	return meta
}
