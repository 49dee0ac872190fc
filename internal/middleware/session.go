package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/pacs-worklist-api/pkg/logger"
)

const sessionContextKey = "worklistSession"

// Session assigns every request a worklist session id. A well-formed id sent by the client is
// reused; anything else starts a new session. The id is echoed back in the response header.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(logger.SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(sessionContextKey, id)
		c.Writer.Header().Set(logger.SessionHeader, id)
		c.Next()
	}
}

// SessionID returns the session id assigned by Session.
func SessionID(c *gin.Context) string {
	if v, ok := c.Get(sessionContextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
