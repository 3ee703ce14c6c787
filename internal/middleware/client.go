package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientIDHeader scopes stored preferences to one browser.
const ClientIDHeader = "X-Client-ID"

const clientIDKey = "client_id"

// ClientID accepts the caller's UUID client id or issues a fresh one, echoing
// it back so the client can persist it.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ClientIDHeader)
		if parsed, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		} else {
			id = parsed.String()
		}
		c.Set(clientIDKey, id)
		c.Writer.Header().Set(ClientIDHeader, id)
		c.Next()
	}
}

// ClientIDFrom returns the id stored by ClientID.
func ClientIDFrom(c *gin.Context) string {
	if v, exists := c.Get(clientIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
