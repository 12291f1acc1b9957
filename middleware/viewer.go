package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ViewerCookie names the cookie carrying the anonymous viewer identity
// used by the vote ledger.
const ViewerCookie = "ls_viewer"

// viewerKey is the gin context key the vote handler reads.
const viewerKey = "viewerId"

// ViewerID gives every client a stable anonymous identity. First visit
// gets a fresh uuid cookie; later requests reuse it. This is the voter
// context for one-vote-per-poll enforcement.
func ViewerID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ViewerCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetCookie(ViewerCookie, id, 365*24*3600, "/", "", false, true)
		}
		c.Set(viewerKey, id)
		c.Next()
	}
}

// Viewer returns the viewer identity set by ViewerID.
func Viewer(c *gin.Context) string {
	return c.GetString(viewerKey)
}
