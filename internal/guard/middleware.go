package guard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studyhub/client/internal/session"
)

// Middleware applies a guard requirement to inbound routes. Browser
// callers get a 302 to the decided view; API callers get a JSON body with
// the same redirect target.
func Middleware(sessions *session.Manager, req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := Evaluate(sessions.Snapshot(), req)
		if decision.Allow {
			c.Next()
			return
		}

		if wantsJSON(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "access_denied",
				"redirect": decision.RedirectTo,
			})
			return
		}
		c.Redirect(http.StatusFound, decision.RedirectTo)
		c.Abort()
	}
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") || accept == ""
}
