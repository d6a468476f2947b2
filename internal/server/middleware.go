package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderRole switches between the owner view and the member view. There is
// no authentication behind it; the admin mode is a UI toggle in the original
// product and this mirrors that trust model.
const HeaderRole = "X-Subshare-Role"

const roleAdmin = "admin"

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderRole)))
		if role != roleAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}
