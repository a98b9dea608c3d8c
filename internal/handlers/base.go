package handlers

import (
	"discuss/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Render merges common variables like 'current user' into the page data.
// The caller's map is never written to; handlers cache their gin.H across
// requests, so request-local values must stay out of it.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	data := make(gin.H, len(obj)+2)
	for k, v := range obj {
		data[k] = v
	}

	// Inject Current User
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		data["CurrentUser"] = user
	}

	data["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, data)
}

// RenderError renders the dedicated error page
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}
