package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clipdeck/statistics-service/internal/apierr"
)

// respondError maps err to its HTTP status via apierr.HTTPStatus and writes
// a uniform {"error": "..."} body, the shared mapper every handler funnels
// through instead of choosing status codes ad hoc.
func respondError(c *gin.Context, err error) {
	status := apierr.HTTPStatus(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
