package handlers

import (
	"OcuCare/services"
	"errors"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP responses. Store
// read/write failures fall through to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(401, gin.H{"error": "Not authenticated"})
	case errors.Is(err, services.ErrNoDoctorAvailable):
		c.JSON(503, gin.H{"error": "No doctor is available"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(404, gin.H{"error": "Not found"})
	default:
		c.JSON(500, gin.H{"error": err.Error()})
	}
}
