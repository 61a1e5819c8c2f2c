package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/middleware"
)

// PractitionerID reads the authenticated practitioner's id from the
// request context. It aborts with 401 when the id is missing or mangled.
func PractitionerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(middleware.ContextPractitionerID))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse("invalid practitioner ID"))
		return uuid.Nil, false
	}
	return id, true
}
