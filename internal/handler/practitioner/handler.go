package practitioner

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kineayuda/booking-api/internal/handler"
	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/service/practitioner"
)

type Handler struct {
	service *practitioner.Service
}

func NewHandler(service *practitioner.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the authenticated profile endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Me)
	r.PUT("/me", h.Update)
}

// RegisterPublicRoutes mounts the public practitioner directory.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/practitioners", h.ListApproved)
}

func (h *Handler) Me(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), practitionerID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	var req model.UpdatePractitionerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	p, err := h.service.Update(c.Request.Context(), practitionerID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) ListApproved(c *gin.Context) {
	practitioners, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(practitioners))
}
