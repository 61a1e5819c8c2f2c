package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kineayuda/booking-api/internal/handler"
	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/service/patient"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the practitioner-facing patient endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/patients")
	{
		group.POST("", h.Create)
		group.GET("/:rut", h.FindByRUT)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) FindByRUT(c *gin.Context) {
	found, err := h.service.FindByRUT(c.Request.Context(), c.Param("rut"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}
