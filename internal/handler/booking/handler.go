package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/handler"
	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/service/booking"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the authenticated appointment endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/appointments")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("/:id/complete", h.Complete)
		group.POST("/:id/cancel", h.Cancel)
	}
}

// RegisterPublicRoutes mounts the patient-facing booking endpoints.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/bookings", h.Reserve)
	r.GET("/patients/:rut/appointments", h.ListByPatient)
}

func (h *Handler) Reserve(c *gin.Context) {
	var req model.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appointment, err := h.service.Reserve(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ListByPatient(c *gin.Context) {
	appointments, err := h.service.ListByPatientRUT(c.Request.Context(), c.Param("rut"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) List(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	filters := &model.AppointmentFilters{
		Status: model.AppointmentStatus(c.Query("status")),
	}

	appointments, err := h.service.ListByPractitioner(c.Request.Context(), practitionerID, filters)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Get(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), practitionerID, appointmentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) Complete(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	// Body is optional on completion.
	_ = c.ShouldBindJSON(&req)

	appointment, err := h.service.Complete(c.Request.Context(), practitionerID, appointmentID, req.Notes)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) Cancel(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	appointment, err := h.service.Cancel(c.Request.Context(), practitionerID, appointmentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}
