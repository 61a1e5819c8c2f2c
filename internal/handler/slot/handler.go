package slot

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kineayuda/booking-api/internal/handler"
	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/service/slot"
)

type Handler struct {
	service *slot.Service
}

func NewHandler(service *slot.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the authenticated slot endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/slots")
	{
		group.POST("", h.Publish)
		group.GET("", h.List)
		group.DELETE("/:id", h.Cancel)
	}
}

// RegisterPublicRoutes mounts the unauthenticated slot listing.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/practitioners/:id/slots", h.ListAvailable)
}

func (h *Handler) Publish(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	var req model.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Publish(c.Request.Context(), practitionerID, req.StartTime, req.EndTime)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) List(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	slots, err := h.service.ListByPractitioner(c.Request.Context(), practitionerID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) Cancel(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid slot ID"))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), practitionerID, slotID); err != nil {
		handler.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAvailable(c *gin.Context) {
	practitionerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid practitioner ID"))
		return
	}

	var from time.Time
	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from timestamp"))
			return
		}
	}

	slots, err := h.service.ListAvailable(c.Request.Context(), practitionerID, from)
	if err != nil {
		handler.Error(c, err)
		return
	}

	public := make([]*model.PublicSlot, 0, len(slots))
	for _, s := range slots {
		public = append(public, &model.PublicSlot{
			ID:        s.ID,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(public))
}
