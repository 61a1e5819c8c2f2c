package payment

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kineayuda/booking-api/internal/handler"
	"github.com/kineayuda/booking-api/internal/model"
	"github.com/kineayuda/booking-api/internal/service/payment"
	"github.com/kineayuda/booking-api/internal/service/subscription"
)

type Handler struct {
	payments      *payment.Service
	subscriptions *subscription.Service
}

func NewHandler(payments *payment.Service, subscriptions *subscription.Service) *Handler {
	return &Handler{payments: payments, subscriptions: subscriptions}
}

// RegisterRoutes mounts the authenticated payment endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/payments")
	{
		group.POST("/subscription", h.InitiateSubscription)
		group.GET("/subscription/status", h.SubscriptionStatus)
		group.POST("/appointment", h.InitiateAppointment)
	}
}

// RegisterCallbackRoutes mounts the gateway-facing endpoints. These are
// unauthenticated: the gateway redirect carries only the transaction
// token and the webhook is authenticated by buy order knowledge.
func (h *Handler) RegisterCallbackRoutes(r *gin.RouterGroup) {
	group := r.Group("/payments")
	{
		group.POST("/subscription/return", h.Return)
		group.GET("/subscription/return", h.Return)
		group.POST("/subscription/webhook", h.Webhook)
		group.POST("/appointment/return", h.Return)
		group.GET("/appointment/return", h.Return)
	}
}

func (h *Handler) InitiateSubscription(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	var req model.InitiateSubscriptionPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	intent, err := h.payments.InitiateSubscription(c.Request.Context(), practitionerID, req.Amount)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(intent))
}

func (h *Handler) InitiateAppointment(c *gin.Context) {
	if _, ok := handler.PractitionerID(c); !ok {
		return
	}

	var req model.InitiateAppointmentPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	intent, err := h.payments.InitiateAppointment(c.Request.Context(), req.AppointmentID, req.Amount)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(intent))
}

func (h *Handler) SubscriptionStatus(c *gin.Context) {
	practitionerID, ok := handler.PractitionerID(c)
	if !ok {
		return
	}

	status, err := h.subscriptions.Status(c.Request.Context(), practitionerID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(status))
}

// Return handles the payer coming back from the gateway with token_ws.
func (h *Handler) Return(c *gin.Context) {
	token := c.Query("token_ws")
	if token == "" {
		token = c.PostForm("token_ws")
	}

	t, err := h.payments.ApplyReturn(c.Request.Context(), token)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(t))
}

// Webhook handles the asynchronous provider notification. The raw body
// is persisted alongside the transaction for audit.
func (h *Handler) Webhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read body"))
		return
	}

	var payload model.WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid webhook payload"))
		return
	}

	t, err := h.payments.ApplyWebhook(c.Request.Context(), &payload, raw)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(t))
}
