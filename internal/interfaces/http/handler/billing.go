package handler

import (
	"context"
	"errors"
	"io"

	"github.com/bizdir/backend/internal/application/billing"
	"github.com/bizdir/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StripeSignatureHeader carries the webhook signature
const StripeSignatureHeader = "Stripe-Signature"

// Webhook outcomes reported to the recorder
const (
	WebhookProcessed = "processed"
	WebhookDuplicate = "duplicate"
	WebhookRejected  = "rejected"
	WebhookFailed    = "failed"
)

// BillingService is the subscription API for the current user
type BillingService interface {
	ListPlans() []billing.PlanResponse
	GetMine(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error)
	Resume(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error)
}

// WebhookProcessor applies verified provider events
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*billing.WebhookResult, error)
}

// WebhookRecorder counts webhook deliveries by type and outcome
type WebhookRecorder interface {
	RecordWebhook(ctx context.Context, eventType, outcome string)
}

// BillingHandler serves plans, subscriptions and the Stripe webhook
type BillingHandler struct {
	BaseHandler
	billing  BillingService
	webhooks WebhookProcessor
	recorder WebhookRecorder
}

// NewBillingHandler creates a new billing handler. recorder may be nil.
func NewBillingHandler(svc BillingService, webhooks WebhookProcessor, recorder WebhookRecorder) *BillingHandler {
	return &BillingHandler{billing: svc, webhooks: webhooks, recorder: recorder}
}

// Plans godoc
// @Summary      Subscription plans
// @Tags         billing
// @Produce      json
// @Success      200 {object} dto.Response{data=[]billing.PlanResponse}
// @Router       /plans [get]
func (h *BillingHandler) Plans(c *gin.Context) {
	h.Success(c, h.billing.ListPlans())
}

// Mine godoc
// @Summary      My subscription
// @Description  Users without a paid subscription are on the free plan
// @Tags         billing
// @Produce      json
// @Success      200 {object} dto.Response{data=billing.SubscriptionResponse}
// @Security     BearerAuth
// @Router       /billing/subscription [get]
func (h *BillingHandler) Mine(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	resp, err := h.billing.GetMine(c.Request.Context(), userID)
	h.respond(c, resp, err)
}

// Cancel godoc
// @Summary      Cancel at period end
// @Tags         billing
// @Produce      json
// @Success      200 {object} dto.Response{data=billing.SubscriptionResponse}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/subscription/cancel [post]
func (h *BillingHandler) Cancel(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	resp, err := h.billing.Cancel(c.Request.Context(), userID)
	h.respond(c, resp, err)
}

// Resume godoc
// @Summary      Undo a pending cancellation
// @Tags         billing
// @Produce      json
// @Success      200 {object} dto.Response{data=billing.SubscriptionResponse}
// @Security     BearerAuth
// @Router       /billing/subscription/resume [post]
func (h *BillingHandler) Resume(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	resp, err := h.billing.Resume(c.Request.Context(), userID)
	h.respond(c, resp, err)
}

// Webhook godoc
// @Summary      Stripe webhook
// @Description  Verifies the signature and applies subscription and invoice events. Duplicates are acknowledged.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Webhook signature"
// @Success      200 {object} dto.Response{data=billing.WebhookResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/webhook [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	ctx := c.Request.Context()
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.bindResult(c, err, "Failed to read request body")
		return
	}
	signature := c.GetHeader(StripeSignatureHeader)
	if signature == "" {
		h.record(ctx, "unknown", WebhookRejected)
		h.ErrorWithCode(c, dto.ErrCodeInvalidSignature, "Missing "+StripeSignatureHeader+" header")
		return
	}

	result, err := h.webhooks.ProcessWebhook(ctx, payload, signature)
	if err != nil {
		outcome := WebhookFailed
		if errors.Is(err, billing.ErrInvalidSignature) {
			outcome = WebhookRejected
		}
		h.record(ctx, "unknown", outcome)
		h.HandleError(c, err)
		return
	}

	outcome := WebhookProcessed
	if !result.Processed {
		outcome = WebhookDuplicate
	}
	h.record(ctx, result.EventType, outcome)
	h.Success(c, result)
}

func (h *BillingHandler) record(ctx context.Context, eventType, outcome string) {
	if h.recorder != nil {
		h.recorder.RecordWebhook(ctx, eventType, outcome)
	}
}

func (h *BillingHandler) respond(c *gin.Context, resp *billing.SubscriptionResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
