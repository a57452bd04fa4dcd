package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/doctors-portal/internal/payment"
)

// PaymentHandler serves POST /create-payment-intent.
type PaymentHandler struct {
	Processor payment.Processor
	Timeout   time.Duration
}

func NewPaymentHandler(p payment.Processor, timeout time.Duration) *PaymentHandler {
	if p == nil {
		panic("nil processor passed to NewPaymentHandler")
	}
	return &PaymentHandler{Processor: p, Timeout: timeout}
}

type intentReq struct {
	Price *float64 `json:"price"`
}

type intentResp struct {
	ClientSecret string `json:"clientSecret"`
}

// CreateIntent asks the processor for a card payment intent of price and
// relays its client secret. Nothing is stored.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req intentReq
	if err := c.Bind(&req); err != nil || req.Price == nil {
		return fail(c, http.StatusBadRequest, KindBadRequest, "price is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	secret, err := h.Processor.CreateIntent(ctx, *req.Price)
	if err != nil {
		return respondErr(c, err, KindUpstream)
	}
	return c.JSON(http.StatusOK, intentResp{ClientSecret: secret})
}
