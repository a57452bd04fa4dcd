package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/doctors-portal/internal/payment"
)

func TestCreateIntent(t *testing.T) {
	proc := &fakeProcessor{secret: "pi_123_secret_abc"}
	h := NewPaymentHandler(proc, testTimeout)

	c, rec := jsonCtx(http.MethodPost, "/create-payment-intent", `{"price":19.99}`)
	require.NoError(t, h.CreateIntent(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"clientSecret":"pi_123_secret_abc"}`, rec.Body.String())
	assert.Equal(t, 19.99, proc.price)
}

func TestCreateIntentFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		kind   string
	}{
		{"missing price", `{}`, nil, http.StatusBadRequest, KindBadRequest},
		{"malformed body", `{"price":"ten"}`, nil, http.StatusBadRequest, KindBadRequest},
		{"invalid amount", `{"price":-1}`, payment.ErrInvalidAmount, http.StatusBadRequest, KindBadRequest},
		{"processor rejects", `{"price":10}`, fmt.Errorf("%w: card_declined", payment.ErrProcessor), http.StatusBadGateway, KindUpstream},
		{"processor timeout", `{"price":10}`, fmt.Errorf("%w: %w", payment.ErrProcessor, context.DeadlineExceeded), http.StatusGatewayTimeout, KindTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPaymentHandler(&fakeProcessor{err: tt.err}, testTimeout)
			c, rec := jsonCtx(http.MethodPost, "/create-payment-intent", tt.body)
			require.NoError(t, h.CreateIntent(c))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.kind, decodeError(t, rec).Error)
		})
	}
}
