package controllers

import (
	"net/http"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/api/validators"
	"github.com/angelmondragon/foodlink-backend/internal/payments"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

type confirmPaymentRequest struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	PaymentType string `json:"paymentType,omitempty"`
}

// PaymentConfirm finalizes the gateway payment the client was redirected back from.
func PaymentConfirm(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Confirm(r.Context(), caller, payments.ConfirmInput{
			PaymentKey: payload.PaymentKey,
			OrderID:    payload.OrderID,
			Amount:     payload.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
