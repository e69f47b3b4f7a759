package controllers

import (
	"net/http"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/api/validators"
	"github.com/angelmondragon/foodlink-backend/internal/checkout"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

// validateCartRequest skips per-line validation so the cart validator can
// report MOQ and quantity problems in its own terms.
type validateCartRequest struct {
	Items []checkout.Line `json:"items"`
}

// CartValidate checks the proposed lines against MOQ and stock without
// creating anything. An invalid cart is still a 200 with isValid=false.
func CartValidate(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validateCartRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Validate(r.Context(), payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Checkout creates pending orders and returns the gateway order id.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload checkout.PrepareInput
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Prepare(r.Context(), caller, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
