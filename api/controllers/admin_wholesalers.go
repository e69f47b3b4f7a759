package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/api/validators"
	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/internal/wholesalers"
	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

func AdminWholesalerList(svc wholesalers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var status *enums.WholesalerStatus
		if v := validators.QueryString(r, "status"); v != nil {
			s := enums.WholesalerStatus(*v)
			status = &s
		}
		result, err := svc.List(r.Context(), caller, status, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminWholesalerApprove(svc wholesalers.Service, logg *logger.Logger) http.HandlerFunc {
	return wholesalerDecision(svc.Approve, logg)
}

func AdminWholesalerReject(svc wholesalers.Service, logg *logger.Logger) http.HandlerFunc {
	return wholesalerDecision(svc.Reject, logg)
}

func wholesalerDecision(decide func(ctx context.Context, caller identity.Identity, id uuid.UUID) (*models.Wholesaler, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "wholesalerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wholesaler, err := decide(r.Context(), caller, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"wholesaler": wholesaler})
	}
}
