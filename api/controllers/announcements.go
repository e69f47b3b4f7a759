package controllers

import (
	"net/http"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/api/validators"
	"github.com/angelmondragon/foodlink-backend/internal/announcements"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

func AnnouncementList(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
