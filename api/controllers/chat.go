package controllers

import (
	"net/http"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/api/validators"
	"github.com/angelmondragon/foodlink-backend/internal/chat"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

type chatRequest struct {
	Messages []chat.Message `json:"messages" validate:"required"`
}

func Chat(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload chatRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reply, err := svc.Chat(r.Context(), payload.Messages)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reply)
	}
}
