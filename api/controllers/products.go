package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/api/validators"
	"github.com/angelmondragon/foodlink-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

// ProductList handles GET /products with category, wholesalerId, keyword and
// sort filters.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := catalog.ListFilters{}
		if v := validators.QueryString(r, "category"); v != nil {
			filters.Category = *v
		}
		if v := validators.QueryString(r, "keyword"); v != nil {
			filters.Keyword = *v
		}
		if v := validators.QueryString(r, "sort"); v != nil {
			filters.Sort = *v
		}
		if v := validators.QueryString(r, "wholesalerId"); v != nil {
			id, err := uuid.Parse(*v)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "올바른 ID 형식이 아닙니다.").
					WithDetails(map[string]any{"field": "wholesalerId"}))
				return
			}
			filters.WholesalerID = &id
		}

		result, err := svc.List(r.Context(), catalog.ListInput{Filters: filters, Pagination: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product": product})
	}
}

// ProductStandardizeName asks the AI provider for a catalog-style name.
func ProductStandardizeName(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.StandardizeName(r.Context(), caller, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
