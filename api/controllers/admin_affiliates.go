package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orlie/affiliatehub-backend/api/responses"
	"github.com/orlie/affiliatehub-backend/api/validators"
	"github.com/orlie/affiliatehub-backend/internal/accounts"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
	"github.com/orlie/affiliatehub-backend/pkg/logger"
	"github.com/orlie/affiliatehub-backend/pkg/pagination"
)

func AdminListAffiliates(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminListAffiliates(r.Context(),
			strings.TrimSpace(r.URL.Query().Get("status")),
			pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type setAffiliateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func AdminSetAffiliateStatus(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		affiliateID, err := validators.ParsePathUUID(chi.URLParam(r, "affiliateID"), "affiliateID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setAffiliateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseAffiliateStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		affiliate, err := svc.AdminSetAffiliateStatus(r.Context(), actorID, affiliateID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, affiliate)
	}
}
