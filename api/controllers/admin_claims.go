package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/api/responses"
	"github.com/orlie/affiliatehub-backend/api/validators"
	claimsvc "github.com/orlie/affiliatehub-backend/internal/claims"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
	"github.com/orlie/affiliatehub-backend/pkg/logger"
	"github.com/orlie/affiliatehub-backend/pkg/pagination"
)

func AdminListClaims(svc claimsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminList(r.Context(), claimsvc.AdminListInput{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type setClaimStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminSetClaimStatus(svc claimsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		claimID, err := validators.ParsePathUUID(chi.URLParam(r, "claimID"), "claimID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setClaimStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claim, err := svc.AdminSetStatus(r.Context(), actorID, claimID, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}

type bulkClaimStatusRequest struct {
	ClaimIDs []string `json:"claim_ids" validate:"required,min=1,dive,required"`
	Status   string   `json:"status" validate:"required"`
}

// AdminBulkSetClaimStatus updates a batch of claims in one transaction. One
// unknown id fails the whole batch.
func AdminBulkSetClaimStatus(svc claimsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bulkClaimStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claimIDs := make([]uuid.UUID, 0, len(payload.ClaimIDs))
		for _, raw := range payload.ClaimIDs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "claim ids must be uuids").
						WithDetails(map[string]any{"value": raw}))
				return
			}
			claimIDs = append(claimIDs, id)
		}

		claims, err := svc.AdminBulkSetStatus(r.Context(), actorID, claimIDs, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, claims)
	}
}
