package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orlie/affiliatehub-backend/api/middleware"
	"github.com/orlie/affiliatehub-backend/api/responses"
	"github.com/orlie/affiliatehub-backend/api/validators"
	claimsvc "github.com/orlie/affiliatehub-backend/internal/claims"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	"github.com/orlie/affiliatehub-backend/pkg/logger"
)

// CreateClaim opens a claim on a product for the calling affiliate.
func CreateClaim(svc claimsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		affiliateID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claim, err := svc.Create(r.Context(), affiliateID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, claim)
	}
}

// CheckEligibility previews the claim decision without creating anything.
func CheckEligibility(svc claimsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		affiliateID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := svc.Eligibility(r.Context(), affiliateID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, decision)
	}
}

func ListMyClaims(svc claimsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		affiliateID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListMine(r.Context(), affiliateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type submitContentRequest struct {
	VideoLink string `json:"video_link" validate:"required"`
	AdCode    string `json:"ad_code" validate:"required"`
}

// SubmitContent records the affiliate's video link and ad code on a claim.
func SubmitContent(svc claimsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		affiliateID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		claimID, err := validators.ParsePathUUID(chi.URLParam(r, "claimID"), "claimID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitContentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claim, err := svc.SubmitContent(r.Context(), affiliateID, claimID, payload.VideoLink, payload.AdCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}

// ClaimQR renders the claimed product's share link as a PNG QR code.
func ClaimQR(svc claimsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		claimID, err := validators.ParsePathUUID(chi.URLParam(r, "claimID"), "claimID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := enums.UserRole(middleware.RoleFromContext(r.Context()))

		image, err := svc.ShareQR(r.Context(), requesterID, role, claimID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePNG(w, image)
	}
}
