package controllers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orlie/affiliatehub-backend/api/responses"
	"github.com/orlie/affiliatehub-backend/api/validators"
	productsvc "github.com/orlie/affiliatehub-backend/internal/products"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
	"github.com/orlie/affiliatehub-backend/pkg/logger"
	"github.com/orlie/affiliatehub-backend/pkg/pagination"
)

type adminCreateProductRequest struct {
	Title             string     `json:"title" validate:"required"`
	Category          string     `json:"category,omitempty"`
	ImageURL          string     `json:"image_url,omitempty"`
	Commission        string     `json:"commission,omitempty"`
	ShareLink         string     `json:"share_link,omitempty"`
	ProductURL        string     `json:"product_url,omitempty"`
	ContentDocURL     string     `json:"content_doc_url,omitempty"`
	AvailabilityStart *time.Time `json:"availability_start,omitempty"`
	AvailabilityEnd   *time.Time `json:"availability_end,omitempty"`
	IsActive          *bool      `json:"is_active,omitempty"`
}

type adminUpdateProductRequest struct {
	Title             *string    `json:"title,omitempty"`
	Category          *string    `json:"category,omitempty"`
	ImageURL          *string    `json:"image_url,omitempty"`
	Commission        *string    `json:"commission,omitempty"`
	ShareLink         *string    `json:"share_link,omitempty"`
	ProductURL        *string    `json:"product_url,omitempty"`
	ContentDocURL     *string    `json:"content_doc_url,omitempty"`
	AvailabilityStart *time.Time `json:"availability_start,omitempty"`
	AvailabilityEnd   *time.Time `json:"availability_end,omitempty"`
	ClearWindow       bool       `json:"clear_window,omitempty"`
	IsActive          *bool      `json:"is_active,omitempty"`
}

func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		includeHidden := strings.EqualFold(r.URL.Query().Get("include_hidden"), "true")

		result, err := svc.AdminList(r.Context(), productsvc.AdminListInput{
			IncludeHidden: includeHidden,
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

func AdminGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminCreateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminCreate(r.Context(), actorID, productsvc.CreateProductInput{
			Title:             payload.Title,
			Category:          payload.Category,
			ImageURL:          payload.ImageURL,
			Commission:        payload.Commission,
			ShareLink:         payload.ShareLink,
			ProductURL:        payload.ProductURL,
			ContentDocURL:     payload.ContentDocURL,
			AvailabilityStart: payload.AvailabilityStart,
			AvailabilityEnd:   payload.AvailabilityEnd,
			IsActive:          payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminUpdateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminUpdate(r.Context(), actorID, id, productsvc.UpdateProductInput{
			Title:             payload.Title,
			Category:          payload.Category,
			ImageURL:          payload.ImageURL,
			Commission:        payload.Commission,
			ShareLink:         payload.ShareLink,
			ProductURL:        payload.ProductURL,
			ContentDocURL:     payload.ContentDocURL,
			AvailabilityStart: payload.AvailabilityStart,
			AvailabilityEnd:   payload.AvailabilityEnd,
			ClearWindow:       payload.ClearWindow,
			IsActive:          payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AdminDelete(r.Context(), actorID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func AdminRestoreProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminRestore(r.Context(), actorID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminImportProducts accepts a CSV upload, either as a multipart "file"
// field or as the raw request body.
func AdminImportProducts(svc productsvc.Service, maxBodyBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		payload, err := csvPayload(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer payload.Close()

		result, err := svc.Import(r.Context(), actorID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func csvPayload(r *http.Request) (io.ReadCloser, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return r.Body, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file upload")
	}
	return file, nil
}
