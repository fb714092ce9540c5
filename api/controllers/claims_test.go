package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/api/middleware"
	claimsvc "github.com/orlie/affiliatehub-backend/internal/claims"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
	"github.com/orlie/affiliatehub-backend/pkg/logger"
)

type stubClaimService struct {
	create    func(ctx context.Context, affiliateID, productID uuid.UUID) (*claimsvc.ClaimDTO, error)
	submit    func(ctx context.Context, affiliateID, claimID uuid.UUID, videoLink, adCode string) (*claimsvc.ClaimDTO, error)
	shareQR   func(ctx context.Context, requesterID uuid.UUID, requesterRole enums.UserRole, claimID uuid.UUID) ([]byte, error)
	bulkSet   func(ctx context.Context, actorID uuid.UUID, claimIDs []uuid.UUID, status string) ([]claimsvc.ClaimDTO, error)
	setStatus func(ctx context.Context, actorID, claimID uuid.UUID, status string) (*claimsvc.ClaimDTO, error)
}

func (s *stubClaimService) Create(ctx context.Context, affiliateID, productID uuid.UUID) (*claimsvc.ClaimDTO, error) {
	if s.create != nil {
		return s.create(ctx, affiliateID, productID)
	}
	panic("unimplemented")
}

func (s *stubClaimService) Eligibility(ctx context.Context, affiliateID, productID uuid.UUID) (*claimsvc.EligibilityDTO, error) {
	panic("unimplemented")
}

func (s *stubClaimService) ListMine(ctx context.Context, affiliateID uuid.UUID) ([]claimsvc.ClaimDTO, error) {
	panic("unimplemented")
}

func (s *stubClaimService) SubmitContent(ctx context.Context, affiliateID, claimID uuid.UUID, videoLink, adCode string) (*claimsvc.ClaimDTO, error) {
	if s.submit != nil {
		return s.submit(ctx, affiliateID, claimID, videoLink, adCode)
	}
	panic("unimplemented")
}

func (s *stubClaimService) ShareQR(ctx context.Context, requesterID uuid.UUID, requesterRole enums.UserRole, claimID uuid.UUID) ([]byte, error) {
	if s.shareQR != nil {
		return s.shareQR(ctx, requesterID, requesterRole, claimID)
	}
	panic("unimplemented")
}

func (s *stubClaimService) AdminList(ctx context.Context, input claimsvc.AdminListInput) (*claimsvc.ClaimListResult, error) {
	panic("unimplemented")
}

func (s *stubClaimService) AdminSetStatus(ctx context.Context, actorID, claimID uuid.UUID, status string) (*claimsvc.ClaimDTO, error) {
	if s.setStatus != nil {
		return s.setStatus(ctx, actorID, claimID, status)
	}
	panic("unimplemented")
}

func (s *stubClaimService) AdminBulkSetStatus(ctx context.Context, actorID uuid.UUID, claimIDs []uuid.UUID, status string) ([]claimsvc.ClaimDTO, error) {
	if s.bulkSet != nil {
		return s.bulkSet(ctx, actorID, claimIDs, status)
	}
	panic("unimplemented")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func claimRequest(method, target string, body string, userID uuid.UUID, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func TestCreateClaim(t *testing.T) {
	logg := testLogger()
	affiliateID := uuid.New()
	productID := uuid.New()

	t.Run("missing user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/claims", nil)
		rec := httptest.NewRecorder()
		CreateClaim(&stubClaimService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when user missing, got %d", rec.Code)
		}
	})

	t.Run("invalid product id", func(t *testing.T) {
		req := claimRequest(http.MethodPost, "/api/v1/products/nope/claims", "", affiliateID, map[string]string{"productID": "nope"})
		rec := httptest.NewRecorder()
		CreateClaim(&stubClaimService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		var gotAffiliate, gotProduct uuid.UUID
		stub := &stubClaimService{
			create: func(ctx context.Context, affiliate, product uuid.UUID) (*claimsvc.ClaimDTO, error) {
				gotAffiliate, gotProduct = affiliate, product
				return &claimsvc.ClaimDTO{ID: uuid.New()}, nil
			},
		}
		req := claimRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/claims", "", affiliateID, map[string]string{"productID": productID.String()})
		rec := httptest.NewRecorder()
		CreateClaim(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if gotAffiliate != affiliateID || gotProduct != productID {
			t.Fatal("service received wrong identifiers")
		}
	})

	t.Run("policy denial surfaces as 422", func(t *testing.T) {
		stub := &stubClaimService{
			create: func(ctx context.Context, affiliate, product uuid.UUID) (*claimsvc.ClaimDTO, error) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available").
					WithDetails(map[string]any{"reason": "unavailable"})
			},
		}
		req := claimRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/claims", "", affiliateID, map[string]string{"productID": productID.String()})
		rec := httptest.NewRecorder()
		CreateClaim(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for denial, got %d", rec.Code)
		}
	})
}

func TestSubmitContentValidatesPayload(t *testing.T) {
	logg := testLogger()
	affiliateID := uuid.New()
	claimID := uuid.New()

	req := claimRequest(http.MethodPost, "/api/v1/claims/"+claimID.String()+"/content", `{"video_link":""}`, affiliateID, map[string]string{"claimID": claimID.String()})
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	SubmitContent(&stubClaimService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty payload, got %d", rec.Code)
	}
}

func TestSubmitContentPassesFields(t *testing.T) {
	logg := testLogger()
	affiliateID := uuid.New()
	claimID := uuid.New()

	var gotLink, gotCode string
	stub := &stubClaimService{
		submit: func(ctx context.Context, affiliate, claim uuid.UUID, videoLink, adCode string) (*claimsvc.ClaimDTO, error) {
			gotLink, gotCode = videoLink, adCode
			return &claimsvc.ClaimDTO{ID: claim}, nil
		},
	}
	body := `{"video_link":"https://tiktok.com/@x/video/1","ad_code":"AD-42"}`
	req := claimRequest(http.MethodPost, "/api/v1/claims/"+claimID.String()+"/content", body, affiliateID, map[string]string{"claimID": claimID.String()})
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	SubmitContent(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLink != "https://tiktok.com/@x/video/1" || gotCode != "AD-42" {
		t.Fatalf("service received %q %q", gotLink, gotCode)
	}
}

func TestClaimQRStreamsPNG(t *testing.T) {
	logg := testLogger()
	requesterID := uuid.New()
	claimID := uuid.New()

	stub := &stubClaimService{
		shareQR: func(ctx context.Context, requester uuid.UUID, role enums.UserRole, claim uuid.UUID) ([]byte, error) {
			if role != enums.UserRoleAffiliate {
				t.Fatalf("unexpected role %s", role)
			}
			return []byte{0x89, 0x50}, nil
		},
	}
	req := claimRequest(http.MethodGet, "/api/v1/claims/"+claimID.String()+"/qr", "", requesterID, map[string]string{"claimID": claimID.String()})
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.UserRoleAffiliate)))
	rec := httptest.NewRecorder()
	ClaimQR(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type %s", ct)
	}
}

func TestAdminBulkSetClaimStatus(t *testing.T) {
	logg := testLogger()
	actorID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	t.Run("rejects malformed ids", func(t *testing.T) {
		body := `{"claim_ids":["not-a-uuid"],"status":"approved"}`
		req := claimRequest(http.MethodPost, "/api/admin/v1/claims/bulk-status", body, actorID, nil)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminBulkSetClaimStatus(&stubClaimService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
		}
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		body := `{"claim_ids":[],"status":"approved"}`
		req := claimRequest(http.MethodPost, "/api/admin/v1/claims/bulk-status", body, actorID, nil)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminBulkSetClaimStatus(&stubClaimService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty batch, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		var gotIDs []uuid.UUID
		var gotStatus string
		stub := &stubClaimService{
			bulkSet: func(ctx context.Context, actor uuid.UUID, claimIDs []uuid.UUID, status string) ([]claimsvc.ClaimDTO, error) {
				gotIDs, gotStatus = claimIDs, status
				return []claimsvc.ClaimDTO{{ID: first}, {ID: second}}, nil
			},
		}
		body := `{"claim_ids":["` + first.String() + `","` + second.String() + `"],"status":"approved"}`
		req := claimRequest(http.MethodPost, "/api/admin/v1/claims/bulk-status", body, actorID, nil)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminBulkSetClaimStatus(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(gotIDs) != 2 || gotIDs[0] != first || gotIDs[1] != second {
			t.Fatalf("service received ids %v", gotIDs)
		}
		if gotStatus != "approved" {
			t.Fatalf("service received status %q", gotStatus)
		}
	})
}
