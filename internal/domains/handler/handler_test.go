package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"qrius/internal/cache"
	"qrius/internal/domains/handler"
	"qrius/internal/domains/models"
	"qrius/internal/domains/service"
	"qrius/internal/domains/store"
	"qrius/internal/orgs"
	orgmodels "qrius/internal/orgs/models"
	orgstore "qrius/internal/orgs/store"
	"qrius/internal/platform/middleware"
)

type env struct {
	router   chi.Router
	domains  *store.InMemory
	cache    *cache.InMemory
	orgStore *orgstore.InMemory
	ownerID  string
	memberID string
	orgID    uuid.UUID
}

// newEnv wires the handler against in-memory stores with the provider
// unconfigured, so custom domains auto-verify and subdomain issuance works
// without any network dependency.
func newEnv(t *testing.T, plan orgmodels.Plan) *env {
	t.Helper()

	e := &env{
		domains:  store.NewInMemory(),
		cache:    cache.NewInMemory(),
		orgStore: orgstore.NewInMemory(),
		ownerID:  "user-owner",
		memberID: "user-member",
		orgID:    uuid.New(),
	}
	e.orgStore.SeedOrganization(orgmodels.Organization{ID: e.orgID, Name: "Acme", Plan: plan})
	e.orgStore.SeedMembership(orgmodels.Membership{UserID: e.ownerID, OrganizationID: e.orgID, Role: orgmodels.RoleOwner})
	e.orgStore.SeedMembership(orgmodels.Membership{UserID: e.memberID, OrganizationID: e.orgID, Role: orgmodels.RoleMember})

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	orgSvc := orgs.New(e.orgStore, logger)
	domainSvc := service.New(e.domains, orgSvc, e.cache, nil, "qrius.app", false,
		service.WithLogger(logger),
	)

	e.router = chi.NewRouter()
	handler.New(domainSvc, orgSvc, logger).Register(e.router)
	return e
}

func (e *env) do(t *testing.T, userID, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = req.WithContext(middleware.WithIdentity(req.Context(), userID, userID+"@example.com"))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleGet(t *testing.T) {
	t.Run("no domain configured returns an explicit null", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)

		rec := e.do(t, e.ownerID, http.MethodGet, "/domains", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Contains(t, body, "domain")
		require.Nil(t, body["domain"])
	})

	t.Run("members may read the configured domain", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)
		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"type":"subdomain","subdomain":"acme"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = e.do(t, e.memberID, http.MethodGet, "/domains", "")
		require.Equal(t, http.StatusOK, rec.Code)
		domain := decode(t, rec)["domain"].(map[string]any)
		require.Equal(t, "acme.qrius.app", domain["domain"])
	})

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)

		rec := e.do(t, "", http.MethodGet, "/domains", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleCreate(t *testing.T) {
	t.Run("subdomain creation returns 201 with a verified record", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)

		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"type":"subdomain","subdomain":"acme"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decode(t, rec)
		domain := body["domain"].(map[string]any)
		require.Equal(t, "acme.qrius.app", domain["domain"])
		require.Equal(t, string(models.StatusVerified), domain["status"])
		require.NotContains(t, body, "instructions")
	})

	t.Run("custom creation returns CNAME instructions", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanBusiness)

		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"domain":"track.acme.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decode(t, rec)
		instructions := body["instructions"].(map[string]any)
		require.Equal(t, "CNAME", instructions["type"])
		require.Equal(t, "track", instructions["host"])
	})

	t.Run("plan gate returns 403 with the required plan hint", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)

		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"domain":"track.acme.com"}`)
		require.Equal(t, http.StatusForbidden, rec.Code)

		body := decode(t, rec)
		require.Equal(t, "Custom domains require a Business plan", body["error"])
		require.Equal(t, "business", body["requiredPlan"])
	})

	t.Run("members may not create domains", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanBusiness)

		rec := e.do(t, e.memberID, http.MethodPost, "/domains", `{"domain":"track.acme.com"}`)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("second domain conflicts", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)

		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"type":"subdomain","subdomain":"acme"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		rec = e.do(t, e.ownerID, http.MethodPost, "/domains", `{"type":"subdomain","subdomain":"other"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)

		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown type is a 400", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)

		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"type":"apex","domain":"acme.com"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleVerify(t *testing.T) {
	t.Run("verify without a domain is a 404", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanBusiness)

		rec := e.do(t, e.ownerID, http.MethodPost, "/domains?action=verify", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("pending custom domain auto-verifies when the provider is unconfigured", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanBusiness)
		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"domain":"track.acme.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = e.do(t, e.ownerID, http.MethodPost, "/domains?action=verify", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		domain := body["domain"].(map[string]any)
		require.Equal(t, string(models.StatusVerified), domain["status"])
		require.NotContains(t, body, "alreadyVerified")

		rec = e.do(t, e.ownerID, http.MethodPost, "/domains?action=verify", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, true, decode(t, rec)["alreadyVerified"])
	})
}

func TestHandleDelete(t *testing.T) {
	t.Run("delete removes the row and resolves to success", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)
		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"type":"subdomain","subdomain":"acme"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		// Creation populates the cache from a detached goroutine; wait for it
		// so the delete below observably invalidates it.
		require.Eventually(t, func() bool {
			_, err := e.cache.GetDomain(context.Background(), "acme.qrius.app")
			return err == nil
		}, 2*time.Second, 5*time.Millisecond)

		rec = e.do(t, e.ownerID, http.MethodDelete, "/domains", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, true, decode(t, rec)["success"])

		_, err := e.cache.GetDomain(context.Background(), "acme.qrius.app")
		require.ErrorIs(t, err, cache.ErrMiss)

		rec = e.do(t, e.ownerID, http.MethodGet, "/domains", "")
		require.Nil(t, decode(t, rec)["domain"])
	})

	t.Run("delete without a domain is a 404", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)

		rec := e.do(t, e.ownerID, http.MethodDelete, "/domains", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("members may not delete", func(t *testing.T) {
		e := newEnv(t, orgmodels.PlanFree)
		rec := e.do(t, e.ownerID, http.MethodPost, "/domains", `{"type":"subdomain","subdomain":"acme"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = e.do(t, e.memberID, http.MethodDelete, "/domains", "")
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
