package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatefold.io/internal/access"
	"gatefold.io/internal/product"
	"gatefold.io/internal/staff"
	"gatefold.io/internal/stream"
	"gatefold.io/internal/telemetry"
)

const (
	testOrgID     = "org-1"
	testMemberID  = "mem-1"
	testEmail     = "owner@example.com"
	testPassword  = "s3cret-pass"
	testProductID = "prod-1"
	testSlug      = "nitrile-gloves"
)

type testEnv struct {
	t       *testing.T
	srv     *httptest.Server
	api     *API
	staff   *staff.MemoryStore
	catalog *product.MemoryCatalog
	tokens  *access.MemoryStore
	events  *telemetry.MemoryStore
}

func newTestEnv(t *testing.T, configure ...func(*API)) *testEnv {
	t.Helper()
	t.Setenv("GATEFOLD_AUTH_SECRET", "0123456789abcdef0123456789abcdef")
	staff.ResetSecretForTests()

	staffStore := staff.NewMemoryStore()
	hash, err := staff.HashPassword(testPassword)
	require.NoError(t, err)
	staffStore.AddMember(staff.Member{
		ID:           testMemberID,
		OrgID:        testOrgID,
		Email:        testEmail,
		PasswordHash: hash,
		Status:       "active",
	})

	catalog := product.NewMemoryCatalog()
	catalog.Add(product.Product{
		ID:    testProductID,
		OrgID: testOrgID,
		Slug:  testSlug,
		Fields: map[string]any{
			"product_name":    "Nitrile Gloves",
			"cas_number":      "9006-04-6",
			"internal_margin": "38 percent",
			"chemical_specifications": map[string]any{
				"appearance": "blue powder-free",
				"purity":     "99.2%",
			},
		},
	})

	tokens := access.NewMemoryStore()
	events := telemetry.NewMemoryStore()
	staffSvc := staff.NewService(staffStore)

	api := New(
		ReadyProbe{},
		"test",
		access.NewService(tokens, tokens, catalog),
		access.NewResolver(tokens, staffSvc, nil),
		telemetry.NewService(events, catalog),
		staffSvc,
		catalog,
		stream.New(),
	)
	for _, fn := range configure {
		fn(api)
	}

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{
		t:       t,
		srv:     srv,
		api:     api,
		staff:   staffStore,
		catalog: catalog,
		tokens:  tokens,
		events:  events,
	}
}

func (e *testEnv) do(method, path, bearer string, body any) *http.Response {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(e.t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) login() string {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    testEmail,
		"password": testPassword,
	})
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	return decode[loginResponse](e.t, resp).Token
}

func (e *testEnv) issueToken(bearer, level string, expiresInDays int) issuedTokenResponse {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/v1/tokens", bearer, map[string]any{
		"product_id":      testProductID,
		"channel_id":      "wa-broadcast-1",
		"channel_name":    "WhatsApp Broadcast",
		"access_level":    level,
		"expires_in_days": expiresInDays,
	})
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)
	return decode[issuedTokenResponse](e.t, resp)
}

func secretFromShareURL(t *testing.T, share string) string {
	t.Helper()
	u, err := url.Parse(share)
	require.NoError(t, err)
	secret := u.Query().Get("token")
	require.NotEmpty(t, secret)
	return secret
}

func TestHealthAndInfo(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])

	resp = env.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(http.MethodGet, "/v1/info", "", nil)
	info := decode[map[string]string](t, resp)
	assert.Equal(t, "gatefold-api", info["service"])
	assert.Equal(t, "test", info["version"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    testEmail,
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestIssueTokenRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/v1/tokens", "", map[string]any{
		"product_id":   testProductID,
		"channel_id":   "ch-1",
		"access_level": "after_click",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(http.MethodPost, "/v1/tokens", "garbage-token", map[string]any{
		"product_id":   testProductID,
		"channel_id":   "ch-1",
		"access_level": "after_click",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestIssueTokenDeniedForForeignOrg(t *testing.T) {
	env := newTestEnv(t)
	hash, err := staff.HashPassword("other-pass")
	require.NoError(t, err)
	env.staff.AddMember(staff.Member{
		ID:           "mem-2",
		OrgID:        "org-2",
		Email:        "intruder@example.com",
		PasswordHash: hash,
		Status:       "active",
	})

	resp := env.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "intruder@example.com",
		"password": "other-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bearer := decode[loginResponse](t, resp).Token

	resp = env.do(http.MethodPost, "/v1/tokens", bearer, map[string]any{
		"product_id":   testProductID,
		"channel_id":   "ch-1",
		"access_level": "after_click",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestIssueTokenValidation(t *testing.T) {
	env := newTestEnv(t)
	bearer := env.login()

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing product", map[string]any{"channel_id": "c", "access_level": "after_click"}, http.StatusBadRequest},
		{"unknown product", map[string]any{"product_id": "nope", "channel_id": "c", "access_level": "after_click"}, http.StatusNotFound},
		{"public level", map[string]any{"product_id": testProductID, "channel_id": "c", "access_level": "public"}, http.StatusBadRequest},
		{"bogus level", map[string]any{"product_id": testProductID, "channel_id": "c", "access_level": "vip"}, http.StatusBadRequest},
		{"negative expiry", map[string]any{"product_id": testProductID, "channel_id": "c", "access_level": "after_click", "expires_in_days": -1}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(http.MethodPost, "/v1/tokens", bearer, tc.body)
			assert.Equal(t, tc.want, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestProductViewDefaultsToPublic(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/v1/products/"+testSlug, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)

	assert.Equal(t, "Nitrile Gloves", out["product_name"])

	locked, ok := out["cas_number"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, locked[access.MarkerLocked])
	assert.Equal(t, "after_click", locked[access.MarkerRequiredLevel])

	info, ok := out[accessInfoKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "public", info["level"])
	assert.Equal(t, "default", info["source"])
}

func TestProductViewWithToken(t *testing.T) {
	env := newTestEnv(t)
	bearer := env.login()
	issued := env.issueToken(bearer, "after_click", 7)
	secret := secretFromShareURL(t, issued.URL)

	resp := env.do(http.MethodGet, "/v1/products/"+testSlug+"?token="+url.QueryEscape(secret), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)

	assert.Equal(t, "9006-04-6", out["cas_number"])
	if _, stillLocked := out["internal_margin"].(map[string]any); !stillLocked {
		t.Fatalf("internal_margin should stay locked at after_click, got %v", out["internal_margin"])
	}

	info := out[accessInfoKey].(map[string]any)
	assert.Equal(t, "after_click", info["level"])
	assert.Equal(t, "token", info["source"])
	assert.Equal(t, issued.ID, info["token_id"])
	assert.Equal(t, "wa-broadcast-1", info["channel_id"])
}

func TestProductViewGarbageTokenFallsBackToPublic(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/v1/products/"+testSlug+"?token=not-a-real-secret", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)

	info := out[accessInfoKey].(map[string]any)
	assert.Equal(t, "public", info["level"])
	assert.Equal(t, "default", info["source"])
}

func TestProductViewMerchant(t *testing.T) {
	env := newTestEnv(t)
	bearer := env.login()

	resp := env.do(http.MethodGet, "/v1/products/"+testSlug+"?merchant=1", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)

	assert.Equal(t, "38 percent", out["internal_margin"])
	specs, ok := out["chemical_specifications"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "99.2%", specs["purity"])

	info := out[accessInfoKey].(map[string]any)
	assert.Equal(t, "after_rfq", info["level"])
	assert.Equal(t, "merchant", info["source"])
}

func TestProductViewMerchantFlagWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/v1/products/"+testSlug+"?merchant=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)

	info := out[accessInfoKey].(map[string]any)
	assert.Equal(t, "public", info["level"])
	assert.Equal(t, "default", info["source"])
}

func TestProductViewUnknownSlug(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/v1/products/no-such-product", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestTokenRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.tokens.AddRFQ(access.RFQRecord{
		ID:          "rfq-1",
		ProductID:   testProductID,
		Email:       "buyer@example.com",
		SubmittedAt: time.Now().Add(-24 * time.Hour),
	})

	resp := env.do(http.MethodPost, "/v1/tokens/refresh", "", map[string]string{
		"product_id": testProductID,
		"email":      "buyer@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	issued := decode[issuedTokenResponse](t, resp)
	assert.Equal(t, "after_rfq", issued.AccessLevel)
	assert.Equal(t, "rfq-rfq-1", issued.ChannelID)
	assert.Equal(t, 30, issued.ExpiresInDays)

	secret := secretFromShareURL(t, issued.URL)
	get := env.do(http.MethodGet, "/v1/products/"+testSlug+"?token="+url.QueryEscape(secret), "", nil)
	require.Equal(t, http.StatusOK, get.StatusCode)
	out := decode[map[string]any](t, get)
	assert.Equal(t, "38 percent", out["internal_margin"])
}

func TestTokenRefreshRejections(t *testing.T) {
	env := newTestEnv(t)
	env.tokens.AddRFQ(access.RFQRecord{
		ID:          "rfq-old",
		ProductID:   testProductID,
		Email:       "stale@example.com",
		SubmittedAt: time.Now().Add(-91 * 24 * time.Hour),
	})

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"stale proof", map[string]string{"product_id": testProductID, "email": "stale@example.com"}, http.StatusForbidden},
		{"no engagement", map[string]string{"product_id": testProductID, "email": "stranger@example.com"}, http.StatusNotFound},
		{"invalid email", map[string]string{"product_id": testProductID, "email": "not-an-email"}, http.StatusBadRequest},
		{"missing product", map[string]string{"email": "stale@example.com"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(http.MethodPost, "/v1/tokens/refresh", "", tc.body)
			assert.Equal(t, tc.want, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestRecordVisitAndAction(t *testing.T) {
	env := newTestEnv(t)

	visit := map[string]any{
		"product_id":    testProductID,
		"access_method": "url",
		"channel_id":    "wa-broadcast-1",
		"session_id":    "sess-1",
		"visitor_id":    "vis-1",
		"device_type":   "mobile",
	}
	resp := env.do(http.MethodPost, "/v1/access", "", visit)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[recordVisitResponse](t, resp)
	assert.True(t, first.IsUniqueVisit)
	assert.NotEmpty(t, first.AccessID)

	visit["session_id"] = "sess-2"
	resp = env.do(http.MethodPost, "/v1/access", "", visit)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[recordVisitResponse](t, resp)
	assert.False(t, second.IsUniqueVisit)

	resp = env.do(http.MethodPost, "/v1/actions", "", map[string]any{
		"access_id":     first.AccessID,
		"product_id":    testProductID,
		"action_type":   "document_download",
		"action_target": "coa.pdf",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	action := decode[recordActionResponse](t, resp)
	assert.NotEmpty(t, action.ID)
	assert.Equal(t, 1, env.events.ActionCount())
}

func TestRecordVisitValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing product", map[string]any{"access_method": "url", "session_id": "s"}, http.StatusBadRequest},
		{"unknown product", map[string]any{"product_id": "nope", "access_method": "url", "session_id": "s"}, http.StatusNotFound},
		{"bogus method", map[string]any{"product_id": testProductID, "access_method": "carrier_pigeon", "session_id": "s"}, http.StatusBadRequest},
		{"missing session", map[string]any{"product_id": testProductID, "access_method": "qr_code"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(http.MethodPost, "/v1/access", "", tc.body)
			assert.Equal(t, tc.want, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestRecordActionRejections(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/v1/actions", "", map[string]any{
		"access_id":   "missing-parent",
		"product_id":  testProductID,
		"action_type": "page_view",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(http.MethodPost, "/v1/actions", "", map[string]any{
		"access_id":   "whatever",
		"product_id":  testProductID,
		"action_type": "teleport",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 0, env.events.ActionCount())
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/v1/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(http.MethodDelete, "/v1/tokens", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
	resp.Body.Close()
}

func TestServerRateLimitApplies(t *testing.T) {
	env := newTestEnv(t, func(a *API) { a.SetRateLimit(1, 1) })

	resp := env.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()
}

func TestStreamRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/v1/stream/engagement", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRejectsUnknownBodyFields(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/v1/tokens/refresh", "", map[string]string{
		"product_id": testProductID,
		"email":      "buyer@example.com",
		"extra":      "nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
