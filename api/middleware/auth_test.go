package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/auth"
	"github.com/angelmondragon/tienda-backend/pkg/config"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	"github.com/angelmondragon/tienda-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "tienda", ExpirationMinutes: 60, CookieName: "authToken"}

func mintTestToken(t *testing.T, userID uint64, role enums.UserRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type identity struct {
	user uint64
	role enums.UserRole
}

func captureIdentity(out *identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out.user = UserIDFromContext(r.Context())
		out.role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingOrInvalidToken(t *testing.T) {
	handler := Auth(testJWT, nil)(captureIdentity(&identity{}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	var got identity
	handler := Auth(testJWT, nil)(captureIdentity(&got))

	req := httptest.NewRequest(http.MethodPost, "/envio/actualizar", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, 21, enums.UserRoleCourier))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.user != 21 || got.role != enums.UserRoleCourier {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestAuthAcceptsSessionCookie(t *testing.T) {
	var got identity
	handler := Auth(testJWT, nil)(captureIdentity(&got))

	req := httptest.NewRequest(http.MethodPost, "/comprar", nil)
	req.AddCookie(&http.Cookie{Name: "authToken", Value: mintTestToken(t, 7, enums.UserRoleCustomer)})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.user != 7 || got.role != enums.UserRoleCustomer {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles(nil, enums.UserRoleEmployee, enums.UserRoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[enums.UserRole]int{
		enums.UserRoleAdmin:    http.StatusNoContent,
		enums.UserRoleEmployee: http.StatusNoContent,
		enums.UserRoleCustomer: http.StatusForbidden,
		"":                     http.StatusForbidden,
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ventas/historial-todos", nil)
		req = req.WithContext(WithIdentity(req.Context(), 1, role))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("role %q: expected %d got %d", role, want, resp.Code)
		}
	}
}

func TestLoggingRecordsStatusAndRequestID(t *testing.T) {
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)

	handler := RequestID(nil)(Logging(nil, httpMetrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a minted request id")
	}
	if n := testutil.CollectAndCount(reg, "http_requests_total"); n != 1 {
		t.Fatalf("expected one request series, got %d", n)
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
