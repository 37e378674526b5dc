package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/models"
	"xportconnect/utils"
)

var rs = utils.Responder{}

func echoCaller(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFrom(r.Context())
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(string(caller.Role)))
}

func tokenFor(t *testing.T, issuer *utils.TokenIssuer, role models.Role) string {
	t.Helper()
	tok, err := issuer.GenerateJWT(models.User{ID: primitive.NewObjectID(), Email: "x@example.com", Role: role})
	require.NoError(t, err)
	return tok
}

func TestAuthenticate(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	h := Authenticate(issuer, rs)(http.HandlerFunc(echoCaller))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "authorization header missing"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
		{"foreign signature", "Bearer " + tokenFor(t, utils.NewTokenIssuer("other", time.Hour), models.RoleBuyer), http.StatusUnauthorized, ""},
		{"valid", "Bearer " + tokenFor(t, issuer, models.RoleShipper), http.StatusOK, "shipper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	h := OptionalAuthenticate(issuer, rs)(http.HandlerFunc(echoCaller))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, issuer, models.RoleExporter))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "exporter", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorize(t *testing.T) {
	h := Authorize(rs, models.RoleExporter, models.RoleShipper)(http.HandlerFunc(echoCaller))

	serve := func(ctx context.Context) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, serve(context.Background()).Code)

	rec := serve(WithCaller(context.Background(), models.Caller{Role: models.RoleBuyer}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var env utils.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "access denied for role buyer", env.Message)

	rec = serve(WithCaller(context.Background(), models.Caller{Role: models.RoleShipper}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var seen string
	h := RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/buyer", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http request", line["msg"])
	assert.Equal(t, seen, line["request_id"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.Equal(t, "/orders/buyer", line["path"])

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "client-supplied", seen)
}

func TestMetricsInstrumentUsesRouteTemplate(t *testing.T) {
	m := NewMetrics()
	r := mux.NewRouter()
	r.Use(m.Instrument)
	r.HandleFunc("/orders/{orderId}/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPatch)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/orders/"+id+"/status", nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPatch, "/orders/{orderId}/status", "204"))
	assert.Equal(t, 3.0, got)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "xportconnect_http_requests_total"))
}
