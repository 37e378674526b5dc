package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/models"
)

var trackingPattern = regexp.MustCompile(`^[0-9A-Z]{4}[0-9A-F]{4}$`)

func TestGenerateTrackingNumber(t *testing.T) {
	id := primitive.NewObjectID()
	tn, err := GenerateTrackingNumber(id)
	require.NoError(t, err)
	assert.Regexp(t, trackingPattern, tn)
	assert.Equal(t, strings.ToUpper(id.Hex()[:4]), tn[:4])
}

func TestNextTrackingNumber_DiffersFromPrevious(t *testing.T) {
	id := primitive.NewObjectID()
	prev, err := GenerateTrackingNumber(id)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		next, err := NextTrackingNumber(id, prev)
		require.NoError(t, err)
		assert.NotEqual(t, prev, next)
		assert.Regexp(t, trackingPattern, next)
		prev = next
	}
}

func TestOrderTotal(t *testing.T) {
	assert.Equal(t, 20.0, OrderTotal([]LineTotal{{UnitPrice: 10, Quantity: 2}}))
	assert.Equal(t, 0.3, OrderTotal([]LineTotal{{UnitPrice: 0.1, Quantity: 1}, {UnitPrice: 0.2, Quantity: 1}}))
	assert.Equal(t, 0.0, OrderTotal(nil))
	assert.Equal(t, 33.33, OrderTotal([]LineTotal{{UnitPrice: 11.111, Quantity: 3}}))
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: bad", ErrValidation): http.StatusBadRequest,
		fmt.Errorf("order %w", ErrNotFound):  http.StatusNotFound,
		fmt.Errorf("x: %w", ErrForbidden):    http.StatusForbidden,
		ErrUnauthorized:                      http.StatusUnauthorized,
		ErrConflict:                          http.StatusConflict,
		ErrInsufficientStock:                 http.StatusConflict,
		ErrUnavailable:                       http.StatusServiceUnavailable,
		errors.New("socket closed"):          http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestResponder_Error(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders/buyer", nil)

	w := httptest.NewRecorder()
	Responder{Debug: false}.Error(w, r, errors.New("mongo: connection refused"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "internal server error", env.Message)
	assert.Empty(t, env.Error)

	w = httptest.NewRecorder()
	Responder{Debug: true}.Error(w, r, errors.New("mongo: connection refused"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "mongo: connection refused", env.Error)

	w = httptest.NewRecorder()
	Responder{}.Error(w, r, fmt.Errorf("order %w", ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "order not found", env.Message)
}

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"oneof=buyer exporter"`
	Qty   int    `json:"quantity" validate:"gt=0"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(signup{Email: "a@b.co", Role: "buyer", Qty: 1}))

	err := Validate(signup{Role: "admin"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "role must be one of [buyer exporter]")
	assert.Contains(t, err.Error(), "quantity must be greater than 0")
}

type contact struct {
	Phone string `json:"contactNumber" validate:"omitempty,phone"`
}

func TestValidate_Phone(t *testing.T) {
	assert.NotPanics(t, func() { newValidator() })
	require.NoError(t, Validate(contact{Phone: "+2348015550101"}))
	require.NoError(t, Validate(contact{}))

	err := Validate(contact{Phone: "call me"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "contactNumber must be 9 to 15 digits, '-' or '+'", err.Error())
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)
	u := models.User{ID: primitive.NewObjectID(), Email: "ex@example.com", Role: models.RoleExporter}

	tok, err := ti.GenerateJWT(u)
	require.NoError(t, err)

	caller, err := ti.ParseJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, caller.ID)
	assert.Equal(t, models.RoleExporter, caller.Role)
	assert.Equal(t, "ex@example.com", caller.Email)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	u := models.User{ID: primitive.NewObjectID(), Email: "b@example.com", Role: models.RoleBuyer}

	other := NewTokenIssuer("other-secret", time.Hour)
	tok, err := other.GenerateJWT(u)
	require.NoError(t, err)
	_, err = NewTokenIssuer("test-secret", time.Hour).ParseJWT(tok)
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired := NewTokenIssuer("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err = expired.GenerateJWT(u)
	require.NoError(t, err)
	_, err = NewTokenIssuer("test-secret", time.Hour).ParseJWT(tok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	_, err = NewTokenIssuer("test-secret", time.Hour).ParseJWT("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestChatService_Ask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m1", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "how do I list a product?", req.Messages[1].Content)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Open the Products page."}}]}`))
	}))
	defer srv.Close()

	cs := NewChatService("k", srv.URL+"/", "m1")
	reply, err := cs.Ask(context.Background(), "how do I list a product?")
	require.NoError(t, err)
	assert.Equal(t, "Open the Products page.", reply)
}

func TestChatService_Errors(t *testing.T) {
	_, err := NewChatService("", "http://unused", "m").Ask(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrUnavailable)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	_, err = NewChatService("k", srv.URL, "m").Ask(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
