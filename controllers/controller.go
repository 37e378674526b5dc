package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/middleware"
	"xportconnect/models"
	"xportconnect/utils"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// base carries what every controller needs to answer a request.
type base struct {
	rs      utils.Responder
	timeout time.Duration
}

// withTimeout bounds store calls made on behalf of r.
func (b base) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), b.timeout)
}

// caller returns the authenticated caller or writes a 401.
func (b base) caller(w http.ResponseWriter, r *http.Request) (models.Caller, bool) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		b.rs.Error(w, r, utils.NewError(utils.ErrUnauthorized, "authentication required"))
	}
	return caller, ok
}

// decode reads a JSON body into dst, rejecting oversized or malformed input.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return utils.NewError(utils.ErrValidation, "request body too large")
		case errors.Is(err, io.EOF):
			return utils.NewError(utils.ErrValidation, "request body is empty")
		default:
			return utils.NewError(utils.ErrValidation, "invalid request body")
		}
	}
	return nil
}

// pathID parses the named mux variable as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, utils.NewError(utils.ErrValidation, "invalid %s", name)
	}
	return id, nil
}
