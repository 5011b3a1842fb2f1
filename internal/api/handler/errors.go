package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/morpion/internal/api/apierr"
	"github.com/mcoot/morpion/internal/model"
)

// maxBodyBytes bounds the JSON bodies accepted by the account endpoints
const maxBodyBytes = 64 << 10

// WriteError writes err as the API's JSON error envelope
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an INVALID_REQUEST error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an UNAUTHORIZED error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

type validatable interface {
	Validate() string
}

// decodeRequest reads a JSON body into req and validates it. On failure the
// error response has already been written and false is returned.
func decodeRequest(w http.ResponseWriter, r *http.Request, req validatable) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return false
	}
	if msg := req.Validate(); msg != "" {
		WriteError(w, NewInvalidRequestError(msg))
		return false
	}
	return true
}

// userIDFromPath parses the {id} route variable
func userIDFromPath(w http.ResponseWriter, r *http.Request) (model.UserID, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, NewInvalidRequestError("invalid user id"))
		return 0, false
	}
	return model.UserID(id), true
}
