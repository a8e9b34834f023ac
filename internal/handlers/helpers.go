package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/finlearn/internal/interfaces"
)

var validate = newValidator()

var userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// user ids are client-generated opaque identifiers
	_ = v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return userIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteStorageError maps storage sentinel errors to their HTTP status.
func WriteStorageError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, interfaces.ErrAlreadyExists):
		return WriteError(w, http.StatusConflict, "already exists")
	default:
		return WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// RequireUserID extracts and validates the user_id query parameter.
// Returns the id and true, or writes a 400 and returns false.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if err := validate.Var(userID, "required,min=3,max=64,userid"); err != nil {
		WriteError(w, http.StatusBadRequest, "user_id must be 3-64 characters of letters, digits, underscore or hyphen")
		return "", false
	}
	return userID, true
}

// QueryBool reads a boolean query parameter, treating "1", "t", "true"
// (any case) as true and everything else as false.
func QueryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// QueryInt reads an integer query parameter with a fallback.
func QueryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return v
}

// DecodeBody decodes a JSON request body into dst and validates it.
// Writes a 400 and returns false on malformed or invalid input.
func DecodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}
