package srv

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// apiError is an error with the status and client message it maps to.
type apiError struct {
	Status  int
	Message string
	Err     error
}

func (e *apiError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *apiError) Unwrap() error { return e.Err }

func newAPIError(status int, message string, err error) *apiError {
	return &apiError{Status: status, Message: message, Err: err}
}

func badRequest(message string) *apiError {
	return newAPIError(http.StatusBadRequest, message, nil)
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes err as a JSON error body. Anything that is not an apiError is
// reported as a generic 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		apiErr = newAPIError(http.StatusInternalServerError, "Server Error", err)
	}
	body := errorBody{Message: apiErr.Message}
	if apiErr.Status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "status", apiErr.Status, "error", apiErr.Err)
		if apiErr.Err != nil {
			body.Error = apiErr.Err.Error()
		}
	}
	writeJSON(w, apiErr.Status, body)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return newAPIError(http.StatusBadRequest, "Invalid request body", err)
	}
	return nil
}

// validate runs v's rules and turns the first failing field into a 400.
func validate(v validation.Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if fields[k] != nil {
				return badRequest(fields[k].Error())
			}
		}
	}
	return badRequest(err.Error())
}
