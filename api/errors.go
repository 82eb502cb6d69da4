package api

import (
	"fmt"
	"net/http"
)

func (s *APIServer) logError(r *http.Request, err error) {
	s.logger.Error(err.Error(),
		"request_id", contextGetRequestID(r),
		"request_method", r.Method,
		"request_url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	)
}

func (s *APIServer) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg any) {
	env := envelope{"error": msg}

	err := s.writeJSON(w, status, env, nil)

	if err != nil {
		s.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *APIServer) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.logError(r, err)

	message := "Internal server error"
	s.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (s *APIServer) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	s.errorResponse(w, r, http.StatusNotFound, message)
}

func (s *APIServer) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	s.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (s *APIServer) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (s *APIServer) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	s.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (s *APIServer) unknownFieldResponse(w http.ResponseWriter, r *http.Request, field string) {
	message := fmt.Sprintf("form has no field %q", field)
	s.errorResponse(w, r, http.StatusNotFound, message)
}

func (s *APIServer) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "too many requests"
	s.errorResponse(w, r, http.StatusTooManyRequests, message)
}
