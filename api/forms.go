package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/thisisjab/signup-go/internal/data"
	"github.com/thisisjab/signup-go/internal/filter"
	"github.com/thisisjab/signup-go/internal/form"
	"github.com/thisisjab/signup-go/internal/validator"
)

const notifyTimeout = 30 * time.Second

// formResponse is the wire view of a form session. Errors only lists fields
// that have been validated at least once.
type formResponse struct {
	ID        uuid.UUID       `json:"id"`
	Values    form.FormState  `json:"values"`
	Errors    form.ErrorState `json:"errors"`
	Valid     bool            `json:"valid"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newFormResponse(session *data.FormSession) formResponse {
	return formResponse{
		ID:        session.ID,
		Values:    session.Form.Values(),
		Errors:    session.Form.Errors(),
		Valid:     session.Form.Valid(),
		Version:   session.Version,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

// readFormID reads the :id parameter and answers 404 itself when it is not a uuid.
func (s *APIServer) readFormID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	v := validator.New()

	id := s.readUUIDParam("id", r, v)
	if !v.Valid() {
		s.notFoundResponse(w, r)
		return uuid.Nil, false
	}

	return id, true
}

func (s *APIServer) handleFormPOST(w http.ResponseWriter, r *http.Request) {
	session, err := s.models.Form.Insert(r.Context())
	if err != nil {
		s.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/api/v1/forms/"+session.ID.String())

	if err := s.writeJSON(w, http.StatusCreated, envelope{"form": newFormResponse(session)}, headers); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *APIServer) handleFormsGET(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()

	filters := filter.Filters{
		Page:         s.readIntQuery(qs, "page", 1, v),
		PageSize:     s.readIntQuery(qs, "page_size", 20, v),
		Sort:         s.readStringQuery(qs, "sort", "created_at"),
		SortSafeList: data.FormSortSafeList,
	}

	if filter.ValidateFilters(v, filters); !v.Valid() {
		s.failedValidationResponse(w, r, v.Errors())
		return
	}

	forms, metadata, err := s.models.Form.List(r.Context(), filters)
	if err != nil {
		switch {
		case errors.Is(err, filter.ErrInvalidPage):
			v.AddError("page", "out of range")
			s.failedValidationResponse(w, r, v.Errors())
		default:
			s.serverErrorResponse(w, r, err)
		}
		return
	}

	if err := s.writeJSON(w, http.StatusOK, envelope{"forms": forms, "metadata": metadata}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *APIServer) handleFormGET(w http.ResponseWriter, r *http.Request) {
	id, ok := s.readFormID(w, r)
	if !ok {
		return
	}

	session, err := s.models.Form.Get(r.Context(), id)
	if err != nil {
		s.formLookupError(w, r, err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, envelope{"form": newFormResponse(session)}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *APIServer) handleFormDELETE(w http.ResponseWriter, r *http.Request) {
	id, ok := s.readFormID(w, r)
	if !ok {
		return
	}

	if err := s.models.Form.Delete(r.Context(), id); err != nil {
		s.formLookupError(w, r, err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, envelope{"message": "form successfully deleted"}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *APIServer) handleFormFieldPUT(w http.ResponseWriter, r *http.Request) {
	id, ok := s.readFormID(w, r)
	if !ok {
		return
	}

	rawField := s.readParam("field", r)
	field, err := form.ParseFieldName(rawField)
	if err != nil {
		s.unknownFieldResponse(w, r, rawField)
		return
	}

	var input struct {
		Value *string `json:"value"`
	}

	if err := s.readJSON(w, r, &input); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if v.Check(input.Value != nil, "value", "must be provided"); !v.Valid() {
		s.failedValidationResponse(w, r, v.Errors())
		return
	}

	session, err := s.models.Form.Update(r.Context(), id, func(f form.Form) (form.Form, error) {
		return f.SetField(field, *input.Value)
	})
	if err != nil {
		s.formLookupError(w, r, err)
		return
	}

	if err := s.writeJSON(w, http.StatusOK, envelope{"form": newFormResponse(session)}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

func (s *APIServer) handleFormSubmitPOST(w http.ResponseWriter, r *http.Request) {
	id, ok := s.readFormID(w, r)
	if !ok {
		return
	}

	session, err := s.models.Form.Get(r.Context(), id)
	if err != nil {
		s.formLookupError(w, r, err)
		return
	}

	outcome := session.Form.Submit()
	s.notify(r, session.ID, outcome)

	status := http.StatusOK
	if !outcome.IsAccepted() {
		status = http.StatusUnprocessableEntity
	}

	if err := s.writeJSON(w, status, envelope{"outcome": outcome}, nil); err != nil {
		s.serverErrorResponse(w, r, err)
	}
}

// notify hands the outcome to the configured notifier without holding up the response.
func (s *APIServer) notify(r *http.Request, id uuid.UUID, outcome form.Outcome) {
	if s.notifier == nil {
		return
	}

	requestID := contextGetRequestID(r)

	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, id, outcome); err != nil {
			s.logger.Error("failed to deliver submission outcome",
				"request_id", requestID,
				"form_id", id,
				"status", outcome.Status,
				"error", err,
			)
		}
	})
}

func (s *APIServer) formLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, data.ErrNoRecordFound):
		s.notFoundResponse(w, r)
	case errors.Is(err, form.ErrInvalidFieldName):
		s.unknownFieldResponse(w, r, s.readParam("field", r))
	default:
		s.serverErrorResponse(w, r, err)
	}
}
