package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thisisjab/signup-go/internal/data"
	"github.com/thisisjab/signup-go/internal/form"
)

type recordingNotifier struct {
	mu       sync.Mutex
	outcomes []form.Outcome
}

func (n *recordingNotifier) Notify(ctx context.Context, formID uuid.UUID, outcome form.Outcome) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, outcome)
	return nil
}

type testServer struct {
	*APIServer
	handler  http.Handler
	notifier *recordingNotifier
}

func newTestServer(t *testing.T, opts ...form.Option) *testServer {
	t.Helper()

	cfg := &Config{Environment: "testing", Version: "test"}
	cfg.Cors.TrustedOrigins = []string{"https://signup.example.com"}
	cfg.Cors.AllowedMethods = "GET, POST, PUT, DELETE"
	cfg.Cors.AllowedHeaders = "Content-Type"

	notifier := &recordingNotifier{}
	s := NewServer(cfg, data.NewModels(0, opts...), notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &testServer{APIServer: s, handler: s.routes(), notifier: notifier}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (int, map[string]json.RawMessage, http.Header) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env map[string]json.RawMessage
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec.Code, env, rec.Header()
}

func decodeForm(t *testing.T, env map[string]json.RawMessage) formResponse {
	t.Helper()

	var resp formResponse
	require.NoError(t, json.Unmarshal(env["form"], &resp))
	return resp
}

func (ts *testServer) createForm(t *testing.T) uuid.UUID {
	t.Helper()

	code, env, headers := ts.do(t, http.MethodPost, "/api/v1/forms", "")
	require.Equal(t, http.StatusCreated, code)

	resp := decodeForm(t, env)
	assert.Equal(t, "/api/v1/forms/"+resp.ID.String(), headers.Get("Location"))
	return resp.ID
}

func (ts *testServer) setField(t *testing.T, id uuid.UUID, field, value string) formResponse {
	t.Helper()

	body, err := json.Marshal(map[string]string{"value": value})
	require.NoError(t, err)

	code, env, _ := ts.do(t, http.MethodPut, "/api/v1/forms/"+id.String()+"/fields/"+field, string(body))
	require.Equal(t, http.StatusOK, code)
	return decodeForm(t, env)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	code, env, headers := ts.do(t, http.MethodGet, "/api/v1/healthcheck", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"available"`, string(env["status"]))
	assert.NotEmpty(t, headers.Get("X-Request-Id"))
}

func TestCreateFormStartsEmpty(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createForm(t)

	code, env, _ := ts.do(t, http.MethodGet, "/api/v1/forms/"+id.String(), "")
	require.Equal(t, http.StatusOK, code)

	resp := decodeForm(t, env)
	assert.Equal(t, form.FormState{}, resp.Values)
	assert.Empty(t, resp.Errors)
	assert.False(t, resp.Valid)
}

func TestSetFieldReportsInlineErrors(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createForm(t)

	resp := ts.setField(t, id, "name", "Al")
	assert.Equal(t, "Al", resp.Values.Name)
	assert.Equal(t, form.ErrorState{form.NameField: form.MsgNameTooShort}, resp.Errors)
	assert.False(t, resp.Valid)

	resp = ts.setField(t, id, "name", "Alice")
	assert.Equal(t, form.ErrorState{form.NameField: ""}, resp.Errors)
}

func TestSubmitAcceptedFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createForm(t)

	ts.setField(t, id, "name", "Alice")
	ts.setField(t, id, "email", "alice@example.com")
	ts.setField(t, id, "password", "secret12")
	resp := ts.setField(t, id, "confirmPassword", "secret12")
	assert.True(t, resp.Valid)

	code, env, _ := ts.do(t, http.MethodPost, "/api/v1/forms/"+id.String()+"/submit", "")
	require.Equal(t, http.StatusOK, code)

	var outcome form.Outcome
	require.NoError(t, json.Unmarshal(env["outcome"], &outcome))
	assert.Equal(t, form.StatusAccepted, outcome.Status)
	require.NotNil(t, outcome.Data)
	assert.Equal(t, form.FormState{
		Name:            "Alice",
		Email:           "alice@example.com",
		Password:        "secret12",
		ConfirmPassword: "secret12",
	}, *outcome.Data)

	ts.wg.Wait()
	require.Len(t, ts.notifier.outcomes, 1)
	assert.True(t, ts.notifier.outcomes[0].IsAccepted())
}

func TestSubmitRejectedFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createForm(t)

	ts.setField(t, id, "name", "Alice")
	ts.setField(t, id, "email", "bad")
	ts.setField(t, id, "password", "secret12")
	ts.setField(t, id, "confirmPassword", "secret12")

	code, env, _ := ts.do(t, http.MethodPost, "/api/v1/forms/"+id.String()+"/submit", "")
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.JSONEq(t, `{"status":"rejected","message":"Please fill out the form correctly."}`, string(env["outcome"]))
}

func TestPasswordChangeRevalidatesConfirmation(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createForm(t)

	ts.setField(t, id, "password", "secret12")
	ts.setField(t, id, "confirmPassword", "secret12")
	resp := ts.setField(t, id, "password", "another9")

	assert.Equal(t, form.MsgPasswordsMismatch, resp.Errors[form.ConfirmPasswordField])
}

func TestKeepStalePolicyOverHTTP(t *testing.T) {
	ts := newTestServer(t, form.WithCrossFieldPolicy(form.KeepStale))
	id := ts.createForm(t)

	ts.setField(t, id, "password", "secret12")
	ts.setField(t, id, "confirmPassword", "secret12")
	resp := ts.setField(t, id, "password", "another9")

	assert.Equal(t, "", resp.Errors[form.ConfirmPasswordField])
}

func TestSetFieldErrors(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createForm(t)
	base := "/api/v1/forms/" + id.String() + "/fields/"

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown field", base + "username", `{"value":"bob"}`, http.StatusNotFound},
		{"missing value", base + "name", `{}`, http.StatusUnprocessableEntity},
		{"null value", base + "name", `{"value":null}`, http.StatusUnprocessableEntity},
		{"empty body", base + "name", ``, http.StatusBadRequest},
		{"unknown key", base + "name", `{"value":"x","other":1}`, http.StatusBadRequest},
		{"wrong type", base + "name", `{"value":3}`, http.StatusBadRequest},
		{"bad id", "/api/v1/forms/nope/fields/name", `{"value":"x"}`, http.StatusNotFound},
		{"missing form", "/api/v1/forms/" + uuid.NewString() + "/fields/name", `{"value":"x"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env, _ := ts.do(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.want, code)
			assert.Contains(t, env, "error")
		})
	}
}

func TestEmptyValueIsAllowed(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createForm(t)

	resp := ts.setField(t, id, "email", "")
	assert.Equal(t, form.MsgEmailInvalid, resp.Errors[form.EmailField])
}

func TestDeleteForm(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createForm(t)

	code, _, _ := ts.do(t, http.MethodDelete, "/api/v1/forms/"+id.String(), "")
	assert.Equal(t, http.StatusOK, code)

	code, _, _ = ts.do(t, http.MethodGet, "/api/v1/forms/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = ts.do(t, http.MethodPost, "/api/v1/forms/"+id.String()+"/submit", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListForms(t *testing.T) {
	ts := newTestServer(t)
	for range 3 {
		ts.createForm(t)
	}

	code, env, _ := ts.do(t, http.MethodGet, "/api/v1/forms?page=1&page_size=2&sort=-created_at", "")
	require.Equal(t, http.StatusOK, code)

	var forms []data.FormSummary
	require.NoError(t, json.Unmarshal(env["forms"], &forms))
	assert.Len(t, forms, 2)
	assert.NotContains(t, string(env["forms"]), "values")

	code, env, _ = ts.do(t, http.MethodGet, "/api/v1/forms?page_size=1000&sort=email", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, string(env["error"]), "page_size")
	assert.Contains(t, string(env["error"]), "sort")

	code, _, _ = ts.do(t, http.MethodGet, "/api/v1/forms?page=9", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestRouterErrors(t *testing.T) {
	ts := newTestServer(t)

	code, _, _ := ts.do(t, http.MethodGet, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = ts.do(t, http.MethodPatch, "/api/v1/forms", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestCorsPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/forms", nil)
	req.Header.Set("Origin", "https://signup.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://signup.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE", rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.config.RateLimiter.Enabled = true
	ts.limiter = newClientLimiter(1, 2)

	var codes []int
	for range 3 {
		code, _, _ := ts.do(t, http.MethodGet, "/api/v1/healthcheck", "")
		codes = append(codes, code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestPanicRecovery(t *testing.T) {
	ts := newTestServer(t)
	h := ts.panicRecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}
