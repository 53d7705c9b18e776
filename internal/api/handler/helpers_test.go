package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tasktracker/task-api/internal/core/domain"
)

var (
	adminActor = domain.Actor{ID: "9b2f6c1e-8a43-4c55-9d1e-000000000001", Role: domain.RoleAdmin}
	userActor  = domain.Actor{ID: "9b2f6c1e-8a43-4c55-9d1e-000000000002", Role: domain.RoleUser}
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withActor(c echo.Context, actor domain.Actor) echo.Context {
	c.Set("actor", actor)
	return c
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) Envelope {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("invalid data %s: %v", raw.Data, err)
		}
	}
	return Envelope{Success: raw.Success, Message: raw.Message}
}

// requireValidation asserts err is a ValidationError naming path.
func requireValidation(t *testing.T, err error, path string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, f := range ve.Fields {
		if f.Path == path {
			return
		}
	}
	t.Fatalf("expected error on %q, got %+v", path, ve.Fields)
}

func requireHTTPStatus(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != code {
		t.Fatalf("expected HTTP %d error, got %v", code, err)
	}
}
