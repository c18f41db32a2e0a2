package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/cinefilo/booking-flow/internal/mailer"
	"github.com/cinefilo/booking-flow/internal/validator"
)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		validator:      validator.NewValidator(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessionManager: scs.New(),
		mailer:         mailer.NewMockMailer(),
		flows:          NewFlowStore(time.Minute),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// executeRequest builds a request carrying the chi route params and a
// loaded visitor session, the two things every flow handler expects.
func executeRequest(t *testing.T, app *Application, method string, showtimeID int, body any) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, "/", reqBody)
	r.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("showtimeId", strconv.Itoa(showtimeID))
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)

	ctx, err := app.sessionManager.Load(ctx, "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}

	return httptest.NewRecorder(), r.WithContext(ctx)
}

func executeBookingLookup(t *testing.T, app *Application, reference string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("reference", reference)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)

	ctx, err := app.sessionManager.Load(ctx, "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}

	return httptest.NewRecorder(), r.WithContext(ctx)
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp T
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return resp
}
