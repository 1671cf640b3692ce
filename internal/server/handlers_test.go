package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/brandtint/brandtint/internal/pipeline"
	"github.com/brandtint/brandtint/internal/ratelimit"
	"github.com/brandtint/brandtint/internal/render"
	"github.com/brandtint/brandtint/internal/security"
)

// stubSession serves fixed declared style variables.
type stubSession struct{}

func (stubSession) Navigate(ctx context.Context, url string) error { return nil }
func (stubSession) OnNavigate(func(url string) error)              {}
func (stubSession) StyleVariables(ctx context.Context) ([]string, error) {
	return []string{"#e11d48", "#2563eb"}, nil
}
func (stubSession) RoleColours(ctx context.Context) (render.RoleColourSets, error) {
	return render.RoleColourSets{}, nil
}
func (stubSession) Screenshot(ctx context.Context) ([]byte, error) { return nil, nil }
func (stubSession) Close() error                                   { return nil }

func newTestApp(limiter *ratelimit.Limiter) *Application {
	p := pipeline.New(pipeline.Options{
		Limiter: limiter,
		Resolver: security.NewResolverWithLookup(
			func(ctx context.Context, network, host string) ([]netip.Addr, error) {
				if network != "ip4" {
					return nil, fmt.Errorf("no %s answers", network)
				}
				return []netip.Addr{netip.MustParseAddr("93.184.215.14")}, nil
			}, time.Second),
		Sessions: func(ctx context.Context, target security.ResolvedTarget, opts render.SessionOptions) (render.Session, error) {
			return stubSession{}, nil
		},
	})

	return &Application{
		Config:   Config{HTTPPort: ":0"},
		Pipeline: p,
		Logger:   hclog.NewNullLogger(),
	}
}

func postJSON(t *testing.T, app *Application, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/theme", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Routes().ServeHTTP(rec, req)
	return rec
}

func TestExtractThemeFromURL(t *testing.T) {
	rec := postJSON(t, newTestApp(nil), `{"url":"https://example.com/"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}

	var result pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not a result: %v", err)
	}
	if result.Origin != "website" {
		t.Errorf("origin = %q, want website", result.Origin)
	}
	if len(result.Palette) == 0 {
		t.Error("response palette is empty")
	}
}

func TestExtractThemeJSONWithCharset(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/theme",
		strings.NewReader(`{"url":"https://example.com/"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	newTestApp(nil).Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}
}

func TestExtractThemeErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{
			name:       "blocked host",
			body:       `{"url":"http://127.0.0.1/"}`,
			wantStatus: http.StatusForbidden,
			wantKind:   "security_blocked",
		},
		{
			name:       "bad scheme",
			body:       `{"url":"ftp://example.com/"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_input",
		},
		{
			name:       "malformed json",
			body:       `{"url":`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, newTestApp(nil), tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body)
			}

			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response is not an error envelope: %v", err)
			}
			if resp.Error != tt.wantKind {
				t.Errorf("error kind = %q, want %q", resp.Error, tt.wantKind)
			}
		})
	}
}

func TestExtractThemeRateLimited(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewWithClock(map[string]int{"extract": 1}, func() time.Time { return base })
	app := newTestApp(limiter)

	if rec := postJSON(t, app, `{"url":"https://example.com/"}`); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec := postJSON(t, app, `{"url":"https://example.com/"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}

func TestExtractThemeMissingImageField(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("note", "no image here"); err != nil {
		t.Fatalf("failed to build form: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/theme", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newTestApp(nil).Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body)
	}
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	newTestApp(nil).Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s, want ok status", rec.Body)
	}
}
