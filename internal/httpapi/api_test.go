package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pressroom/adapter/memory"
	"pressroom/app"
	"pressroom/domain"
	"pressroom/internal/httpapi"
)

const apiToken = "test-token"

type devNullMailer struct{}

func (devNullMailer) Send(ctx context.Context, to, subject, html string) error { return nil }

func newTestHandler() http.Handler {
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	subs := app.NewSubscriptions(store, devNullMailer{}, "http://localhost:8080", log)
	pubs := app.NewPublications(store.Newsletters())
	return httpapi.New(subs, pubs, apiToken, log).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any, privileged bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if privileged {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func TestSubscribeEndpoint(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, "POST", "/subscribers", map[string]string{"email": "a@b.com", "name": "Alice"}, false)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body)
	}

	w = do(t, h, "POST", "/subscribers", map[string]string{"email": "a@b.com"}, false)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", w.Code)
	}

	w = do(t, h, "POST", "/subscribers", map[string]string{"email": "not-an-email"}, false)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d, want 400", w.Code)
	}
}

func TestUnsubscribeEndpoint(t *testing.T) {
	h := newTestHandler()

	w := do(t, h, "POST", "/unsubscribe", map[string]string{"email": "ghost@b.com"}, false)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown email status = %d, want 404", w.Code)
	}

	do(t, h, "POST", "/subscribers", map[string]string{"email": "a@b.com"}, false)
	w = do(t, h, "POST", "/unsubscribe", map[string]string{"email": "a@b.com"}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	// Idempotent.
	w = do(t, h, "POST", "/unsubscribe", map[string]string{"email": "a@b.com"}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat status = %d, want 200", w.Code)
	}
}

func TestSubscriberAdminEndpointsRequireAuth(t *testing.T) {
	h := newTestHandler()

	if w := do(t, h, "GET", "/subscribers", nil, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("list without token status = %d, want 401", w.Code)
	}
	if w := do(t, h, "DELETE", "/subscribers/some-id", nil, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("delete without token status = %d, want 401", w.Code)
	}
}

func TestSubscriberDeleteFlow(t *testing.T) {
	h := newTestHandler()

	do(t, h, "POST", "/subscribers", map[string]string{"email": "x@y.com"}, false)

	subs := decode[[]domain.Subscriber](t, do(t, h, "GET", "/subscribers", nil, true))
	if len(subs) != 1 {
		t.Fatalf("subscribers = %d, want 1", len(subs))
	}

	w := do(t, h, "DELETE", "/subscribers/"+subs[0].ID, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", w.Code)
	}

	subs = decode[[]domain.Subscriber](t, do(t, h, "GET", "/subscribers", nil, true))
	if len(subs) != 0 {
		t.Fatalf("subscribers after delete = %d, want 0", len(subs))
	}

	// Hard delete means a resubscribe creates a brand-new record.
	if w := do(t, h, "POST", "/subscribers", map[string]string{"email": "x@y.com"}, false); w.Code != http.StatusCreated {
		t.Fatalf("resubscribe status = %d, want 201", w.Code)
	}
}

func TestNewsletterCreateValidation(t *testing.T) {
	h := newTestHandler()

	if w := do(t, h, "POST", "/newsletters", map[string]string{"title": "T", "content": "c"}, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("create without token status = %d, want 401", w.Code)
	}
	if w := do(t, h, "POST", "/newsletters", map[string]string{"title": "T"}, true); w.Code != http.StatusBadRequest {
		t.Fatalf("missing content status = %d, want 400", w.Code)
	}

	w := do(t, h, "POST", "/newsletters", map[string]any{"title": "Hello World!", "content": "c", "tags": []string{"x"}}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", w.Code, w.Body)
	}
	n := decode[domain.Newsletter](t, w)
	if n.Slug != "hello-world" {
		t.Errorf("slug = %q", n.Slug)
	}
}

func TestNewsletterListVisibility(t *testing.T) {
	h := newTestHandler()

	do(t, h, "POST", "/newsletters", map[string]any{"title": "Public", "content": "c", "published": true}, true)
	do(t, h, "POST", "/newsletters", map[string]any{"title": "Hidden Draft", "content": "c"}, true)

	type listResp struct {
		Newsletters []domain.Newsletter `json:"newsletters"`
		Total       int                 `json:"total"`
		Page        int                 `json:"page"`
		TotalPages  int                 `json:"totalPages"`
	}

	public := decode[listResp](t, do(t, h, "GET", "/newsletters", nil, false))
	if public.Total != 1 || len(public.Newsletters) != 1 {
		t.Fatalf("public sees %d, want 1", public.Total)
	}
	if public.Newsletters[0].Title != "Public" {
		t.Errorf("public sees %q", public.Newsletters[0].Title)
	}

	admin := decode[listResp](t, do(t, h, "GET", "/newsletters", nil, true))
	if admin.Total != 2 {
		t.Fatalf("admin sees %d, want 2", admin.Total)
	}
	if admin.Page != 1 || admin.TotalPages != 1 {
		t.Errorf("page=%d totalPages=%d", admin.Page, admin.TotalPages)
	}
}

func TestNewsletterUpdatePatch(t *testing.T) {
	h := newTestHandler()

	n := decode[domain.Newsletter](t, do(t, h, "POST", "/newsletters",
		map[string]any{"title": "Post", "content": "c", "excerpt": "summary"}, true))

	// Publish via single-field patch.
	upd := decode[domain.Newsletter](t, do(t, h, "PUT", "/newsletters/"+n.ID,
		map[string]any{"published": true}, true))
	if !upd.Published || upd.PublishedAt == nil {
		t.Fatal("publish patch not applied")
	}
	if upd.Excerpt == nil || *upd.Excerpt != "summary" {
		t.Error("untouched excerpt changed")
	}

	// Explicit null clears the nullable field.
	upd = decode[domain.Newsletter](t, do(t, h, "PUT", "/newsletters/"+n.ID,
		map[string]any{"excerpt": nil}, true))
	if upd.Excerpt != nil {
		t.Errorf("excerpt = %q, want cleared", *upd.Excerpt)
	}

	if w := do(t, h, "PUT", "/newsletters/unknown", map[string]any{"title": "X"}, true); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", w.Code)
	}
	if w := do(t, h, "PUT", "/newsletters/"+n.ID, map[string]any{"title": "X"}, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", w.Code)
	}
}

func TestNewsletterGetAndDelete(t *testing.T) {
	h := newTestHandler()

	n := decode[domain.Newsletter](t, do(t, h, "POST", "/newsletters",
		map[string]any{"title": "Keep Me", "content": "c", "published": true}, true))

	if w := do(t, h, "GET", "/newsletters/"+n.ID, nil, false); w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}
	if w := do(t, h, "GET", "/newsletters/slug/"+n.Slug, nil, false); w.Code != http.StatusOK {
		t.Fatalf("get by slug status = %d, want 200", w.Code)
	}

	if w := do(t, h, "DELETE", "/newsletters/"+n.ID, nil, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("delete without token status = %d, want 401", w.Code)
	}
	if w := do(t, h, "DELETE", "/newsletters/"+n.ID, nil, true); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", w.Code)
	}
	if w := do(t, h, "GET", "/newsletters/"+n.ID, nil, false); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
}

func TestNewsletterSlugLookupHidesDrafts(t *testing.T) {
	h := newTestHandler()

	n := decode[domain.Newsletter](t, do(t, h, "POST", "/newsletters",
		map[string]any{"title": "Secret Draft", "content": "c"}, true))

	if w := do(t, h, "GET", "/newsletters/slug/"+n.Slug, nil, false); w.Code != http.StatusNotFound {
		t.Fatalf("public draft by slug status = %d, want 404", w.Code)
	}
	if w := do(t, h, "GET", "/newsletters/slug/"+n.Slug, nil, true); w.Code != http.StatusOK {
		t.Fatalf("privileged draft by slug status = %d, want 200", w.Code)
	}
}

func TestAdminStats(t *testing.T) {
	h := newTestHandler()

	if w := do(t, h, "GET", "/admin/stats", nil, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("stats without token status = %d, want 401", w.Code)
	}

	do(t, h, "POST", "/newsletters", map[string]any{"title": "P", "content": "c", "published": true}, true)
	do(t, h, "POST", "/newsletters", map[string]any{"title": "D", "content": "c"}, true)
	do(t, h, "POST", "/subscribers", map[string]string{"email": "a@b.com"}, false)
	do(t, h, "POST", "/subscribers", map[string]string{"email": "b@b.com"}, false)
	do(t, h, "POST", "/unsubscribe", map[string]string{"email": "b@b.com"}, false)

	stats := decode[map[string]int](t, do(t, h, "GET", "/admin/stats", nil, true))
	want := map[string]int{
		"totalNewsletters":  2,
		"published":         1,
		"drafts":            1,
		"totalSubscribers":  2,
		"activeSubscribers": 1,
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%s] = %d, want %d", k, stats[k], v)
		}
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler()
	w := do(t, h, "GET", "/healthz", nil, false)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "true") {
		t.Fatalf("healthz = %d %s", w.Code, w.Body)
	}
}

func TestWrongTokenIsUnauthorized(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest("GET", "/subscribers", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
