package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestClientIDIssuesCookieOnce(t *testing.T) {
	t.Parallel()

	var seen string
	h := ClientID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ClientCookie {
		t.Fatalf("cookies=%v, want one %s cookie", cookies, ClientCookie)
	}
	if _, err := uuid.Parse(seen); err != nil || seen != cookies[0].Value {
		t.Fatalf("client id=%q cookie=%q", seen, cookies[0].Value)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("known client must not get a new cookie")
	}
	if seen != cookies[0].Value {
		t.Fatalf("client id=%q, want %q", seen, cookies[0].Value)
	}
}

func TestClientIDReplacesGarbageCookie(t *testing.T) {
	t.Parallel()

	var seen string
	h := ClientID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: "../../etc"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("client id=%q, want fresh uuid", seen)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	req := httptest.NewRequest(http.MethodOptions, "/session", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if called || rec.Code != http.StatusNoContent {
		t.Fatalf("preflight code=%d called=%v", rec.Code, called)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin=%q", got)
	}
}
