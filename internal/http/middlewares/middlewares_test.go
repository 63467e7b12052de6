package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/dropDatabas3/idcore/internal/http/middlewares"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestChain_Order(t *testing.T) {
	var trace []string
	tag := func(name string) mw.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trace = append(trace, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := mw.Chain(okHandler(), tag("A"), tag("B"), tag("C"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"A", "B", "C"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v", trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestRequireAdminKey(t *testing.T) {
	h := mw.Chain(okHandler(), mw.RequireAdminKey("super-secret"))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/clients", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/clients", nil)
		req.Header.Set("X-Admin-API-Key", "nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("right key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/clients", nil)
		req.Header.Set("X-Admin-API-Key", "super-secret")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("empty key fails closed", func(t *testing.T) {
		closed := mw.Chain(okHandler(), mw.RequireAdminKey(""))
		req := httptest.NewRequest(http.MethodGet, "/admin/clients", nil)
		req.Header.Set("X-Admin-API-Key", "anything")
		rec := httptest.NewRecorder()
		closed.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestWithRequestID(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = mw.GetRequestID(r.Context())
	})
	h := mw.Chain(inner, mw.WithRequestID())

	t.Run("generates one", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		rid := rec.Header().Get("X-Request-ID")
		if rid == "" {
			t.Fatal("expected generated request id in response header")
		}
		if seen != rid {
			t.Fatalf("context id %q != header id %q", seen, rid)
		}
	})

	t.Run("propagates client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "rid-from-client")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "rid-from-client" {
			t.Fatalf("header = %q", got)
		}
	})
}

func TestWithNoStore(t *testing.T) {
	h := mw.Chain(okHandler(), mw.WithNoStore())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/oauth2/token", nil))

	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("Pragma"); got != "no-cache" {
		t.Fatalf("Pragma = %q", got)
	}
}

func TestWithRecover(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	h := mw.Chain(panicky, mw.WithRecover())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
