package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------- fakes ----------

func write(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
}

type fakeHealth struct{}

func (fakeHealth) Healthz(w http.ResponseWriter, r *http.Request) { write(w, "healthz") }
func (fakeHealth) Readyz(w http.ResponseWriter, r *http.Request)  { write(w, "readyz") }

type fakeAuth struct{}

func (fakeAuth) Register(w http.ResponseWriter, r *http.Request)    { write(w, "register") }
func (fakeAuth) Login(w http.ResponseWriter, r *http.Request)       { write(w, "login") }
func (fakeAuth) Refresh(w http.ResponseWriter, r *http.Request)     { write(w, "refresh") }
func (fakeAuth) Logout(w http.ResponseWriter, r *http.Request)      { write(w, "logout") }
func (fakeAuth) VerifyEmail(w http.ResponseWriter, r *http.Request) { write(w, "verify_email") }

type fakeUsers struct{}

func (fakeUsers) Create(w http.ResponseWriter, r *http.Request) { write(w, "users_create") }
func (fakeUsers) List(w http.ResponseWriter, r *http.Request)   { write(w, "users_list") }

func noopMW(next http.Handler) http.Handler { return next }

func headerMW(key, val string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add(key, val)
			next.ServeHTTP(w, r)
		})
	}
}

func blockMW(status int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
	}
}

func baseDeps() Deps {
	return Deps{
		Health:     fakeHealth{},
		Auth:       fakeAuth{},
		Users:      fakeUsers{},
		AuthMW:     noopMW,
		AdminMW:    noopMW,
		VerifiedMW: noopMW,
	}
}

func mustNew(t *testing.T, d Deps) http.Handler {
	t.Helper()
	h, err := New(d)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(`{}`)))
	return rr
}

// ---------- tests ----------

func TestNew_RequiresDeps(t *testing.T) {
	cases := map[string]func(*Deps){
		"health":   func(d *Deps) { d.Health = nil },
		"auth":     func(d *Deps) { d.Auth = nil },
		"users":    func(d *Deps) { d.Users = nil },
		"auth mw":  func(d *Deps) { d.AuthMW = nil },
		"admin mw": func(d *Deps) { d.AdminMW = nil },
		"verified": func(d *Deps) { d.VerifiedMW = nil },
	}
	for name, mutate := range cases {
		d := baseDeps()
		mutate(&d)
		if _, err := New(d); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestRoutes(t *testing.T) {
	h := mustNew(t, baseDeps())

	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/healthz", "healthz"},
		{http.MethodGet, "/readyz", "readyz"},
		{http.MethodPost, "/api/auth/register", "register"},
		{http.MethodPost, "/api/auth/login", "login"},
		{http.MethodPost, "/api/auth/refresh", "refresh"},
		{http.MethodPost, "/api/auth/logout", "logout"},
		{http.MethodGet, "/api/auth/verify-email?token=x", "verify_email"},
		{http.MethodPost, "/api/users", "users_create"},
		{http.MethodGet, "/api/users", "users_list"},
	}
	for _, tc := range cases {
		rr := serve(h, tc.method, tc.path)
		if rr.Code != http.StatusOK || rr.Body.String() != tc.want {
			t.Fatalf("%s %s: status=%d body=%q want %q", tc.method, tc.path, rr.Code, rr.Body.String(), tc.want)
		}
	}
}

func TestWrongMethod_405(t *testing.T) {
	h := mustNew(t, baseDeps())
	if rr := serve(h, http.MethodGet, "/api/auth/login"); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestUsersList_GuardedByAuthChain(t *testing.T) {
	d := baseDeps()
	d.AuthMW = headerMW("X-Chain", "auth")
	d.AdminMW = headerMW("X-Chain", "admin")
	d.VerifiedMW = headerMW("X-Chain", "verified")
	h := mustNew(t, d)

	rr := serve(h, http.MethodGet, "/api/users")
	got := rr.Header().Values("X-Chain")
	if strings.Join(got, ",") != "auth,admin,verified" {
		t.Fatalf("unexpected middleware order: %v", got)
	}

	// creating a user is public
	rr = serve(h, http.MethodPost, "/api/users")
	if len(rr.Header().Values("X-Chain")) != 0 {
		t.Fatalf("POST /api/users should not pass auth middleware")
	}

	d.AdminMW = blockMW(http.StatusForbidden)
	h = mustNew(t, d)
	if rr := serve(h, http.MethodGet, "/api/users"); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRateLimits_AppliedPerRoute(t *testing.T) {
	d := baseDeps()
	d.RLLogin = blockMW(http.StatusTooManyRequests)
	h := mustNew(t, d)

	if rr := serve(h, http.MethodPost, "/api/auth/login"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("login: expected 429, got %d", rr.Code)
	}
	if rr := serve(h, http.MethodPost, "/api/auth/register"); rr.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d", rr.Code)
	}
}

func TestMetricsRoute_Optional(t *testing.T) {
	h := mustNew(t, baseDeps())
	if rr := serve(h, http.MethodGet, "/metrics"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", rr.Code)
	}

	d := baseDeps()
	d.Metrics = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { write(w, "metrics") })
	h = mustNew(t, d)
	if rr := serve(h, http.MethodGet, "/metrics"); rr.Body.String() != "metrics" {
		t.Fatalf("unexpected /metrics body %q", rr.Body.String())
	}
}

func TestRecoverer_PanicIs500(t *testing.T) {
	d := baseDeps()
	d.AuthMW = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	}
	h := mustNew(t, d)

	if rr := serve(h, http.MethodGet, "/api/users"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestGlobalMiddlewares_Run(t *testing.T) {
	d := baseDeps()
	d.RequestIDMW = headerMW("X-Global", "rid")
	d.AccessLogMW = headerMW("X-Global", "log")
	h := mustNew(t, d)

	rr := serve(h, http.MethodGet, "/healthz")
	if strings.Join(rr.Header().Values("X-Global"), ",") != "rid,log" {
		t.Fatalf("unexpected global middleware order: %v", rr.Header().Values("X-Global"))
	}
}

// remoteAddrMW records the RemoteAddr seen after the global chain.
func remoteAddrMW(seen *string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*seen = r.RemoteAddr
			next.ServeHTTP(w, r)
		})
	}
}

func TestProxyHeaders_IgnoredUnlessTrusted(t *testing.T) {
	for _, tc := range []struct {
		trust bool
		want  string
	}{
		{false, "198.51.100.4:40000"},
		{true, "10.9.9.9"},
	} {
		var seen string
		d := baseDeps()
		d.TrustProxyHeaders = tc.trust
		d.RLLogin = remoteAddrMW(&seen)
		h := mustNew(t, d)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.RemoteAddr = "198.51.100.4:40000"
		req.Header.Set("X-Forwarded-For", "10.9.9.9")
		h.ServeHTTP(httptest.NewRecorder(), req)

		if seen != tc.want {
			t.Fatalf("trust=%v: expected RemoteAddr %q, got %q", tc.trust, tc.want, seen)
		}
	}
}

func TestCORSAndSecurity_RunBeforeRouting(t *testing.T) {
	d := baseDeps()
	d.CORSMW = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	d.SecurityMW = headerMW("X-Frame-Options", "DENY")
	d.AuthMW = blockMW(http.StatusUnauthorized)
	h := mustNew(t, d)

	// OPTIONS has no route; the CORS layer answers it before a 405
	if rr := serve(h, http.MethodOptions, "/api/users"); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rr.Code)
	}
	rr := serve(h, http.MethodGet, "/healthz")
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected security header on every response")
	}
}
