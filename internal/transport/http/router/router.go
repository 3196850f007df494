package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps request bodies; auth payloads are tiny.
const maxBodyBytes = 1 << 20

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
}

type UsersHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type Middleware = func(http.Handler) http.Handler

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler
	Users  UsersHandler

	// Metrics serves /metrics; nil leaves the route unregistered.
	Metrics http.Handler

	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For/X-Real-IP.
	// Only set it when a proxy that overwrites those headers fronts the API;
	// otherwise clients choose their own rate-limit identity.
	TrustProxyHeaders bool

	CORSMW      Middleware
	SecurityMW  Middleware
	RequestIDMW Middleware
	AccessLogMW Middleware
	MetricsMW   Middleware

	AuthMW     Middleware
	AdminMW    Middleware
	VerifiedMW Middleware

	// Rate limits are optional.
	RLRegister Middleware
	RLLogin    Middleware
	RLRefresh  Middleware
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("nil Users handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}
	if deps.VerifiedMW == nil {
		return nil, fmt.Errorf("nil Verified middleware")
	}

	r := chi.NewRouter()

	// CORS first so preflights never hit auth or rate limits.
	r.Use(present(deps.CORSMW, deps.SecurityMW)...)
	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(present(deps.RequestIDMW, deps.AccessLogMW, deps.MetricsMW)...)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestSize(maxBodyBytes))

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(present(deps.RLRegister)...).Post("/register", deps.Auth.Register)
		r.With(present(deps.RLLogin)...).Post("/login", deps.Auth.Login)
		r.With(present(deps.RLRefresh)...).Post("/refresh", deps.Auth.Refresh)
		r.Post("/logout", deps.Auth.Logout)
		r.Get("/verify-email", deps.Auth.VerifyEmail) // ?token=...
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", deps.Users.Create)
		r.With(deps.AuthMW, deps.AdminMW, deps.VerifiedMW).Get("/", deps.Users.List)
	})

	return r, nil
}

// present drops nil middlewares so optional ones can be passed through.
func present(mws ...Middleware) []Middleware {
	out := make([]Middleware, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
