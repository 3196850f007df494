package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pashto-learning-app/backend/internal/application/auth"
	"github.com/pashto-learning-app/backend/internal/application/users"
	"github.com/pashto-learning-app/backend/internal/infrastructure/memory"
	"github.com/pashto-learning-app/backend/internal/infrastructure/security"
	"github.com/pashto-learning-app/backend/internal/transport/http/response"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []auth.VerifyEmailEvent
}

func (p *capturePublisher) PublishVerifyEmail(ctx context.Context, evt auth.VerifyEmailEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

// lastToken pulls the verification token out of the most recent link.
func (p *capturePublisher) lastToken(t *testing.T) string {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		t.Fatalf("no verify-email event published")
	}
	u, err := url.Parse(p.events[len(p.events)-1].URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u.Query().Get("token")
}

type handlerEnv struct {
	repo   *memory.UserRepo
	tokens *security.JWTIssuer
	pub    *capturePublisher
	auth   *AuthHandler
	users  *UsersHandler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	repo := memory.NewUserRepo()
	hasher := security.NewBcryptHasher(4)
	tokens := security.NewJWTIssuer(security.JWTConfig{
		Issuer:        "pashto-test",
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		EmailSecret:   "email-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		EmailTTL:      24 * time.Hour,
	})
	pub := &capturePublisher{}

	authSvc := auth.NewService(repo, hasher, tokens, pub, auth.Config{
		VerifyEmailBaseURL: "http://client.test/verify-email?token=",
	})

	return &handlerEnv{
		repo:   repo,
		tokens: tokens,
		pub:    pub,
		auth:   NewAuthHandler(authSvc),
		users:  NewUsersHandler(users.NewService(repo, hasher)),
	}
}

func do(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return string(b)
}

func mustReadJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(out); err != nil {
		t.Fatalf("decode json: %v; body=%s", err, rr.Body.String())
	}
}

func requireStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status=%d want=%d body=%s", rr.Code, want, rr.Body.String())
	}
}

func requireErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	requireStatus(t, rr, status)
	var body response.ErrorBody
	mustReadJSON(t, rr, &body)
	if body.Error.Code != code {
		t.Fatalf("code=%q want=%q body=%s", body.Error.Code, code, rr.Body.String())
	}
}
