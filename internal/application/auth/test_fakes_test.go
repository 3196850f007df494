package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pashto-learning-app/backend/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr     error
	getByEmailErr  error
	createErr      error
	setRefreshErr  error
	clearErr       error
	setVerifiedErr error

	creates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
	}
	f.byID[u.ID] = u
	f.creates++
	return u, nil
}

func (f *fakeUserRepo) SetRefreshToken(ctx context.Context, userID string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setRefreshErr != nil {
		return f.setRefreshErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.RefreshToken = token
	f.byID[userID] = u
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(ctx context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.clearErr != nil {
		return 0, f.clearErr
	}
	var n int64
	for id, u := range f.byID {
		if u.RefreshToken == token {
			u.RefreshToken = ""
			f.byID[id] = u
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) SetEmailVerified(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setVerifiedErr != nil {
		return f.setVerifiedErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.EmailVerified = true
	f.byID[userID] = u
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return domain.ErrInvalidCredentials()
}

// fakeTokens issues "kind|userID|email|role|n" strings; n keeps every token unique.
type fakeTokens struct {
	mu sync.Mutex
	n  int

	issueErr error
	revoked  map[string]bool // tokens that must fail Verify (simulates expiry/tampering)
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{revoked: map[string]bool{}}
}

func (f *fakeTokens) issue(kind TokenKind, c Claims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.n++
	return fmt.Sprintf("%s|%s|%s|%s|%d", kind, c.UserID, c.Email, c.Role, f.n), nil
}

func (f *fakeTokens) IssueAccessToken(c Claims) (string, error)  { return f.issue(TokenAccess, c) }
func (f *fakeTokens) IssueRefreshToken(c Claims) (string, error) { return f.issue(TokenRefresh, c) }
func (f *fakeTokens) IssueEmailToken(userID string) (string, error) {
	return f.issue(TokenEmail, Claims{UserID: userID})
}

func (f *fakeTokens) Verify(token string, kind TokenKind) (Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.revoked[token] {
		return Claims{}, domain.ErrTokenInvalid()
	}
	parts := strings.Split(token, "|")
	if len(parts) != 5 || TokenKind(parts[0]) != kind {
		return Claims{}, domain.ErrTokenInvalid()
	}
	if _, err := strconv.Atoi(parts[4]); err != nil {
		return Claims{}, domain.ErrTokenInvalid()
	}
	return Claims{UserID: parts[1], Email: parts[2], Role: parts[3]}, nil
}

type fakePublisher struct {
	mu sync.Mutex

	verifyErr  error
	verifyEvts []VerifyEmailEvent
}

func (p *fakePublisher) PublishVerifyEmail(ctx context.Context, evt VerifyEmailEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verifyErr != nil {
		return p.verifyErr
	}
	p.verifyEvts = append(p.verifyEvts, evt)
	return nil
}

/*
Service constructor for tests
*/

type testEnv struct {
	svc    *Service
	users  *fakeUserRepo
	hasher *fakeHasher
	tokens *fakeTokens
	pub    *fakePublisher

	auditMu sync.Mutex
	audits  []auditEntry
}

func (e *testEnv) auditActions() []string {
	e.auditMu.Lock()
	defer e.auditMu.Unlock()
	out := make([]string, 0, len(e.audits))
	for _, a := range e.audits {
		out = append(out, a.action)
	}
	return out
}

func newSvcForTest(t *testing.T) *testEnv {
	t.Helper()

	e := &testEnv{
		users:  newFakeUserRepo(),
		hasher: &fakeHasher{},
		tokens: newFakeTokens(),
		pub:    &fakePublisher{},
	}
	e.svc = NewService(e.users, e.hasher, e.tokens, e.pub, Config{
		VerifyEmailBaseURL: "http://localhost:3000/verify-email?token=",
	}).WithAudit(func(_ context.Context, action string, fields map[string]string) {
		e.auditMu.Lock()
		defer e.auditMu.Unlock()
		e.audits = append(e.audits, auditEntry{action: action, fields: fields})
	})
	return e
}

func seedUser(e *testEnv, id, email, password, role string) domain.User {
	u := domain.User{
		ID:           id,
		FullName:     "Test " + id,
		Email:        email,
		PasswordHash: "hash:" + password,
		Role:         role,
	}
	e.users.put(u)
	return u
}
