// Package auth is the identity provider boundary: sign-in, sign-out and
// notifications of identity changes.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/internal/security"
	"github.com/fastygo/erp-audit/repository"
	"github.com/fastygo/erp-audit/usecase"
)

const (
	ActionLogin  = "Login"
	ActionLogout = "Logout"
)

// Result is what a successful sign-in or refresh hands back to the client.
type Result struct {
	Identity *domain.Identity `json:"identity"`
	Session  *domain.Session  `json:"session"`
	Token    string           `json:"token"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *security.Tokens
	audit    usecase.ActionLogger
	logger   *zap.Logger
	ttl      time.Duration

	mu        sync.RWMutex
	current   *domain.Identity
	listeners map[uint64]func(*domain.Identity)
	nextID    uint64
}

func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *security.Tokens,
	audit usecase.ActionLogger,
	logger *zap.Logger,
	ttl time.Duration,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = usecase.NopActionLogger{}
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &UseCase{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		audit:     audit,
		logger:    logger,
		ttl:       ttl,
		listeners: make(map[uint64]func(*domain.Identity)),
	}
}

// SignIn checks the credentials, opens a session and records a Login event.
// A failed audit write does not fail the sign-in.
func (uc *UseCase) SignIn(ctx context.Context, email, password string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	identity := user.Identity()
	identity.SessionID = session.ID
	token, err := uc.tokens.Issue(identity, session)
	if err != nil {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, err
	}

	uc.audit.LogAction(domain.ContextWithIdentity(ctx, identity), ActionLogin, domain.ModuleAuth,
		fmt.Sprintf("user %s logged in", identity.Email))
	uc.setCurrent(identity)

	return &Result{Identity: identity, Session: session, Token: token}, nil
}

// SignOut revokes the session of identity and records a Logout event.
func (uc *UseCase) SignOut(ctx context.Context, identity *domain.Identity) error {
	if identity == nil || identity.SessionID == "" {
		return domain.ErrUnauthorized
	}
	if err := uc.sessions.Delete(ctx, identity.SessionID); err != nil {
		return err
	}

	uc.audit.LogAction(domain.ContextWithIdentity(ctx, identity), ActionLogout, domain.ModuleAuth,
		fmt.Sprintf("user %s logged out", identity.DisplayName()))

	uc.mu.Lock()
	signedOut := uc.current != nil && uc.current.SessionID == identity.SessionID
	if signedOut {
		uc.current = nil
	}
	uc.mu.Unlock()
	if signedOut {
		uc.notify(nil)
	}
	return nil
}

// Refresh extends the session and issues a new token for it.
func (uc *UseCase) Refresh(ctx context.Context, identity *domain.Identity) (*Result, error) {
	if identity == nil || identity.SessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := uc.sessions.Extend(ctx, identity.SessionID, int(uc.ttl.Seconds())); err != nil {
		return nil, err
	}
	session, err := uc.sessions.Get(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	token, err := uc.tokens.Issue(identity, session)
	if err != nil {
		return nil, err
	}
	return &Result{Identity: identity, Session: session, Token: token}, nil
}

// Authenticate verifies a bearer token and that its session is still open.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	identity, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if _, err := uc.sessions.Get(ctx, identity.SessionID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return identity, nil
}

// OnAuthStateChange calls fn with the current identity now and after every
// sign-in or sign-out. fn receives nil when nobody is signed in.
func (uc *UseCase) OnAuthStateChange(fn func(*domain.Identity)) (unsubscribe func()) {
	uc.mu.Lock()
	uc.nextID++
	id := uc.nextID
	uc.listeners[id] = fn
	current := uc.current
	uc.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			uc.mu.Lock()
			delete(uc.listeners, id)
			uc.mu.Unlock()
		})
	}
}

// CurrentIdentity returns the most recently signed-in identity.
func (uc *UseCase) CurrentIdentity() *domain.Identity {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.current
}

// EnsureUser creates or updates an active account with the given password.
func (uc *UseCase) EnsureUser(ctx context.Context, email, password, name, role string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, domain.Invalidf("an e-mail and a password of at least 8 characters are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}
	if user == nil {
		user = &domain.User{Email: email}
	}
	user.Name = name
	user.Role = role
	user.Status = domain.UserStatusActive
	user.PasswordHash = string(hash)
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user ensured", zap.String("email", email), zap.String("role", role))
	return user, nil
}

func (uc *UseCase) setCurrent(identity *domain.Identity) {
	uc.mu.Lock()
	uc.current = identity
	uc.mu.Unlock()
	uc.notify(identity)
}

func (uc *UseCase) notify(identity *domain.Identity) {
	uc.mu.RLock()
	listeners := make([]func(*domain.Identity), 0, len(uc.listeners))
	for _, fn := range uc.listeners {
		listeners = append(listeners, fn)
	}
	uc.mu.RUnlock()

	for _, fn := range listeners {
		fn(identity)
	}
}
