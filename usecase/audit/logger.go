// Package audit holds the activity log write side (Logger) and its live
// read side (Hub).
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
)

// IdentitySource reports the identity currently signed in on this client.
// It is consulted when the request context carries none, so it only fits a
// process that serves a single user. Multi-user servers leave it unset.
type IdentitySource interface {
	CurrentIdentity() *domain.Identity
}

// IdentitySourceFunc adapts a function to IdentitySource.
type IdentitySourceFunc func() *domain.Identity

func (f IdentitySourceFunc) CurrentIdentity() *domain.Identity { return f() }

// ChangeListener is told about every event the Logger stored.
type ChangeListener interface {
	Changed(ctx context.Context, eventID string)
}

// ChangeListenerFunc adapts a function to ChangeListener.
type ChangeListenerFunc func(ctx context.Context, eventID string)

func (f ChangeListenerFunc) Changed(ctx context.Context, eventID string) { f(ctx, eventID) }

// Publisher forwards changes to other instances through an AuditNotifier.
// Publish failures are logged only.
func Publisher(notifier repository.AuditNotifier, logger *zap.Logger) ChangeListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ChangeListenerFunc(func(ctx context.Context, eventID string) {
		if err := notifier.Publish(ctx, eventID); err != nil {
			logger.Warn("audit change publish failed", zap.String("event_id", eventID), zap.Error(err))
		}
	})
}

type LoggerOption func(*Logger)

// WithIdentitySource is meant for single-user clients such as a desktop shell.
func WithIdentitySource(source IdentitySource) LoggerOption {
	return func(l *Logger) { l.identities = source }
}

// WithWriteTimeout bounds writes issued by LogActionAsync.
func WithWriteTimeout(timeout time.Duration) LoggerOption {
	return func(l *Logger) {
		if timeout > 0 {
			l.writeTimeout = timeout
		}
	}
}

func WithChangeListeners(listeners ...ChangeListener) LoggerOption {
	return func(l *Logger) { l.listeners = append(l.listeners, listeners...) }
}

// Logger records user actions. Writes are best effort: a failed insert is
// reported to the diagnostic logger and never returned to the caller.
type Logger struct {
	repo         repository.AuditRepository
	identities   IdentitySource
	listeners    []ChangeListener
	logger       *zap.Logger
	writeTimeout time.Duration
	inflight     sync.WaitGroup
}

func NewLogger(repo repository.AuditRepository, logger *zap.Logger, opts ...LoggerOption) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Logger{
		repo:         repo,
		logger:       logger,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogAction stores one event for the current identity. It never fails.
func (l *Logger) LogAction(ctx context.Context, action string, module domain.Module, details string) {
	if l == nil || l.repo == nil {
		return
	}
	l.write(ctx, l.resolveIdentity(ctx), action, module, details)
}

func (l *Logger) write(ctx context.Context, identity *domain.Identity, action string, module domain.Module, details string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("audit write panicked", zap.Any("panic", r), zap.String("action", action))
		}
	}()

	event := domain.NewAuditEvent(identity, action, module, details)
	if err := l.repo.Insert(ctx, &event); err != nil {
		l.logger.Error("audit write failed",
			zap.String("action", action),
			zap.String("module", string(module)),
			zap.String("actor_id", event.ActorID),
			zap.Error(err),
		)
		return
	}

	if !module.Known() {
		l.logger.Debug("audit event with unrecognised module", zap.String("module", string(module)))
	}
	for _, listener := range l.listeners {
		listener.Changed(ctx, event.ID)
	}
}

// LogActionAsync performs LogAction on its own goroutine. The identity is
// captured from ctx before returning; cancellation of ctx does not abort the
// write, the write timeout does.
func (l *Logger) LogActionAsync(ctx context.Context, action string, module domain.Module, details string) {
	if l == nil || l.repo == nil {
		return
	}
	identity := l.resolveIdentity(ctx)
	detached := context.WithoutCancel(ctx)

	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		ctx, cancel := context.WithTimeout(detached, l.writeTimeout)
		defer cancel()
		l.write(ctx, identity, action, module, details)
	}()
}

// Wait blocks until every LogActionAsync write has finished or ctx is done.
func (l *Logger) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Logger) resolveIdentity(ctx context.Context) *domain.Identity {
	if identity, ok := domain.IdentityFromContext(ctx); ok {
		return identity
	}
	if l.identities != nil {
		return l.identities.CurrentIdentity()
	}
	return nil
}
