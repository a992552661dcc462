package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc describes a graceful shutdown callback.
type ShutdownFunc func(ctx context.Context) error

// WorkerFunc is a background loop that returns once ctx is done.
type WorkerFunc func(ctx context.Context) error

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager owns background workers and shutdown hooks. Workers share one
// context cancelled at the start of Shutdown; hooks then run in reverse
// registration order.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup

	mu    sync.Mutex
	hooks []hook
}

// New creates a lifecycle manager with the desired timeout.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Context is cancelled when shutdown starts.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Go runs fn on its own goroutine until shutdown. Errors other than
// context cancellation are logged.
func (m *Manager) Go(name string, fn WorkerFunc) {
	if fn == nil {
		return
	}
	m.workers.Add(1)
	go func() {
		defer m.workers.Done()
		m.logger.Info("worker started", zap.String("worker", name))
		if err := fn(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("worker exited", zap.String("worker", name), zap.Error(err))
			return
		}
		m.logger.Info("worker stopped", zap.String("worker", name))
	}()
}

// Register adds a shutdown hook. Hooks are executed in reverse order.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Shutdown stops the workers and executes all hooks within the timeout.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.cancel()
	var result error
	if err := m.waitWorkers(ctx); err != nil {
		m.logger.Warn("workers did not stop in time", zap.Error(err))
		result = err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.hooks) - 1; i >= 0; i-- {
		h := m.hooks[i]
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", h.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", h.name))
	}
	return result
}

func (m *Manager) waitWorkers(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen invokes cancel once SIGINT or SIGTERM is received.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		case <-m.ctx.Done():
		}
		cancel()
	}()
}
