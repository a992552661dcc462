// Package monitor periodically checks the service dependencies and caches
// the result for health endpoints and background jobs.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Check tests one dependency.
type Check func(ctx context.Context) error

type namedCheck struct {
	name     string
	check    Check
	critical bool
}

type Monitor struct {
	checks   []namedCheck
	status   Status
	mu       sync.RWMutex
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		timeout:  3 * time.Second,
		stopCh:   make(chan struct{}),
		logger:   logger,
		status:   Status{Components: map[string]ComponentStatus{}},
	}
}

// Add registers a check. Critical checks decide IsOnline. Register all
// checks before Start.
func (m *Monitor) Add(name string, check Check, critical bool) {
	if check == nil {
		return
	}
	m.checks = append(m.checks, namedCheck{name: name, check: check, critical: critical})
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether every critical check passed on the last pass.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.status.Components {
		if c.Critical && !c.OK {
			return false
		}
	}
	return true
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := Status{
		Healthy:    m.status.Healthy,
		LastCheck:  m.status.LastCheck,
		Components: make(map[string]ComponentStatus, len(m.status.Components)),
	}
	for k, v := range m.status.Components {
		out.Components[k] = v
	}
	return out
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and caches the outcome.
func (m *Monitor) Refresh(ctx context.Context) {
	status := Status{
		Healthy:    true,
		Components: make(map[string]ComponentStatus, len(m.checks)),
		LastCheck:  time.Now(),
	}
	for _, c := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		started := time.Now()
		err := c.check(checkCtx)
		cancel()

		component := ComponentStatus{OK: err == nil, Critical: c.critical, Latency: time.Since(started)}
		if err != nil {
			component.Error = err.Error()
			status.Healthy = false
			m.logger.Warn("dependency check failed", zap.String("component", c.name), zap.Error(err))
		}
		status.Components[c.name] = component
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func PostgresCheck(pool *pgxpool.Pool) Check {
	return func(ctx context.Context) error {
		if pool == nil {
			return errors.New("postgres not configured")
		}
		return pool.Ping(ctx)
	}
}

func RedisCheck(client redislib.UniversalClient) Check {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis not configured")
		}
		return client.Ping(ctx).Err()
	}
}

// PingCheck adapts components that expose a context-free Ping.
func PingCheck(p interface{ Ping() error }) Check {
	return func(context.Context) error { return p.Ping() }
}
