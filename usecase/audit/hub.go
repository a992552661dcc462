package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
)

// DefaultFeedLimit is the size of every snapshot the Hub delivers.
const DefaultFeedLimit = 100

type HubOption func(*Hub)

// WithFeedLimit sets the snapshot size. Values outside 1..100 are ignored.
func WithFeedLimit(limit int) HubOption {
	return func(h *Hub) {
		if limit > 0 && limit <= DefaultFeedLimit {
			h.limit = limit
		}
	}
}

// WithStallAfter marks the feed stalled when no refresh succeeded for d.
func WithStallAfter(d time.Duration) HubOption {
	return func(h *Hub) { h.stallAfter = d }
}

// WithRefreshTimeout bounds each store read made by Run.
func WithRefreshTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.refreshTimeout = d
		}
	}
}

func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// Status describes the health of the live feed.
type Status struct {
	Subscribers int       `json:"subscribers"`
	Events      int       `json:"events"`
	Refreshes   uint64    `json:"refreshes"`
	LastRefresh time.Time `json:"last_refresh,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Stalled     bool      `json:"stalled"`
}

// Hub fans the most recent events out to live subscriptions. Every delivery
// is a complete snapshot, newest first. Refreshes are requested with Changed
// and performed by Run.
type Hub struct {
	repo           repository.AuditRepository
	logger         *zap.Logger
	limit          int
	stallAfter     time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
	trigger        chan struct{}
	started        time.Time

	refreshMu sync.Mutex

	mu          sync.RWMutex
	subs        map[uint64]*Subscription
	nextID      uint64
	latest      []domain.AuditEvent
	loaded      bool
	refreshes   uint64
	lastRefresh time.Time
	lastErr     error
}

func NewHub(repo repository.AuditRepository, logger *zap.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		repo:           repo,
		logger:         logger,
		limit:          DefaultFeedLimit,
		refreshTimeout: 10 * time.Second,
		now:            time.Now,
		trigger:        make(chan struct{}, 1),
		subs:           make(map[uint64]*Subscription),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.started = h.now()
	return h
}

// Subscription is one live consumer of the feed.
type Subscription struct {
	id   uint64
	hub  *Hub
	ch   chan []domain.AuditEvent
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// C delivers snapshots. A snapshot not yet received is replaced by a newer
// one. The channel is closed by Unsubscribe.
func (s *Subscription) C() <-chan []domain.AuditEvent {
	return s.ch
}

// Done is closed once the subscription has ended.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe stops delivery and releases the subscription. Safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.hub.remove(s.id)
	select {
	case <-s.ch:
	default:
	}
	close(s.ch)
	close(s.done)
	s.mu.Unlock()
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) deliver(snapshot []domain.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snapshot:
		return
	default:
	}
	// latest wins
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snapshot:
	default:
	}
}

// Subscribe opens a subscription that lives until Unsubscribe is called or
// ctx is done. The current snapshot is delivered without waiting for the
// store when the hub already holds one.
func (h *Hub) Subscribe(ctx context.Context) *Subscription {
	h.mu.Lock()
	h.nextID++
	sub := &Subscription{
		id:   h.nextID,
		hub:  h,
		ch:   make(chan []domain.AuditEvent, 1),
		done: make(chan struct{}),
	}
	h.subs[sub.id] = sub
	var snapshot []domain.AuditEvent
	if h.loaded {
		snapshot = cloneEvents(h.latest)
	}
	loaded := h.loaded
	h.mu.Unlock()

	if loaded {
		sub.deliver(snapshot)
	} else {
		h.Changed(ctx, "")
	}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
			case <-sub.done:
			}
		}()
	}
	return sub
}

// SubscribeFunc calls fn with every snapshot until the returned function is
// called. fn runs on a dedicated goroutine, one snapshot at a time. Once
// unsubscribe returns, fn is not running and will not run again, so fn must
// not call unsubscribe itself.
func (h *Hub) SubscribeFunc(fn func([]domain.AuditEvent)) (unsubscribe func()) {
	sub := h.Subscribe(context.Background())
	var callback sync.Mutex
	go func() {
		for snapshot := range sub.C() {
			callback.Lock()
			if sub.isClosed() {
				callback.Unlock()
				return
			}
			fn(snapshot)
			callback.Unlock()
		}
	}()
	return func() {
		callback.Lock()
		defer callback.Unlock()
		sub.Unsubscribe()
	}
}

// Changed requests a refresh. It never blocks; requests made while one is
// pending are coalesced.
func (h *Hub) Changed(_ context.Context, _ string) {
	select {
	case h.trigger <- struct{}{}:
	default:
	}
}

// Run performs requested refreshes until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.trigger:
			refreshCtx, cancel := context.WithTimeout(ctx, h.refreshTimeout)
			if err := h.Refresh(refreshCtx); err != nil && ctx.Err() == nil {
				h.logger.Warn("audit feed refresh failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Refresh reads the latest events and pushes them to every subscriber.
func (h *Hub) Refresh(ctx context.Context) error {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	events, err := h.repo.Recent(ctx, h.limit)
	if err != nil {
		h.mu.Lock()
		h.lastErr = err
		h.mu.Unlock()
		return err
	}
	snapshot := h.snapshot(events)

	h.mu.Lock()
	h.latest = snapshot
	h.loaded = true
	h.refreshes++
	h.lastRefresh = h.now()
	h.lastErr = nil
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(cloneEvents(snapshot))
	}
	return nil
}

// Recent reads up to limit events straight from the store, ordered and
// normalised like a snapshot.
func (h *Hub) Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 || limit > h.limit {
		limit = h.limit
	}
	events, err := h.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	snapshot := h.snapshot(events)
	if len(snapshot) > limit {
		snapshot = snapshot[:limit]
	}
	return snapshot, nil
}

// Latest returns the most recent snapshot held by the hub.
func (h *Hub) Latest() []domain.AuditEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneEvents(h.latest)
}

func (h *Hub) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	status := Status{
		Subscribers: len(h.subs),
		Events:      len(h.latest),
		Refreshes:   h.refreshes,
		LastRefresh: h.lastRefresh,
	}
	if h.lastErr != nil {
		status.LastError = h.lastErr.Error()
	}
	if h.stallAfter > 0 {
		since := h.lastRefresh
		if since.IsZero() {
			since = h.started
		}
		status.Stalled = h.now().Sub(since) > h.stallAfter
	}
	return status
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// snapshot normalises missing timestamps, orders newest first and caps the
// result at the feed limit.
func (h *Hub) snapshot(events []domain.AuditEvent) []domain.AuditEvent {
	now := h.now()
	out := make([]domain.AuditEvent, len(events))
	for i, e := range events {
		out[i] = e.Normalized(now)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > h.limit {
		out = out[:h.limit]
	}
	return out
}

func cloneEvents(events []domain.AuditEvent) []domain.AuditEvent {
	if events == nil {
		return []domain.AuditEvent{}
	}
	out := make([]domain.AuditEvent, len(events))
	copy(out, events)
	return out
}
