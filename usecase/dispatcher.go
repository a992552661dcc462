package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/fastygo/erp-audit/domain"
)

type QueryHandler func(ctx context.Context, params interface{}) (interface{}, error)

// Dispatcher routes named read-only queries to their handlers.
type Dispatcher struct {
	qryHandlers map[string]QueryHandler
	mu          sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		qryHandlers: make(map[string]QueryHandler),
	}
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.qryHandlers[name] = handler
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.qryHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.NewError(domain.ErrCodeNotFound, "unknown report "+name)
	}
	return handler(ctx, params)
}

// Queries lists the registered query names.
func (d *Dispatcher) Queries() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.qryHandlers))
	for name := range d.qryHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
