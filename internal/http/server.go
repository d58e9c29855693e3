// Package http exposes the aggregation and recurrence engine over a
// JSON API. It is a thin transport: all semantics live in the engine
// packages.
package http

import (
	"container/list"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// Store is what the handlers need from persistence: immutable snapshots
// per request, never writes.
type Store interface {
	SnapshotTransactions(ctx context.Context, workspaceID string) ([]core.Transaction, error)
	LoadNames(ctx context.Context, workspaceID string) (*storage.NameIndex, error)
	ListRecurringDefinitions(ctx context.Context, workspaceID string) ([]core.RecurringDefinition, error)
	GetBudget(ctx context.Context, id string) (core.Budget, error)
}

type Server struct {
	store        Store
	mux          *http.ServeMux
	httpServer   *http.Server
	summaryCache *ttlCache[[]byte]
}

func NewServer(port string, store Store) *Server {
	s := &Server{
		store:        store,
		mux:          http.NewServeMux(),
		summaryCache: newTTLCache[[]byte](256, 30*time.Second),
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)
	s.mux.HandleFunc("GET /api/top", s.handleTop)
	s.mux.HandleFunc("GET /api/balance", s.handleBalance)
	s.mux.HandleFunc("GET /api/currencies", s.handleCurrencies)
	s.mux.HandleFunc("GET /api/recurring/due", s.handleDueItems)
	s.mux.HandleFunc("GET /api/budgets/{id}/progress", s.handleBudgetProgress)

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      requestLogger(s.mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "Request handled",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// ttlCache is a small LRU cache with per-entry TTL, used to absorb
// dashboard refresh bursts on the summary endpoints.
type ttlCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newTTLCache[T any](maxSize int, ttl time.Duration) *ttlCache[T] {
	return &ttlCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *ttlCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *ttlCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *ttlCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}
