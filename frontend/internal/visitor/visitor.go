// Package visitor keeps the server-side state of each browser: its session
// controller, its backend client (with the backend cookie jar) and its
// notification queue.
package visitor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/microsmart/portal/frontend/internal/apiclient"
	"github.com/microsmart/portal/frontend/internal/notify"
	"github.com/microsmart/portal/frontend/internal/session"
	"github.com/microsmart/portal/shared/logger"
	"github.com/microsmart/portal/shared/middleware/metrics"
)

type Visitor struct {
	Id            string
	Session       *session.Controller
	API           *apiclient.APIClient
	Notifications *notify.Queue

	lastSeen atomic.Int64 // unix nanos

	flashMu sync.Mutex
	flash   map[string]string
}

// SetFlash keeps a value for the next page that asks for key.
func (v *Visitor) SetFlash(key, value string) {
	v.flashMu.Lock()
	defer v.flashMu.Unlock()
	if v.flash == nil {
		v.flash = make(map[string]string)
	}
	v.flash[key] = value
}

// TakeFlash returns the value stored under key and forgets it.
func (v *Visitor) TakeFlash(key string) string {
	v.flashMu.Lock()
	defer v.flashMu.Unlock()
	value := v.flash[key]
	delete(v.flash, key)
	return value
}

func (v *Visitor) touch(now time.Time) { v.lastSeen.Store(now.UnixNano()) }

func (v *Visitor) LastSeen() time.Time { return time.Unix(0, v.lastSeen.Load()) }

type Store struct {
	mu       sync.RWMutex
	visitors map[string]*Visitor

	baseURL    string
	clientOpts []apiclient.Option
	ttl        time.Duration
	capacity   int // 0 means unbounded
	now        func() time.Time
	log        *slog.Logger
}

// NewStore creates visitors whose API clients talk to baseURL. Visitors idle
// for longer than ttl are dropped by Sweep.
func NewStore(baseURL string, ttl time.Duration, clientOpts ...apiclient.Option) *Store {
	return &Store{
		visitors:   make(map[string]*Visitor),
		baseURL:    baseURL,
		clientOpts: clientOpts,
		ttl:        ttl,
		now:        time.Now,
		log:        logger.Component("visitor_store"),
	}
}

// SetCapacity bounds the store to n visitors. Creating one more evicts the
// least recently seen visitor.
func (s *Store) SetCapacity(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacity = n
}

// Get returns a live visitor and marks it as seen.
func (s *Store) Get(id string) (*Visitor, bool) {
	s.mu.RLock()
	v, ok := s.visitors[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	v.touch(s.now())
	return v, true
}

// Create registers a fresh visitor with a random id. Its session starts
// Unknown and is probed on the first guarded request.
func (s *Store) Create() *Visitor {
	v := &Visitor{
		Id:            uuid.NewString(),
		Notifications: notify.NewQueue(notify.DefaultCapacity),
	}
	opts := []apiclient.Option{
		apiclient.WithNotifier(v.Notifications),
		apiclient.WithUnauthorizedHook(func() {
			if v.Session.Reset() == session.StateAuthenticated {
				s.log.Info("visitor session expired", "visitor", v.Id)
			}
		}),
	}
	v.API = apiclient.New(s.baseURL, append(opts, s.clientOpts...)...)
	v.Session = session.New(v.API)
	v.touch(s.now())

	s.mu.Lock()
	evicted := s.evictLocked()
	s.visitors[v.Id] = v
	n := len(s.visitors)
	s.mu.Unlock()

	if evicted > 0 {
		s.log.Debug("store full, evicted least recently seen visitors", "count", evicted)
	}
	metrics.SetVisitors(n)
	return v
}

// evictLocked makes room for one more visitor. It must be called with mu held.
func (s *Store) evictLocked() int {
	removed := 0
	for s.capacity > 0 && len(s.visitors) >= s.capacity {
		var oldestId string
		var oldest int64
		for id, v := range s.visitors {
			if seen := v.lastSeen.Load(); oldestId == "" || seen < oldest {
				oldestId, oldest = id, seen
			}
		}
		delete(s.visitors, oldestId)
		removed++
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visitors)
}

// Sweep drops idle visitors and returns how many were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, v := range s.visitors {
		if v.LastSeen().Before(cutoff) {
			delete(s.visitors, id)
			removed++
		}
	}
	n := len(s.visitors)
	s.mu.Unlock()

	metrics.SetVisitors(n)
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	s.log.Info("started visitor sweeper", "interval", interval, "ttl", s.ttl)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 {
					s.log.Debug("evicted idle visitors", "count", removed, "remaining", s.Len())
				}
			case <-ctx.Done():
				s.log.Info("visitor sweeper shutting down")
				return
			}
		}
	}()
}
