package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mergington/activities/internal/app/viewcontroller"
	clockport "github.com/mergington/activities/internal/ports/out/clock"
)

const (
	flashCookie = "ui_flash"
	flashTTL    = time.Minute
)

type flashEntry struct {
	page    viewcontroller.Page
	expires time.Time
}

// flashStore parks the page produced by a form POST until the redirected GET picks it up.
// Entries are read at most once. It is safe for concurrent use.
type flashStore struct {
	mu sync.Mutex
	m  map[string]flashEntry

	clk clockport.Clock
	ttl time.Duration
}

func newFlashStore(clk clockport.Clock, ttl time.Duration) *flashStore {
	return &flashStore{
		m:   make(map[string]flashEntry),
		clk: clk,
		ttl: ttl,
	}
}

// put stores p and returns the id to hand back to the browser.
func (s *flashStore) put(p viewcontroller.Page) string {
	id := uuid.NewString()
	now := s.clk.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.m {
		if !now.Before(e.expires) {
			delete(s.m, k)
		}
	}
	s.m[id] = flashEntry{page: p, expires: now.Add(s.ttl)}
	return id
}

// take removes and returns the page stored under id.
func (s *flashStore) take(id string) (viewcontroller.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return viewcontroller.Page{}, false
	}
	delete(s.m, id)
	if !s.clk.Now().Before(e.expires) {
		return viewcontroller.Page{}, false
	}
	return e.page, true
}
