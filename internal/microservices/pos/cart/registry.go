package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound    = errors.New("cart session not found")
	ErrCheckoutInProgress = errors.New("checkout already in progress for this cart")
)

type session struct {
	cart        *Cart
	lastUsed    time.Time
	checkingOut bool
}

// Registry owns one cart per POS session. All access to a cart goes through
// Update or Snapshot, which run under the registry lock, so each cart keeps a
// single writer.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session), now: time.Now}
}

// Create opens an empty cart and returns its session id.
func (r *Registry) Create() string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = &session{cart: New(), lastUsed: r.now()}
	r.mu.Unlock()
	return id
}

func (r *Registry) Update(id string, fn func(c *Cart) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.lastUsed = r.now()
	return fn(s.cart)
}

// Snapshot returns a copy of the session's line items.
func (r *Registry) Snapshot(id string) ([]LineItem, error) {
	var items []LineItem
	err := r.Update(id, func(c *Cart) error {
		items = c.Items()
		return nil
	})
	return items, err
}

// BeginCheckout marks the session as checking out and returns the lines to
// order. A second call before EndCheckout gets ErrCheckoutInProgress. The cart
// stays editable meanwhile.
func (r *Registry) BeginCheckout(id string) ([]LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.checkingOut {
		return nil, ErrCheckoutInProgress
	}
	s.checkingOut = true
	s.lastUsed = r.now()
	return s.cart.Items(), nil
}

// EndCheckout clears the marker and deducts ordered from the cart. Pass nil
// when the checkout failed. A session swept in between is ignored.
func (r *Registry) EndCheckout(id string, ordered []LineItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return
	}
	s.checkingOut = false
	s.cart.Deduct(ordered)
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for id, s := range r.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
