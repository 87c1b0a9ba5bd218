package cart

import "sync"

// Store maps account ids to their active cart. Individual carts have a single
// writer (the session), but the map itself is hit from concurrent requests,
// so access to it is guarded.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Get returns the account's cart, creating an empty one on first use.
func (s *Store) Get(accountID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[accountID]
	if !ok {
		c = New()
		s.carts[accountID] = c
	}
	return c
}

// Drop forgets the account's cart entirely.
func (s *Store) Drop(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, accountID)
}
