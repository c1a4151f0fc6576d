package papertrade

import (
	"fmt"
	"sync"
	"time"
)

// Book owns an account and serializes every mutation through one lock.
// Two trades fired concurrently from different surfaces are settled one
// after the other against the latest saved snapshot, so neither update is
// lost and the cash balance never double-spends.
type Book struct {
	mu   sync.Mutex
	repo Repository
	now  func() time.Time
}

// NewBook returns a book over the given repository.
func NewBook(repo Repository) *Book {
	return &Book{repo: repo, now: time.Now}
}

// Trade settles an order: load the latest snapshot, apply the order, save
// the result. A rejected order leaves the stored state untouched.
func (b *Book) Trade(o Order) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.repo.Load()
	if err != nil {
		return Snapshot{}, fmt.Errorf("could not load account: %w", err)
	}
	next, err := Apply(current, o, b.now())
	if err != nil {
		return Snapshot{}, err
	}
	if err := b.repo.Save(next); err != nil {
		return Snapshot{}, fmt.Errorf("could not save account: %w", err)
	}
	return next, nil
}

// Snapshot returns the current account state.
func (b *Book) Snapshot() (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.repo.Load()
}
