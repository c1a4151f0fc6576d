package papertrade

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/rgudla/papertrade/kv"
)

// The three record keys are a stable contract: other readers of the account
// file rely on them, so they never change across versions.
const (
	keyCashBalance  = "cash_balance"
	keyHoldings     = "holdings"
	keyTransactions = "transactions"
	keyWatchlist    = "watchlist"
)

// Repository loads and saves account snapshots. Mutation sites depend on
// this interface so tests can swap the disk store for an in-memory one.
type Repository interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// Store persists an account snapshot as three named records in a kv.File:
// the cash balance as decimal text, the holdings as a JSON array, and the
// transaction history as a JSON array.
type Store struct {
	file *kv.File
}

// NewStore returns a store over the given document.
func NewStore(file *kv.File) *Store { return &Store{file: file} }

// OpenStore returns a store over the document at path.
func OpenStore(path string) *Store { return NewStore(kv.Open(path)) }

// Load reads the persisted snapshot. A missing file yields the seed account.
// A malformed record degrades that record to its seed value with a logged
// notice; loading never fails on bad content, only on I/O errors the caller
// can act on.
func (s *Store) Load() (Snapshot, error) {
	snapshot := NewSnapshot()

	raw, ok, err := s.file.Get(keyCashBalance)
	if err != nil {
		// The whole document is unreadable; every record degrades to seed.
		log.Printf("account file %q unreadable, starting from seed: %v", s.file.Path(), err)
		return snapshot, nil
	}
	if ok {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			log.Printf("malformed %s record, using seed balance: %v", keyCashBalance, err)
		} else if cash, err := ParseMoney(text); err != nil {
			log.Printf("malformed %s record %q, using seed balance: %v", keyCashBalance, text, err)
		} else {
			snapshot.Cash = cash
		}
	}

	if raw, ok, _ := s.file.Get(keyHoldings); ok {
		var holdings []Holding
		if err := json.Unmarshal(raw, &holdings); err != nil {
			log.Printf("malformed %s record, using empty holdings: %v", keyHoldings, err)
		} else {
			snapshot.Holdings = holdings
			stableSortHoldings(snapshot.Holdings)
		}
	}

	if raw, ok, _ := s.file.Get(keyTransactions); ok {
		var transactions []Transaction
		if err := json.Unmarshal(raw, &transactions); err != nil {
			log.Printf("malformed %s record, using empty history: %v", keyTransactions, err)
		} else {
			snapshot.Transactions = transactions
		}
	}

	return snapshot, nil
}

// Save writes the three records in one atomic batch so that a crash
// mid-write can never leave them mutually inconsistent.
func (s *Store) Save(snapshot Snapshot) error {
	holdings := snapshot.Holdings
	if holdings == nil {
		holdings = []Holding{}
	}
	transactions := snapshot.Transactions
	if transactions == nil {
		transactions = []Transaction{}
	}

	cashRaw, err := json.Marshal(snapshot.Cash.Text())
	if err != nil {
		return fmt.Errorf("could not encode cash balance: %w", err)
	}
	holdingsRaw, err := json.Marshal(holdings)
	if err != nil {
		return fmt.Errorf("could not encode holdings: %w", err)
	}
	transactionsRaw, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("could not encode transactions: %w", err)
	}

	return s.file.SetAll(map[string][]byte{
		keyCashBalance:  cashRaw,
		keyHoldings:     holdingsRaw,
		keyTransactions: transactionsRaw,
	})
}

// Reset puts the account back to its seed state. The watchlist is a
// standing preference, not trading state, so it survives a reset.
func (s *Store) Reset() error { return s.Save(NewSnapshot()) }

// LoadWatchlist reads the persisted watchlist. Like the account records, a
// missing or malformed record degrades to an empty list, never an error.
func (s *Store) LoadWatchlist() (Watchlist, error) {
	raw, ok, err := s.file.Get(keyWatchlist)
	if err != nil {
		log.Printf("account file %q unreadable, starting with an empty watchlist: %v", s.file.Path(), err)
		return Watchlist{}, nil
	}
	if !ok {
		return Watchlist{}, nil
	}
	var w Watchlist
	if err := json.Unmarshal(raw, &w); err != nil {
		log.Printf("malformed %s record, using an empty watchlist: %v", keyWatchlist, err)
		return Watchlist{}, nil
	}
	return w, nil
}

// SaveWatchlist writes the watchlist record, leaving the account records
// untouched.
func (s *Store) SaveWatchlist(w Watchlist) error {
	if w == nil {
		w = Watchlist{}
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("could not encode watchlist: %w", err)
	}
	return s.file.SetAll(map[string][]byte{keyWatchlist: raw})
}

// MemoryRepository is an in-memory Repository for tests and dry runs.
type MemoryRepository struct {
	snapshot Snapshot
}

// NewMemoryRepository returns a repository holding the seed account.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snapshot: NewSnapshot()}
}

func (m *MemoryRepository) Load() (Snapshot, error) { return m.snapshot.Clone(), nil }

func (m *MemoryRepository) Save(s Snapshot) error {
	m.snapshot = s.Clone()
	return nil
}
