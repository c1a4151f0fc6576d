package papertrade

import (
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestBook_TradePersists(t *testing.T) {
	repo := NewMemoryRepository()
	book := NewBook(repo)
	book.now = func() time.Time { return tradingDay(1) }

	next, err := book.Trade(Order{Ticker: "TCS", Side: Buy, Quantity: 10, Price: M(100)})
	if err != nil {
		t.Fatalf("Trade: %v", err)
	}
	if want := M(999_000); !next.Cash.Equal(want) {
		t.Errorf("cash = %s, want %s", next.Cash, want)
	}

	stored, err := repo.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Cash.Equal(next.Cash) || stored.Quantity("TCS") != 10 {
		t.Errorf("trade was not persisted: %+v", stored)
	}
}

func TestBook_RejectionLeavesStoreUntouched(t *testing.T) {
	repo := NewMemoryRepository()
	book := NewBook(repo)

	if _, err := book.Trade(Order{Ticker: "TCS", Side: Sell, Quantity: 1, Price: M(100)}); !IsRejected(err, InsufficientHoldings) {
		t.Fatalf("expected an insufficient-holdings rejection, got %v", err)
	}

	stored, err := repo.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Cash.Equal(M(SeedCash)) || len(stored.Transactions) != 0 {
		t.Errorf("a rejected trade modified the stored account: %+v", stored)
	}
}

// Two surfaces firing trades at the same time must both settle; neither may
// overwrite the other's update.
func TestBook_ConcurrentTradesLoseNoUpdate(t *testing.T) {
	book := NewBook(OpenStore(filepath.Join(t.TempDir(), "account.json")))

	const traders = 8
	const tradesEach = 5

	var wg sync.WaitGroup
	for i := 0; i < traders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < tradesEach; j++ {
				if _, err := book.Trade(Order{Ticker: "TCS", Side: Buy, Quantity: 1, Price: M(10)}); err != nil {
					t.Errorf("Trade: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	final, err := book.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	wantQty := int64(traders * tradesEach)
	if got := final.Quantity("TCS"); got != wantQty {
		t.Errorf("final holding = %d, want %d", got, wantQty)
	}
	if want := M(SeedCash - 10*traders*tradesEach); !final.Cash.Equal(want) {
		t.Errorf("final cash = %s, want %s", final.Cash, want)
	}
	if got := len(final.Transactions); got != traders*tradesEach {
		t.Errorf("transaction count = %d, want %d", got, traders*tradesEach)
	}
}
