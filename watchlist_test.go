package papertrade

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rgudla/papertrade/kv"
)

func TestWatchlist_Add(t *testing.T) {
	var w Watchlist

	w, added := w.Add("tcs")
	if !added || !reflect.DeepEqual(w, Watchlist{"TCS"}) {
		t.Fatalf("Add(tcs) = %v, %v", w, added)
	}
	w, added = w.Add("INFY")
	if !added || !reflect.DeepEqual(w, Watchlist{"TCS", "INFY"}) {
		t.Fatalf("Add(INFY) = %v, %v", w, added)
	}

	// adding an already-watched ticker is a no-op, whatever the case
	if again, added := w.Add("Tcs"); added || !reflect.DeepEqual(again, w) {
		t.Errorf("duplicate Add changed the list: %v, %v", again, added)
	}
	if again, added := w.Add(""); added || !reflect.DeepEqual(again, w) {
		t.Errorf("Add of an empty ticker changed the list: %v, %v", again, added)
	}
}

func TestWatchlist_Remove(t *testing.T) {
	w := Watchlist{"TCS", "INFY", "WIPRO"}

	next, removed := w.Remove("infy")
	if !removed || !reflect.DeepEqual(next, Watchlist{"TCS", "WIPRO"}) {
		t.Fatalf("Remove(infy) = %v, %v", next, removed)
	}
	// the input list is left alone
	if !reflect.DeepEqual(w, Watchlist{"TCS", "INFY", "WIPRO"}) {
		t.Errorf("Remove mutated its receiver: %v", w)
	}

	if again, removed := next.Remove("HDFC"); removed || !reflect.DeepEqual(again, next) {
		t.Errorf("Remove of an unwatched ticker changed the list: %v, %v", again, removed)
	}
}

func TestWatchlist_Contains(t *testing.T) {
	w := Watchlist{"TCS"}
	if !w.Contains("tcs") {
		t.Error("Contains is case-sensitive")
	}
	if w.Contains("INFY") {
		t.Error("Contains reported an unwatched ticker")
	}
}

func TestStore_WatchlistRoundTrip(t *testing.T) {
	s := tempStore(t)

	w, err := s.LoadWatchlist()
	if err != nil {
		t.Fatalf("LoadWatchlist: %v", err)
	}
	if len(w) != 0 {
		t.Fatalf("fresh watchlist = %v, want empty", w)
	}

	w, _ = w.Add("TCS")
	w, _ = w.Add("INFY")
	if err := s.SaveWatchlist(w); err != nil {
		t.Fatalf("SaveWatchlist: %v", err)
	}

	got, err := s.LoadWatchlist()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, Watchlist{"TCS", "INFY"}) {
		t.Errorf("watchlist = %v, want [TCS INFY]", got)
	}
}

func TestStore_WatchlistLeavesAccountUntouched(t *testing.T) {
	s := tempStore(t)
	account := Snapshot{
		Cash:         M(500),
		Holdings:     []Holding{{Ticker: "TCS", Quantity: 1}},
		Transactions: []Transaction{tx("TCS", Buy, 1, 100, 1)},
	}
	if err := s.Save(account); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveWatchlist(Watchlist{"INFY"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Cash.Equal(M(500)) || len(got.Holdings) != 1 || len(got.Transactions) != 1 {
		t.Errorf("saving the watchlist disturbed the account: %+v", got)
	}
}

func TestStore_WatchlistSurvivesReset(t *testing.T) {
	s := tempStore(t)
	if err := s.SaveWatchlist(Watchlist{"TCS"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	w, err := s.LoadWatchlist()
	if err != nil {
		t.Fatal(err)
	}
	if !w.Contains("TCS") {
		t.Errorf("reset wiped the watchlist: %v", w)
	}
}

func TestStore_MalformedWatchlistDegrades(t *testing.T) {
	s := tempStore(t)
	file := kv.Open(s.file.Path())
	if err := file.SetAll(map[string][]byte{"watchlist": []byte(`{"oops":true}`)}); err != nil {
		t.Fatal(err)
	}

	w, err := s.LoadWatchlist()
	if err != nil {
		t.Fatalf("LoadWatchlist over a corrupted record must not fail: %v", err)
	}
	if len(w) != 0 {
		t.Errorf("watchlist = %v, want empty", w)
	}
}

func TestStore_WatchlistWholeFileGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.json")
	if err := os.WriteFile(path, []byte("{{{{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	w, err := OpenStore(path).LoadWatchlist()
	if err != nil {
		t.Fatalf("LoadWatchlist over a garbage file must not fail: %v", err)
	}
	if len(w) != 0 {
		t.Errorf("watchlist = %v, want empty", w)
	}
}
