package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/efreitasn/borsanova/internal/domain"
)

func newTestTrade(id, exchange, company string, executedAt time.Time) *domain.Trade {
	return &domain.Trade{
		TradeID:    id,
		Exchange:   exchange,
		Company:    company,
		Operator:   "Mario",
		Side:       domain.SideBuy,
		Price:      10,
		Quantity:   10,
		Total:      100,
		PriceAfter: 10,
		ExecutedAt: executedAt,
	}
}

func TestTradeStore_RecordAndGet(t *testing.T) {
	s := NewTradeStore(0)
	now := time.Now()

	s.Record(newTestTrade("trade-1", "MIB", "Acme", now))
	s.Record(newTestTrade("trade-2", "MIB", "Acme", now.Add(time.Second)))

	trades := s.Get("MIB", "Acme")
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].TradeID != "trade-1" {
		t.Fatalf("expected trade-1 first, got %s", trades[0].TradeID)
	}
	if trades[1].TradeID != "trade-2" {
		t.Fatalf("expected trade-2 second, got %s", trades[1].TradeID)
	}
}

func TestTradeStore_Get_Empty(t *testing.T) {
	s := NewTradeStore(0)

	trades := s.Get("MIB", "Acme")
	if trades == nil {
		t.Fatal("expected non-nil empty slice, got nil")
	}
	if len(trades) != 0 {
		t.Fatalf("expected 0 trades, got %d", len(trades))
	}
}

func TestTradeStore_KeysAreIndependent(t *testing.T) {
	s := NewTradeStore(0)
	now := time.Now()

	s.Record(newTestTrade("trade-1", "MIB", "Acme", now))
	s.Record(newTestTrade("trade-2", "NYSE", "Acme", now))
	s.Record(newTestTrade("trade-3", "MIB", "Beta", now))

	for _, tc := range []struct{ exchange, company, id string }{
		{"MIB", "Acme", "trade-1"},
		{"NYSE", "Acme", "trade-2"},
		{"MIB", "Beta", "trade-3"},
	} {
		trades := s.Get(tc.exchange, tc.company)
		if len(trades) != 1 || trades[0].TradeID != tc.id {
			t.Errorf("Get(%s, %s) = %v, want only %s", tc.exchange, tc.company, trades, tc.id)
		}
	}
}

func TestTradeStore_Get_ReturnsCopy(t *testing.T) {
	s := NewTradeStore(0)
	s.Record(newTestTrade("trade-1", "MIB", "Acme", time.Now()))

	trades := s.Get("MIB", "Acme")
	trades[0] = nil

	again := s.Get("MIB", "Acme")
	if again[0] == nil {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestTradeStore_LimitKeepsMostRecent(t *testing.T) {
	s := NewTradeStore(3)
	now := time.Now()
	for i := 1; i <= 5; i++ {
		s.Record(newTestTrade(fmt.Sprintf("trade-%d", i), "MIB", "Acme", now.Add(time.Duration(i)*time.Second)))
	}

	trades := s.Get("MIB", "Acme")
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	if trades[0].TradeID != "trade-3" || trades[2].TradeID != "trade-5" {
		t.Fatalf("expected trade-3..trade-5, got %s..%s", trades[0].TradeID, trades[2].TradeID)
	}
}

func TestTradeStore_Last(t *testing.T) {
	s := NewTradeStore(0)
	if _, ok := s.Last("MIB", "Acme"); ok {
		t.Fatal("expected no last trade on empty store")
	}

	now := time.Now()
	s.Record(newTestTrade("trade-1", "MIB", "Acme", now))
	s.Record(newTestTrade("trade-2", "MIB", "Acme", now.Add(time.Second)))

	last, ok := s.Last("MIB", "Acme")
	if !ok || last.TradeID != "trade-2" {
		t.Fatalf("Last = %v, want trade-2", last)
	}
}

func TestTradeStore_ConcurrentRecord(t *testing.T) {
	s := NewTradeStore(0)
	var wg sync.WaitGroup
	now := time.Now()

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			s.Record(newTestTrade(id, "MIB", "Acme", now))
		}(fmt.Sprintf("trade-%d", i))
	}
	wg.Wait()

	if got := len(s.Get("MIB", "Acme")); got != 100 {
		t.Fatalf("expected 100 trades, got %d", got)
	}
}
