package script

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/efreitasn/borsanova/internal/domain"
	"github.com/efreitasn/borsanova/internal/service"
)

func newTestRunner() (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	m := service.NewMarket(service.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) },
	})
	return &Runner{Market: m, Out: &out}, &out
}

const scenario = `
# Example session on MIB.
list Acme MIB 100 10
buy Mario Acme MIB 10
policy MIB increment 2
buy Mario Acme MIB 5
price Acme MIB
sell Mario Acme MIB 3   # revenue at the pre-trade price
available Acme MIB
held Mario Acme MIB
`

func TestRun_Scenario(t *testing.T) {
	r, out := newTestRunner()

	failed, err := r.Run(context.Background(), strings.NewReader(scenario))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failed != 0 {
		t.Fatalf("failed = %d, want 0", failed)
	}

	want := []string{
		"listed Acme on MIB: 100 shares at 10",
		"Mario bought 10 Acme on MIB for 100",
		"MIB policy increment(2)",
		"Mario bought 5 Acme on MIB for 50",
		"Acme on MIB: price 12",
		"Mario sold 3 Acme on MIB for 36",
		"Acme on MIB: 88 available",
		"Mario holds 12 Acme on MIB",
	}
	got := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("output lines = %d, want %d:\n%s", len(got), len(want), out.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRun_StopsAtFirstError(t *testing.T) {
	r, out := newTestRunner()
	src := "list Acme MIB 10 10\nbuy Mario Acme MIB 11\nbuy Mario Acme MIB 1\n"

	failed, err := r.Run(context.Background(), strings.NewReader(src))
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	var lerr *LineError
	if !errors.As(err, &lerr) {
		t.Fatalf("error = %v, want *LineError", err)
	}
	if lerr.Line != 2 || lerr.Command != "buy" {
		t.Errorf("LineError = %+v, want line 2, buy", lerr)
	}
	if !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Errorf("error = %v, want ErrInsufficientInventory", err)
	}
	if strings.Contains(out.String(), "bought 1 ") {
		t.Error("commands after the failure should not run")
	}
}

func TestRun_KeepGoing(t *testing.T) {
	r, out := newTestRunner()
	r.KeepGoing = true
	src := `list Acme MIB 10 10
sell Mario Acme MIB 1
bogus
buy Mario Acme MIB
buy Mario "Acme MIB 1
buy Mario Acme MIB 1
`

	failed, err := r.Run(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failed != 4 {
		t.Errorf("failed = %d, want 4", failed)
	}
	text := out.String()
	for _, want := range []string{
		"error: line 2: sell: insufficient_holdings",
		`error: line 3: bogus: unknown command "bogus"`,
		"error: line 4: buy: expected 4 arguments, got 3",
		"error: line 5: unterminated quote",
		"Mario bought 1 Acme on MIB for 10",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	r, _ := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, strings.NewReader("budget Mario\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestExec_BudgetCommands(t *testing.T) {
	r, out := newTestRunner()

	for _, line := range []string{
		"deposit Mario 100",
		"withdraw Mario 30",
		"budget Mario",
	} {
		if err := r.Exec(line); err != nil {
			t.Fatalf("Exec(%q): %v", line, err)
		}
	}
	if err := r.Exec("withdraw Mario 500"); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Errorf("overdraw error = %v, want ErrInsufficientFunds", err)
	}
	if err := r.Exec("deposit Mario ten"); err == nil {
		t.Error("expected error for non-integer amount")
	}

	want := "Mario budget 100\nMario budget 70\nMario budget 70\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestExec_QuotedNames(t *testing.T) {
	r, out := newTestRunner()

	if err := r.Exec(`list "Acme Corp" "Borsa Italiana" 5 3`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if err := r.Exec(`price "Acme Corp" "Borsa Italiana"`); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !strings.Contains(out.String(), "Acme Corp on Borsa Italiana: price 3") {
		t.Errorf("output = %q", out.String())
	}
}

func TestExec_HistoryAndPortfolio(t *testing.T) {
	r, out := newTestRunner()
	for _, line := range []string{
		"list Acme MIB 10 4",
		"list Beta MIB 10 6",
		"policy MIB decrement 1",
		"buy Mario Acme MIB 3",
		"buy Mario Beta MIB 2",
		"sell Mario Acme MIB 1",
	} {
		if err := r.Exec(line); err != nil {
			t.Fatalf("Exec(%q): %v", line, err)
		}
	}
	out.Reset()

	if err := r.Exec("history Acme MIB"); err != nil {
		t.Fatalf("history: %v", err)
	}
	want := "2025-01-01T12:00:00Z Mario buy 3 @ 4 = 12 -> 4\n" +
		"2025-01-01T12:00:00Z Mario sell 1 @ 4 = 4 -> 3\n"
	if out.String() != want {
		t.Errorf("history = %q, want %q", out.String(), want)
	}
	out.Reset()

	if err := r.Exec("portfolio Mario"); err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	want = "MIB Acme 2 @ 3\nMIB Beta 2 @ 6\nMario portfolio value 18\n"
	if out.String() != want {
		t.Errorf("portfolio = %q, want %q", out.String(), want)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"comment only", "   # nothing", nil, false},
		{"plain", "buy Mario Acme MIB 1", []string{"buy", "Mario", "Acme", "MIB", "1"}, false},
		{"tabs", "price\tAcme\t MIB", []string{"price", "Acme", "MIB"}, false},
		{"quoted", `held "Mario Rossi" Acme MIB`, []string{"held", "Mario Rossi", "Acme", "MIB"}, false},
		{"hash inside quotes", `budget "A#1"`, []string{"budget", "A#1"}, false},
		{"trailing comment", "budget Mario # note", []string{"budget", "Mario"}, false},
		{"unterminated", `budget "Mario`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := split(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("split(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("split(%q): %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("split(%q) = %q, want %q", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("split(%q) = %q, want %q", tt.input, got, tt.want)
				}
			}
		})
	}
}

func TestExec_QueriesLeaveSessionUntouched(t *testing.T) {
	r, out := newTestRunner()
	if err := r.Exec("list Acme MIB 10 4"); err != nil {
		t.Fatalf("list: %v", err)
	}

	if err := r.Exec("price Acme NYSE"); !errors.Is(err, domain.ErrNotListed) {
		t.Errorf("price on unknown exchange error = %v, want ErrNotListed", err)
	}
	if err := r.Exec("held Luigi Acme NYSE"); err != nil {
		t.Errorf("held: %v", err)
	}
	if !strings.Contains(out.String(), "Luigi holds 0 Acme on NYSE") {
		t.Errorf("output = %q", out.String())
	}
	if got := r.Market.Exchanges(); len(got) != 1 {
		t.Errorf("Exchanges() = %v, want only MIB", got)
	}
	if got := r.Market.Operators(); len(got) != 0 {
		t.Errorf("Operators() = %v, want none", got)
	}
}
