// Package script runs line-oriented command scripts against a market
// session. Each non-blank line is one command; '#' starts a comment.
//
//	list     <company> <exchange> <shares> <price>
//	policy   <exchange> <increment|decrement> <k>
//	buy      <operator> <company> <exchange> <quantity>
//	sell     <operator> <company> <exchange> <quantity>
//	deposit  <operator> <amount>
//	withdraw <operator> <amount>
//	price    <company> <exchange>
//	available <company> <exchange>
//	held     <operator> <company> <exchange>
//	budget   <operator>
//	history  <company> <exchange>
//	portfolio <operator>
//
// Names containing spaces can be double-quoted.
package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/efreitasn/borsanova/internal/service"
)

// LineError reports the script line a command failed on.
type LineError struct {
	Line    int
	Command string
	Err     error
}

func (e *LineError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Command, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Runner executes scripts against a Market and writes command output to Out.
type Runner struct {
	Market *service.Market
	Out    io.Writer

	// KeepGoing reports failed commands to Out and continues instead of
	// stopping at the first failure.
	KeepGoing bool
}

// command executes one parsed line.
type command struct {
	args int
	run  func(r *Runner, args []string) error
}

var commands = map[string]command{
	"list":      {4, (*Runner).list},
	"policy":    {3, (*Runner).policy},
	"buy":       {4, (*Runner).buy},
	"sell":      {4, (*Runner).sell},
	"deposit":   {2, (*Runner).deposit},
	"withdraw":  {2, (*Runner).withdraw},
	"price":     {2, (*Runner).price},
	"available": {2, (*Runner).available},
	"held":      {3, (*Runner).held},
	"budget":    {1, (*Runner).budget},
	"history":   {2, (*Runner).history},
	"portfolio": {1, (*Runner).portfolio},
}

// Run reads src line by line and executes each command. It returns the
// number of failed commands and, unless KeepGoing is set, the first
// failure as a *LineError. Cancelling ctx stops before the next line.
func (r *Runner) Run(ctx context.Context, src io.Reader) (int, error) {
	scanner := bufio.NewScanner(src)
	failed := 0
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		fields, err := split(scanner.Text())
		if err != nil {
			failed++
			if lerr := r.fail(line, "", err); lerr != nil {
				return failed, lerr
			}
			continue
		}
		if len(fields) == 0 {
			continue
		}

		name := strings.ToLower(fields[0])
		if err := r.exec(name, fields[1:]); err != nil {
			failed++
			if lerr := r.fail(line, name, err); lerr != nil {
				return failed, lerr
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("reading script: %w", err)
	}
	return failed, nil
}

// Exec runs a single command line.
func (r *Runner) Exec(text string) error {
	fields, err := split(text)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return r.exec(strings.ToLower(fields[0]), fields[1:])
}

func (r *Runner) exec(name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	if len(args) != cmd.args {
		return fmt.Errorf("expected %d arguments, got %d", cmd.args, len(args))
	}
	return cmd.run(r, args)
}

func (r *Runner) fail(line int, name string, err error) error {
	lerr := &LineError{Line: line, Command: name, Err: err}
	if !r.KeepGoing {
		return lerr
	}
	fmt.Fprintf(r.Out, "error: %v\n", lerr)
	return nil
}

func (r *Runner) list(args []string) error {
	shares, price, err := parsePair(args[2], args[3])
	if err != nil {
		return err
	}
	if err := r.Market.List(args[0], args[1], shares, price); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "listed %s on %s: %d shares at %d\n", args[0], args[1], shares, price)
	return nil
}

func (r *Runner) policy(args []string) error {
	k, err := parseInt(args[2])
	if err != nil {
		return err
	}
	p, err := r.Market.SetPolicy(args[0], args[1], k)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s policy %s\n", args[0], p.Name())
	return nil
}

func (r *Runner) buy(args []string) error {
	qty, err := parseInt(args[3])
	if err != nil {
		return err
	}
	cost, err := r.Market.Buy(args[0], args[1], args[2], qty)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s bought %d %s on %s for %d\n", args[0], qty, args[1], args[2], cost)
	return nil
}

func (r *Runner) sell(args []string) error {
	qty, err := parseInt(args[3])
	if err != nil {
		return err
	}
	revenue, err := r.Market.Sell(args[0], args[1], args[2], qty)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s sold %d %s on %s for %d\n", args[0], qty, args[1], args[2], revenue)
	return nil
}

func (r *Runner) deposit(args []string) error {
	amount, err := parseInt(args[1])
	if err != nil {
		return err
	}
	if err := r.Market.Deposit(args[0], amount); err != nil {
		return err
	}
	return r.budget(args[:1])
}

func (r *Runner) withdraw(args []string) error {
	amount, err := parseInt(args[1])
	if err != nil {
		return err
	}
	if err := r.Market.Withdraw(args[0], amount); err != nil {
		return err
	}
	return r.budget(args[:1])
}

func (r *Runner) price(args []string) error {
	p, err := r.Market.Price(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s on %s: price %d\n", args[0], args[1], p)
	return nil
}

func (r *Runner) available(args []string) error {
	n, err := r.Market.Available(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s on %s: %d available\n", args[0], args[1], n)
	return nil
}

func (r *Runner) held(args []string) error {
	n, err := r.Market.Held(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s holds %d %s on %s\n", args[0], n, args[1], args[2])
	return nil
}

func (r *Runner) budget(args []string) error {
	b, err := r.Market.Budget(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%s budget %d\n", args[0], b)
	return nil
}

func (r *Runner) history(args []string) error {
	for _, t := range r.Market.Trades(args[0], args[1]) {
		fmt.Fprintf(r.Out, "%s %s %s %d @ %d = %d -> %d\n",
			t.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
			t.Operator, t.Side, t.Quantity, t.Price, t.Total, t.PriceAfter)
	}
	return nil
}

func (r *Runner) portfolio(args []string) error {
	positions, err := r.Market.Portfolio(args[0])
	if err != nil {
		return err
	}
	var value int64
	for _, p := range positions {
		fmt.Fprintf(r.Out, "%s %s %d @ %d\n", p.Exchange, p.Company, p.Shares, p.Price)
		value += p.Shares * p.Price
	}
	fmt.Fprintf(r.Out, "%s portfolio value %d\n", args[0], value)
	return nil
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return v, nil
}

func parsePair(a, b string) (int64, int64, error) {
	x, err := parseInt(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseInt(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// split breaks a line into fields, honouring double quotes and dropping
// anything after an unquoted '#'.
func split(line string) ([]string, error) {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
		inField bool
	)
scan:
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inField = true
		case quoted:
			current.WriteRune(r)
		case r == '#':
			break scan
		case r == ' ' || r == '\t':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}
