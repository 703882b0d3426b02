package portfolio

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"cryptoapp-backend/internal/domain"
)

// DuplicateSymbolPolicy names the behavior when an upload line carries a
// symbol the portfolio already holds.
type DuplicateSymbolPolicy string

// DuplicateFirstWins keeps the existing holding and silently drops the new
// line. The first uploaded values for a symbol are never overwritten.
const DuplicateFirstWins DuplicateSymbolPolicy = "first-wins"

// MissingPricePolicy names the behavior when a held symbol is absent from
// the latest quote batch.
type MissingPricePolicy string

// MissingPriceZeroFill prices an unquoted holding at zero rather than
// leaving a stale price in place.
const MissingPriceZeroFill MissingPricePolicy = "zero-fill"

// SymbolMatchPolicy controls how two symbols are compared, both for
// duplicate detection on merge and for quote lookup on repricing. The zero
// value is exact, case-sensitive, untrimmed comparison.
type SymbolMatchPolicy struct {
	IgnoreCase bool
	TrimSpace  bool
}

// Canon maps a symbol to its comparison form under the policy.
func (p SymbolMatchPolicy) Canon(symbol string) string {
	if p.TrimSpace {
		symbol = strings.TrimSpace(symbol)
	}
	if p.IgnoreCase {
		symbol = strings.ToUpper(symbol)
	}
	return symbol
}

// Policies bundles the engine's business-rule knobs.
type Policies struct {
	DuplicateSymbol DuplicateSymbolPolicy
	MissingPrice    MissingPricePolicy
	SymbolMatch     SymbolMatchPolicy
}

// DefaultPolicies: first upload wins, unquoted symbols priced at zero,
// exact symbol comparison.
func DefaultPolicies() Policies {
	return Policies{
		DuplicateSymbol: DuplicateFirstWins,
		MissingPrice:    MissingPriceZeroFill,
	}
}

// Engine recomputes portfolio aggregates. All monetary sums are decimal;
// only the percentage fields are floats.
type Engine struct {
	policies Policies
}

func NewEngine(policies Policies) *Engine {
	if policies.DuplicateSymbol == "" {
		policies.DuplicateSymbol = DuplicateFirstWins
	}
	if policies.MissingPrice == "" {
		policies.MissingPrice = MissingPriceZeroFill
	}
	return &Engine{policies: policies}
}

// Merge adds holding to the portfolio unless an existing holding matches its
// symbol under the symbol-match policy. Returns false when the holding was
// dropped as a duplicate; that is not an error, per DuplicateFirstWins.
func (e *Engine) Merge(p *domain.Portfolio, holding domain.Holding) bool {
	canon := e.policies.SymbolMatch.Canon(holding.Coin)
	for i := range p.Holdings {
		if e.policies.SymbolMatch.Canon(p.Holdings[i].Coin) == canon {
			log.Debug().Str("coin", holding.Coin).Msg("duplicate symbol dropped, first upload wins")
			return false
		}
	}
	holding.PortfolioID = p.PortfolioID
	p.Holdings = append(p.Holdings, holding)
	return true
}

// Reprice runs the full recompute pipeline in its required order:
// current prices, current value, initial value, overall change, per-holding
// change. It is the only way to recompute derived values, so callers cannot
// run the steps out of order. Running it twice with the same quotes yields
// the same result.
func (e *Engine) Reprice(p *domain.Portfolio, quotes map[string]decimal.Decimal) {
	e.priceHoldings(p, quotes)
	e.Revalue(p)
}

// Revalue recomputes derived values from the prices already on the holdings
// without touching them. Upload uses this: newly merged holdings keep their
// zero current price until the next refresh, but the portfolio totals must
// reflect the merged set immediately.
func (e *Engine) Revalue(p *domain.Portfolio) {
	e.recomputeCurrentValue(p)
	e.recomputeInitialValue(p)
	e.recomputeOverallChange(p)
	e.recomputeHoldingChanges(p)
}

// priceHoldings sets each holding's current price from the quote batch.
// A symbol absent from the batch is priced at zero, never left stale.
func (e *Engine) priceHoldings(p *domain.Portfolio, quotes map[string]decimal.Decimal) {
	lookup := make(map[string]decimal.Decimal, len(quotes))
	for symbol, price := range quotes {
		canon := e.policies.SymbolMatch.Canon(symbol)
		if _, ok := lookup[canon]; !ok {
			lookup[canon] = price
		}
	}
	for i := range p.Holdings {
		price, ok := lookup[e.policies.SymbolMatch.Canon(p.Holdings[i].Coin)]
		if !ok {
			price = decimal.Zero
		}
		p.Holdings[i].CurrentPrice = price
	}
}

func (e *Engine) recomputeCurrentValue(p *domain.Portfolio) {
	total := decimal.Zero
	for i := range p.Holdings {
		total = total.Add(p.Holdings[i].Amount.Mul(p.Holdings[i].CurrentPrice))
	}
	p.CurrentPortfolioValue = total
}

func (e *Engine) recomputeInitialValue(p *domain.Portfolio) {
	total := decimal.Zero
	for i := range p.Holdings {
		total = total.Add(p.Holdings[i].Amount.Mul(p.Holdings[i].InitialBuyPrice))
	}
	p.InitialPortfolioValue = total
}

func (e *Engine) recomputeOverallChange(p *domain.Portfolio) {
	p.OverallChangePercentage = changePercentage(p.InitialPortfolioValue, p.CurrentPortfolioValue)
}

func (e *Engine) recomputeHoldingChanges(p *domain.Portfolio) {
	for i := range p.Holdings {
		p.Holdings[i].ChangePercentage = changePercentage(p.Holdings[i].InitialBuyPrice, p.Holdings[i].CurrentPrice)
	}
}

// changePercentage returns (current-initial)/initial*100, or the sentinel 0
// when initial is zero. The zero-divisor case must never fault.
func changePercentage(initial, current decimal.Decimal) float64 {
	if initial.IsZero() {
		return 0
	}
	return current.Sub(initial).Div(initial).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
