// Package pricing computes stay prices from ISO-week season tiers.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TierLow    = "low"
	TierHigh   = "high"
	TierTennis = "tennis"

	HighSeasonFrom = 24
	HighSeasonTo   = 32
)

var (
	ErrInvalidWeek    = errors.New("pricing: week out of range 1..53")
	ErrNegativeRate   = errors.New("pricing: negative rate")
	ErrEmptyTennisSet = errors.New("pricing: empty tennis week set")
)

// The premium tennis weeks are defined two ways in the residence's rules.
// Both are kept until the owner settles on one.
var (
	TennisWeeksWide    = []int{27, 28, 29}
	TennisWeeksNarrow  = []int{28, 29}
	DefaultTennisWeeks = TennisWeeksWide
)

// SeasonRule prices every ISO week in [FromWeek, ToWeek].
type SeasonRule struct {
	Name     string
	FromWeek int
	ToWeek   int
	Rate     decimal.Decimal
}

func (r SeasonRule) matches(week int) bool { return week >= r.FromWeek && week <= r.ToWeek }

// SeasonTable is an ordered rule list; the first matching rule wins and
// Default applies when nothing matches.
type SeasonTable struct {
	Rules       []SeasonRule
	DefaultName string
	Default     decimal.Decimal
}

// NewSeasonTable validates the rules and keeps their order.
func NewSeasonTable(defaultRate decimal.Decimal, rules ...SeasonRule) (SeasonTable, error) {
	if defaultRate.IsNegative() {
		return SeasonTable{}, ErrNegativeRate
	}
	for _, r := range rules {
		if r.FromWeek < 1 || r.ToWeek > 53 || r.FromWeek > r.ToWeek {
			return SeasonTable{}, fmt.Errorf("%w: rule %q %d..%d", ErrInvalidWeek, r.Name, r.FromWeek, r.ToWeek)
		}
		if r.Rate.IsNegative() {
			return SeasonTable{}, fmt.Errorf("%w: rule %q", ErrNegativeRate, r.Name)
		}
	}
	return SeasonTable{Rules: append([]SeasonRule(nil), rules...), DefaultName: TierLow, Default: defaultRate}, nil
}

// StandardTable builds the residence's tiers: tennis weeks at the premium
// rate, the rest of weeks 24-32 at the high rate, everything else low.
// Each tennis week becomes its own rule ahead of the high-season rule.
func StandardTable(low, high, tennis decimal.Decimal, tennisWeeks []int) (SeasonTable, error) {
	if len(tennisWeeks) == 0 {
		return SeasonTable{}, ErrEmptyTennisSet
	}
	rules := make([]SeasonRule, 0, len(tennisWeeks)+1)
	for _, w := range tennisWeeks {
		rules = append(rules, SeasonRule{Name: TierTennis, FromWeek: w, ToWeek: w, Rate: tennis})
	}
	rules = append(rules, SeasonRule{Name: TierHigh, FromWeek: HighSeasonFrom, ToWeek: HighSeasonTo, Rate: high})
	return NewSeasonTable(low, rules...)
}

// RateForWeek returns the tier name and nightly rate of an ISO week.
func (t SeasonTable) RateForWeek(week int) (string, decimal.Decimal) {
	for _, r := range t.Rules {
		if r.matches(week) {
			return r.Name, r.Rate
		}
	}
	name := t.DefaultName
	if name == "" {
		name = TierLow
	}
	return name, t.Default
}

// RateFor looks up the rate by the ISO week of day.
func (t SeasonTable) RateFor(day time.Time) (string, decimal.Decimal) {
	_, week := day.ISOWeek()
	return t.RateForWeek(week)
}
