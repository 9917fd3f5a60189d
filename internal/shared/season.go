package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"guestflat/internal/pricing"
)

// SeasonFile is the YAML form of a season table. Rates are decimal strings.
//
//	default: "100"
//	parking: "75"
//	rules:
//	  - {name: tennis, from_week: 28, to_week: 29, rate: "200"}
//	  - {name: high, from_week: 24, to_week: 32, rate: "150"}
type SeasonFile struct {
	Default string       `yaml:"default"`
	Parking string       `yaml:"parking"`
	Rules   []SeasonLine `yaml:"rules"`
}

type SeasonLine struct {
	Name     string `yaml:"name"`
	FromWeek int    `yaml:"from_week"`
	ToWeek   int    `yaml:"to_week"`
	Rate     string `yaml:"rate"`
}

// PricingEngine builds the engine from env rates, overlaid by SeasonConfig when set.
func (c Config) PricingEngine() (*pricing.Engine, error) {
	low, err := parseRate("RATE_LOW", c.RateLow)
	if err != nil {
		return nil, err
	}
	high, err := parseRate("RATE_HIGH", c.RateHigh)
	if err != nil {
		return nil, err
	}
	tennis, err := parseRate("RATE_TENNIS", c.RateTennis)
	if err != nil {
		return nil, err
	}
	parking, err := parseRate("RATE_PARKING", c.RateParking)
	if err != nil {
		return nil, err
	}
	weeks, err := ParseTennisWeeks(c.TennisWeeks)
	if err != nil {
		return nil, err
	}
	table, err := pricing.StandardTable(low, high, tennis, weeks)
	if err != nil {
		return nil, err
	}

	if c.SeasonConfig != "" {
		data, err := os.ReadFile(c.SeasonConfig)
		if err != nil {
			return nil, fmt.Errorf("season config: %w", err)
		}
		table, parking, err = ParseSeasonYAML(data, table, parking)
		if err != nil {
			return nil, fmt.Errorf("season config %s: %w", c.SeasonConfig, err)
		}
	}
	return pricing.NewEngine(table, parking)
}

// ParseSeasonYAML overlays a YAML season file on base. Empty fields keep the
// base values; a non-empty rule list replaces the base rules.
func ParseSeasonYAML(data []byte, base pricing.SeasonTable, parking decimal.Decimal) (pricing.SeasonTable, decimal.Decimal, error) {
	var f SeasonFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return base, parking, err
	}
	def := base.Default
	if f.Default != "" {
		d, err := parseRate("default", f.Default)
		if err != nil {
			return base, parking, err
		}
		def = d
	}
	if f.Parking != "" {
		p, err := parseRate("parking", f.Parking)
		if err != nil {
			return base, parking, err
		}
		parking = p
	}
	rules := base.Rules
	if len(f.Rules) > 0 {
		rules = make([]pricing.SeasonRule, 0, len(f.Rules))
		for _, l := range f.Rules {
			r, err := parseRate("rule "+l.Name, l.Rate)
			if err != nil {
				return base, parking, err
			}
			rules = append(rules, pricing.SeasonRule{Name: l.Name, FromWeek: l.FromWeek, ToWeek: l.ToWeek, Rate: r})
		}
	}
	table, err := pricing.NewSeasonTable(def, rules...)
	if err != nil {
		return base, parking, err
	}
	return table, parking, nil
}

// ParseTennisWeeks accepts "wide", "narrow" or a comma separated week list.
func ParseTennisWeeks(s string) ([]int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wide":
		return pricing.TennisWeeksWide, nil
	case "narrow":
		return pricing.TennisWeeksNarrow, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil || w < 1 || w > 53 {
			return nil, fmt.Errorf("TENNIS_WEEKS: bad week %q", part)
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, pricing.ErrEmptyTennisSet
	}
	return out, nil
}

func parseRate(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: %w", name, pricing.ErrNegativeRate)
	}
	return d, nil
}
