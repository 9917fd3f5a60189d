package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"guestflat/internal/domain"
)

// UnknownApartment collects line items whose apartment number is not numeric.
const UnknownApartment = "unknown"

type apartmentGroup struct {
	key     string
	num     float64
	numeric bool
	items   []domain.LineItem
}

func apartmentKey(raw string) (string, float64, bool) {
	k := strings.TrimSpace(raw)
	n, err := strconv.ParseFloat(k, 64)
	if k == "" || err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return UnknownApartment, 0, false
	}
	return k, n, true
}

// GroupByApartment orders line items by numeric apartment number and appends a
// subtotal row after every group holding more than one item.
func GroupByApartment(items []domain.LineItem) []domain.ReportRow {
	idx := map[string]int{}
	var groups []*apartmentGroup
	for _, it := range items {
		key, num, numeric := apartmentKey(it.ApartmentNumber)
		i, ok := idx[key]
		if !ok {
			i = len(groups)
			idx[key] = i
			groups = append(groups, &apartmentGroup{key: key, num: num, numeric: numeric})
		}
		groups[i].items = append(groups[i].items, it)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.numeric != b.numeric {
			return a.numeric
		}
		return a.num < b.num
	})

	rows := make([]domain.ReportRow, 0, len(items)+len(groups))
	for _, g := range groups {
		sum := decimal.Zero
		for i := range g.items {
			it := g.items[i]
			sum = sum.Add(it.TotalAmount)
			rows = append(rows, domain.ReportRow{Kind: domain.RowItem, Item: &it})
		}
		if len(g.items) > 1 {
			rows = append(rows, domain.ReportRow{
				Kind: domain.RowSubtotal,
				Subtotal: &domain.SubtotalRow{
					ApartmentNumber: g.key,
					Label:           subtotalLabel(g.key),
					Subtotal:        sum,
				},
			})
		}
	}
	return rows
}

func subtotalLabel(key string) string {
	if key == UnknownApartment {
		return "Subtotal unknown apartment"
	}
	return fmt.Sprintf("Subtotal apartment %s", key)
}

// GrandTotal sums item rows only; subtotal rows are informational.
func GrandTotal(rows []domain.ReportRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if r.Kind == domain.RowItem && r.Item != nil {
			total = total.Add(r.Item.TotalAmount)
		}
	}
	return total
}
