package core

import "sort"

// CategorySummary is one row of the per-category breakdown. The category
// metadata is a snapshot from the first transaction seen for that category
// within the window.
type CategorySummary struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Type   CategoryType `json:"type"`
	Color  string       `json:"color"`
	Icon   string       `json:"icon"`
	Amount Money        `json:"amount"`
}

// Summary is the aggregate of a transaction list: totals by direction,
// the per-category breakdown sorted descending by amount, and the input
// list passed through for display.
type Summary struct {
	Income       Money             `json:"income"`
	Expense      Money             `json:"expense"`
	Balance      Money             `json:"balance"`
	CategoryData []CategorySummary `json:"categoryData"`
	Transactions []Transaction     `json:"transactions"`

	// Skipped counts transactions excluded from the totals because their
	// category was missing or had an unrecognized type. Callers surface
	// this as a data-integrity warning.
	Skipped int `json:"-"`
}

// Summarize reduces a transaction list into income/expense/balance totals
// and a per-category breakdown. The input is expected already sorted by
// date descending and is returned unmodified. An empty input produces zero
// totals and empty slices, not an error.
//
// Transactions whose category is absent or of unknown type contribute to
// neither total nor the breakdown; they stay in the returned list and are
// counted in Skipped.
func Summarize(transactions []Transaction) Summary {
	s := Summary{
		CategoryData: []CategorySummary{},
		Transactions: transactions,
	}
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}

	totals := make(map[int64]*CategorySummary)
	var order []int64

	for _, t := range s.Transactions {
		cat := t.Category
		if cat == nil || !cat.Type.Valid() {
			s.Skipped++
			continue
		}
		if cat.Type == Income {
			s.Income.Cents += t.Amount.Cents
		} else {
			s.Expense.Cents += t.Amount.Cents
		}

		row, ok := totals[t.CategoryID]
		if !ok {
			row = &CategorySummary{
				ID:    t.CategoryID,
				Name:  cat.Name,
				Type:  cat.Type,
				Color: cat.Color,
				Icon:  cat.Icon,
			}
			totals[t.CategoryID] = row
			order = append(order, t.CategoryID)
		}
		row.Amount.Cents += t.Amount.Cents
	}

	for _, id := range order {
		s.CategoryData = append(s.CategoryData, *totals[id])
	}
	sort.SliceStable(s.CategoryData, func(i, j int) bool {
		return s.CategoryData[i].Amount.Cents > s.CategoryData[j].Amount.Cents
	})

	s.Balance.Cents = s.Income.Cents - s.Expense.Cents
	return s
}
