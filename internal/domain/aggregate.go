package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Icon is a presentation key for an entry's category.
type Icon string

const (
	IconNetflix  Icon = "netflix"
	IconPaypal   Icon = "paypal"
	IconUpwork   Icon = "upwork"
	IconTransfer Icon = "transfer"
)

// Summary holds the aggregate figures shown on the overview.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
	Count   int
}

// DailyTotal is the expense total for one calendar day.
type DailyTotal struct {
	Day    time.Time
	Amount decimal.Decimal
}

// TotalExpense sums the amounts of entries typed Expense.
func TotalExpense(entries []Entry) decimal.Decimal {
	return sumByType(entries, TypeExpense)
}

// TotalIncome sums the amounts of entries typed Income.
func TotalIncome(entries []Entry) decimal.Decimal {
	return sumByType(entries, TypeIncome)
}

// Balance returns total income minus total expense.
func Balance(entries []Entry) decimal.Decimal {
	return TotalIncome(entries).Sub(TotalExpense(entries))
}

// FilterByType returns the entries whose type equals t, keeping their order.
func FilterByType(entries []Entry, t string) []Entry {
	return filter(entries, func(e Entry) bool { return e.Type == t })
}

// FilterByBookmark returns the bookmarked entries, keeping their order.
func FilterByBookmark(entries []Entry) []Entry {
	return filter(entries, func(e Entry) bool { return e.Bookmark })
}

// IconFor maps an entry's category to its icon. Unknown categories get the transfer icon.
func IconFor(e Entry) Icon {
	switch e.Category {
	case CategoryNetflix:
		return IconNetflix
	case CategoryPaypal:
		return IconPaypal
	case CategoryUpwork:
		return IconUpwork
	default:
		return IconTransfer
	}
}

// Summarize computes income, expense and balance in a single pass.
func Summarize(entries []Entry) Summary {
	income, expense := decimal.Zero, decimal.Zero

	for _, e := range entries {
		switch e.Type {
		case TypeIncome:
			income = income.Add(e.Amount)
		case TypeExpense:
			expense = expense.Add(e.Amount)
		}
	}

	return Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
		Count:   len(entries),
	}
}

// DailyExpenseTotals returns expense sums for the `days` UTC calendar days ending
// on end's day, oldest first. Days without expenses are reported as zero.
func DailyExpenseTotals(entries []Entry, end time.Time, days int) []DailyTotal {
	if days <= 0 {
		return []DailyTotal{}
	}

	end = end.UTC()
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	first := last.AddDate(0, 0, -(days - 1))

	totals := make([]DailyTotal, days)
	index := make(map[time.Time]int, days)
	for i := range totals {
		day := first.AddDate(0, 0, i)
		totals[i] = DailyTotal{Day: day, Amount: decimal.Zero}
		index[day] = i
	}

	for _, e := range entries {
		if e.Type != TypeExpense || e.Date == 0 {
			continue
		}
		t := time.UnixMilli(e.Date).UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if i, ok := index[day]; ok {
			totals[i].Amount = totals[i].Amount.Add(e.Amount)
		}
	}

	return totals
}

func sumByType(entries []Entry, t string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Type == t {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func filter(entries []Entry, keep func(Entry) bool) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
