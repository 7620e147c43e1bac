package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(amount, typ string) Entry {
	return Entry{Amount: decimal.RequireFromString(amount), Type: typ}
}

func TestTotals_Scenario(t *testing.T) {
	entries := []Entry{
		entry("6200.70", TypeIncome),
		entry("1000.70", TypeExpense),
		entry("500.30", TypeExpense),
		entry("2000.00", TypeIncome),
	}

	assert.True(t, TotalIncome(entries).Equal(decimal.RequireFromString("8200.70")), "income %s", TotalIncome(entries))
	assert.True(t, TotalExpense(entries).Equal(decimal.RequireFromString("1501.00")), "expense %s", TotalExpense(entries))
	assert.True(t, Balance(entries).Equal(decimal.RequireFromString("6699.70")), "balance %s", Balance(entries))
}

func TestTotals_Empty(t *testing.T) {
	assert.True(t, TotalIncome(nil).IsZero())
	assert.True(t, TotalExpense(nil).IsZero())
	assert.True(t, Balance([]Entry{}).IsZero())
	assert.NotNil(t, FilterByType(nil, TypeIncome))
	assert.Empty(t, FilterByType(nil, TypeIncome))
	assert.NotNil(t, FilterByBookmark(nil))
	assert.Empty(t, FilterByBookmark(nil))
}

func TestTotals_UnknownTypeExcluded(t *testing.T) {
	entries := []Entry{
		entry("10", TypeIncome),
		entry("4", TypeExpense),
		entry("1000", "Transfer"),
		entry("1000", "income"),
		entry("1000", ""),
	}

	assert.True(t, TotalIncome(entries).Equal(decimal.NewFromInt(10)))
	assert.True(t, TotalExpense(entries).Equal(decimal.NewFromInt(4)))
	assert.True(t, Balance(entries).Equal(decimal.NewFromInt(6)))
}

func TestTotals_BalanceIdentity(t *testing.T) {
	lists := [][]Entry{
		nil,
		{entry("1.11", TypeIncome)},
		{entry("3.50", TypeExpense), entry("0.01", TypeExpense)},
		{entry("99.99", TypeIncome), entry("100", TypeExpense), entry("5", "Other")},
		{entry("-20", TypeIncome), entry("7.25", TypeExpense)},
	}

	for _, l := range lists {
		assert.True(t, TotalIncome(l).Sub(TotalExpense(l)).Equal(Balance(l)))

		s := Summarize(l)
		assert.True(t, s.Income.Equal(TotalIncome(l)))
		assert.True(t, s.Expense.Equal(TotalExpense(l)))
		assert.True(t, s.Balance.Equal(Balance(l)))
		assert.Equal(t, len(l), s.Count)
	}
}

func TestTotals_NonNegativeForNonNegativeAmounts(t *testing.T) {
	entries := []Entry{
		entry("0", TypeIncome),
		entry("12.30", TypeExpense),
		entry("0.01", TypeIncome),
	}

	assert.False(t, TotalIncome(entries).IsNegative())
	assert.False(t, TotalExpense(entries).IsNegative())
}

func TestFilterByType_PreservesOrderAndPartitions(t *testing.T) {
	entries := []Entry{
		{Title: "a", Type: TypeIncome},
		{Title: "b", Type: TypeExpense},
		{Title: "c", Type: "Refund"},
		{Title: "d", Type: TypeIncome},
	}

	income := FilterByType(entries, TypeIncome)
	expense := FilterByType(entries, TypeExpense)

	require.Len(t, income, 2)
	assert.Equal(t, "a", income[0].Title)
	assert.Equal(t, "d", income[1].Title)
	require.Len(t, expense, 1)
	assert.Equal(t, "b", expense[0].Title)

	for _, e := range append(income, expense...) {
		assert.NotEqual(t, "c", e.Title)
	}
}

func TestFilterByBookmark(t *testing.T) {
	entries := []Entry{
		{Title: "a", Bookmark: true},
		{Title: "b"},
		{Title: "c", Bookmark: true},
	}

	got := FilterByBookmark(entries)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "c", got[1].Title)

	toggled := entries[1].ToggledBookmark()
	assert.Len(t, FilterByBookmark([]Entry{toggled}), 1)
	assert.Empty(t, FilterByBookmark([]Entry{toggled.ToggledBookmark()}))
}

func TestIconFor(t *testing.T) {
	tests := []struct {
		category string
		want     Icon
	}{
		{CategoryNetflix, IconNetflix},
		{CategoryPaypal, IconPaypal},
		{CategoryUpwork, IconUpwork},
		{CategorySalary, IconTransfer},
		{CategoryOthers, IconTransfer},
		{"", IconTransfer},
		{"netflix", IconTransfer},
		{"Groceries", IconTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, IconFor(Entry{Category: tt.category}))
		})
	}
}

func TestDailyExpenseTotals(t *testing.T) {
	end := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	ms := func(day int, hour int) int64 {
		return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC).UnixMilli()
	}

	entries := []Entry{
		{Amount: decimal.NewFromInt(5), Type: TypeExpense, Date: ms(10, 9)},
		{Amount: decimal.NewFromInt(7), Type: TypeExpense, Date: ms(10, 23)},
		{Amount: decimal.NewFromInt(3), Type: TypeExpense, Date: ms(4, 1)},
		{Amount: decimal.NewFromInt(100), Type: TypeIncome, Date: ms(9, 12)},
		{Amount: decimal.NewFromInt(50), Type: TypeExpense, Date: ms(3, 12)},
		{Amount: decimal.NewFromInt(50), Type: TypeExpense, Date: 0},
	}

	totals := DailyExpenseTotals(entries, end, 7)
	require.Len(t, totals, 7)

	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), totals[0].Day)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), totals[6].Day)
	assert.True(t, totals[0].Amount.Equal(decimal.NewFromInt(3)))
	assert.True(t, totals[5].Amount.IsZero(), "income must not count")
	assert.True(t, totals[6].Amount.Equal(decimal.NewFromInt(12)))

	assert.Empty(t, DailyExpenseTotals(entries, end, 0))
}

func TestSampleEntries(t *testing.T) {
	samples := SampleEntries(42)
	require.Len(t, samples, 4)

	for i, s := range samples {
		require.True(t, s.HasID())
		assert.Equal(t, int64(i+1), s.IDValue())
		assert.Equal(t, int64(42), s.Date)
		assert.False(t, s.Bookmark)
	}

	assert.True(t, Balance(samples).Equal(decimal.RequireFromString("6699.70")))
}
