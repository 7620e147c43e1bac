package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/iho/expensetracker/internal/adapter/http/dto"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func printEntries(w io.Writer, entries []dto.EntryResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tBM\tTITLE")
	for _, e := range entries {
		mark := ""
		if e.Bookmark {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.FormattedDate, e.Type, truncate(e.Category, 16), e.FormattedAmount, mark, truncate(e.Title, 40))
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s dto.SummaryResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Income\t%s\n", s.Income.StringFixed(2))
	fmt.Fprintf(tw, "Expense\t%s\n", s.Expense.StringFixed(2))
	fmt.Fprintf(tw, "Balance\t%s\n", s.Balance.StringFixed(2))
	fmt.Fprintf(tw, "Entries\t%d\n", s.Count)
	if len(s.Daily) > 0 {
		fmt.Fprintln(tw, "\nDAY\tEXPENSE")
		for _, d := range s.Daily {
			fmt.Fprintf(tw, "%s\t%s\n", d.Day, d.Amount.StringFixed(2))
		}
	}
	return tw.Flush()
}
