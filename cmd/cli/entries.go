package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/expensetracker/internal/adapter/http/dto"
	"github.com/iho/expensetracker/internal/adapter/http/middleware"
	"github.com/iho/expensetracker/internal/domain"
	"github.com/iho/expensetracker/internal/infrastructure/idgen"
)

const dateLayout = "2006-01-02"

func entriesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Entry operations",
	}

	cmd.AddCommand(entriesListCmd(opts))
	cmd.AddCommand(entriesAddCmd(opts))
	cmd.AddCommand(entriesBookmarkCmd(opts))
	cmd.AddCommand(entriesDeleteCmd(opts))
	cmd.AddCommand(entriesPurgeCmd(opts))

	return cmd
}

func entriesListCmd(opts *options) *cobra.Command {
	var (
		entryType  string
		bookmarked bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/entries"
			switch {
			case bookmarked:
				path = "/entries/bookmarks"
			case entryType != "":
				path += "?" + url.Values{"type": {entryType}}.Encode()
			}

			var entries []dto.EntryResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, path, nil, nil, &entries); err != nil {
				return err
			}

			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().StringVar(&entryType, "type", "", "Only entries of this type (Income or Expense)")
	cmd.Flags().BoolVar(&bookmarked, "bookmarked", false, "Only bookmarked entries")

	return cmd
}

func entriesAddCmd(opts *options) *cobra.Command {
	var (
		req  dto.EntryRequest
		date string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" {
				t, err := time.Parse(dateLayout, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
				}
				req.Date = t.UnixMilli()
			}

			headers := map[string]string{middleware.IdempotencyKeyHeader: idgen.NewULIDGenerator().Generate()}

			var resp dto.CreateEntryResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/entries", &req, headers, &resp); err != nil {
				return err
			}
			if !resp.Created {
				return fmt.Errorf("entry was not stored")
			}

			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), resp.Entry)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created entry %d\n", resp.Entry.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Entry title")
	cmd.Flags().StringVar(&req.Amount, "amount", "0", "Amount, e.g. 12.50")
	cmd.Flags().StringVar(&date, "date", time.Now().UTC().Format(dateLayout), "Date (YYYY-MM-DD); empty leaves it unset")
	cmd.Flags().StringVar(&req.Category, "category", domain.CategoryOthers, "Category")
	cmd.Flags().StringVar(&req.Type, "type", domain.TypeExpense, "Income or Expense")
	cmd.Flags().BoolVar(&req.Bookmark, "bookmark", false, "Bookmark the entry")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func entriesBookmarkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark <id>",
		Short: "Toggle the bookmark flag of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var entry dto.EntryResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, fmt.Sprintf("/entries/%d/bookmark", id), nil, nil, &entry); err != nil {
				return err
			}

			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), entry)
			}
			state := "removed from"
			if entry.Bookmark {
				state = "added to"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entry %d %s bookmarks\n", entry.ID, state)
			return nil
		},
	}
}

func entriesDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := newAPIClient(opts).do(cmd.Context(), http.MethodDelete, fmt.Sprintf("/entries/%d", id), nil, nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		},
	}
}

func entriesPurgeCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all entries without --yes")
			}

			if err := newAPIClient(opts).do(cmd.Context(), http.MethodDelete, "/entries", nil, nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All entries deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion of all entries")

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}
