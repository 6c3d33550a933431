package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leonmuri/Progol-aleatorio2/internal/export"
	"github.com/leonmuri/Progol-aleatorio2/internal/storage"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved tickets",
	}

	cmd.AddCommand(
		newHistoryListCmd(a),
		newHistoryShowCmd(a),
		newHistoryDeleteCmd(a),
		newHistoryStatsCmd(a),
	)
	return cmd
}

func parseTicketID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ticket id: %s", s)
	}
	return id, nil
}

func newHistoryListCmd(a *app) *cobra.Command {
	var (
		limit  int
		sortBy string
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := parseSortOrder(sortBy)
			if err != nil {
				return err
			}
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			tickets, err := store.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("listing tickets: %w", err)
			}
			sortTickets(tickets, order)
			return writeTickets(cmd.OutOrStdout(), tickets, outFormat, a.verbose)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", storage.DefaultListLimit, "Maximum number of tickets to list")
	cmd.Flags().StringVar(&sortBy, "sort", "created", "Sort order: created, draw or round")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a saved ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			exportFormat, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if exportFormat == export.FormatPNG && out == "" {
				return fmt.Errorf("png output needs --out")
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			ticket, err := store.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading ticket: %w", err)
			}
			return writeSheets(cmd, []export.Sheet{ticket.Sheet}, exportFormat, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, ics or png")
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")
	return cmd
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("deleting ticket: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted ticket #%d\n", id)
			return nil
		},
	}
}

func newHistoryStatsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize saved tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("computing stats: %w", err)
			}
			return writeStats(cmd.OutOrStdout(), stats, outFormat)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}
