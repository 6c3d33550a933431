package cli

import (
	"github.com/spf13/cobra"
)

func newMatchesCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List the matches of the current Progol ticket",
		Long: `List the matches of the current Progol ticket. Every run fetches the
page again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			entry := a.newPipeline().Resolve(cmd.Context(), false)
			return writeMatches(cmd.OutOrStdout(), entry, outFormat)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newDrawCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Show the prize, date and round of the current draw",
		Long: `Show the prize, date and round of the current draw. Every run fetches
the page again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			entry := a.newPipeline().Resolve(cmd.Context(), false)
			return writeDraw(cmd.OutOrStdout(), entry, outFormat)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}
