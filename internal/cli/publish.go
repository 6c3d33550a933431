package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
	"github.com/leonmuri/Progol-aleatorio2/internal/notifier"
)

func newPublishCmd(a *app) *cobra.Command {
	var (
		dryRun  bool
		count   int
		seed    uint64
		targets []string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Post random tickets for the current draw",
		Long: `Generate random tickets for the current draw and post one message per
ticket to each target. Twitter credentials come from TWITTER_API_KEY,
TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET; Telegram
from TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID. With --dry-run the posts are
printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 || count > MaxTickets {
				return fmt.Errorf("--count must be between 1 and %d", MaxTickets)
			}

			var n notifier.Notifier = notifier.NewDryRunNotifier(cmd.OutOrStdout())
			if !dryRun {
				var err error
				if n, err = a.notifiers(targets); err != nil {
					return err
				}
			}

			entry := a.newPipeline().Resolve(cmd.Context(), false)
			opts := &ticketOptions{seed: seed}
			sheets := buildSheets(entry, nil, count, opts.rng(), time.Now())

			logger.Info("publishing tickets", logger.Fields{
				"count":   len(sheets),
				"stage":   entry.Stage(),
				"dry_run": dryRun,
			})
			return n.Notify(sheets)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the posts without posting")
	cmd.Flags().IntVar(&count, "count", 1, "Number of tickets to post")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for random picks (0 means a fresh seed)")
	cmd.Flags().StringSliceVar(&targets, "to", []string{"twitter"}, "Where to post: twitter, telegram or both")
	return cmd
}

func (a *app) notifiers(targets []string) (notifier.Notifier, error) {
	var multi notifier.Multi
	for _, target := range targets {
		switch strings.ToLower(strings.TrimSpace(target)) {
		case "twitter":
			tw, err := notifier.NewTwitterNotifier(a.cfg.Twitter)
			if err != nil {
				return nil, fmt.Errorf("creating Twitter client: %w", err)
			}
			multi = append(multi, tw)
		case "telegram":
			tg, err := notifier.NewTelegramNotifier(a.cfg.Telegram)
			if err != nil {
				return nil, fmt.Errorf("creating Telegram client: %w", err)
			}
			multi = append(multi, tg)
		default:
			return nil, fmt.Errorf("unknown target: %s (must be 'twitter' or 'telegram')", target)
		}
	}
	if len(multi) == 0 {
		return nil, fmt.Errorf("no target to post to")
	}
	if len(multi) == 1 {
		return multi[0], nil
	}
	return multi, nil
}
