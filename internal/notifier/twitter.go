package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/leonmuri/Progol-aleatorio2/internal/config"
	"github.com/leonmuri/Progol-aleatorio2/internal/export"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
)

// postInterval spaces consecutive posts.
const postInterval = 2 * time.Second

// ErrMissingCredentials is returned when any Twitter credential is empty.
var ErrMissingCredentials = errors.New("missing required Twitter credentials")

// TwitterNotifier posts tickets to Twitter
type TwitterNotifier struct {
	client   *twitter.Client
	interval time.Duration
}

// NewTwitterNotifier creates a Twitter notifier from OAuth1 credentials.
func NewTwitterNotifier(creds config.TwitterConfig) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, ErrMissingCredentials
	}

	cfg := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	return newTwitterNotifier(cfg.Client(oauth1.NoContext, token)), nil
}

func newTwitterNotifier(httpClient *http.Client) *TwitterNotifier {
	return &TwitterNotifier{
		client:   twitter.NewClient(httpClient),
		interval: postInterval,
	}
}

// Notify posts one status per sheet
func (n *TwitterNotifier) Notify(sheets []export.Sheet) error {
	for i, sheet := range sheets {
		tweet, _, err := n.client.Statuses.Update(formatPost(sheet), nil)
		if err != nil {
			logger.IncrCounter("notifier.failures")
			return fmt.Errorf("posting ticket %d: %w", sheet.Number, err)
		}
		logger.IncrCounter("notifier.posts")
		logger.Info("ticket posted", logger.Fields{
			"ticket":   sheet.Number,
			"tweet_id": tweet.IDStr,
		})

		// Rate limiting: wait between posts
		if i < len(sheets)-1 {
			time.Sleep(n.interval)
		}
	}

	return nil
}
