package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/leonmuri/Progol-aleatorio2/internal/config"
	"github.com/leonmuri/Progol-aleatorio2/internal/export"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
)

const (
	telegramBaseURL = "https://api.telegram.org/bot"
	telegramTimeout = 10 * time.Second
)

// ErrMissingTelegramConfig is returned when the bot token or chat ID is empty.
var ErrMissingTelegramConfig = errors.New("missing Telegram bot token or chat ID")

// TelegramNotifier sends tickets to a Telegram chat through the Bot API.
type TelegramNotifier struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
}

func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	if !cfg.Complete() {
		return nil, ErrMissingTelegramConfig
	}
	return &TelegramNotifier{
		baseURL:    telegramBaseURL,
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
		httpClient: &http.Client{Timeout: telegramTimeout},
	}, nil
}

// Notify sends one message per sheet and stops at the first failure.
func (n *TelegramNotifier) Notify(sheets []export.Sheet) error {
	for _, sheet := range sheets {
		if err := n.send(formatPost(sheet)); err != nil {
			logger.IncrCounter("notifier.failures")
			return fmt.Errorf("sending ticket %d: %w", sheet.Number, err)
		}
		logger.IncrCounter("notifier.posts")
		logger.Info("ticket sent", logger.Fields{
			"ticket": sheet.Number,
			"chat":   n.chatID,
		})
	}
	return nil
}

func (n *TelegramNotifier) send(text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s%s/sendMessage", n.baseURL, n.botToken)
	resp, err := n.httpClient.Post(endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sending request: %w", withoutURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, body)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}
	return nil
}

// withoutURL drops the request URL, which carries the bot token, from
// transport errors.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
