// Package telegram delivers one-way notifications through the Telegram Bot
// API: operational alerts and staff pings about new applications.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	userAgent     = "topmx/top-assistant"
	defaultAPIURL = "https://api.telegram.org"
)

// Client is a minimal Bot API client; sendMessage is the only method this
// service needs.
type Client struct {
	token  string
	logger *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	return &Client{
		token:  token,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: time.Second * 10,
		},
		UserAgent: userAgent,
		APIURL:    defaultAPIURL,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts a Markdown message to one chat. The request URL embeds
// the bot token and is never logged.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	payload := sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.APIURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger.Debug("sending telegram message", zap.String("chat_id", chatID))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("unmarshalling response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !apiResp.OK {
		return fmt.Errorf("telegram rejected message: %s: %s", resp.Status, apiResp.Description)
	}

	return nil
}

// ChatNotifier binds the client to a single chat. Callers hold a plain
// notifier and never see chat ids.
type ChatNotifier struct {
	client *Client
	chatID string
}

func NewChatNotifier(client *Client, chatID string) *ChatNotifier {
	return &ChatNotifier{client: client, chatID: chatID}
}

func (n *ChatNotifier) Notify(ctx context.Context, message string) error {
	return n.client.SendMessage(ctx, n.chatID, message)
}
