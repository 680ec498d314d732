package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/utils"
)

// MessengerSender posts text messages through the Messenger send API. The
// page access token travels as a query parameter, so request URLs are never
// logged.
type MessengerSender struct {
	token  string
	logger *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func NewMessengerSender(logger *zap.Logger, token string) *MessengerSender {
	return &MessengerSender{
		token:  token,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: time.Second * 10,
		},
		UserAgent: userAgent,
		APIURL:    defaultGraphURL,
	}
}

type messengerRecipient struct {
	ID string `json:"id"`
}

type messengerText struct {
	Text string `json:"text"`
}

type messengerMessage struct {
	Recipient     messengerRecipient `json:"recipient"`
	MessagingType string             `json:"messaging_type"`
	Message       messengerText      `json:"message"`
}

func (s *MessengerSender) Send(ctx context.Context, recipientID, text string) error {
	payload := messengerMessage{
		Recipient:     messengerRecipient{ID: recipientID},
		MessagingType: "RESPONSE",
		Message:       messengerText{Text: utils.SanitizeText(text)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIURL+"/me/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.URL.RawQuery = url.Values{"access_token": {s.token}}.Encode()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.UserAgent)

	s.logger.Debug("sending messenger message", zap.String("recipient", recipientID))

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.ReadAll(resp.Body); err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return nil
}
