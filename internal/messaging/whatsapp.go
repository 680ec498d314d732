package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/utils"
)

// WhatsAppSender posts text messages through the WhatsApp Cloud API on
// behalf of one business phone number.
type WhatsAppSender struct {
	token         string
	phoneNumberID string
	logger        *zap.Logger

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func NewWhatsAppSender(logger *zap.Logger, token, phoneNumberID string) *WhatsAppSender {
	return &WhatsAppSender{
		token:         token,
		phoneNumberID: phoneNumberID,
		logger:        logger,
		HTTPClient: &http.Client{
			Timeout: time.Second * 10,
		},
		UserAgent: userAgent,
		APIURL:    defaultGraphURL,
	}
}

type whatsappMessage struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             messageText `json:"text"`
}

func (s *WhatsAppSender) Send(ctx context.Context, recipientID, text string) error {
	payload := whatsappMessage{
		MessagingProduct: "whatsapp",
		To:               recipientID,
		Type:             "text",
		Text:             messageText{Body: utils.SanitizeText(text)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.APIURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.UserAgent)

	s.logger.Debug("sending whatsapp message", zap.String("recipient", recipientID))

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
