package webhook

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/topmx/top-assistant/internal/assistant"
	"github.com/topmx/top-assistant/internal/session"
)

// Platform notification shapes. Only the fields the assistant consumes are
// declared; the rest of the payload is ignored. The top-level object field
// tells the platforms apart on the shared endpoint.
const (
	objectWhatsApp  = "whatsapp_business_account"
	objectMessenger = "page"
)

type notification struct {
	Object string  `json:"object"`
	Entry  []entry `json:"entry"`
}

type entry struct {
	Changes   []change         `json:"changes"`
	Messaging []messengerEvent `json:"messaging"`
}

type change struct {
	Value changeValue `json:"value"`
}

type changeValue struct {
	Messages []whatsappMessage `json:"messages"`
}

type whatsappMessage struct {
	From     string            `json:"from"`
	Text     *whatsappText     `json:"text"`
	Referral *whatsappReferral `json:"referral"`
}

type whatsappText struct {
	Body string `json:"body"`
}

type whatsappReferral struct {
	WhatsApp *whatsappAd `json:"whatsapp"`
}

type whatsappAd struct {
	Source   whatsappAdSource `json:"source"`
	Headline string           `json:"headline"`
	Body     string           `json:"body"`
}

type whatsappAdSource struct {
	ID string `json:"id"`
}

type messengerEvent struct {
	Sender   messengerSender    `json:"sender"`
	Message  *messengerIncoming `json:"message"`
	Referral *messengerReferral `json:"referral"`
}

type messengerSender struct {
	ID string `json:"id"`
}

type messengerIncoming struct {
	Text string `json:"text"`
}

type messengerReferral struct {
	Source string `json:"source"`
	AdID   string `json:"ad_id"`
	Ref    string `json:"ref"`
}

// parseEvents flattens a notification into the events it carries. Payloads
// that do not decode, or decode to nothing actionable, yield no events; the
// caller acks them regardless so the platform stops redelivering.
func parseEvents(body []byte, log *zap.Logger) []assistant.Event {
	var payload notification
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("undecodable webhook payload", zap.Error(err))
		return nil
	}

	switch payload.Object {
	case objectWhatsApp:
		return whatsappEvents(&payload)
	case objectMessenger:
		return messengerEvents(&payload)
	}

	log.Debug("ignoring webhook payload", zap.String("object", payload.Object))
	return nil
}

func whatsappEvents(payload *notification) []assistant.Event {
	var events []assistant.Event
	for _, ent := range payload.Entry {
		for _, chg := range ent.Changes {
			for _, msg := range chg.Value.Messages {
				if msg.From == "" {
					continue
				}

				event := assistant.Event{
					Channel:  session.ChannelWhatsApp,
					SenderID: msg.From,
				}
				if msg.Text != nil {
					event.Text = msg.Text.Body
				}
				if msg.Referral != nil && msg.Referral.WhatsApp != nil {
					if ad := msg.Referral.WhatsApp; ad.Source.ID != "" {
						event.Referral = &assistant.Referral{
							AdID:     ad.Source.ID,
							Headline: ad.Headline,
							Body:     ad.Body,
						}
					}
				}

				if event.Text == "" && event.Referral == nil {
					continue
				}
				events = append(events, event)
			}
		}
	}
	return events
}

func messengerEvents(payload *notification) []assistant.Event {
	var events []assistant.Event
	for _, ent := range payload.Entry {
		for _, msg := range ent.Messaging {
			if msg.Sender.ID == "" {
				continue
			}

			event := assistant.Event{
				Channel:  session.ChannelMessenger,
				SenderID: msg.Sender.ID,
			}
			if msg.Message != nil {
				event.Text = msg.Message.Text
			}
			if ref := msg.Referral; ref != nil {
				// Ad referrals carry ad_id; m.me links carry ref.
				switch {
				case ref.Source == "ADS" && ref.AdID != "":
					event.Referral = &assistant.Referral{AdID: ref.AdID}
				case ref.Ref != "":
					event.Referral = &assistant.Referral{Ref: ref.Ref}
				}
			}

			if event.Text == "" && event.Referral == nil {
				continue
			}
			events = append(events, event)
		}
	}
	return events
}
