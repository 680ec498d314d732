// Package messaging delivers replies back through the chat platforms. Each
// platform has its own sender; the dispatcher picks one by session channel.
package messaging

import (
	"context"
	"fmt"

	"github.com/topmx/top-assistant/internal/session"
)

const (
	userAgent       = "topmx/top-assistant"
	defaultGraphURL = "https://graph.facebook.com/v22.0"
)

// Sender delivers one reply to one recipient.
type Sender interface {
	Send(ctx context.Context, recipientID, text string) error
}

// Dispatcher routes outbound replies by channel.
type Dispatcher struct {
	senders map[session.Channel]Sender
}

func NewDispatcher(whatsapp, messenger Sender) *Dispatcher {
	return &Dispatcher{
		senders: map[session.Channel]Sender{
			session.ChannelWhatsApp:  whatsapp,
			session.ChannelMessenger: messenger,
		},
	}
}

func (d *Dispatcher) Send(ctx context.Context, channel session.Channel, recipientID, text string) error {
	sender, ok := d.senders[channel]
	if !ok || sender == nil {
		return fmt.Errorf("no sender configured for channel %q", channel)
	}
	return sender.Send(ctx, recipientID, text)
}

type messageText struct {
	Body string `json:"body"`
}
