package sync

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/sjson"
)

// BotConversaNotifier sends WhatsApp text messages through the
// BotConversa webhook API. Delivery is best effort: failures are logged
// per recipient and never propagated.
type BotConversaNotifier struct {
	APIKey      string
	Subscribers string // comma separated subscriber ids
	Endpoint    string
	Delay       time.Duration // courtesy pause between consecutive sends
	Transport   http.RoundTripper
}

// NewBotConversaNotifier builds a notifier with the shared retry transport.
func NewBotConversaNotifier(cfg Config) *BotConversaNotifier {
	return &BotConversaNotifier{
		APIKey:      cfg.API.Keys.BotConversa,
		Subscribers: cfg.API.Ids.BotConversaSubscribers,
		Endpoint:    cfg.API.Endpoints.BotConversa,
		Delay:       time.Duration(cfg.Notify.DelaySeconds) * time.Second,
		Transport:   NewRetryTransport(nil),
	}
}

// Send delivers message to every configured subscriber, pausing between
// sends to respect the vendor's courtesy rate limit.
func (n *BotConversaNotifier) Send(ctx context.Context, message string) {
	if n.APIKey == "" || n.Subscribers == "" {
		log.Printf("Warning: BotConversa API key or subscriber ids not configured, message not sent")
		return
	}

	var ids []string
	for _, id := range strings.Split(n.Subscribers, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	for i, id := range ids {
		if i > 0 && n.Delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(n.Delay):
			}
		}

		body, _ := sjson.Set("{}", "type", "text")
		body, _ = sjson.Set(body, "value", message)

		builder := requests.
			URL(n.Endpoint).
			Client(&http.Client{Timeout: HTTPRequestTimeout})
		if n.Transport != nil {
			builder = builder.Transport(n.Transport)
		}
		err := builder.
			Pathf("/api/v1/webhook/subscriber/%s/send_message/", id).
			Header("API-KEY", n.APIKey).
			Post().
			BodyBytes([]byte(body)).
			ContentType("application/json").
			Fetch(ctx)
		if err != nil {
			log.Printf("BotConversa Error: failed to send message to subscriber %s: %v", id, err)
			continue
		}
	}
}
