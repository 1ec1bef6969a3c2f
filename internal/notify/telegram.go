// Package notify tells managers on Telegram about new reviews and new
// itineraries. Messages are queued and sent off the request path.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"trailhead/internal/config"
	"trailhead/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const queueSize = 64

// Sender is the part of tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	sender  Sender
	chatIDs []int64
	baseURL string
	logger  *zerolog.Logger
	queue   chan string
	wg      sync.WaitGroup
}

// NewNotifier connects to the Bot API with the configured token.
func NewNotifier(cfg config.TelegramConfig, baseURL string, logger *zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	logger.Info().Str("bot", bot.Self.UserName).Int("managers", len(cfg.ManagerChatIDs)).Msg("telegram notifier ready")
	return newNotifier(bot, cfg.ManagerChatIDs, baseURL, logger), nil
}

func newNotifier(sender Sender, chatIDs []int64, baseURL string, logger *zerolog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		chatIDs: chatIDs,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		queue:   make(chan string, queueSize),
	}
}

// Subscribe registers the notifier's handlers on the bus.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventReviewCreated, n.onReviewCreated)
	bus.Subscribe(events.EventContentCreated, n.onContentCreated)
}

// Start sends queued messages until ctx is done. Messages still queued at
// that point are sent before the goroutine exits.
func (n *Notifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for {
			select {
			case text := <-n.queue:
				n.NotifyManagers(text)
			case <-ctx.Done():
				for {
					select {
					case text := <-n.queue:
						n.NotifyManagers(text)
					default:
						return
					}
				}
			}
		}
	}()
}

// Wait blocks until the sender goroutine has exited.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// NotifyManagers sends text to every manager chat. Failures are logged.
func (n *Notifier) NotifyManagers(text string) {
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.DisableWebPagePreview = true
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		}
	}
}

func (n *Notifier) enqueue(text string) {
	select {
	case n.queue <- text:
	default:
		n.logger.Warn().Msg("notification queue full, message dropped")
	}
}

func (n *Notifier) onReviewCreated(event *events.Event) error {
	var p events.ReviewEventPayload
	if err := event.Decode(&p); err != nil {
		return fmt.Errorf("decode review event: %w", err)
	}
	n.enqueue(reviewMessage(p))
	return nil
}

func (n *Notifier) onContentCreated(event *events.Event) error {
	var p events.ContentEventPayload
	if err := event.Decode(&p); err != nil {
		return fmt.Errorf("decode content event: %w", err)
	}
	if p.Entity != "itinerary" {
		return nil
	}
	n.enqueue(n.itineraryMessage(p))
	return nil
}

func reviewMessage(p events.ReviewEventPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New review %d/5 on %s #%d by %s", p.Rating, p.Type, p.TypeID, p.Author)
	if p.Comment != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Comment)
	}
	return b.String()
}

func (n *Notifier) itineraryMessage(p events.ContentEventPayload) string {
	text := fmt.Sprintf("New itinerary published: %s", p.Title)
	if n.baseURL != "" {
		text += fmt.Sprintf("\n%s/itineraries/%d", n.baseURL, p.ID)
	}
	return text
}
