package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/events"
)

// Subscriber consumes item.found events and hands them to a Notifier.
type Subscriber struct {
	Notifier Notifier
	Log      *slog.Logger
}

// Handle makes one notification attempt for an item.found message, even
// when the item has no contact email.
func (s *Subscriber) Handle(ctx context.Context, msg *message.Message) error {
	ev, err := events.DecodeItemFound(msg)
	if err != nil {
		return err
	}
	if ev.ContactEmail == "" {
		s.Log.WarnContext(ctx, "found item has no contact email", "item_id", ev.ItemID)
	}

	if err := s.Notifier.NotifyFound(ctx, ev.Name, ev.ContactEmail); err != nil {
		return fmt.Errorf("notifying %s about item %d: %w", ev.ContactEmail, ev.ItemID, err)
	}
	s.Log.InfoContext(ctx, "found notification sent", "item_id", ev.ItemID, "event_id", ev.EventID)
	return nil
}

// Register subscribes s to item.found on bus. Each event gets up to
// attempts delivery tries.
func (s *Subscriber) Register(ctx context.Context, bus *events.Bus, attempts int) error {
	return bus.Subscribe(ctx, events.TopicItemFound, attempts, s.Handle)
}
