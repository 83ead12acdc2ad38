package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/model"
)

// TopicItemFound is published after an item's status is updated to Found.
const TopicItemFound = "item.found"

// ItemFoundEvent carries what the notifier needs to email the reporter.
type ItemFoundEvent struct {
	EventID      string    `json:"eventId"`
	ItemID       int64     `json:"itemId"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contactEmail"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// NewItemFound builds the event for an item as it was just persisted.
func NewItemFound(item *model.Item) ItemFoundEvent {
	return ItemFoundEvent{
		EventID:      uuid.NewString(),
		ItemID:       item.ID,
		Name:         item.Name,
		ContactEmail: item.ContactEmail,
		OccurredAt:   time.Now().UTC(),
	}
}

// DecodeItemFound parses an item.found message payload.
func DecodeItemFound(msg *message.Message) (ItemFoundEvent, error) {
	var ev ItemFoundEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("events: decode %s payload: %w", TopicItemFound, err)
	}
	return ev, nil
}
