package outbox

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/teamboard/domain"
)

// Item is a notification waiting for delivery.
type Item struct {
	ID           string              `json:"id"`
	Notification domain.Notification `json:"notification"`
	Attempts     int                 `json:"attempts"`
	LastError    string              `json:"last_error,omitempty"`
	EnqueuedAt   time.Time           `json:"enqueued_at"`

	key []byte
}

func (i *Item) normalize(now time.Time) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.EnqueuedAt.IsZero() {
		i.EnqueuedAt = now
	}
}

// Keys sort by enqueue time so the outbox drains oldest first.
func itemKey(i Item) []byte {
	return []byte(fmt.Sprintf("%020d_%s", i.EnqueuedAt.UnixNano(), i.ID))
}
