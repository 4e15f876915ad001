package response

import (
	"time"

	"care-booking/internal/data/entity"
)

type OutboxMessageResponse struct {
	ID        string    `json:"id"`
	BookingID *string   `json:"booking_id,omitempty"`
	Event     string    `json:"event"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	Attempts  int       `json:"attempts"`
	LastError *string   `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func OutboxToResponse(m *entity.OutboxMessage) OutboxMessageResponse {
	resp := OutboxMessageResponse{
		ID:        m.ID.String(),
		Event:     m.Event,
		Channel:   m.Channel,
		Recipient: m.Recipient,
		Attempts:  m.Attempts,
		LastError: m.LastError,
		CreatedAt: m.CreatedAt,
	}
	if m.BookingID != nil {
		id := m.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}
