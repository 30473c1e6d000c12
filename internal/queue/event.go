// Package queue carries hotel domain events over the message broker:
// the event payload, a circuit-breaking publisher and the consumer that
// writes every event to a rotating log file.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// Event types published after a workflow commits.
const (
    EventBookingCreated   = "booking.created"
    EventBookingCancelled = "booking.cancelled"
    EventBookingUpdated   = "booking.updated"
    EventGuestCheckedIn   = "guest.checked_in"
    EventGuestCheckedOut  = "guest.checked_out"
    EventPaymentUpdated   = "payment.updated"
    EventCustomerCreated  = "customer.created"
    EventCustomerUpdated  = "customer.updated"
    EventRoomCreated      = "room.created"
    EventRoomUpdated      = "room.updated"
)

// HotelEvent is published whenever a workflow changes hotel state.  It
// carries the identifiers a downstream consumer (dashboard, audit log,
// housekeeping) needs without querying the primary database.
type HotelEvent struct {
    ID         string         `json:"id"`
    Type       string         `json:"type"`
    OccurredAt time.Time      `json:"occurred_at"`
    BookingID  int64          `json:"booking_id,omitempty"`
    RoomID     int64          `json:"room_id,omitempty"`
    CustomerID int64          `json:"customer_id,omitempty"`
    PaymentID  int64          `json:"payment_id,omitempty"`
    Data       map[string]any `json:"data,omitempty"`
}

// NewEvent stamps a fresh event of the given type.
func NewEvent(typ string, at time.Time) HotelEvent {
    return HotelEvent{ID: uuid.NewString(), Type: typ, OccurredAt: at.UTC()}
}
