package service

import "time"

// StaffBroadcaster pushes a payload to every connected staff dashboard; the
// websocket events hub implements it.
type StaffBroadcaster interface {
	BroadcastStaff(propertyID uint, payload interface{})
}

// BookingEvent is what staff dashboards receive when a booking or payment
// changes state.
type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     uint      `json:"booking_id"`
	BookingCode   string    `json:"booking_code"`
	PropertyID    uint      `json:"property_id"`
	RoomID        uint      `json:"room_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	At            time.Time `json:"at"`
}

// EventService fans booking lifecycle events out to staff dashboards.
// Publishing is fire-and-forget: a nil broadcaster or a slow consumer never
// affects the caller.
type EventService struct {
	hub StaffBroadcaster
}

func NewEventService(hub StaffBroadcaster) *EventService {
	return &EventService{hub: hub}
}

func (s *EventService) Publish(evt BookingEvent) {
	if s == nil || s.hub == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	s.hub.BroadcastStaff(evt.PropertyID, evt)
}
