package service

import (
	"context"
	"log"
	"sync"
	"time"

	"trike/internal/domain"
)

// Notification is a message destined for a passenger, driver, or vendor.
type Notification struct {
	RecipientID string
	TripID      string
	Event       string
	Message     string
	SentAt      time.Time
}

// Notifier delivers trip lifecycle events to participants.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the process log. It stands in for a
// push-notification or SMS gateway and records recent sends for inspection.
type LogNotifier struct {
	mu     sync.Mutex
	recent []Notification
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(_ context.Context, msg Notification) {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	n.mu.Lock()
	n.recent = append(n.recent, msg)
	if len(n.recent) > 100 {
		n.recent = n.recent[len(n.recent)-100:]
	}
	n.mu.Unlock()

	log.Printf("notify recipient=%s trip=%s event=%s: %s", msg.RecipientID, msg.TripID, msg.Event, msg.Message)
}

// Recent returns a copy of the most recent notifications.
func (n *LogNotifier) Recent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, len(n.recent))
	copy(out, n.recent)
	return out
}

// statusMessages maps trip statuses to passenger-facing copy.
var statusMessages = map[domain.Status]string{
	domain.StatusAssigned:          "A driver has been assigned to your trip",
	domain.StatusDriverAssigned:    "A driver has been assigned to your trip",
	domain.StatusEnroute:           "Your driver is on the way",
	domain.StatusDriverEnRoute:     "Your driver is on the way",
	domain.StatusArrivedAtVendor:   "Your driver has arrived at the store",
	domain.StatusVendorConfirmed:   "The store has confirmed your order",
	domain.StatusPickupVerified:    "Your order has been picked up",
	domain.StatusOnTheWay:          "Your order is on the way",
	domain.StatusArrivedAtCustomer: "Your driver has arrived",
	domain.StatusDelivered:         "Your order has been delivered",
	domain.StatusCompleted:         "Your trip is complete",
	domain.StatusCancelled:         "Your trip has been cancelled",
}

// NotifyStatusChange sends the passenger-facing message for a status change,
// when one exists.
func NotifyStatusChange(ctx context.Context, notifier Notifier, trip *domain.Trip, to domain.Status) {
	if notifier == nil || trip == nil {
		return
	}

	msg, ok := statusMessages[to]
	if !ok {
		return
	}

	notifier.Notify(ctx, Notification{
		RecipientID: trip.PassengerID,
		TripID:      trip.ID,
		Event:       string(to),
		Message:     msg,
	})
}
