package model

import "time"

// Webhook event names accepted at registration.
const (
    EventOrderCreated  = "order.created"
    EventReviewCreated = "review.created"
)

// Webhook is a registered callback URL for one event.
type Webhook struct {
    ID        uint64    `json:"id"`
    Event     string    `json:"event"`
    URL       string    `json:"url"`
    CreatedAt time.Time `json:"createdAt"`
}
