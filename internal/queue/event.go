// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import "time"

// UserRegisteredQueue is the durable queue carrying UserRegisteredEvent.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published once per successful registration.  It
// carries no credential material.
type UserRegisteredEvent struct {
    EventID      string    `json:"event_id"`
    UserID       string    `json:"user_id"`
    Email        string    `json:"email"`
    Role         string    `json:"role"`
    RegisteredAt time.Time `json:"registered_at"`
}
