package services

import "messaging-service/internal/models"

// Pusher is the push-delivery gateway: best-effort, at-most-once delivery to
// all active connections of a user group or a named group.
type Pusher interface {
	SendToUser(userID int, event models.Event)
	SendToGroup(name string, event models.Event)
}
