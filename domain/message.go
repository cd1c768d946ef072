// Package domain contains core concepts of the message board.
// This file defines the Message posted on the public wall.
// Messages are immutable once persisted and carry no submitter identity.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxContentLength   = 150
	MaxRecipientLength = 50
	DefaultFeedLimit   = 100
)

// Message represents an accepted note on the wall.
type Message struct {
	ID        uuid.UUID `json:"_id"`
	Content   string    `json:"content"`
	Recipient string    `json:"recipient"`
	CardColor string    `json:"cardColor"`
	CreatedAt time.Time `json:"createdAt"`
}
