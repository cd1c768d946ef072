package domain

import "github.com/google/uuid"

type PostMessageCommand struct {
	Content   string
	Recipient string
}

type DeleteMessageCommand struct {
	ID string
}

// ParseID returns uuid.Nil and false when the raw id cannot identify any message.
func (d DeleteMessageCommand) ParseID() (uuid.UUID, bool) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

type SearchMessagesCommand struct {
	Query string
	Limit int
}
