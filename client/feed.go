package client

import (
	"strings"

	"github.com/samber/lo"
)

// FilterMessages keeps messages whose recipient or content contains term, ignoring case.
// An empty term keeps everything.
func FilterMessages(messages []Message, term string) []Message {
	if term == "" {
		return messages
	}
	term = strings.ToLower(term)
	return lo.Filter(messages, func(m Message, _ int) bool {
		return strings.Contains(strings.ToLower(m.Recipient), term) ||
			strings.Contains(strings.ToLower(m.Content), term)
	})
}
