package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/malonaz/specchat/internal/message"
	"github.com/malonaz/specchat/store"
)

const maxAutoTitleLength = 50

// historyMessages rebuilds gateway messages from stored ones. Assistant
// messages get their spec back as patch parts.
func historyMessages(messages []*store.Message) []*message.Message {
	history := make([]*message.Message, 0, len(messages))
	for _, m := range messages {
		var parts []message.Part
		if m.Content != "" {
			parts = append(parts, message.TextPart(m.Content))
		}
		if m.Spec != nil {
			parts = append(parts, message.SpecParts(m.Spec)...)
		}
		if len(parts) == 0 {
			continue
		}
		history = append(history, &message.Message{ID: m.ID, Role: m.Role, Parts: parts})
	}
	return history
}

// autoTitle derives a chat title from its first prompt.
func autoTitle(prompt string) string {
	title := strings.Join(strings.Fields(prompt), " ")
	if utf8.RuneCountInString(title) <= maxAutoTitleLength {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:maxAutoTitleLength])) + "..."
}
