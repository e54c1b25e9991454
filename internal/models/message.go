package models

// Sender identifies who authored a transcript message
type Sender int

const (
	SenderUser Sender = iota
	SenderAssistant
)

// String returns the role name used in labels and logs
func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Label returns the bubble prefix shown in the transcript
func (s Sender) Label() string {
	if s == SenderUser {
		return "You"
	}
	return "Assistant"
}

// Message represents a chat message for transcript display.
// Messages are values and are never mutated once appended.
type Message struct {
	Sender  Sender
	Text    string
	Loading bool // Only set on the assistant placeholder
}

// UserMessage builds a user bubble with the literal text
func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text}
}

// AssistantMessage builds a settled assistant bubble
func AssistantMessage(text string) Message {
	return Message{Sender: SenderAssistant, Text: text}
}

// PlaceholderMessage builds the loading bubble shown while a request is pending
func PlaceholderMessage() Message {
	return Message{Sender: SenderAssistant, Text: PlaceholderText, Loading: true}
}

// IsAssistant reports whether the message is assistant-tagged
func (m Message) IsAssistant() bool {
	return m.Sender == SenderAssistant
}

// Handle identifies one appended transcript node for later removal.
// The zero Handle never refers to a node.
type Handle uint64
