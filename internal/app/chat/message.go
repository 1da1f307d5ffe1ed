package chat

// MessageType is the "type" discriminator of every frame on the wire.
type MessageType string

const (
	// TypeChatMessage is sent by the writer and broadcast to readers.
	TypeChatMessage MessageType = "chatMessage"

	// TypeWriterDeparted tells readers the writer left and the slot is free.
	TypeWriterDeparted MessageType = "writerDeparted"

	// TypeProfileUpdate asks to rename the connection's identity.
	TypeProfileUpdate MessageType = "profileUpdate"

	// TypeProfileUpdateSuccess carries the reissued token after a rename.
	TypeProfileUpdateSuccess MessageType = "profileUpdateSuccess"

	// TypeConfirm acknowledges a writer message that carried a tempId.
	TypeConfirm MessageType = "confirm"

	// TypeError reports a rejected request to the connection that sent it.
	TypeError MessageType = "error"
)

// InboundFrame is the union of every client-to-server frame.
type InboundFrame struct {
	Type    MessageType `json:"type"`
	Text    string      `json:"text,omitempty"`
	TempID  string      `json:"tempId,omitempty"`
	NewName string      `json:"newName,omitempty"`
}

// ChatMessage is a broadcast chat line. Seq increases by one per accepted message.
type ChatMessage struct {
	Type   MessageType `json:"type"`
	Text   string      `json:"text"`
	SentAt int64       `json:"sentAt"`
	Seq    uint64      `json:"seq"`
	From   string      `json:"from,omitempty"`
}

// WriterDeparted is pushed to readers after the writer lock has been released.
type WriterDeparted struct {
	Type   MessageType `json:"type"`
	SentAt int64       `json:"sentAt"`
}

// Confirm acknowledges a writer message to its sender.
type Confirm struct {
	Type   MessageType `json:"type"`
	TempID string      `json:"tempId"`
	Seq    uint64      `json:"seq"`
	SentAt int64       `json:"sentAt"`
}

// ProfileUpdateSuccess is the reply of a profile exchange.
type ProfileUpdateSuccess struct {
	Type     MessageType `json:"type"`
	NewToken string      `json:"newToken"`
}

// ErrorFrame reports an application error code and message.
type ErrorFrame struct {
	Type    MessageType `json:"type"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
}
