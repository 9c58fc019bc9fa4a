// internal/models/conversation.go
package models

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerSystem Speaker = "system"
)

// Turn is one entry in a session's conversation history. The history is
// append-only and exists solely to give the extraction call context.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Document is an opaque piece of uploaded-document text attached to a
// session by the external file-intake collaborator.
type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}
