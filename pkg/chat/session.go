package chat

import (
	"slices"

	"github.com/google/uuid"
)

// Session owns the transcript of one conversation. It is not safe for
// concurrent use; a session handles one user utterance at a time.
type Session struct {
	ID string

	transcript []Message
	turns      int
}

// NewSession starts a session, seeded with a system message when systemPrompt is set.
func NewSession(systemPrompt string) *Session {
	session := &Session{ID: uuid.NewString()}
	if systemPrompt != "" {
		session.transcript = append(session.transcript, SystemMessage(systemPrompt))
	}
	return session
}

// Transcript returns a copy of the committed messages.
func (s *Session) Transcript() []Message {
	return slices.Clone(s.transcript)
}

// Turns counts the completion requests made on behalf of this session.
func (s *Session) Turns() int {
	return s.turns
}

func (s *Session) append(messages ...Message) {
	s.transcript = append(s.transcript, messages...)
}
