package messages

import (
	"time"

	"github.com/google/uuid"
)

// Message is one line received from a peer.
type Message struct {
	ID     uuid.UUID `json:"id"`
	Peer   string    `json:"peer"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
	Remote string    `json:"remote,omitempty"`
}

func New(peer string, text string, remote string) Message {
	return Message{
		ID:     uuid.New(),
		Peer:   peer,
		Text:   text,
		Time:   time.Now(),
		Remote: remote,
	}
}
