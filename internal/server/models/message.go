package models

import "time"

// SentMessage is a message seen from its sender's side.
type SentMessage struct {
	ID     int64
	ToUser UserProfile
	Body   string
	SentAt time.Time
	// ReadAt is nil until the recipient reads the message.
	ReadAt *time.Time
}

// ReceivedMessage is a message seen from its recipient's side.
type ReceivedMessage struct {
	ID       int64
	FromUser UserProfile
	Body     string
	SentAt   time.Time
	ReadAt   *time.Time
}
