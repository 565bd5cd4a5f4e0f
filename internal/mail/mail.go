// Package mail renders and delivers the contact form emails.
package mail

import "context"

// Message is a single outbound HTML email.
type Message struct {
	From     string
	FromName string
	To       string
	ReplyTo  string
	Subject  string
	HTML     string
}

// Receipt describes an accepted message. PreviewURL is only set by
// transports that keep a retrievable copy instead of delivering.
type Receipt struct {
	ID         string
	PreviewURL string
}

// Transport hands out sessions that can send messages. Opening a session may
// dial a remote server and can fail on its own.
type Transport interface {
	Open(ctx context.Context) (Session, error)
}

// Session sends messages over an acquired transport until closed.
type Session interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
	Close() error
}
