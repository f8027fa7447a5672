// Package platform is the boundary to the chat service. Everything the bot
// does to the outside world goes through Platform.
package platform

import "context"

// Button is one inline button; ID comes back as the press payload.
type Button struct {
	ID    string
	Label string
}

type Platform interface {
	// SendMessage posts text with optional buttons and returns the message id.
	SendMessage(ctx context.Context, chatID, text string, buttons []Button) (string, error)
	// SendDirect posts to the user's direct-message channel.
	SendDirect(ctx context.Context, userID, text string, buttons []Button) error
	// SendDocument sends a file to the user's direct-message channel.
	SendDocument(ctx context.Context, userID, name string, content []byte, caption string, buttons []Button) error
	ListMembers(ctx context.Context, chatID string) ([]string, error)
	DisplayName(ctx context.Context, chatID, userID string) (string, error)
	RemoveMember(ctx context.Context, chatID, userID string) error
	// Download fetches an uploaded attachment.
	Download(ctx context.Context, url string) ([]byte, error)
}
