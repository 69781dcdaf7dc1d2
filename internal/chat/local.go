package chat

import (
	"context"

	"agency-portfolio-backend/internal/models"
)

// LocalTransport drives a Conversation straight against a Service, without
// HTTP in between.
type LocalTransport struct {
	Service *Service
	// User, when set, makes the conversation an authenticated one.
	User *models.User
}

func (t LocalTransport) Start(ctx context.Context, guestName, sessionID string) (*models.ChatSession, error) {
	return t.Service.Start(ctx, StartRequest{User: t.User, GuestName: guestName, SessionID: sessionID})
}

func (t LocalTransport) Send(ctx context.Context, sessionID, text string) (*models.ChatSession, error) {
	session, err := t.Service.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return t.Service.Send(ctx, sessionID, models.ChatMessage{
		Sender:   models.SenderVisitor,
		Text:     text,
		UserName: session.GuestName,
	})
}

func (t LocalTransport) Fetch(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	return t.Service.Session(ctx, sessionID)
}
