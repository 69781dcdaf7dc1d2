package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/models"
)

const sessionWithMessages = "*, chat_messages(*)"

// ChatRepository maps chat_sessions and chat_messages.
type ChatRepository struct {
	client *Client
}

func NewChatRepository(client *Client) *ChatRepository {
	return &ChatRepository{client: client}
}

func (r *ChatRepository) ListSessions(ctx context.Context) ([]models.ChatSession, error) {
	var rows []models.ChatSessionRow
	_, err := r.client.Supabase.From(tableChatSessions).
		Select(sessionWithMessages, "", false).
		Order("last_updated", &postgrest.OrderOpts{Ascending: false}).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}

	sessions := make([]models.ChatSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.ToSession())
	}
	return sessions, nil
}

func (r *ChatRepository) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var rows []models.ChatSessionRow
	_, err := r.client.Supabase.From(tableChatSessions).
		Select(sessionWithMessages, "", false).
		Eq("id", id).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("session %s: %w", id, chat.ErrSessionNotFound)
	}

	session := rows[0].ToSession()
	return &session, nil
}

func (r *ChatRepository) UpsertSession(ctx context.Context, s models.ChatSession) error {
	_, _, err := r.client.Supabase.From(tableChatSessions).
		Upsert(models.NewChatSessionRow(s), "id", "minimal", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save chat session: %w", err)
	}
	return nil
}

func (r *ChatRepository) InsertMessage(ctx context.Context, sessionID string, m models.ChatMessage) error {
	_, _, err := r.client.Supabase.From(tableChatMessages).
		Insert(models.NewChatMessageRow(sessionID, m), false, "", "minimal", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

func (r *ChatRepository) TouchSession(ctx context.Context, id string, lastUpdated int64, readByAdmin bool) error {
	update := map[string]interface{}{
		"last_updated":     lastUpdated,
		"is_read_by_admin": readByAdmin,
	}
	_, _, err := r.client.Supabase.From(tableChatSessions).
		Update(update, "minimal", "").
		Eq("id", id).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update chat session: %w", err)
	}
	return nil
}

func (r *ChatRepository) MarkRead(ctx context.Context, id string) error {
	_, _, err := r.client.Supabase.From(tableChatSessions).
		Update(map[string]interface{}{"is_read_by_admin": true}, "minimal", "").
		Eq("id", id).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark chat session read: %w", err)
	}
	return nil
}

var _ chat.Repository = (*ChatRepository)(nil)
