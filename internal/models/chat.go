package models

import (
	"fmt"
	"sort"
)

// Sender identifies who authored a chat message. The set is closed; code
// branching on it should handle every value.
type Sender string

const (
	SenderVisitor Sender = "user"
	SenderAdmin   Sender = "admin"
	SenderAI      Sender = "ai"
	SenderSystem  Sender = "system"
)

func ParseSender(s string) (Sender, error) {
	switch Sender(s) {
	case SenderVisitor, SenderAdmin, SenderAI, SenderSystem:
		return Sender(s), nil
	case "visitor":
		return SenderVisitor, nil
	}
	return "", fmt.Errorf("unknown sender %q", s)
}

func (s Sender) String() string {
	switch s {
	case SenderVisitor:
		return "visitor"
	case SenderAdmin:
		return "admin"
	case SenderAI:
		return "ai"
	case SenderSystem:
		return "system"
	}
	return "unknown"
}

type ChatMessage struct {
	ID        string `json:"id"`
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	UserName  string `json:"userName,omitempty"`
}

type ChatSession struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId,omitempty"`
	GuestName     string        `json:"guestName,omitempty"`
	Messages      []ChatMessage `json:"messages"`
	LastUpdated   int64         `json:"lastUpdated"`
	IsReadByAdmin bool          `json:"isReadByAdmin"`
}

// Last returns the newest message, if any.
func (s ChatSession) Last() (ChatMessage, bool) {
	if len(s.Messages) == 0 {
		return ChatMessage{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// SortMessages orders the log by timestamp ascending. Equal timestamps keep
// the order the provider returned them in.
func (s *ChatSession) SortMessages() {
	sort.SliceStable(s.Messages, func(i, j int) bool {
		return s.Messages[i].Timestamp < s.Messages[j].Timestamp
	})
}

// SortSessions orders sessions by last update, newest first, and sorts each
// message log.
func SortSessions(sessions []ChatSession) {
	for i := range sessions {
		sessions[i].SortMessages()
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastUpdated > sessions[j].LastUpdated
	})
}

// ChatSessionRow is the provider's row shape for chat_sessions, including the
// embedded chat_messages relation.
type ChatSessionRow struct {
	ID            string           `json:"id"`
	UserID        *string          `json:"user_id"`
	GuestName     *string          `json:"guest_name"`
	LastUpdated   int64            `json:"last_updated"`
	IsReadByAdmin bool             `json:"is_read_by_admin"`
	Messages      []ChatMessageRow `json:"chat_messages,omitempty"`
}

type ChatMessageRow struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id,omitempty"`
	Sender    string  `json:"sender"`
	Text      string  `json:"text"`
	Timestamp int64   `json:"timestamp"`
	UserName  *string `json:"user_name"`
}

func (r ChatSessionRow) ToSession() ChatSession {
	s := ChatSession{
		ID:            r.ID,
		LastUpdated:   r.LastUpdated,
		IsReadByAdmin: r.IsReadByAdmin,
		Messages:      make([]ChatMessage, 0, len(r.Messages)),
	}
	if r.UserID != nil {
		s.UserID = *r.UserID
	}
	if r.GuestName != nil {
		s.GuestName = *r.GuestName
	}
	for _, m := range r.Messages {
		s.Messages = append(s.Messages, m.ToMessage())
	}
	s.SortMessages()
	return s
}

func (r ChatMessageRow) ToMessage() ChatMessage {
	sender, err := ParseSender(r.Sender)
	if err != nil {
		sender = SenderSystem
	}
	m := ChatMessage{
		ID:        r.ID,
		Sender:    sender,
		Text:      r.Text,
		Timestamp: r.Timestamp,
	}
	if r.UserName != nil {
		m.UserName = *r.UserName
	}
	return m
}

// NewChatSessionRow maps a session to its row shape, without messages.
func NewChatSessionRow(s ChatSession) ChatSessionRow {
	return ChatSessionRow{
		ID:            s.ID,
		UserID:        optional(s.UserID),
		GuestName:     optional(s.GuestName),
		LastUpdated:   s.LastUpdated,
		IsReadByAdmin: s.IsReadByAdmin,
	}
}

func NewChatMessageRow(sessionID string, m ChatMessage) ChatMessageRow {
	return ChatMessageRow{
		ID:        m.ID,
		SessionID: sessionID,
		Sender:    string(m.Sender),
		Text:      m.Text,
		Timestamp: m.Timestamp,
		UserName:  optional(m.UserName),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
