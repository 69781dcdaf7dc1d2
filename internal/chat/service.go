// Package chat implements support chat sessions: the server side that owns
// the append-only message log, and the client side Conversation that polls it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"agency-portfolio-backend/internal/models"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrNameRequired    = errors.New("display name is required")
	ErrEmptyMessage    = errors.New("message text is empty")
)

const (
	userSessionPrefix  = "user-"
	guestSessionPrefix = "guest-"
)

// Repository is the provider-facing side of chat. Implementations need not
// return sessions or messages in any particular order.
type Repository interface {
	ListSessions(ctx context.Context) ([]models.ChatSession, error)
	// GetSession returns ErrSessionNotFound when no row matches.
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	// UpsertSession writes the session row only; messages are ignored.
	UpsertSession(ctx context.Context, s models.ChatSession) error
	InsertMessage(ctx context.Context, sessionID string, m models.ChatMessage) error
	TouchSession(ctx context.Context, id string, lastUpdated int64, readByAdmin bool) error
	MarkRead(ctx context.Context, id string) error
}

// Notifier receives every message appended to a session.
type Notifier interface {
	Publish(sessionID string, m models.ChatMessage)
}

type StartRequest struct {
	// User is the authenticated caller, if any. Its session id is stable.
	User *models.User
	// GuestName is required for anonymous visitors.
	GuestName string
	// SessionID is a guest session the client already holds.
	SessionID string
}

type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
	log      zerolog.Logger

	guestMu   sync.Mutex
	lastGuest int64 // unix ms of the last guest id issued
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserSessionID is the stable session id of an authenticated user.
func UserSessionID(userID string) string {
	return userSessionPrefix + userID
}

// GuestSessionID seeds a new guest session id from a point in time.
func GuestSessionID(t time.Time) string {
	return guestSessionPrefix + strconv.FormatInt(t.UnixMilli(), 10)
}

// SessionOwner returns the user id encoded in an authenticated session id.
func SessionOwner(id string) (string, bool) {
	if !strings.HasPrefix(id, userSessionPrefix) {
		return "", false
	}
	return strings.TrimPrefix(id, userSessionPrefix), true
}

func IsGuestSession(id string) bool {
	return strings.HasPrefix(id, guestSessionPrefix)
}

// WelcomeText is the system message that opens every session.
func WelcomeText(name string) string {
	return fmt.Sprintf("Bienvenido %s. Un agente se conectará pronto.", name)
}

// Sessions lists every session, newest activity first, each log oldest first.
func (s *Service) Sessions(ctx context.Context) []models.ChatSession {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("error fetching chat sessions")
		return []models.ChatSession{}
	}
	if sessions == nil {
		return []models.ChatSession{}
	}
	models.SortSessions(sessions)
	return sessions
}

func (s *Service) Session(ctx context.Context, id string) (*models.ChatSession, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	session.SortMessages()
	return session, nil
}

// Start moves a visitor from no session to an active one, reusing the session
// when it already exists.
func (s *Service) Start(ctx context.Context, req StartRequest) (*models.ChatSession, error) {
	var id, name, userID string
	switch {
	case req.User != nil:
		id = UserSessionID(req.User.ID)
		userID = req.User.ID
		name = req.User.Name
		if name == "" {
			name = req.User.Email
		}
	default:
		name = strings.TrimSpace(req.GuestName)
		if name == "" {
			return nil, ErrNameRequired
		}
		if IsGuestSession(req.SessionID) {
			id = req.SessionID
		} else {
			fresh, err := s.newGuestSessionID(ctx)
			if err != nil {
				return nil, err
			}
			id = fresh
		}
	}

	// Only ids the caller already held are resumed; a fresh guest id is
	// known to be free.
	if userID != "" || id == req.SessionID {
		existing, err := s.Session(ctx, id)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to look up session: %w", err)
		}
	}

	now := s.now().UnixMilli()
	session := models.ChatSession{
		ID:          id,
		UserID:      userID,
		GuestName:   name,
		LastUpdated: now,
	}
	if err := s.repo.UpsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	welcome := models.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    models.SenderSystem,
		Text:      WelcomeText(name),
		Timestamp: now,
	}
	if err := s.repo.InsertMessage(ctx, id, welcome); err != nil {
		return nil, fmt.Errorf("failed to write welcome message: %w", err)
	}

	s.log.Info().Str("session_id", id).Msg("chat session started")
	return s.Session(ctx, id)
}

// newGuestSessionID issues a guest id that no stored session uses. Ids are
// strictly increasing within the process; a collision with a row written
// elsewhere moves the id forward one millisecond at a time.
func (s *Service) newGuestSessionID(ctx context.Context) (string, error) {
	s.guestMu.Lock()
	defer s.guestMu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.lastGuest {
		ms = s.lastGuest + 1
	}
	for {
		id := GuestSessionID(time.UnixMilli(ms))
		_, err := s.repo.GetSession(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			s.lastGuest = ms
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to look up session: %w", err)
		}
		ms++
	}
}

// Send appends one message, touches the session and returns the provider's
// view of it. Only admin messages leave the session marked read.
func (s *Service) Send(ctx context.Context, sessionID string, m models.ChatMessage) (*models.ChatSession, error) {
	if strings.TrimSpace(m.Text) == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := models.ParseSender(string(m.Sender)); err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp == 0 {
		m.Timestamp = s.now().UnixMilli()
	}

	if err := s.repo.InsertMessage(ctx, sessionID, m); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	if err := s.repo.TouchSession(ctx, sessionID, m.Timestamp, readAfter(m.Sender)); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("error updating session")
	}

	if s.notifier != nil {
		s.notifier.Publish(sessionID, m)
	}

	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session lost after send: %w", err)
	}
	return session, nil
}

// MarkRead flags a session as read by the admin without sending anything.
func (s *Service) MarkRead(ctx context.Context, sessionID string) error {
	if err := s.repo.MarkRead(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to mark session read: %w", err)
	}
	return nil
}

func readAfter(sender models.Sender) bool {
	switch sender {
	case models.SenderAdmin:
		return true
	case models.SenderVisitor, models.SenderAI, models.SenderSystem:
		return false
	}
	return false
}
