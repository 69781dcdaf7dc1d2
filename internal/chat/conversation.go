package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"agency-portfolio-backend/internal/models"
)

// DefaultPollInterval is the visitor widget's refresh cadence.
const DefaultPollInterval = 2 * time.Second

// State of a visitor conversation. There is no closed state.
type State int

const (
	StateNoSession State = iota
	StateActive
)

func (s State) String() string {
	switch s {
	case StateNoSession:
		return "no-session"
	case StateActive:
		return "session-active"
	}
	return "unknown"
}

// Transport is how a Conversation reaches the chat backend.
type Transport interface {
	Start(ctx context.Context, guestName, sessionID string) (*models.ChatSession, error)
	Send(ctx context.Context, sessionID, text string) (*models.ChatSession, error)
	Fetch(ctx context.Context, sessionID string) (*models.ChatSession, error)
}

// Conversation is the visitor side of a support chat: it holds the local copy
// of the session, the unsent draft and the unread counter.
type Conversation struct {
	transport Transport

	mu       sync.Mutex
	session  *models.ChatSession
	draft    string
	open     bool
	unread   int
	onChange func(models.ChatSession)
}

func NewConversation(t Transport) *Conversation {
	return &Conversation{transport: t}
}

// OnChange registers a callback invoked whenever the local session is replaced.
func (c *Conversation) OnChange(fn func(models.ChatSession)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return StateNoSession
	}
	return StateActive
}

// Session returns a copy of the local session, or nil before Start.
func (c *Conversation) Session() *models.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	cp := *c.session
	cp.Messages = append([]models.ChatMessage(nil), c.session.Messages...)
	return &cp
}

// Start identifies the visitor. An authenticated transport may pass an empty
// name; a guest must provide one. Calling Start again reuses the held session.
func (c *Conversation) Start(ctx context.Context, name string) error {
	c.mu.Lock()
	var sessionID string
	if c.session != nil {
		sessionID = c.session.ID
	}
	c.mu.Unlock()

	session, err := c.transport.Start(ctx, strings.TrimSpace(name), sessionID)
	if err != nil {
		return err
	}
	c.replace(*session)
	return nil
}

func (c *Conversation) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

func (c *Conversation) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Send posts the draft as a visitor message. The draft is cleared only when
// the send succeeds, so a failed send can be retried as is. Blank drafts and
// sends before Start are no-ops.
func (c *Conversation) Send(ctx context.Context) error {
	c.mu.Lock()
	text := c.draft
	session := c.session
	c.mu.Unlock()

	if strings.TrimSpace(text) == "" || session == nil {
		return nil
	}

	updated, err := c.transport.Send(ctx, session.ID, text)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.draft == text {
		c.draft = ""
	}
	c.mu.Unlock()
	c.replace(*updated)
	return nil
}

// Poll runs one refresh. The local session is replaced only when the fetched
// log is longer; while the widget is closed, growth ending in a message not
// written by the visitor bumps the unread counter. It reports whether the
// session grew.
func (c *Conversation) Poll(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return false, nil
	}
	id := c.session.ID
	c.mu.Unlock()

	fetched, err := c.transport.Fetch(ctx, id)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	prev := 0
	if c.session != nil {
		prev = len(c.session.Messages)
	}
	if len(fetched.Messages) <= prev {
		c.mu.Unlock()
		return false, nil
	}
	if !c.open {
		if last, ok := fetched.Last(); ok && last.Sender != models.SenderVisitor {
			c.unread++
		}
	}
	c.mu.Unlock()

	c.replace(*fetched)
	return true, nil
}

// Run polls at a fixed interval until ctx is cancelled. Failed polls are
// reported to onErr and tried again on the next tick.
func (c *Conversation) Run(ctx context.Context, interval time.Duration, onErr func(error)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Poll(ctx); err != nil && onErr != nil && ctx.Err() == nil {
				onErr(err)
			}
		}
	}
}

// Open marks the widget visible and clears the unread counter.
func (c *Conversation) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.unread = 0
}

func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

func (c *Conversation) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Conversation) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

func (c *Conversation) replace(s models.ChatSession) {
	c.mu.Lock()
	c.session = &s
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
