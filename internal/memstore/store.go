// Package memstore is an in-process stand-in for the Supabase provider, used
// for local development (PROVIDER=memory) and tests. It keeps the provider's
// semantics: no referential integrity between projects and categories, no
// ordering guarantees on chat rows, last writer wins.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/models"
)

type Store struct {
	mu         sync.RWMutex
	categories []string
	projects   map[string]models.Project
	sessions   map[string]models.ChatSession
	now        func() time.Time
	lastStamp  time.Time

	// Fail, when set, is returned by every operation whose name it maps.
	// Tests use it to simulate provider outages.
	Fail map[string]error
}

func New() *Store {
	return &Store{
		projects: make(map[string]models.Project),
		sessions: make(map[string]models.ChatSession),
		now:      time.Now,
		Fail:     make(map[string]error),
	}
}

func (s *Store) failure(op string) error {
	if err, ok := s.Fail[op]; ok {
		return err
	}
	return nil
}

// Categories

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListCategories"); err != nil {
		return nil, err
	}
	return append([]string{}, s.categories...), nil
}

func (s *Store) InsertCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertCategory"); err != nil {
		return err
	}
	for _, c := range s.categories {
		if c == name {
			return fmt.Errorf("duplicate key value violates unique constraint \"categories_pkey\"")
		}
	}
	s.categories = append(s.categories, name)
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DeleteCategory"); err != nil {
		return err
	}
	kept := s.categories[:0]
	for _, c := range s.categories {
		if c != name {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	return nil
}

// Projects

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListProjects"); err != nil {
		return nil, err
	}
	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) InsertProject(ctx context.Context, p models.NewProject) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertProject"); err != nil {
		return nil, err
	}
	row := models.NewProjectRow(p)
	row.ID = uuid.NewString()
	created := s.stamp()
	row.CreatedAt = &created
	project := row.ToProject()
	s.projects[project.ID] = project
	return &project, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("GetProject"); err != nil {
		return nil, err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, catalog.ErrProjectNotFound)
	}
	return &p, nil
}

func (s *Store) UpdateVisibility(ctx context.Context, id string, patch models.VisibilityPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpdateVisibility"); err != nil {
		return err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil
	}
	switch patch.Zone {
	case models.ZoneCarousel:
		p.ShowInCarousel = patch.Value
	case models.ZoneGrid:
		p.ShowInGrid = patch.Value
	}
	s.projects[id] = p
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("DeleteProject"); err != nil {
		return err
	}
	delete(s.projects, id)
	return nil
}

// Chat

func (s *Store) ListSessions(ctx context.Context) ([]models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("ListSessions"); err != nil {
		return nil, err
	}
	out := make([]models.ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, copySession(sess))
	}
	return out, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("GetSession"); err != nil {
		return nil, err
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, chat.ErrSessionNotFound)
	}
	cp := copySession(sess)
	return &cp, nil
}

func (s *Store) UpsertSession(ctx context.Context, sess models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("UpsertSession"); err != nil {
		return err
	}
	existing, ok := s.sessions[sess.ID]
	if ok {
		sess.Messages = existing.Messages
	} else {
		sess.Messages = nil
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, sessionID string, m models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("InsertMessage"); err != nil {
		return err
	}
	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("insert or update on table \"chat_messages\" violates foreign key constraint")
	}
	for _, existing := range sess.Messages {
		if existing.ID == m.ID {
			return fmt.Errorf("duplicate key value violates unique constraint \"chat_messages_pkey\"")
		}
	}
	sess.Messages = append(sess.Messages, m)
	s.sessions[sessionID] = sess
	return nil
}

func (s *Store) TouchSession(ctx context.Context, id string, lastUpdated int64, readByAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("TouchSession"); err != nil {
		return err
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	sess.LastUpdated = lastUpdated
	sess.IsReadByAdmin = readByAdmin
	s.sessions[id] = sess
	return nil
}

func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("MarkRead"); err != nil {
		return err
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	sess.IsReadByAdmin = true
	s.sessions[id] = sess
	return nil
}

// stamp returns a creation time strictly after the previous one, so insert
// order is recoverable from created_at.
func (s *Store) stamp() time.Time {
	t := s.now()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

func copySession(s models.ChatSession) models.ChatSession {
	s.Messages = append([]models.ChatMessage{}, s.Messages...)
	return s
}

var (
	_ catalog.Repository = (*Store)(nil)
	_ chat.Repository    = (*Store)(nil)
)
