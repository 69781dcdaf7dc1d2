package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"

	"agency-portfolio-backend/internal/config"
)

// Client wraps the Supabase clients shared by the table and auth adapters.
// Supabase carries the service-role key and serves every table read and
// write; Public carries the publishable key and serves GoTrue user flows.
type Client struct {
	Supabase *supabase.Client
	Public   *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	service, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	public, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase auth client: %w", err)
	}

	return &Client{
		Supabase: service,
		Public:   public,
		Config:   cfg,
	}, nil
}

const (
	tableCategories   = "categories"
	tableProjects     = "projects"
	tableProfiles     = "profiles"
	tableChatSessions = "chat_sessions"
	tableChatMessages = "chat_messages"
)
