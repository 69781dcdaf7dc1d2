package models

type CategoryListResponse struct {
	Categories []string `json:"categories"`
}

type ProjectListResponse struct {
	Projects []Project `json:"projects"`
}

type SessionListResponse struct {
	Sessions []ChatSession `json:"sessions"`
}

// ActiveUserResponse carries a nil user when there is no live session.
type ActiveUserResponse struct {
	User *User `json:"user"`
}

type AssistantResponse struct {
	Reply string `json:"reply"`
}

// ChatEvent is pushed to websocket subscribers of a session.
type ChatEvent struct {
	Type      string       `json:"type"`
	SessionID string       `json:"sessionId"`
	Message   *ChatMessage `json:"message,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
	Database string `json:"database,omitempty"`
}
