package models

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
	// ImageURLs may hold public URLs or base64 data URLs; data URLs are
	// uploaded to storage before the project is written.
	ImageURLs     []string `json:"imageUrls,omitempty"`
	ImageCaptions []string `json:"imageCaptions,omitempty"`
	// TechStack accepts a comma-separated string, as typed in the admin form.
	TechStack      string `json:"techStack,omitempty"`
	DemoURL        string `json:"demoUrl,omitempty"`
	ShowInCarousel *bool  `json:"showInCarousel,omitempty"`
	ShowInGrid     *bool  `json:"showInGrid,omitempty"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

type StartChatRequest struct {
	// GuestName is required when the caller is not authenticated.
	GuestName string `json:"guestName,omitempty"`
	// SessionID lets a guest client reuse the session it already holds.
	SessionID string `json:"sessionId,omitempty"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type AssistantRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
