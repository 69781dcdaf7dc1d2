package models

type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// ProfileRow is the profiles side table. The admin flag lives only here.
type ProfileRow struct {
	ID      string  `json:"id"`
	Name    *string `json:"name"`
	IsAdmin *bool   `json:"is_admin"`
}

// Session pairs a signed-in user with the provider tokens for that session.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
