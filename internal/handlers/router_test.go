package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portfolio-backend/internal/assistant"
	"agency-portfolio-backend/internal/auth"
	"agency-portfolio-backend/internal/catalog"
	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/config"
	"agency-portfolio-backend/internal/handlers"
	"agency-portfolio-backend/internal/memstore"
	"agency-portfolio-backend/internal/models"
	"agency-portfolio-backend/internal/realtime"
)

const (
	adminEmail    = "admin@santy.lab"
	adminPassword = "admin-pass"
)

type testServer struct {
	router *gin.Engine
	store  *memstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Provider:            config.ProviderMemory,
		SupabaseJWTSecret:   "test-secret-key-for-jwt-signing-must-be-long-enough",
		PlaceholderImageURL: "https://picsum.photos/800/600",
		AssistantRateLimit:  1,
		AssistantRateBurst:  3,
		AllowedOrigins:      []string{"*"},
	}
	store := memstore.New()
	authProvider := memstore.NewAuth(cfg.SupabaseJWTSecret)
	_, err := authProvider.SeedAdmin(context.Background(), "Santy", adminEmail, adminPassword)
	require.NoError(t, err)

	hub := realtime.NewHub(zerolog.Nop())
	router := handlers.NewRouter(handlers.Deps{
		Config:    cfg,
		Catalog:   catalog.NewService(store, cfg.PlaceholderImageURL),
		Auth:      auth.NewService(authProvider, zerolog.Nop()),
		Chat:      chat.NewService(store, chat.WithNotifier(hub)),
		Assistant: assistant.New(nil, zerolog.Nop()),
		Hub:       hub,
		Log:       zerolog.Nop(),
	})
	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signIn(t *testing.T, email, password string) models.Session {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/signin", "", models.SignInRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	return session
}

func (s *testServer) register(t *testing.T, name, email string) models.Session {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		Name: name, Email: email, Password: "secret1", ConfirmPassword: "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	return session
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	s := newTestServer(t)
	visitor := s.register(t, "Ana", "ana@example.com")

	w := s.do(t, http.MethodGet, "/api/v1/admin/chat/sessions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/admin/chat/sessions", visitor.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.signIn(t, adminEmail, adminPassword)
	assert.True(t, admin.User.IsAdmin)
	w = s.do(t, http.MethodGet, "/api/v1/admin/chat/sessions", admin.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjects_CreateFilterToggleDelete(t *testing.T) {
	s := newTestServer(t)
	admin := s.signIn(t, adminEmail, adminPassword)
	hidden := false

	w := s.do(t, http.MethodPost, "/api/v1/admin/projects", admin.AccessToken, models.CreateProjectRequest{
		Title:      "Tienda",
		Category:   "Web",
		TechStack:  "Go, React",
		ShowInGrid: &hidden,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Project](t, w)
	assert.Equal(t, []string{"Go", "React"}, created.TechStack)
	assert.Equal(t, []string{"https://picsum.photos/800/600"}, created.ImageURLs)
	assert.True(t, created.ShowInCarousel)
	assert.False(t, created.ShowInGrid)

	w = s.do(t, http.MethodGet, "/api/v1/projects?zone=grid", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.ProjectListResponse](t, w).Projects)

	w = s.do(t, http.MethodPost, "/api/v1/admin/projects/"+created.ID+"/zones/grid/toggle", admin.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/projects?zone=grid", "", nil)
	assert.Len(t, decode[models.ProjectListResponse](t, w).Projects, 1)

	w = s.do(t, http.MethodGet, "/api/v1/projects?zone=sidebar", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/admin/projects/"+created.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/projects", "", nil)
	assert.Empty(t, decode[models.ProjectListResponse](t, w).Projects)
}

func TestProjects_CreateRequiresTitle(t *testing.T) {
	s := newTestServer(t)
	admin := s.signIn(t, adminEmail, adminPassword)

	w := s.do(t, http.MethodPost, "/api/v1/admin/projects", admin.AccessToken, map[string]string{"category": "Web"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)
	admin := s.signIn(t, adminEmail, adminPassword)

	w := s.do(t, http.MethodPost, "/api/v1/admin/categories", admin.AccessToken, models.CategoryRequest{Name: "Web"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Web"}, decode[models.CategoryListResponse](t, w).Categories)

	w = s.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, []string{"Web"}, decode[models.CategoryListResponse](t, w).Categories)

	w = s.do(t, http.MethodDelete, "/api/v1/admin/categories/Web", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.CategoryListResponse](t, w).Categories)
}

func TestAuth_SessionAndSignOut(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/auth/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())

	session := s.register(t, "Ana", "ana@example.com")
	w = s.do(t, http.MethodGet, "/api/v1/auth/session", session.AccessToken, nil)
	resp := decode[models.ActiveUserResponse](t, w)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ana", resp.User.Name)

	w = s.do(t, http.MethodPost, "/api/v1/auth/signout", session.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/auth/session", session.AccessToken, nil)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())
}

func TestAuth_RegisterErrors(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ana", "ana@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		Name: "Eve", Email: "eve@example.com", Password: "secret1", ConfirmPassword: "other",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/signin", "", models.SignInRequest{Email: "ana@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChat_GuestFlowAndAdminReply(t *testing.T) {
	s := newTestServer(t)
	admin := s.signIn(t, adminEmail, adminPassword)

	w := s.do(t, http.MethodPost, "/api/v1/chat/sessions", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/chat/sessions", "", models.StartChatRequest{GuestName: "Ana"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode[models.ChatSession](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/chat/sessions/"+session.ID+"/messages", "", models.SendMessageRequest{Text: "Hola"})
	require.Equal(t, http.StatusOK, w.Code)
	session = decode[models.ChatSession](t, w)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, "Ana", session.Messages[1].UserName)
	assert.False(t, session.IsReadByAdmin)

	w = s.do(t, http.MethodPost, "/api/v1/admin/chat/sessions/"+session.ID+"/messages", admin.AccessToken, models.SendMessageRequest{Text: "¡Hola!"})
	require.Equal(t, http.StatusOK, w.Code)
	session = decode[models.ChatSession](t, w)
	assert.True(t, session.IsReadByAdmin)
	assert.Equal(t, models.SenderAdmin, session.Messages[2].Sender)

	w = s.do(t, http.MethodGet, "/api/v1/chat/sessions/"+session.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.ChatSession](t, w).Messages, 3)

	w = s.do(t, http.MethodPost, "/api/v1/admin/chat/sessions/guest-missing/messages", admin.AccessToken, models.SendMessageRequest{Text: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/chat/sessions/"+session.ID+"/read", admin.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/admin/chat/sessions", admin.AccessToken, nil)
	assert.Len(t, decode[models.SessionListResponse](t, w).Sessions, 1)
}

func TestChat_UserSessionIsPrivate(t *testing.T) {
	s := newTestServer(t)
	ana := s.register(t, "Ana", "ana@example.com")
	eve := s.register(t, "Eve", "eve@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/chat/sessions", ana.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode[models.ChatSession](t, w)
	assert.Equal(t, chat.UserSessionID(ana.User.ID), session.ID)
	assert.Equal(t, chat.WelcomeText("Ana"), session.Messages[0].Text)

	w = s.do(t, http.MethodGet, "/api/v1/chat/sessions/"+session.ID, eve.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/chat/sessions/"+session.ID, "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/chat/sessions/"+session.ID, ana.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/chat/sessions/guest-404", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssistant(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/assistant/greeting", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, assistant.Greeting, decode[models.AssistantResponse](t, w).Reply)

	w = s.do(t, http.MethodPost, "/api/v1/assistant/reply", "", models.AssistantRequest{Prompt: "¿Qué hacen?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, assistant.ReplyMissingKey, decode[models.AssistantResponse](t, w).Reply)

	w = s.do(t, http.MethodPost, "/api/v1/assistant/reply", "", models.AssistantRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistant_RateLimited(t *testing.T) {
	s := newTestServer(t)

	var last int
	for i := 0; i < 5; i++ {
		w := s.do(t, http.MethodPost, "/api/v1/assistant/reply", "", models.AssistantRequest{Prompt: "hola"})
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", "", nil)

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portfolio_http_requests_total")
}

func TestChat_SendFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/chat/sessions", "", models.StartChatRequest{GuestName: "Ana"})
	require.Equal(t, http.StatusOK, w.Code)
	session := decode[models.ChatSession](t, w)

	s.store.Fail["InsertMessage"] = errors.New("connection reset")
	w = s.do(t, http.MethodPost, "/api/v1/chat/sessions/"+session.ID+"/messages", "", models.SendMessageRequest{Text: "Hola"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "message not sent", decode[models.ErrorResponse](t, w).Error)
}
