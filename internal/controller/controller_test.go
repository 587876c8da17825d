package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"drheal-be/internal/dto"
	"drheal-be/internal/pkg/serverutils"
	internalWS "drheal-be/internal/websocket"
	"drheal-be/pkg/agent"
	"drheal-be/pkg/llm"
	"drheal-be/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-secret"

func newTestApp(register func(api fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api"))
	return app
}

func bearer(t *testing.T, userId uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, auth string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

type fakeConversationService struct {
	userId uuid.UUID
	req    *dto.ConversationChatRequest
	page   dto.PageQuery
	err    error
}

func (f *fakeConversationService) List(_ context.Context, userId uuid.UUID, page dto.PageQuery) ([]dto.ConversationResponse, error) {
	f.userId, f.page = userId, page
	return []dto.ConversationResponse{{Id: "c1", Title: "New Conversation"}}, f.err
}

func (f *fakeConversationService) Get(_ context.Context, userId, id uuid.UUID) (*dto.ConversationDetailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ConversationDetailResponse{Id: id.String()}, nil
}

func (f *fakeConversationService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return f.err
}

func (f *fakeConversationService) Chat(_ context.Context, userId uuid.UUID, req *dto.ConversationChatRequest) (*dto.ConversationChatResponse, error) {
	f.userId, f.req = userId, req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ConversationChatResponse{ConversationId: "c1", MessageId: "m1", Response: "ok", AgentUsed: "SymptomAnalyzer"}, nil
}

func TestConversationControllerRequiresToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := newTestApp(NewConversationController(&fakeConversationService{}).RegisterRoutes)

	status, body := doJSON(t, app, http.MethodGet, "/api/conversations", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/conversations", "", "Bearer garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestConversationControllerChat(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	svc := &fakeConversationService{}
	app := newTestApp(NewConversationController(svc).RegisterRoutes)
	userId := uuid.New()

	status, body := doJSON(t, app, http.MethodPost, "/api/conversations/chat", `{"query":"I have a headache"}`, bearer(t, userId))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, userId, svc.userId)
	assert.Equal(t, "I have a headache", svc.req.Query)
	data := body["data"].(map[string]any)
	assert.Equal(t, "SymptomAnalyzer", data["agent_used"])
	assert.Equal(t, false, data["is_potential_emergency"])
}

func TestConversationControllerValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := newTestApp(NewConversationController(&fakeConversationService{}).RegisterRoutes)
	auth := bearer(t, uuid.New())

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing query", body: `{}`, field: "query"},
		{name: "query too long", body: `{"query":"` + strings.Repeat("a", 1001) + `"}`, field: "query"},
		{name: "bad conversation id", body: `{"query":"hi","conversation_id":"nope"}`, field: "conversation_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/api/conversations/chat", tt.body, auth)
			require.Equal(t, fiber.StatusBadRequest, status)
			errs := body["errors"].([]any)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].(map[string]any)["field"])
		})
	}
}

func TestConversationControllerPaging(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	svc := &fakeConversationService{}
	app := newTestApp(NewConversationController(svc).RegisterRoutes)
	auth := bearer(t, uuid.New())

	status, _ := doJSON(t, app, http.MethodGet, "/api/conversations", "", auth)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, dto.PageQuery{Limit: 50, Offset: 0}, svc.page)

	status, _ = doJSON(t, app, http.MethodGet, "/api/conversations?limit=10&offset=20", "", auth)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, dto.PageQuery{Limit: 10, Offset: 20}, svc.page)

	status, _ = doJSON(t, app, http.MethodGet, "/api/conversations?limit=500", "", auth)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/conversations/not-a-uuid", "", auth)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestConversationControllerMapsFailures(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	auth := bearer(t, uuid.New())

	tests := []struct {
		name      string
		err       error
		status    int
		emergency bool
	}{
		{name: "not found", err: fiber.NewError(fiber.StatusNotFound, "Conversation not found"), status: fiber.StatusNotFound},
		{name: "generation timeout", err: &llm.GenerationError{Kind: llm.ErrGenerationTimeout, Attempts: 3}, status: fiber.StatusGatewayTimeout},
		{
			name: "failed emergency triage keeps the flag",
			err: &agent.HandlerError{
				Handler:            agent.EmergencyTriage,
				PotentialEmergency: true,
				Err:                &llm.GenerationError{Kind: llm.ErrGenerationFailure, Attempts: 3},
			},
			status:    fiber.StatusBadGateway,
			emergency: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(NewConversationController(&fakeConversationService{err: tt.err}).RegisterRoutes)
			status, body := doJSON(t, app, http.MethodPost, "/api/conversations/chat", `{"query":"chest pain"}`, auth)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, false, body["success"])
			if tt.emergency {
				assert.Equal(t, true, body["is_potential_emergency"])
				assert.NotEmpty(t, body["advisory"])
			} else {
				assert.NotContains(t, body, "is_potential_emergency")
			}
		})
	}
}

type fakeSearchService struct {
	req *dto.SearchRequest
	web *dto.WebSearchRequest
}

func (f *fakeSearchService) Search(_ context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	f.req = req
	return &dto.SearchResponse{Query: req.Query, Results: []dto.SearchResultItem{}}, nil
}

func (f *fakeSearchService) Stats(context.Context) (*dto.StatsResponse, error) {
	return &dto.StatsResponse{TotalDocuments: 3, EmbeddingDimension: 64, VectorStore: "memory"}, nil
}

func (f *fakeSearchService) WebSearch(_ context.Context, req *dto.WebSearchRequest) *dto.WebSearchResponse {
	f.web = req
	return &dto.WebSearchResponse{Query: req.Query, Results: []dto.WebSearchResult{}, Reason: "no_results"}
}

func TestSearchController(t *testing.T) {
	svc := &fakeSearchService{}
	app := newTestApp(NewSearchController(svc).RegisterRoutes)

	status, _ := doJSON(t, app, http.MethodPost, "/api/search", `{"query":"fever"}`, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 5, svc.req.NResults)

	status, _ = doJSON(t, app, http.MethodPost, "/api/search", `{"query":"fever","n_results":21}`, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := doJSON(t, app, http.MethodGet, "/api/search/stats", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(3), body["data"].(map[string]any)["total_documents"])

	status, body = doJSON(t, app, http.MethodGet, "/api/search/web?query=flu&max_results=3", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 3, svc.web.MaxResults)
	assert.Equal(t, "no_results", body["data"].(map[string]any)["reason"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/search/web", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

type fakeChatService struct {
	req *dto.ChatRequest
}

func (f *fakeChatService) Chat(_ context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	f.req = req
	return &dto.ChatResponse{Query: req.Query, Response: "answer", RAGResults: []dto.RAGResultItem{}}, nil
}

func TestChatControllerChatTypes(t *testing.T) {
	tests := []struct {
		path     string
		body     string
		chatType string
	}{
		{path: "/api/chat", body: `{"query":"q"}`, chatType: "symptoms"},
		{path: "/api/chat", body: `{"query":"q","chat_type":"general"}`, chatType: "general"},
		{path: "/api/chat/symptoms", body: `{"query":"q","chat_type":"general"}`, chatType: "symptoms"},
		{path: "/api/chat/disease", body: `{"query":"q"}`, chatType: "disease"},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.chatType, func(t *testing.T) {
			svc := &fakeChatService{}
			app := newTestApp(NewChatController(svc).RegisterRoutes)
			status, _ := doJSON(t, app, http.MethodPost, tt.path, tt.body, "")
			require.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, tt.chatType, svc.req.ChatType)
			assert.Equal(t, 5, svc.req.NResults)
		})
	}

	app := newTestApp(NewChatController(&fakeChatService{}).RegisterRoutes)
	status, _ := doJSON(t, app, http.MethodPost, "/api/chat", `{"query":"q","n_results":11}`, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestResponsesUseEnvelope(t *testing.T) {
	app := newTestApp(func(r fiber.Router) {
		NewSearchController(&fakeSearchService{}).RegisterRoutes(r)
		NewChatController(&fakeChatService{}).RegisterRoutes(r)
	})

	status, body := doJSON(t, app, http.MethodPost, "/api/search", `{"query":"fever"}`, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(200), body["code"])
	assert.NotEmpty(t, body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "fever", data["query"])
	assert.Contains(t, data, "results")
	assert.Contains(t, data, "count")
	assert.NotContains(t, body, "results")

	status, body = doJSON(t, app, http.MethodPost, "/api/chat", `{"query":"cough"}`, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	data = body["data"].(map[string]any)
	assert.Equal(t, "answer", data["response"])
	assert.Contains(t, data, "rag_results")
	assert.Contains(t, data, "n_results")
	assert.NotContains(t, body, "response")
}

type fakeHealthService struct {
	checkLLM bool
}

func (f *fakeHealthService) Health() dto.HealthResponse {
	return dto.HealthResponse{Status: "healthy"}
}

func (f *fakeHealthService) Detailed(_ context.Context, checkLLM bool) *dto.DetailedHealthResponse {
	f.checkLLM = checkLLM
	return &dto.DetailedHealthResponse{Status: "degraded", Components: map[string]string{"llm_service": "unchecked"}}
}

func TestHealthController(t *testing.T) {
	rec := metrics.New()
	rec.RouteDecision("symptom_analyzer")
	svc := &fakeHealthService{}
	ctrl := NewHealthController(svc, rec.Registry())

	app := fiber.New()
	ctrl.RegisterRootRoutes(app)
	ctrl.RegisterRoutes(app.Group("/api"))

	status, body := doJSON(t, app, http.MethodGet, "/", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Dr.Heal AI API is running", body["message"])

	status, body = doJSON(t, app, http.MethodGet, "/api/health", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = doJSON(t, app, http.MethodGet, "/api/health/detailed?check_llm=true", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, svc.checkLLM)
	assert.Equal(t, "degraded", body["status"])

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `drheal_router_decisions_total{handler="symptom_analyzer"} 1`)
}

func TestAlertControllerHandshake(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := newTestApp(NewAlertController(internalWS.NewHub(nil, nil)).RegisterRoutes)
	token := strings.TrimPrefix(bearer(t, uuid.New()), "Bearer ")

	status, _ := doJSON(t, app, http.MethodGet, "/api/ws/alerts", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/ws/alerts?token=garbage", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// authenticated but not an upgrade request
	status, _ = doJSON(t, app, http.MethodGet, "/api/ws/alerts?token="+token, "", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/ws/alerts", "", "Bearer "+token)
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}
