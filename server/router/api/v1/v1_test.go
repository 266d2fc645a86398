package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/personalboard/internal/profile"
	"github.com/hrygo/personalboard/plugin/ai"
	"github.com/hrygo/personalboard/internal/observability"
	"github.com/hrygo/personalboard/server/service/board"
	teststore "github.com/hrygo/personalboard/store/test"
)

type llmFunc func(ctx context.Context, messages []ai.Message) (string, error)

func (f llmFunc) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	return f(ctx, messages)
}

// echoPersona answers with the member name found in the system prompt.
var echoPersona = llmFunc(func(_ context.Context, messages []ai.Message) (string, error) {
	prompt := messages[0].Content
	name, _, _ := strings.Cut(strings.TrimPrefix(prompt, "Your name is "), ",")
	return "answer from " + name, nil
})

type testServer struct {
	echo    *echo.Echo
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, llm ai.LLMService, rateLimitPerMinute, rateLimitBurst int) *testServer {
	t.Helper()
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)
	metrics := observability.NewMetrics(0)
	boardService := board.NewService(st, llm, metrics, nil, board.Config{FanOutConcurrency: 2})

	p := &profile.Profile{Mode: "dev", RateLimitPerMinute: rateLimitPerMinute, RateLimitBurst: rateLimitBurst}
	apiService, err := NewAPIV1Service(p, boardService, metrics, nil)
	require.NoError(t, err)

	e := echo.New()
	apiService.RegisterRoutes(e)
	return &testServer{echo: e, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createMember(t *testing.T, userID, name string, role []string) *Member {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/members", map[string]any{
		"user_id":     userID,
		"name":        name,
		"description": name + " personality",
		"background":  name + " background",
		"role":        role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	member := &Member{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), member))
	return member
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateHistoryForAllMembers(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)
	coach := s.createMember(t, "user-1", "Coach", []string{"mentor"})
	critic := s.createMember(t, "user-1", "Critic", []string{"skeptic"})

	rec := s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "user-1", UserInput: "Should I switch careers?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SubmitHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "History created successfully", resp.Message)
	assert.Equal(t, 2, resp.Count)
	assert.NotEmpty(t, resp.BatchUID)

	for _, member := range []*Member{coach, critic} {
		rec := s.do(t, http.MethodGet, "/api/history/member/"+member.ID+"/user/user-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []*History
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "answer from "+member.Name, list[0].MemberOutput)
		assert.Equal(t, "Should I switch careers?", list[0].UserInput)
		assert.Equal(t, resp.BatchUID, list[0].BatchUID)
		assert.NotEmpty(t, list[0].CreatedAt)
	}
}

func TestCreateHistoryRejectsInvalidBody(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)

	tests := []struct {
		name string
		body any
	}{
		{"missing user input", map[string]string{"user_id": "user-1"}},
		{"empty user id", map[string]string{"user_id": "", "user_input": "hi"}},
		{"wrong type", map[string]any{"user_id": 42, "user_input": "hi"}},
		{"malformed json", `{"user_id": "user-1",`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/history", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_FAILED", decodeError(t, rec).Code)
		})
	}
}

func TestCreateHistoryWithoutMembers(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)

	rec := s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "nobody", UserInput: "hello"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "PERSONA_LOOKUP_FAILED", decodeError(t, rec).Code)
}

func TestCreateHistoryGenerationFailure(t *testing.T) {
	failing := llmFunc(func(context.Context, []ai.Message) (string, error) {
		return "", errors.New("provider unavailable")
	})
	s := newTestServer(t, failing, 100, 100)
	member := s.createMember(t, "user-1", "Coach", nil)

	rec := s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "user-1", UserInput: "hello"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "GENERATION_FAILED", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodGet, "/api/history/member/"+member.ID+"/user/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateHistoryRateLimited(t *testing.T) {
	s := newTestServer(t, echoPersona, 1, 1)
	s.createMember(t, "user-1", "Coach", nil)

	rec := s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "user-1", UserInput: "first"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "user-1", UserInput: "second"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", decodeError(t, rec).Code)

	// Other users keep their own budget.
	s.createMember(t, "user-2", "Coach", nil)
	rec = s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "user-2", UserInput: "first"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateHistoryForMember(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)
	coach := s.createMember(t, "user-1", "Coach", nil)
	critic := s.createMember(t, "user-1", "Critic", nil)

	rec := s.do(t, http.MethodPost, "/api/history/member/"+coach.ID, SubmitHistoryRequest{UserID: "user-1", UserInput: "hello"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp SubmitHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	rec = s.do(t, http.MethodGet, "/api/history/member/"+critic.ID+"/user/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateHistoryForMemberErrors(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)
	coach := s.createMember(t, "user-1", "Coach", nil)

	rec := s.do(t, http.MethodPost, "/api/history/member/"+coach.ID, SubmitHistoryRequest{UserID: "user-2", UserInput: "hello"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PERMISSION_DENIED", decodeError(t, rec).Code)

	rec = s.do(t, http.MethodPost, "/api/history/member/missing", SubmitHistoryRequest{UserID: "user-1", UserInput: "hello"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestListMemberHistoryNewestFirst(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)
	coach := s.createMember(t, "user-1", "Coach", nil)

	for _, input := range []string{"first", "second", "third"} {
		rec := s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "user-1", UserInput: input})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/history/member/"+coach.ID+"/user/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].UserInput)
	assert.Equal(t, "first", list[2].UserInput)
}

func TestMemberLifecycle(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)
	created := s.createMember(t, "user-1", "Coach", []string{"mentor", "friend"})
	assert.Equal(t, []string{"mentor", "friend"}, created.Role)
	assert.Nil(t, created.Picture)

	rec := s.do(t, http.MethodGet, "/api/members/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/members/"+created.ID, map[string]any{"name": "Head Coach", "role": []string{}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := &Member{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), updated))
	assert.Equal(t, "Head Coach", updated.Name)
	assert.Equal(t, []string{}, updated.Role)
	assert.Equal(t, created.Background, updated.Background)

	rec = s.do(t, http.MethodGet, "/api/members/user/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Head Coach", list[0].Name)

	rec = s.do(t, http.MethodDelete, "/api/members/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Member deleted successfully"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/members/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemberErrors(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)
	created := s.createMember(t, "user-1", "Coach", nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"delete missing", http.MethodDelete, "/api/members/missing", nil, http.StatusNotFound, "NOT_FOUND"},
		{"get missing", http.MethodGet, "/api/members/missing", nil, http.StatusNotFound, "NOT_FOUND"},
		{"update missing", http.MethodPut, "/api/members/missing", map[string]string{"name": "x"}, http.StatusNotFound, "NOT_FOUND"},
		{"empty update", http.MethodPut, "/api/members/" + created.ID, map[string]any{}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"create without name", http.MethodPost, "/api/members", map[string]string{"user_id": "user-1"}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"create with bad role", http.MethodPost, "/api/members", map[string]any{"user_id": "user-1", "name": "x", "role": "mentor"}, http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestListMembersByUserEmpty(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)

	rec := s.do(t, http.MethodGet, "/api/members/user/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetMetricsOverview(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)
	s.createMember(t, "user-1", "Coach", nil)
	s.createMember(t, "user-1", "Critic", nil)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "user-1", UserInput: "hi"}).Code)
	require.Equal(t, http.StatusInternalServerError, s.do(t, http.MethodPost, "/api/history", SubmitHistoryRequest{UserID: "nobody", UserInput: "hi"}).Code)

	rec := s.do(t, http.MethodGet, "/api/system/metrics/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp MetricsOverviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.TotalSubmissions)
	assert.Equal(t, int64(1), resp.ErrorCount)
	assert.InDelta(t, 50.0, resp.SuccessRate, 0.0001)
	assert.Equal(t, int64(2), resp.HistoryWritten)
	assert.Equal(t, int64(2), resp.GenerationCalls)
	assert.Equal(t, int64(1), resp.FailuresByCode["PERSONA_LOOKUP_FAILED"])
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, echoPersona, 100, 100)

	rec := s.do(t, http.MethodGet, "/api/members/user/user-1", nil)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus("VALIDATION_FAILED"))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus("TIMEOUT"))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus("SOMETHING_ELSE"))
}
