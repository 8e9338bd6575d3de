package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"sprintcap/internal/config"
	"sprintcap/internal/db"
)

// TestServer holds test server dependencies
type TestServer struct {
	*Server
	DB *db.DB
}

// NewTestServer creates a new test server with in-memory SQLite database
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	logger := zaptest.NewLogger(t)

	cfg := db.Config{
		DBPath:         ":memory:",
		MigrationsPath: "./../../migrations",
	}

	database, err := db.New(cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	testCfg := &config.Config{
		Env:                   "test",
		DBQueryTimeoutSeconds: 5,
	}

	server := NewServer(database, testCfg, logger)

	return &TestServer{
		Server: server,
		DB:     database,
	}
}

// Close cleans up test server resources
func (ts *TestServer) Close() {
	if ts.DB != nil {
		ts.DB.Close()
	}
}

// CreateTestMember inserts a member and returns it
func (ts *TestServer) CreateTestMember(t *testing.T, name, role string, defaultCapacity int) *db.Member {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m, err := ts.DB.CreateMember(ctx, name, role, defaultCapacity)
	if err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
	return m
}

// CreateTestTeam inserts a team and returns it
func (ts *TestServer) CreateTestTeam(t *testing.T, name string) *db.Team {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	team, err := ts.DB.CreateTeam(ctx, name, nil)
	if err != nil {
		t.Fatalf("Failed to create test team: %v", err)
	}
	return team
}

// CreateTestSprint inserts a sprint for a team and returns it
func (ts *TestServer) CreateTestSprint(t *testing.T, teamID int64, name, start, end string, loadFactor float64) *db.Sprint {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sprint, err := ts.DB.CreateSprint(ctx, db.NewSprint{
		TeamID:     teamID,
		Name:       name,
		StartDate:  start,
		EndDate:    end,
		LoadFactor: loadFactor,
	})
	if err != nil {
		t.Fatalf("Failed to create test sprint: %v", err)
	}
	return sprint
}

// AddTestTeamMember links a member to a team
func (ts *TestServer) AddTestTeamMember(t *testing.T, teamID, memberID int64) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ts.DB.AddTeamMember(ctx, teamID, memberID); err != nil {
		t.Fatalf("Failed to add test team member: %v", err)
	}
}

// MakeRequest is a helper to make HTTP requests in tests.
// Returns both the ResponseRecorder and the Request.
func MakeRequest(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reqBody []byte
	var err error
	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")

	return httptest.NewRecorder(), req
}

// WithURLParams attaches chi URL params to a request
func WithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// DecodeJSON decodes a JSON response into the provided interface
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertStatusCode checks if the response status code matches expected
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()

	if got != want {
		t.Errorf("Status code mismatch: got %d, want %d", got, want)
	}
}
