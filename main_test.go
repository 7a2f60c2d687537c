package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestRouter wires a fresh in-memory database, a throwaway blob store
// and the full route table.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	DB = db

	InitFileStore(t.TempDir())

	r := gin.New()
	SetupRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doRaw sends a pre-encoded JSON body, for the raw-scalar PATCH endpoints.
func doRaw(t *testing.T, r *gin.Engine, method, path, token string, raw []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// registerUser creates an account and returns its token and id.
func registerUser(t *testing.T, r *gin.Engine, username, email string) (string, uint) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

// registerAdmin registers a user whose email is on the seed-admin list.
func registerAdmin(t *testing.T, r *gin.Engine) (string, uint) {
	t.Helper()
	t.Setenv("ADMIN_EMAILS", "admin@example.com")
	return registerUser(t, r, "admin", "admin@example.com")
}

// createTestEvent registers n participants and creates an event over them.
// Returns the admin token, participant tokens (by registration order) and
// the event id.
func createTestEvent(t *testing.T, r *gin.Engine, n int) (string, []string, uint) {
	t.Helper()

	adminToken, _ := registerAdmin(t, r)

	tokens := make([]string, 0, n)
	ids := make([]uint, 0, n)
	for i := 1; i <= n; i++ {
		token, id := registerUser(t, r, fmt.Sprintf("u%d", i), fmt.Sprintf("u%d@example.com", i))
		tokens = append(tokens, token)
		ids = append(ids, id)
	}

	w := doJSON(t, r, http.MethodPost, "/api/admin/events", adminToken, gin.H{
		"name":            "March Task Game 2025",
		"description":     "spring round",
		"startDate":       "2025-03-01T10:00:00Z",
		"endDate":         "2025-03-02T10:00:00Z",
		"maxTasksPerUser": 5,
		"userIds":         ids,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ev EventView
	decodeBody(t, w, &ev)
	return adminToken, tokens, ev.ID
}

// firstInvitation fetches the caller's invitation list and returns its head.
func firstInvitation(t *testing.T, r *gin.Engine, token string) InvitationView {
	t.Helper()

	w := doJSON(t, r, http.MethodGet, "/api/invitations/my-invitations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var invitations []InvitationView
	decodeBody(t, w, &invitations)
	require.NotEmpty(t, invitations)
	return invitations[0]
}
