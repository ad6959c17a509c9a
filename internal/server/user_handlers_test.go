package server

import (
	"testing"

	"huddle/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrentUserProvisions(t *testing.T) {
	_, app, db := setupTestServer(t)

	resp := doRequest(t, app, "GET", "/api/user", "alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		User   models.User         `json:"user"`
		Groups []models.Membership `json:"groups"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "alice", body.User.ID)
	assert.Empty(t, body.Groups)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", "alice").Error)
}

func TestGetCurrentUserReturnsMemberships(t *testing.T) {
	_, app, db := setupTestServer(t)
	seedTestUser(t, db, "alice")
	group := seedTestGroup(t, db, "runners")
	seedTestMembership(t, db, "alice", group.ID)

	resp := doRequest(t, app, "GET", "/api/user", "alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		User   models.User         `json:"user"`
		Groups []models.Membership `json:"groups"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Groups, 1)
	assert.Equal(t, group.ID, body.Groups[0].GroupID)
}

func TestGetCurrentUserRequiresAuth(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doRequest(t, app, "GET", "/api/user", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketRoutesRequireToken(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doRequest(t, app, "GET", "/ws/group/1", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/ws/leaderboard", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doRequest(t, app, "GET", "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/healthz", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
