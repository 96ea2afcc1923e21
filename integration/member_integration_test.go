package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movestrong/internal/auth"
	"movestrong/internal/member"
)

func newMemberRouter(db *sqlx.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := member.NewRepository(db)
	handler := member.NewHandler(repo, "test-secret")

	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.GET("/plans", handler.ListPlans)
	router.GET("/my/membership", auth.AuthMiddleware("test-secret"), handler.GetMyMembership)

	admin := router.Group("/admin", auth.AuthMiddleware("test-secret"), auth.RequireRole("admin"))
	admin.POST("/members/:memberID/memberships", handler.GrantMembership)

	return router
}

func postJSONAuth(t *testing.T, router *gin.Engine, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getAuth(t *testing.T, router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMemberLifecycleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	router := newMemberRouter(db)

	// Register
	w := postJSON(t, router, "/auth/register", map[string]string{
		"name":     "Alex",
		"email":    "alex@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var registered struct {
		AccessToken string        `json:"access_token"`
		Member      member.Member `json:"member"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.AccessToken)
	memberID := registered.Member.ID

	// Duplicate email is rejected
	w = postJSON(t, router, "/auth/register", map[string]string{
		"name":     "Alex Again",
		"email":    "alex@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login
	w = postJSON(t, router, "/auth/login", map[string]string{
		"email":    "alex@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Wrong password
	w = postJSON(t, router, "/auth/login", map[string]string{
		"email":    "alex@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// No membership yet
	w = getAuth(t, router, "/my/membership", registered.AccessToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Admin grants a plan
	planID := createTestPlan(t, db, "Drop-In 10 Pack", false, intPtr(10))
	adminToken, err := auth.GenerateAccessToken("admin-1", "admin@example.com", "admin", "test-secret")
	require.NoError(t, err)

	w = postJSONAuth(t, router, "/admin/members/"+memberID+"/memberships", map[string]string{"plan_id": planID}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code)

	// Membership now visible with credits
	w = getAuth(t, router, "/my/membership", registered.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	var ms member.MembershipWithPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ms))
	assert.Equal(t, member.MembershipActive, ms.Status)
	assert.Equal(t, 10, ms.CreditsRemaining())

	// Granting a second plan replaces the first
	unlimitedID := createTestPlan(t, db, "Unlimited Monthly", true, nil)
	w = postJSONAuth(t, router, "/admin/members/"+memberID+"/memberships", map[string]string{"plan_id": unlimitedID}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code)

	var activeCount int
	err = db.Get(&activeCount, `SELECT COUNT(*) FROM memberships WHERE member_id = $1 AND status = 'active'`, memberID)
	require.NoError(t, err)
	assert.Equal(t, 1, activeCount)

	// Member role cannot grant memberships
	w = postJSONAuth(t, router, "/admin/members/"+memberID+"/memberships", map[string]string{"plan_id": planID}, registered.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
