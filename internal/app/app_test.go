package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"freelancehub/internal/auth"
	"freelancehub/internal/config"
	"freelancehub/internal/payments"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.Init("router-test-secret", 60)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))

	cfg := &config.Config{}
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.TTL = 60
	cfg.Stripe.Currency = "usd"

	router, _, _, _ := SetupRouter(cfg, db, payments.NewStripeGateway("sk_test_none", "usd"))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine, email, username, role string) (token, userID string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"password": "s3cret-pass",
		"username": username,
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	clientToken, _ := register(t, router, "acme@example.com", "acme", "client")
	freelancerToken, _ := register(t, router, "dev@example.com", "dev", "freelancer")

	// role enforcement: freelancers cannot post projects
	w := doJSON(t, router, http.MethodPost, "/api/v1/projects", freelancerToken, gin.H{
		"title": "Nope", "budget": "100",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/projects", clientToken, gin.H{
		"title":  "Search backend",
		"budget": "1200",
		"skills": []string{"go"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var project struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	// listing is open to any authenticated user
	w = doJSON(t, router, http.MethodGet, "/api/v1/projects?status=open", freelancerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)

	// submit and accept a proposal end to end
	w = doJSON(t, router, http.MethodPost, "/api/v1/projects/"+project.ID+"/proposals", freelancerToken, gin.H{
		"proposed_budget": "1100",
		"milestones": []gin.H{
			{"title": "All of it", "amount": "1100"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var proposal struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &proposal))

	w = doJSON(t, router, http.MethodPut, "/api/v1/proposals/"+proposal.ID+"/accept", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/projects/"+project.ID+"/milestones", freelancerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var milestones struct {
		Milestones []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"milestones"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &milestones))
	require.Len(t, milestones.Milestones, 1)
	assert.Equal(t, "pending", milestones.Milestones[0].Status)
}

func TestValidationOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	// bad role
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "x@example.com",
		"password": "s3cret-pass",
		"username": "xxx",
		"role":     "overlord",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// malformed body
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString("{nope"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookBadSignature(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewBufferString(`{"type":"payment_intent.succeeded"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bogus")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
