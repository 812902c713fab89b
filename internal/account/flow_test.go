package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pssiii/marketing-backend/internal/account"
	"github.com/pssiii/marketing-backend/internal/account/entity"
	"github.com/pssiii/marketing-backend/internal/analytics"
	aentity "github.com/pssiii/marketing-backend/internal/analytics/entity"
	"github.com/pssiii/marketing-backend/internal/router"
	"github.com/pssiii/marketing-backend/internal/session"
)

// stubAnalyticsRepo satisfies the dashboard read surface with canned data.
type stubAnalyticsRepo struct{}

func (stubAnalyticsRepo) ListCustomers(ctx context.Context, limit, offset int, search string) ([]*aentity.Customer, int64, error) {
	return nil, 0, nil
}

func (stubAnalyticsRepo) GetCustomer(ctx context.Context, id int64) (*aentity.Customer, error) {
	return &aentity.Customer{CustomerID: id, FirstName: "Carol", LastName: "C"}, nil
}

func (stubAnalyticsRepo) CustomerTouchpoints(ctx context.Context, customerID int64, limit int) ([]*aentity.Touchpoint, error) {
	return nil, nil
}

func (stubAnalyticsRepo) CustomerSalesMetrics(ctx context.Context, customerID int64, limit int) ([]*aentity.SalesMetric, error) {
	return nil, nil
}

func (stubAnalyticsRepo) CustomerFinancialMetrics(ctx context.Context, customerID int64, limit int) ([]*aentity.FinancialMetric, error) {
	return nil, nil
}

func (stubAnalyticsRepo) ListCampaigns(ctx context.Context) ([]*aentity.Campaign, error) {
	return nil, nil
}

func (stubAnalyticsRepo) DashboardStats(ctx context.Context, since time.Time) (*aentity.DashboardStats, error) {
	return &aentity.DashboardStats{TotalCustomers: 7}, nil
}

type testServer struct {
	*httptest.Server
	users *memUserRepo
	notes *recordingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop().Sugar()

	users := newMemUserRepo()
	notes := &recordingNotifier{}
	accountSvc := account.NewService(users, plainHasher{}, notes)

	sessionSvc := session.NewService(session.Config{
		Secret:      "test-secret",
		Issuer:      "marketing-backend",
		TTL:         time.Hour,
		RememberTTL: 24 * time.Hour,
	}, newMemSessionRepo())

	accounts := account.NewHandler(accountSvc, sessionSvc, logger)
	data := analytics.NewHandler(analytics.NewService(stubAnalyticsRepo{}), logger)

	srv := httptest.NewServer(router.RegisterRoutes(logger, accounts, data, sessionSvc))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, users: users, notes: notes}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

// seedAdmin inserts an approved admin directly, the way the createadmin
// command does.
func (ts *testServer) seedAdmin(t *testing.T) {
	t.Helper()
	hash, err := plainHasher{}.Hash("adminpw")
	require.NoError(t, err)
	require.NoError(t, ts.users.Create(context.Background(), &entity.User{
		Username:     "admin",
		Email:        "admin@x.com",
		PasswordHash: hash,
		FirstName:    "Ada",
		LastName:     "Admin",
		Status:       entity.StatusApproved,
		IsAdmin:      true,
	}))
}

func login(t *testing.T, ts *testServer, username, password string) string {
	t.Helper()
	code, body := ts.do(t, http.MethodPost, "/api/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, code, "login response: %v", body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.seedAdmin(t)

	// register
	code, body := ts.do(t, http.MethodPost, "/api/register", "", map[string]any{
		"username":   "alice",
		"email":      "alice@x.com",
		"password":   "pw123",
		"first_name": "Alice",
		"last_name":  "A",
	})
	require.Equal(t, http.StatusCreated, code)
	userID := int64(body["user_id"].(float64))
	require.Len(t, ts.notes.verifications, 1)
	verifyToken := ts.notes.verifications[0]

	// login before verification
	code, body = ts.do(t, http.MethodPost, "/api/login", "", map[string]any{
		"username": "alice", "password": "pw123",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Please verify your email before logging in", body["error"])

	// follow the emailed link
	code, _ = ts.do(t, http.MethodGet, "/verify-email/"+verifyToken, "", nil)
	require.Equal(t, http.StatusOK, code)

	// verified, still waiting on the admin
	code, body = ts.do(t, http.MethodPost, "/api/login", "", map[string]any{
		"username": "alice", "password": "pw123",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Your account is pending approval", body["error"])

	// admin reviews and approves
	adminToken := login(t, ts, "admin", "adminpw")
	code, body = ts.do(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["users"], 2)

	code, body = ts.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/approve", userID), adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User alice approved", body["message"])

	// approved account can log in and read its profile
	aliceToken := login(t, ts, "alice", "pw123")
	code, body = ts.do(t, http.MethodGet, "/api/user", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, true, body["is_verified"])
	assert.Equal(t, true, body["is_approved"])
	assert.Equal(t, false, body["is_admin"])

	// dashboard data is open to any authenticated user
	code, body = ts.do(t, http.MethodGet, "/api/dashboard/stats", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(7), body["total_customers"])

	// but the admin screens are not
	code, body = ts.do(t, http.MethodGet, "/api/admin/users", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", body["error"])

	// logout revokes the session even though the JWT is still unexpired
	code, _ = ts.do(t, http.MethodPost, "/api/logout", aliceToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = ts.do(t, http.MethodGet, "/api/user", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Please log in to access this resource", body["error"])
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/user", "/api/customers", "/api/campaigns", "/api/dashboard/stats"} {
		t.Run(path, func(t *testing.T) {
			code, body := ts.do(t, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, "Please log in to access this resource", body["error"])
		})
	}

	t.Run("garbage bearer token", func(t *testing.T) {
		code, _ := ts.do(t, http.MethodGet, "/api/user", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing username", map[string]any{"email": "a@x.com", "password": "pw", "first_name": "A", "last_name": "B"}},
		{"bad email", map[string]any{"username": "a", "email": "not-an-email", "password": "pw", "first_name": "A", "last_name": "B"}},
		{"missing password", map[string]any{"username": "a", "email": "a@x.com", "first_name": "A", "last_name": "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := ts.do(t, http.MethodPost, "/api/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}

	users, err := ts.users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
