package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/database"
	"github.com/hypernova-labs/fbr-service/internal/fbr"
	"github.com/hypernova-labs/fbr-service/internal/hscode"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/hypernova-labs/fbr-service/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "fbr_test_key"

type stubKeys struct {
	mu       sync.Mutex
	keys     map[string]*models.APIKey
	lastUsed int
}

func newStubKeys(sellerID uuid.UUID) *stubKeys {
	return &stubKeys{keys: map[string]*models.APIKey{
		database.HashAPIKey(testAPIKey): {ID: uuid.New(), SellerID: sellerID, Name: "default", IsActive: true, RateLimitPerMin: 60},
	}}
}

func (s *stubKeys) Create(_ context.Context, sellerID uuid.UUID, name string, rateLimit int) (*models.APIKey, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := fmt.Sprintf("fbr_generated_%d", len(s.keys))
	key := &models.APIKey{ID: uuid.New(), SellerID: sellerID, Name: name, KeyHash: database.HashAPIKey(raw), IsActive: true, RateLimitPerMin: rateLimit}
	s.keys[key.KeyHash] = key
	return key, raw, nil
}

func (s *stubKeys) GetByHash(_ context.Context, hash string) (*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[hash]
	if !ok {
		return nil, models.ErrNotFound
	}
	return key, nil
}

func (s *stubKeys) UpdateLastUsed(context.Context, uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed++
	return nil
}

// stubSellers guarda el vendedor solo si la clave también se crea
type stubSellers struct {
	mu      sync.Mutex
	sellers map[uuid.UUID]*models.Seller
	keys    *stubKeys
	keyErr  error
}

func (s *stubSellers) CreateWithAPIKey(ctx context.Context, seller *models.Seller, keyName string, rateLimit int) (*models.APIKey, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seller.ID = uuid.New()
	seller.IsActive = true
	if s.keyErr != nil {
		return nil, "", s.keyErr
	}
	key, raw, err := s.keys.Create(ctx, seller.ID, keyName, rateLimit)
	if err != nil {
		return nil, "", err
	}
	s.sellers[seller.ID] = seller
	return key, raw, nil
}

func (s *stubSellers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sellers)
}

type stubLimiter struct {
	result *database.RateLimitResult
	err    error
}

func (s stubLimiter) Allow(context.Context, string, int, time.Duration) (*database.RateLimitResult, error) {
	return s.result, s.err
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]models.AuthSession
}

func (m *memorySessions) Get(_ context.Context, sellerID uuid.UUID, env models.Environment) (*models.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sellerID.String()+string(env)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &s, nil
}

func (m *memorySessions) Save(_ context.Context, s *models.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SellerID.String()+string(s.Environment)] = *s
	return nil
}

type memorySubmissions struct {
	mu      sync.Mutex
	records map[uuid.UUID]models.SubmissionRecord
}

func (m *memorySubmissions) Create(_ context.Context, r *models.SubmissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = *r
	return nil
}

func (m *memorySubmissions) Update(ctx context.Context, r *models.SubmissionRecord) error {
	return m.Create(ctx, r)
}

func (m *memorySubmissions) GetByID(_ context.Context, id uuid.UUID) (*models.SubmissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (m *memorySubmissions) GetByReference(_ context.Context, sellerID uuid.UUID, reference string) (*models.SubmissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.SellerID == sellerID && r.FBRReference != nil && *r.FBRReference == reference {
			return &r, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memorySubmissions) List(_ context.Context, sellerID uuid.UUID, filter models.SubmissionFilter) ([]models.SubmissionRecord, error) {
	return m.filter(func(r models.SubmissionRecord) bool {
		return r.SellerID == sellerID && (filter.Status == "" || r.Status == filter.Status)
	}), nil
}

func (m *memorySubmissions) ListByStatus(_ context.Context, status models.SubmissionStatus) ([]models.SubmissionRecord, error) {
	return m.filter(func(r models.SubmissionRecord) bool { return r.Status == status }), nil
}

func (m *memorySubmissions) Stats(_ context.Context, sellerID uuid.UUID) (*models.SubmissionStats, error) {
	stats := &models.SubmissionStats{}
	for _, r := range m.filter(func(r models.SubmissionRecord) bool { return r.SellerID == sellerID }) {
		stats.Total++
		switch r.Status {
		case models.SubmissionStatusSubmitted:
			stats.Submitted++
		case models.SubmissionStatusAccepted:
			stats.Accepted++
		case models.SubmissionStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (m *memorySubmissions) filter(keep func(models.SubmissionRecord) bool) []models.SubmissionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.SubmissionRecord{}
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

type testServer struct {
	router   *gin.Engine
	sellerID uuid.UUID
	keys     *stubKeys
	sellers  *stubSellers
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sellerID := uuid.New()
	gateway := fbr.NewFakeGateway()
	resolver := hscode.Default()

	auth := services.NewAuthService(gateway, &memorySessions{sessions: map[string]models.AuthSession{}}, "fbr_invoice_api", logger)
	formatter := services.NewInvoiceFormatter(resolver, "PKR", logger)
	submissions := services.NewSubmissionService(formatter, gateway,
		&memorySubmissions{records: map[uuid.UUID]models.SubmissionRecord{}}, logger,
		services.WithRemoteValidation(true),
	)

	keys := newStubKeys(sellerID)
	sellers := &stubSellers{sellers: map[uuid.UUID]*models.Seller{}, keys: keys}
	api := NewAPI(auth, submissions, resolver, keys, sellers, logger, opts...)

	router := gin.New()
	api.RegisterRoutes(router.Group("/v1"))

	return &testServer{router: router, sellerID: sellerID, keys: keys, sellers: sellers}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/v1/fbr/auth/login", map[string]string{
		"client_id":     "client",
		"client_secret": "super-secret",
		"seller_ntn":    "1234567-8",
		"business_name": "Hypernova Consulting",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

func sampleInvoiceRequest() map[string]interface{} {
	return map[string]interface{}{
		"invoice_number": "INV-1",
		"invoice_date":   "2026-10-01",
		"buyer":          map[string]string{"name": "Acme", "address": "X"},
		"items": []map[string]interface{}{
			{"description": "Tax Filing", "quantity": 1, "unit_price": 5000},
		},
	}
}

func TestProtectedRoutesRequireAPIKey(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/v1/fbr/auth/status", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/fbr/auth/status", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp models.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, string(models.ErrorCodeUnauthorized), resp.Error.Code)
}

func TestAutocompleteIsPublic(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/v1/hs-codes/autocomplete?q=tax", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Query       string              `json:"query"`
		Suggestions []hscode.Suggestion `json:"suggestions"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "tax", resp.Query)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestHSCodeEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/v1/hs-codes/lookup?description=Tax%20Filing", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var lookup hscode.LookupResult
	decode(t, w, &lookup)
	assert.Equal(t, "9983.11.00", lookup.HSCode)
	assert.True(t, lookup.IsValid)

	w = srv.do(t, http.MethodGet, "/v1/hs-codes/validate?code=9983.11.00", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var valid map[string]interface{}
	decode(t, w, &valid)
	assert.Equal(t, true, valid["is_valid"])

	w = srv.do(t, http.MethodGet, "/v1/hs-codes/validate?code=9983.11", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &valid)
	assert.Equal(t, false, valid["is_valid"])

	w = srv.do(t, http.MethodGet, "/v1/hs-codes/lookup", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/v1/hs-codes", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var all struct {
		Count int `json:"count"`
	}
	decode(t, w, &all)
	assert.Greater(t, all.Count, 0)
}

func TestRateLimitExceeded(t *testing.T) {
	srv := newTestServer(t, WithRateLimiter(stubLimiter{result: &database.RateLimitResult{
		Allowed:    false,
		Count:      61,
		RetryAfter: 12 * time.Second,
	}}, 60))

	w := srv.do(t, http.MethodGet, "/v1/hs-codes", nil, true)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "12", w.Header().Get("Retry-After"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimiterFailureAllowsRequest(t *testing.T) {
	srv := newTestServer(t, WithRateLimiter(stubLimiter{err: errors.New("redis down")}, 60))

	w := srv.do(t, http.MethodGet, "/v1/hs-codes", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidEnvironment(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/v1/fbr/auth/status?environment=staging", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginNeverReturnsSecrets(t *testing.T) {
	srv := newTestServer(t)
	srv.login(t)

	w := srv.do(t, http.MethodGet, "/v1/fbr/auth/status", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "super-secret")
	assert.NotContains(t, w.Body.String(), "fake-")

	var status models.AuthStatus
	decode(t, w, &status)
	assert.True(t, status.IsAuthenticated)
	assert.Equal(t, models.AuthStateAuthenticated, status.State)
	require.NotNil(t, status.Seller)
	assert.Equal(t, "Hypernova Consulting", status.Seller.BusinessName)
}

func TestSubmitWithoutSessionIsAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/v1/fbr/invoices/submit", sampleInvoiceRequest(), true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var result models.SubmitResult
	decode(t, w, &result)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, models.ErrorKindAuth, result.Error.Kind)
	assert.Nil(t, result.SubmissionID)
}

func TestValidateInvoiceEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/v1/fbr/invoices/validate", sampleInvoiceRequest(), true)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ValidationResult
	decode(t, w, &result)
	assert.True(t, result.IsValid)
	assert.NotEmpty(t, result.Warnings)

	body := sampleInvoiceRequest()
	body["invoice_date"] = "01/10/2026"
	w = srv.do(t, http.MethodPost, "/v1/fbr/invoices/validate", body, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAndTrackInvoice(t *testing.T) {
	srv := newTestServer(t)
	srv.login(t)

	w := srv.do(t, http.MethodPost, "/v1/fbr/invoices/submit", sampleInvoiceRequest(), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result models.SubmitResult
	decode(t, w, &result)
	assert.True(t, result.Success)
	assert.Equal(t, models.SubmissionStatusSubmitted, result.Status)
	assert.Equal(t, "FBR-MOCK-1", result.ExternalReference)
	require.NotNil(t, result.SubmissionID)

	path := "/v1/fbr/submissions/" + result.SubmissionID.String()
	w = srv.do(t, http.MethodGet, path, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var record models.SubmissionRecord
	decode(t, w, &record)
	assert.Equal(t, "INV-1", record.InvoiceNumber)
	require.Len(t, record.Items, 1)
	assert.Equal(t, "9983.11.00", record.Items[0].HSCode)

	// La simulación avanza submitted → processing → accepted
	for i := 0; i < 3; i++ {
		w = srv.do(t, http.MethodPost, path+"/status", nil, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	var status models.StatusResult
	decode(t, w, &status)
	assert.Equal(t, "accepted", status.RemoteStatus)
	assert.Equal(t, models.SubmissionStatusAccepted, status.Status)

	w = srv.do(t, http.MethodGet, "/v1/fbr/submissions?status=ACCEPTED", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.SubmissionListResponse
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	w = srv.do(t, http.MethodGet, "/v1/fbr/submissions/stats", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.SubmissionStats
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Accepted)

	w = srv.do(t, http.MethodPost, path+"/retry", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitInvalidInvoice(t *testing.T) {
	srv := newTestServer(t)
	srv.login(t)

	body := sampleInvoiceRequest()
	delete(body, "buyer")
	w := srv.do(t, http.MethodPost, "/v1/fbr/invoices/submit", body, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var result models.SubmitResult
	decode(t, w, &result)
	require.NotNil(t, result.Error)
	assert.Equal(t, models.ErrorKindValidation, result.Error.Kind)
	require.NotNil(t, result.SubmissionID)
	assert.Equal(t, models.SubmissionStatusRejected, result.Status)
}

func TestSubmissionOfAnotherSellerIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/v1/fbr/submissions/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/v1/fbr/submissions/not-a-uuid", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSubmissionsRejectsUnknownStatus(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/v1/fbr/submissions?status=LOST", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/v1/fbr/submissions?limit=-1", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSellerReturnsKeyOnce(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/v1/sellers", map[string]string{
		"business_name": "Acme Traders",
		"ntn":           "7654321-0",
	}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.CreateSellerResponse
	decode(t, w, &resp)
	require.NotNil(t, resp.Seller)
	assert.Equal(t, models.EnvironmentSandbox, resp.Seller.Environment)
	assert.NotEmpty(t, resp.APIKey)

	key, err := srv.keys.GetByHash(context.Background(), database.HashAPIKey(resp.APIKey))
	require.NoError(t, err)
	assert.Equal(t, resp.Seller.ID, key.SellerID)
	assert.NotContains(t, w.Body.String(), key.KeyHash)

	w = srv.do(t, http.MethodPost, "/v1/sellers", map[string]string{"ntn": "1"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSellerWithoutKeyLeavesNoSeller(t *testing.T) {
	srv := newTestServer(t)
	srv.sellers.keyErr = errors.New("duplicate key value violates unique constraint")

	w := srv.do(t, http.MethodPost, "/v1/sellers", map[string]string{
		"business_name": "Acme Traders",
		"ntn":           "7654321-0",
	}, false)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "api_key")
	assert.Zero(t, srv.sellers.count())
}

func TestSubmissionErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, submissionErrorStatus(models.ErrorKindValidation))
	assert.Equal(t, http.StatusUnprocessableEntity, submissionErrorStatus(models.ErrorKindRemoteRejection))
	assert.Equal(t, http.StatusUnauthorized, submissionErrorStatus(models.ErrorKindAuth))
	assert.Equal(t, http.StatusBadGateway, submissionErrorStatus(models.ErrorKindTransient))
	assert.Equal(t, http.StatusInternalServerError, submissionErrorStatus(models.ErrorKindInternal))
}
