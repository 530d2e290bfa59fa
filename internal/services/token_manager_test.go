package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/hypernova-labs/fbr-service/internal/fbr"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
}

func testCredentials() models.Credentials {
	return models.Credentials{
		ClientID:     "client",
		ClientSecret: "secret",
		SellerNTN:    "1234567-8",
		SellerSTRN:   "17-00-1234-567-89",
		BusinessName: "Hypernova Consulting",
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	clock := newTestClock()
	gw := new(gatewayMock)
	store := newMemorySessionStore()
	gw.On("RequestToken", mock.Anything, models.EnvironmentSandbox, mock.MatchedBy(func(req fbr.TokenRequest) bool {
		return req.GrantType == fbr.GrantTypeClientCredentials && req.ClientID == "client" && req.Scope == fbr.DefaultScope
	})).Return(&fbr.TokenResponse{AccessToken: "abc", RefreshToken: "def"}, nil).Once()

	session := &models.AuthSession{SellerID: testSellerID}
	m := NewTokenManager(session, gw, store, "", clock.Now, newTestLogger())

	info, err := m.Authenticate(context.Background(), testCredentials())
	require.NoError(t, err)
	assert.Equal(t, "Hypernova Consulting", info.BusinessName)
	assert.Equal(t, models.EnvironmentSandbox, info.Environment)

	token, ok := m.GetToken()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
	assert.Equal(t, models.AuthStateAuthenticated, m.State())

	saved, err := store.Get(context.Background(), testSellerID, models.EnvironmentSandbox)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), *saved.TokenExpiry)
	gw.AssertExpectations(t)
}

func TestAuthenticateFailure(t *testing.T) {
	gw := new(gatewayMock)
	gw.On("RequestToken", mock.Anything, models.EnvironmentSandbox, mock.Anything).
		Return(nil, &fbr.HTTPError{StatusCode: http.StatusUnauthorized, Body: `{"error":"invalid client"}`}).Once()

	session := &models.AuthSession{SellerID: testSellerID}
	m := NewTokenManager(session, gw, nil, "", newTestClock().Now, newTestLogger())

	info, err := m.Authenticate(context.Background(), testCredentials())
	assert.Nil(t, info)
	require.Error(t, err)
	assert.True(t, models.IsAuthError(err))
	assert.Contains(t, err.Error(), "invalid client")
	assert.Equal(t, models.AuthStateUnauthenticated, m.State())
	assert.False(t, m.IsAuthenticated())
}

func TestAuthenticateRejectsUnknownEnvironment(t *testing.T) {
	gw := new(gatewayMock)
	m := NewTokenManager(&models.AuthSession{SellerID: testSellerID}, gw, nil, "", nil, newTestLogger())

	creds := testCredentials()
	creds.Environment = "staging"
	_, err := m.Authenticate(context.Background(), creds)

	assert.True(t, models.IsAuthError(err))
	gw.AssertNotCalled(t, "RequestToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestExpiredTokenIsNotUsable(t *testing.T) {
	clock := newTestClock()
	session := authenticatedSession(clock.Now())
	expired := clock.Now().Add(-time.Second)
	session.TokenExpiry = &expired

	m := NewTokenManager(session, new(gatewayMock), nil, "", clock.Now, newTestLogger())

	_, ok := m.GetToken()
	assert.False(t, ok)
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, models.AuthStateExpired, m.State())
}

func TestRefreshRestoresSession(t *testing.T) {
	clock := newTestClock()
	session := authenticatedSession(clock.Now())
	expired := clock.Now().Add(-time.Second)
	session.TokenExpiry = &expired

	gw := new(gatewayMock)
	gw.On("RequestToken", mock.Anything, models.EnvironmentSandbox, mock.MatchedBy(func(req fbr.TokenRequest) bool {
		return req.GrantType == fbr.GrantTypeRefreshToken && req.RefreshToken == "refresh"
	})).Return(&fbr.TokenResponse{AccessToken: "new-token", ExpiresIn: 3600}, nil).Once()

	m := NewTokenManager(session, gw, nil, "", clock.Now, newTestLogger())

	assert.True(t, m.Refresh(context.Background()))
	token, ok := m.GetToken()
	assert.True(t, ok)
	assert.Equal(t, "new-token", token)

	clock.Advance(59 * time.Minute)
	assert.True(t, m.IsAuthenticated())
	clock.Advance(time.Minute)
	assert.False(t, m.IsAuthenticated())
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	clock := newTestClock()
	session := authenticatedSession(clock.Now())
	session.RefreshToken = ""

	gw := new(gatewayMock)
	m := NewTokenManager(session, gw, nil, "", clock.Now, newTestLogger())

	assert.False(t, m.Refresh(context.Background()))
	assert.Equal(t, models.AuthStateUnauthenticated, m.State())
	status := m.Status()
	require.NotNil(t, status.LastError)
	assert.Contains(t, *status.LastError, "re-authentication required")
	gw.AssertNotCalled(t, "RequestToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshFailureRequiresReauthentication(t *testing.T) {
	clock := newTestClock()
	gw := new(gatewayMock)
	gw.On("RequestToken", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &fbr.HTTPError{StatusCode: http.StatusBadRequest, Body: `{"error":"refresh token revoked"}`}).Once()

	m := NewTokenManager(authenticatedSession(clock.Now()), gw, nil, "", clock.Now, newTestLogger())

	assert.False(t, m.Refresh(context.Background()))
	status := m.Status()
	require.NotNil(t, status.LastError)
	assert.Contains(t, *status.LastError, "refresh token revoked")

	_, err := m.EnsureToken(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsAuthError(err))
	gw.AssertNumberOfCalls(t, "RequestToken", 1)
}

func TestConcurrentRefreshIssuesSingleRequest(t *testing.T) {
	clock := newTestClock()
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	gw := new(gatewayMock)
	gw.On("RequestToken", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			once.Do(func() { close(started) })
			<-release
		}).
		Return(&fbr.TokenResponse{AccessToken: "shared", ExpiresIn: 3600}, nil)

	m := NewTokenManager(authenticatedSession(clock.Now()), gw, nil, "", clock.Now, newTestLogger())

	const callers = 8
	results := make(chan bool, callers)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- m.Refresh(context.Background())
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.Refresh(context.Background())
		}()
	}
	// deja que los demás se sumen al vuelo en curso
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for ok := range results {
		assert.True(t, ok)
	}
	gw.AssertNumberOfCalls(t, "RequestToken", 1)
	token, ok := m.GetToken()
	assert.True(t, ok)
	assert.Equal(t, "shared", token)
}

func TestEnsureTokenRefreshesExpiredToken(t *testing.T) {
	clock := newTestClock()
	gw := new(gatewayMock)
	gw.On("RequestToken", mock.Anything, mock.Anything, mock.Anything).
		Return(&fbr.TokenResponse{AccessToken: "fresh"}, nil).Once()

	m := NewTokenManager(authenticatedSession(clock.Now()), gw, nil, "", clock.Now, newTestLogger())
	clock.Advance(2 * time.Hour)

	token, err := m.EnsureToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	gw.AssertExpectations(t)
}

func TestLogoutClearsTokens(t *testing.T) {
	clock := newTestClock()
	store := newMemorySessionStore()
	m := NewTokenManager(authenticatedSession(clock.Now()), new(gatewayMock), store, "", clock.Now, newTestLogger())

	m.Logout(context.Background())

	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, models.AuthStateUnauthenticated, m.State())
	saved, err := store.Get(context.Background(), testSellerID, models.EnvironmentSandbox)
	require.NoError(t, err)
	assert.Empty(t, saved.AccessToken)
	assert.Empty(t, saved.RefreshToken)
	// los datos del vendedor se conservan
	assert.Equal(t, "Hypernova Consulting", saved.BusinessName)
}
