package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/fbr"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const refreshFlightKey = "refresh"

// TokenManager guarda la sesión de un vendedor con FBR y entrega tokens
// vigentes. Las renovaciones concurrentes se unifican en una sola llamada.
type TokenManager struct {
	mu             sync.RWMutex
	session        models.AuthSession
	authenticating bool

	refreshGroup singleflight.Group
	gateway      fbr.Gateway
	store        SessionStore
	scope        string
	now          func() time.Time
	logger       *logrus.Logger
}

// NewTokenManager crea el administrador de tokens para una sesión existente
func NewTokenManager(session *models.AuthSession, gateway fbr.Gateway, store SessionStore, scope string, now func() time.Time, logger *logrus.Logger) *TokenManager {
	if now == nil {
		now = time.Now
	}
	if scope == "" {
		scope = fbr.DefaultScope
	}
	return &TokenManager{
		session: *session,
		gateway: gateway,
		store:   store,
		scope:   scope,
		now:     now,
		logger:  logger,
	}
}

// Authenticate intercambia las credenciales por un token. Una falla no se
// reintenta; quien llama debe volver a invocar.
func (m *TokenManager) Authenticate(ctx context.Context, creds models.Credentials) (*models.SellerInfo, error) {
	env, ok := models.ParseEnvironment(string(creds.Environment))
	if !ok {
		return nil, models.NewSubmissionError(models.ErrorKindAuth, fmt.Sprintf("unknown environment %q", creds.Environment))
	}

	m.mu.Lock()
	now := m.now()
	m.authenticating = true
	m.session.LastLoginAttempt = &now
	m.mu.Unlock()

	resp, err := m.gateway.RequestToken(ctx, env, fbr.TokenRequest{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		GrantType:    fbr.GrantTypeClientCredentials,
		Scope:        m.scope,
	})

	m.mu.Lock()
	m.authenticating = false
	m.session.Environment = env
	m.session.ClientID = creds.ClientID
	m.session.ClientSecret = creds.ClientSecret
	m.session.BusinessName = creds.BusinessName
	m.session.SellerNTN = creds.SellerNTN
	m.session.SellerSTRN = creds.SellerSTRN

	if err != nil {
		reason := "authentication failed: " + fbr.RemoteMessage(err)
		m.invalidateLocked(reason)
		snapshot := m.session
		m.mu.Unlock()

		m.logger.WithFields(logrus.Fields{
			"seller_id":   snapshot.SellerID,
			"environment": env,
			"transient":   fbr.IsTransient(err),
		}).Warn("FBR authentication failed")
		m.persist(ctx, &snapshot)
		return nil, models.NewSubmissionError(models.ErrorKindAuth, reason)
	}

	m.applyTokenLocked(resp)
	snapshot := m.session
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"seller_id":   snapshot.SellerID,
		"environment": env,
		"expires_at":  snapshot.TokenExpiry,
	}).Info("FBR authentication successful")
	m.persist(ctx, &snapshot)

	info := snapshot.Summary()
	return &info, nil
}

// GetToken retorna el token vigente; false si no existe o ya venció
func (m *TokenManager) GetToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.usableLocked() {
		return "", false
	}
	return m.session.AccessToken, true
}

// IsAuthenticated indica si hay un token usable en este momento
func (m *TokenManager) IsAuthenticated() bool {
	_, ok := m.GetToken()
	return ok
}

// State retorna el estado de la máquina de autenticación
func (m *TokenManager) State() models.AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch {
	case m.authenticating:
		return models.AuthStateAuthenticating
	case !m.session.IsAuthenticated:
		return models.AuthStateUnauthenticated
	case !m.usableLocked():
		return models.AuthStateExpired
	default:
		return models.AuthStateAuthenticated
	}
}

// Refresh renueva el token con el refresh token. Si falla, la sesión queda
// sin autenticar y se requiere Authenticate.
func (m *TokenManager) Refresh(ctx context.Context) bool {
	// La renovación no se cancela si quien la inició abandona la solicitud
	ctx = context.WithoutCancel(ctx)
	_, err, shared := m.refreshGroup.Do(refreshFlightKey, func() (interface{}, error) {
		return nil, m.refresh(ctx)
	})
	if shared {
		m.logger.WithField("seller_id", m.SellerID()).Debug("Joined in-flight FBR token refresh")
	}
	return err == nil
}

// EnsureToken retorna un token vigente, renovándolo si venció
func (m *TokenManager) EnsureToken(ctx context.Context) (string, error) {
	if token, ok := m.GetToken(); ok {
		return token, nil
	}
	if m.Refresh(ctx) {
		if token, ok := m.GetToken(); ok {
			return token, nil
		}
	}

	reason := "no valid FBR session; authenticate again"
	m.mu.RLock()
	if m.session.LastError != nil {
		reason = *m.session.LastError
	}
	m.mu.RUnlock()
	return "", models.NewSubmissionError(models.ErrorKindAuth, reason)
}

// Logout invalida los tokens de la sesión
func (m *TokenManager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.session.AccessToken = ""
	m.session.RefreshToken = ""
	m.session.TokenExpiry = nil
	m.session.IsAuthenticated = false
	m.session.LastError = nil
	snapshot := m.session
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"seller_id":   snapshot.SellerID,
		"environment": snapshot.Environment,
	}).Info("FBR session logged out")
	m.persist(ctx, &snapshot)
}

// SellerInfo retorna el resumen redactado del vendedor
func (m *TokenManager) SellerInfo() models.SellerInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Summary()
}

// SellerID retorna el vendedor dueño de la sesión
func (m *TokenManager) SellerID() uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.SellerID
}

// Environment retorna el ambiente de FBR de la sesión
func (m *TokenManager) Environment() models.Environment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Environment
}

// Status retorna el estado público de la sesión
func (m *TokenManager) Status() models.AuthStatus {
	state := m.State()

	m.mu.RLock()
	defer m.mu.RUnlock()

	status := models.AuthStatus{
		State:           state,
		IsAuthenticated: state == models.AuthStateAuthenticated,
		TokenExpiry:     m.session.TokenExpiry,
		LastError:       m.session.LastError,
	}
	if m.session.BusinessName != "" {
		info := m.session.Summary()
		status.Seller = &info
	}
	return status
}

func (m *TokenManager) refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.session.RefreshToken == "" {
		m.invalidateLocked("re-authentication required: no refresh token available")
		snapshot := m.session
		m.mu.Unlock()
		m.persist(ctx, &snapshot)
		return fmt.Errorf("no refresh token for seller %s", snapshot.SellerID)
	}
	env := m.session.Environment
	req := fbr.TokenRequest{
		ClientID:     m.session.ClientID,
		ClientSecret: m.session.ClientSecret,
		GrantType:    fbr.GrantTypeRefreshToken,
		RefreshToken: m.session.RefreshToken,
		Scope:        m.scope,
	}
	m.authenticating = true
	m.mu.Unlock()

	resp, err := m.gateway.RequestToken(ctx, env, req)

	m.mu.Lock()
	m.authenticating = false
	if err != nil {
		m.invalidateLocked("token refresh failed, re-authentication required: " + fbr.RemoteMessage(err))
		snapshot := m.session
		m.mu.Unlock()

		m.logger.WithFields(logrus.Fields{
			"seller_id":   snapshot.SellerID,
			"environment": env,
			"reason":      fbr.RemoteMessage(err),
		}).Warn("FBR token refresh failed")
		m.persist(ctx, &snapshot)
		return err
	}

	m.applyTokenLocked(resp)
	snapshot := m.session
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"seller_id":   snapshot.SellerID,
		"environment": env,
		"expires_at":  snapshot.TokenExpiry,
	}).Info("FBR token refreshed")
	m.persist(ctx, &snapshot)
	return nil
}

func (m *TokenManager) usableLocked() bool {
	return m.session.IsAuthenticated &&
		m.session.AccessToken != "" &&
		m.session.TokenExpiry != nil &&
		m.now().Before(*m.session.TokenExpiry)
}

func (m *TokenManager) applyTokenLocked(resp *fbr.TokenResponse) {
	now := m.now()
	ttl := resp.ExpiresIn
	if ttl <= 0 {
		ttl = fbr.DefaultTokenTTLSeconds
	}
	expiry := now.Add(time.Duration(ttl) * time.Second)

	m.session.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		m.session.RefreshToken = resp.RefreshToken
	}
	m.session.TokenExpiry = &expiry
	m.session.IsAuthenticated = true
	m.session.LastTokenRefresh = &now
	m.session.LastError = nil
}

func (m *TokenManager) invalidateLocked(reason string) {
	m.session.AccessToken = ""
	m.session.RefreshToken = ""
	m.session.TokenExpiry = nil
	m.session.IsAuthenticated = false
	m.session.LastError = &reason
}

func (m *TokenManager) persist(ctx context.Context, session *models.AuthSession) {
	if m.store == nil {
		return
	}
	session.UpdatedAt = m.now()
	if err := m.store.Save(ctx, session); err != nil {
		m.logger.WithFields(logrus.Fields{
			"seller_id":   session.SellerID,
			"environment": session.Environment,
		}).WithError(err).Error("Error saving FBR session")
	}
}
