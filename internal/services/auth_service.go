package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/fbr"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
)

type sessionKey struct {
	sellerID uuid.UUID
	env      models.Environment
}

// AuthService mantiene una sesión de FBR por vendedor y ambiente.
// Nunca comparte estado entre vendedores.
type AuthService struct {
	gateway  fbr.Gateway
	store    SessionStore
	scope    string
	now      func() time.Time
	logger   *logrus.Logger
	mu       sync.Mutex
	managers map[sessionKey]*TokenManager
}

// NewAuthService crea una nueva instancia del servicio
func NewAuthService(gateway fbr.Gateway, store SessionStore, scope string, logger *logrus.Logger) *AuthService {
	return &AuthService{
		gateway:  gateway,
		store:    store,
		scope:    scope,
		now:      time.Now,
		logger:   logger,
		managers: make(map[sessionKey]*TokenManager),
	}
}

// Manager retorna la sesión del vendedor, cargándola del almacenamiento si hace falta
func (s *AuthService) Manager(ctx context.Context, sellerID uuid.UUID, env models.Environment) (*TokenManager, error) {
	if !env.Valid() {
		return nil, fmt.Errorf("%w: unknown environment %q", models.ErrUsage, env)
	}
	key := sessionKey{sellerID: sellerID, env: env}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.managers[key]; ok {
		return m, nil
	}

	session, err := s.store.Get(ctx, sellerID, env)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("error loading FBR session: %w", err)
		}
		now := s.now()
		session = &models.AuthSession{
			ID:          uuid.New(),
			SellerID:    sellerID,
			Environment: env,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	m := NewTokenManager(session, s.gateway, s.store, s.scope, s.now, s.logger)
	s.managers[key] = m
	return m, nil
}

// Authenticate inicia sesión en FBR con las credenciales del vendedor
func (s *AuthService) Authenticate(ctx context.Context, sellerID uuid.UUID, creds models.Credentials) (*models.SellerInfo, error) {
	env, ok := models.ParseEnvironment(string(creds.Environment))
	if !ok {
		return nil, models.NewSubmissionError(models.ErrorKindAuth, fmt.Sprintf("unknown environment %q", creds.Environment))
	}
	creds.Environment = env

	m, err := s.Manager(ctx, sellerID, env)
	if err != nil {
		return nil, err
	}
	return m.Authenticate(ctx, creds)
}

// Status retorna el estado de autenticación del vendedor
func (s *AuthService) Status(ctx context.Context, sellerID uuid.UUID, env models.Environment) (*models.AuthStatus, error) {
	m, err := s.Manager(ctx, sellerID, env)
	if err != nil {
		return nil, err
	}
	status := m.Status()
	return &status, nil
}

// Logout cierra la sesión del vendedor
func (s *AuthService) Logout(ctx context.Context, sellerID uuid.UUID, env models.Environment) error {
	m, err := s.Manager(ctx, sellerID, env)
	if err != nil {
		return err
	}
	m.Logout(ctx)
	return nil
}

// SellerInfo retorna el resumen del vendedor sin secretos
func (s *AuthService) SellerInfo(ctx context.Context, sellerID uuid.UUID, env models.Environment) (*models.SellerInfo, error) {
	m, err := s.Manager(ctx, sellerID, env)
	if err != nil {
		return nil, err
	}
	info := m.SellerInfo()
	if info.BusinessName == "" {
		return nil, fmt.Errorf("FBR settings for seller %s: %w", sellerID, models.ErrNotFound)
	}
	return &info, nil
}

// TestConnection verifica que la API de FBR responda en el ambiente
func (s *AuthService) TestConnection(ctx context.Context, sellerID uuid.UUID, env models.Environment) (*models.ConnectionTest, error) {
	m, err := s.Manager(ctx, sellerID, env)
	if err != nil {
		return nil, err
	}
	token, _ := m.GetToken()

	start := s.now()
	err = s.gateway.Health(ctx, env, token)
	result := &models.ConnectionTest{
		Connected:   err == nil,
		Environment: env,
		LatencyMS:   s.now().Sub(start).Milliseconds(),
		Message:     "FBR API reachable",
	}
	if err != nil {
		result.Message = fbr.RemoteMessage(err)
		s.logger.WithFields(logrus.Fields{
			"seller_id":   sellerID,
			"environment": env,
		}).WithError(err).Warn("FBR connection test failed")
	}
	return result, nil
}
