package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
)

// SessionRepository persiste la sesión de FBR de cada vendedor por ambiente
type SessionRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewSessionRepository crea una nueva instancia del repositorio
func NewSessionRepository(db *DB, logger *logrus.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// Get obtiene la sesión del vendedor en el ambiente
func (r *SessionRepository) Get(ctx context.Context, sellerID uuid.UUID, env models.Environment) (*models.AuthSession, error) {
	query := `
		SELECT id, seller_id, environment, client_id, client_secret, access_token, refresh_token,
			   token_expiry, is_authenticated, business_name, seller_ntn, seller_strn,
			   last_login_attempt, last_token_refresh, last_error, created_at, updated_at
		FROM fbr_sessions
		WHERE seller_id = $1 AND environment = $2
	`

	var s models.AuthSession
	err := r.db.QueryRowWithTimeout(ctx, query, []interface{}{sellerID, env},
		&s.ID, &s.SellerID, &s.Environment, &s.ClientID, &s.ClientSecret, &s.AccessToken, &s.RefreshToken,
		&s.TokenExpiry, &s.IsAuthenticated, &s.BusinessName, &s.SellerNTN, &s.SellerSTRN,
		&s.LastLoginAttempt, &s.LastTokenRefresh, &s.LastError, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("FBR session for seller %s (%s): %w", sellerID, env, models.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying FBR session: %w", err)
	}
	return &s, nil
}

// Save inserta o actualiza la sesión; hay una sola por vendedor y ambiente
func (r *SessionRepository) Save(ctx context.Context, s *models.AuthSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO fbr_sessions (
			id, seller_id, environment, client_id, client_secret, access_token, refresh_token,
			token_expiry, is_authenticated, business_name, seller_ntn, seller_strn,
			last_login_attempt, last_token_refresh, last_error, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
		ON CONFLICT (seller_id, environment) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			is_authenticated = EXCLUDED.is_authenticated,
			business_name = EXCLUDED.business_name,
			seller_ntn = EXCLUDED.seller_ntn,
			seller_strn = EXCLUDED.seller_strn,
			last_login_attempt = EXCLUDED.last_login_attempt,
			last_token_refresh = EXCLUDED.last_token_refresh,
			last_error = EXCLUDED.last_error,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecWithTimeout(ctx, query,
		s.ID, s.SellerID, s.Environment, s.ClientID, s.ClientSecret, s.AccessToken, s.RefreshToken,
		s.TokenExpiry, s.IsAuthenticated, s.BusinessName, s.SellerNTN, s.SellerSTRN,
		s.LastLoginAttempt, s.LastTokenRefresh, s.LastError, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving FBR session: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"seller_id":        s.SellerID,
		"environment":      s.Environment,
		"is_authenticated": s.IsAuthenticated,
	}).Debug("FBR session saved")
	return nil
}
