package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
)

const apiKeyLength = 32

// APIKeyRepository maneja las operaciones de base de datos para API Keys
type APIKeyRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewAPIKeyRepository crea una nueva instancia del repositorio
func NewAPIKeyRepository(db *DB, logger *logrus.Logger) *APIKeyRepository {
	return &APIKeyRepository{
		db:     db,
		logger: logger,
	}
}

// Create crea una nueva API key; la clave en claro solo se retorna aquí
func (r *APIKeyRepository) Create(ctx context.Context, sellerID uuid.UUID, name string, rateLimit int) (*models.APIKey, string, error) {
	return r.create(ctx, r.db, sellerID, name, rateLimit)
}

func (r *APIKeyRepository) create(ctx context.Context, exec execer, sellerID uuid.UUID, name string, rateLimit int) (*models.APIKey, string, error) {
	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, "", err
	}

	apiKeyModel := &models.APIKey{
		ID:              uuid.New(),
		SellerID:        sellerID,
		Name:            name,
		KeyHash:         HashAPIKey(apiKey),
		IsActive:        true,
		RateLimitPerMin: rateLimit,
		CreatedAt:       time.Now(),
	}

	query := `
		INSERT INTO api_keys (
			id, seller_id, name, key_hash, is_active, rate_limit_per_min, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`
	_, err = execWithTimeout(ctx, exec, query,
		apiKeyModel.ID, apiKeyModel.SellerID, apiKeyModel.Name,
		apiKeyModel.KeyHash, apiKeyModel.IsActive, apiKeyModel.RateLimitPerMin,
		apiKeyModel.CreatedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("error creating API key: %w", err)
	}

	return apiKeyModel, apiKey, nil
}

// GetByHash obtiene una API key activa por su hash
func (r *APIKeyRepository) GetByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	query := `
		SELECT id, seller_id, name, key_hash, is_active, rate_limit_per_min, created_at, last_used_at
		FROM api_keys
		WHERE key_hash = $1 AND is_active = true
	`

	var apiKey models.APIKey
	err := r.db.QueryRowWithTimeout(ctx, query, []interface{}{hash},
		&apiKey.ID, &apiKey.SellerID, &apiKey.Name, &apiKey.KeyHash,
		&apiKey.IsActive, &apiKey.RateLimitPerMin, &apiKey.CreatedAt, &apiKey.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("API key not found or inactive: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying API key: %w", err)
	}
	return &apiKey, nil
}

// UpdateLastUsed actualiza la última vez que se usó la API key
func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`

	if _, err := r.db.ExecWithTimeout(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("error updating API key last used: %w", err)
	}
	return nil
}

// generateAPIKey genera una API key aleatoria de 32 caracteres
func generateAPIKey() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	max := big.NewInt(int64(len(charset)))
	key := make([]byte, apiKeyLength)
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("error generating API key: %w", err)
		}
		key[i] = charset[n.Int64()]
	}
	return string(key), nil
}

// HashAPIKey genera el hash SHA-256 de la API key
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return fmt.Sprintf("%x", hash)
}
