package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
)

// SellerRepository maneja las operaciones de base de datos para Seller
type SellerRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewSellerRepository crea una nueva instancia del repositorio
func NewSellerRepository(db *DB, logger *logrus.Logger) *SellerRepository {
	return &SellerRepository{
		db:     db,
		logger: logger,
	}
}

const sellerColumns = `id, business_name, ntn, strn, email, phone, address, environment, is_active, created_at, updated_at`

// CreateWithAPIKey registra el vendedor y su primera API key en una sola
// transacción. Un vendedor nunca queda sin clave para autenticarse.
func (r *SellerRepository) CreateWithAPIKey(ctx context.Context, seller *models.Seller, keyName string, rateLimit int) (*models.APIKey, string, error) {
	keys := NewAPIKeyRepository(r.db, r.logger)

	var apiKey *models.APIKey
	var rawKey string
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := r.insert(ctx, tx, seller); err != nil {
			return err
		}
		var err error
		apiKey, rawKey, err = keys.create(ctx, tx, seller.ID, keyName, rateLimit)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	r.logger.WithFields(logrus.Fields{
		"seller_id": seller.ID,
		"ntn":       seller.NTN,
	}).Info("Seller created")
	return apiKey, rawKey, nil
}

func (r *SellerRepository) insert(ctx context.Context, exec execer, seller *models.Seller) error {
	now := time.Now()
	if seller.ID == uuid.Nil {
		seller.ID = uuid.New()
	}
	if seller.Environment == "" {
		seller.Environment = models.EnvironmentSandbox
	}
	seller.IsActive = true
	seller.CreatedAt = now
	seller.UpdatedAt = now

	query := `
		INSERT INTO sellers (` + sellerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := execWithTimeout(ctx, exec, query,
		seller.ID, seller.BusinessName, seller.NTN, seller.STRN, seller.Email, seller.Phone,
		seller.Address, seller.Environment, seller.IsActive, seller.CreatedAt, seller.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating seller: %w", err)
	}
	return nil
}


// GetByID obtiene un vendedor activo por ID
func (r *SellerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE id = $1 AND is_active = true`

	var seller models.Seller
	err := r.db.QueryRowWithTimeout(ctx, query, []interface{}{id},
		&seller.ID, &seller.BusinessName, &seller.NTN, &seller.STRN, &seller.Email, &seller.Phone,
		&seller.Address, &seller.Environment, &seller.IsActive, &seller.CreatedAt, &seller.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("seller %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying seller: %w", err)
	}
	return &seller, nil
}
