package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
)

// SubmissionRepository persiste los registros de envío a FBR. Los registros
// nunca se eliminan.
type SubmissionRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewSubmissionRepository crea una nueva instancia del repositorio
func NewSubmissionRepository(db *DB, logger *logrus.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

const submissionColumns = `
	id, seller_id, invoice_id, invoice_number, invoice_date, buyer, items,
	subtotal, sales_tax, extra_tax, discount, final_amount, currency, notes,
	fbr_reference, fbr_unique_id, irn, qr_payload, qr_image_url, status_details,
	status, last_error, error_kind, retry_count, last_retry_date, submitted_at,
	environment, created_at, updated_at`

// Create inserta un nuevo registro de envío
func (r *SubmissionRepository) Create(ctx context.Context, record *models.SubmissionRecord) error {
	buyer, items, err := encodeSnapshot(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO fbr_submissions (` + submissionColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
		)
	`
	_, err = r.db.ExecWithTimeout(ctx, query,
		record.ID, record.SellerID, nullUUID(record.InvoiceID), record.InvoiceNumber, record.InvoiceDate, buyer, items,
		record.Subtotal, record.SalesTax, record.ExtraTax, record.Discount, record.FinalAmount, record.Currency, record.Notes,
		record.FBRReference, record.FBRUniqueID, record.IRN, record.QRPayload, record.QRImageURL, record.StatusDetails,
		record.Status, record.LastError, record.ErrorKind, record.RetryCount, record.LastRetryDate, record.SubmittedAt,
		record.Environment, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating submission: %w", err)
	}
	return nil
}

// Update guarda el estado completo del registro
func (r *SubmissionRepository) Update(ctx context.Context, record *models.SubmissionRecord) error {
	buyer, items, err := encodeSnapshot(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE fbr_submissions SET
			invoice_number = $2, invoice_date = $3, buyer = $4, items = $5,
			subtotal = $6, sales_tax = $7, extra_tax = $8, discount = $9, final_amount = $10,
			currency = $11, notes = $12, fbr_reference = $13, fbr_unique_id = $14, irn = $15,
			qr_payload = $16, qr_image_url = $17, status_details = $18, status = $19,
			last_error = $20, error_kind = $21, retry_count = $22, last_retry_date = $23,
			submitted_at = $24, updated_at = $25
		WHERE id = $1
	`
	result, err := r.db.ExecWithTimeout(ctx, query,
		record.ID, record.InvoiceNumber, record.InvoiceDate, buyer, items,
		record.Subtotal, record.SalesTax, record.ExtraTax, record.Discount, record.FinalAmount,
		record.Currency, record.Notes, record.FBRReference, record.FBRUniqueID, record.IRN,
		record.QRPayload, record.QRImageURL, record.StatusDetails, record.Status,
		record.LastError, record.ErrorKind, record.RetryCount, record.LastRetryDate,
		record.SubmittedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error updating submission: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("submission %s: %w", record.ID, models.ErrNotFound)
	}
	return nil
}

// GetByID obtiene un registro por ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SubmissionRecord, error) {
	query := `SELECT ` + submissionColumns + ` FROM fbr_submissions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByReference obtiene el registro del vendedor con esa referencia de FBR
func (r *SubmissionRepository) GetByReference(ctx context.Context, sellerID uuid.UUID, reference string) (*models.SubmissionRecord, error) {
	query := `SELECT ` + submissionColumns + ` FROM fbr_submissions WHERE seller_id = $1 AND fbr_reference = $2`
	return r.getOne(ctx, query, sellerID, reference)
}

// List lista los registros del vendedor, más recientes primero
func (r *SubmissionRepository) List(ctx context.Context, sellerID uuid.UUID, filter models.SubmissionFilter) ([]models.SubmissionRecord, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM fbr_submissions
		WHERE seller_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.getMany(ctx, query, sellerID, string(filter.Status), filter.Limit, filter.Offset)
}

// ListByStatus lista los registros de todos los vendedores en un estado
func (r *SubmissionRepository) ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.SubmissionRecord, error) {
	query := `SELECT ` + submissionColumns + ` FROM fbr_submissions WHERE status = $1 ORDER BY created_at`
	return r.getMany(ctx, query, status)
}

// Stats retorna los contadores por estado del vendedor
func (r *SubmissionRepository) Stats(ctx context.Context, sellerID uuid.UUID) (*models.SubmissionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'DRAFT'),
			COUNT(*) FILTER (WHERE status IN ('VALIDATING', 'SUBMITTING')),
			COUNT(*) FILTER (WHERE status = 'SUBMITTED'),
			COUNT(*) FILTER (WHERE status = 'ACCEPTED'),
			COUNT(*) FILTER (WHERE status = 'REJECTED')
		FROM fbr_submissions
		WHERE seller_id = $1
	`

	var stats models.SubmissionStats
	err := r.db.QueryRowWithTimeout(ctx, query, []interface{}{sellerID},
		&stats.Total, &stats.Draft, &stats.Pending, &stats.Submitted, &stats.Accepted, &stats.Rejected,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying submission stats: %w", err)
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Submitted+stats.Accepted) / float64(stats.Total) * 100
	}
	return &stats, nil
}

func (r *SubmissionRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.SubmissionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	record, err := scanSubmission(r.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("submission: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying submission: %w", err)
	}
	return record, nil
}

func (r *SubmissionRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]models.SubmissionRecord, error) {
	rows, cancel, err := r.db.QueryWithTimeout(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying submissions: %w", err)
	}
	defer cancel()
	defer rows.Close()

	records := []models.SubmissionRecord{}
	for rows.Next() {
		record, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning submission: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return records, nil
}

func scanSubmission(scan func(dest ...interface{}) error) (*models.SubmissionRecord, error) {
	var rec models.SubmissionRecord
	var invoiceID uuid.NullUUID
	var buyer, items []byte
	var notes sql.NullString

	err := scan(
		&rec.ID, &rec.SellerID, &invoiceID, &rec.InvoiceNumber, &rec.InvoiceDate, &buyer, &items,
		&rec.Subtotal, &rec.SalesTax, &rec.ExtraTax, &rec.Discount, &rec.FinalAmount, &rec.Currency, &notes,
		&rec.FBRReference, &rec.FBRUniqueID, &rec.IRN, &rec.QRPayload, &rec.QRImageURL, &rec.StatusDetails,
		&rec.Status, &rec.LastError, &rec.ErrorKind, &rec.RetryCount, &rec.LastRetryDate, &rec.SubmittedAt,
		&rec.Environment, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.InvoiceID = invoiceID.UUID
	rec.Notes = notes.String
	if len(buyer) > 0 {
		if err := json.Unmarshal(buyer, &rec.Buyer); err != nil {
			return nil, fmt.Errorf("error decoding buyer snapshot: %w", err)
		}
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &rec.Items); err != nil {
			return nil, fmt.Errorf("error decoding items snapshot: %w", err)
		}
	}
	return &rec, nil
}

// encodeSnapshot retorna texto; lib/pq envía []byte como bytea y jsonb no lo acepta
func encodeSnapshot(record *models.SubmissionRecord) (string, string, error) {
	buyer, err := json.Marshal(record.Buyer)
	if err != nil {
		return "", "", fmt.Errorf("error encoding buyer snapshot: %w", err)
	}
	itemsValue := record.Items
	if itemsValue == nil {
		itemsValue = []models.SubmissionItem{}
	}
	items, err := json.Marshal(itemsValue)
	if err != nil {
		return "", "", fmt.Errorf("error encoding items snapshot: %w", err)
	}
	return string(buyer), string(items), nil
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
