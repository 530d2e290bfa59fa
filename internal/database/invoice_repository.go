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

// InvoiceRepository lee las facturas locales del back office y marca las
// que ya tienen referencia de FBR
type InvoiceRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewInvoiceRepository crea una nueva instancia del repositorio
func NewInvoiceRepository(db *DB, logger *logrus.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

const invoiceColumns = `
	id, seller_id, invoice_number, invoice_date,
	buyer_name, buyer_ntn, buyer_strn, buyer_address, buyer_phone, buyer_email,
	total_amount, sales_tax, extra_tax, discount, final_amount, currency, notes,
	fbr_reference, fbr_submitted_at, created_at`

func scanInvoice(scan func(dest ...interface{}) error) (*models.Invoice, error) {
	var inv models.Invoice
	var ntn, strn, phone, email, notes sql.NullString
	err := scan(
		&inv.ID, &inv.SellerID, &inv.InvoiceNumber, &inv.InvoiceDate,
		&inv.Buyer.Name, &ntn, &strn, &inv.Buyer.Address, &phone, &email,
		&inv.TotalAmount, &inv.SalesTax, &inv.ExtraTax, &inv.Discount, &inv.FinalAmount, &inv.Currency, &notes,
		&inv.FBRReference, &inv.FBRSubmittedAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Buyer.NTN = ntn.String
	inv.Buyer.STRN = strn.String
	inv.Buyer.Phone = phone.String
	inv.Buyer.Email = email.String
	inv.Notes = notes.String
	return &inv, nil
}

// GetByID obtiene una factura del vendedor con sus líneas
func (r *InvoiceRepository) GetByID(ctx context.Context, sellerID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND seller_id = $2`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, query, id, sellerID)
	invoice, err := scanInvoice(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying invoice: %w", err)
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

// ListAvailableForSubmission lista las facturas sin referencia de FBR
func (r *InvoiceRepository) ListAvailableForSubmission(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE seller_id = $1 AND fbr_reference IS NULL
		ORDER BY invoice_date DESC, created_at DESC
		LIMIT 100
	`

	rows, cancel, err := r.db.QueryWithTimeout(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices: %w", err)
	}
	defer cancel()
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	return invoices, nil
}

// MarkSubmitted guarda la referencia de FBR en la factura local. Una
// referencia existente solo se reemplaza si es previousReference, la del
// intento anterior del mismo envío.
func (r *InvoiceRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, previousReference, reference string, submittedAt time.Time) error {
	query := `
		UPDATE invoices
		SET fbr_reference = $1, fbr_submitted_at = $2
		WHERE id = $3 AND (fbr_reference IS NULL OR fbr_reference = $4)
	`

	result, err := r.db.ExecWithTimeout(ctx, query, reference, submittedAt, id, previousReference)
	if err != nil {
		return fmt.Errorf("error marking invoice as submitted: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("invoice %s not found or already submitted: %w", id, models.ErrConflict)
	}

	r.logger.WithFields(logrus.Fields{
		"invoice_id":    id,
		"fbr_reference": reference,
	}).Info("Local invoice marked as submitted to FBR")
	return nil
}

func (r *InvoiceRepository) getItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceItem, error) {
	query := `
		SELECT description, hs_code, qty, unit_price, line_total, sales_tax, sales_tax_rate, extra_tax, discount
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_no
	`

	rows, cancel, err := r.db.QueryWithTimeout(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("error querying invoice items: %w", err)
	}
	defer cancel()
	defer rows.Close()

	items := []models.InvoiceItem{}
	for rows.Next() {
		var item models.InvoiceItem
		var hsCode sql.NullString
		if err := rows.Scan(
			&item.Description, &hsCode, &item.Quantity, &item.UnitPrice, &item.TotalValue,
			&item.SalesTax, &item.SalesTaxRate, &item.ExtraTax, &item.Discount,
		); err != nil {
			return nil, fmt.Errorf("error scanning invoice item: %w", err)
		}
		item.HSCode = hsCode.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}
	return items, nil
}
