package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus representa el estado de un envío a FBR
type SubmissionStatus string

const (
	SubmissionStatusDraft      SubmissionStatus = "DRAFT"
	SubmissionStatusValidating SubmissionStatus = "VALIDATING"
	SubmissionStatusSubmitting SubmissionStatus = "SUBMITTING"
	SubmissionStatusSubmitted  SubmissionStatus = "SUBMITTED"
	SubmissionStatusAccepted   SubmissionStatus = "ACCEPTED"
	SubmissionStatusRejected   SubmissionStatus = "REJECTED"
)

var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionStatusDraft:      {SubmissionStatusValidating},
	SubmissionStatusValidating: {SubmissionStatusRejected, SubmissionStatusSubmitting},
	SubmissionStatusSubmitting: {SubmissionStatusSubmitted, SubmissionStatusAccepted, SubmissionStatusRejected},
	SubmissionStatusSubmitted:  {SubmissionStatusAccepted, SubmissionStatusRejected},
	SubmissionStatusRejected:   {SubmissionStatusValidating},
	SubmissionStatusAccepted:   {},
}

// Valid indica si el estado es conocido
func (s SubmissionStatus) Valid() bool {
	_, ok := submissionTransitions[s]
	return ok
}

// CanTransition indica si el cambio de estado está permitido
func CanTransition(from, to SubmissionStatus) bool {
	for _, next := range submissionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SubmissionItem es la línea de la factura tal como se envió
type SubmissionItem struct {
	Description string  `json:"description"`
	HSCode      string  `json:"hs_code"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalValue  float64 `json:"total_value"`
	SalesTax    float64 `json:"sales_tax"`
	ExtraTax    float64 `json:"extra_tax"`
	Discount    float64 `json:"discount"`
}

// SubmissionRecord representa un intento de registrar una factura ante FBR
type SubmissionRecord struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	SellerID      uuid.UUID        `json:"seller_id" db:"seller_id"`
	InvoiceID     uuid.UUID        `json:"invoice_id" db:"invoice_id"`
	InvoiceNumber string           `json:"invoice_number" db:"invoice_number"`
	InvoiceDate   time.Time        `json:"invoice_date" db:"invoice_date"`
	Buyer         Buyer            `json:"buyer" db:"buyer"`
	Items         []SubmissionItem `json:"items" db:"items"`

	// Totales recalculados desde las líneas
	Subtotal    float64 `json:"subtotal" db:"subtotal"`
	SalesTax    float64 `json:"sales_tax" db:"sales_tax"`
	ExtraTax    float64 `json:"extra_tax" db:"extra_tax"`
	Discount    float64 `json:"discount" db:"discount"`
	FinalAmount float64 `json:"final_amount" db:"final_amount"`
	Currency    string  `json:"currency" db:"currency"`
	Notes       string  `json:"notes,omitempty" db:"notes"`

	// Respuesta de FBR
	FBRReference  *string `json:"fbr_reference,omitempty" db:"fbr_reference"`
	FBRUniqueID   *string `json:"fbr_unique_id,omitempty" db:"fbr_unique_id"`
	IRN           *string `json:"irn,omitempty" db:"irn"`
	QRPayload     *string `json:"qr_payload,omitempty" db:"qr_payload"`
	QRImageURL    *string `json:"qr_image_url,omitempty" db:"qr_image_url"`
	StatusDetails *string `json:"status_details,omitempty" db:"status_details"`

	Status        SubmissionStatus `json:"status" db:"status"`
	LastError     *string          `json:"last_error,omitempty" db:"last_error"`
	ErrorKind     *ErrorKind       `json:"error_kind,omitempty" db:"error_kind"`
	RetryCount    int              `json:"retry_count" db:"retry_count"`
	LastRetryDate *time.Time       `json:"last_retry_date,omitempty" db:"last_retry_date"`
	SubmittedAt   *time.Time       `json:"submitted_at,omitempty" db:"submitted_at"`
	Environment   Environment      `json:"environment" db:"environment"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// SubmissionFilter representa los filtros del listado de envíos
type SubmissionFilter struct {
	Status SubmissionStatus
	Limit  int
	Offset int
}

// SubmissionStats representa los contadores de envíos de un vendedor
type SubmissionStats struct {
	Total       int     `json:"total"`
	Draft       int     `json:"draft"`
	Pending     int     `json:"pending"`
	Submitted   int     `json:"submitted"`
	Accepted    int     `json:"accepted"`
	Rejected    int     `json:"rejected"`
	SuccessRate float64 `json:"success_rate"`
}

// SubmitResult es el resultado estructurado de un envío; nunca se lanza como error
type SubmitResult struct {
	Success           bool              `json:"success"`
	SubmissionID      *uuid.UUID        `json:"submission_id,omitempty"`
	Status            SubmissionStatus  `json:"status,omitempty"`
	ExternalReference string            `json:"external_reference,omitempty"`
	UniqueID          string            `json:"unique_id,omitempty"`
	IRN               string            `json:"irn,omitempty"`
	QRPayload         string            `json:"qr_payload,omitempty"`
	RetryCount        int               `json:"retry_count"`
	Validation        *ValidationResult `json:"validation,omitempty"`
	Error             *SubmissionError  `json:"error,omitempty"`
}

// StatusResult es el resultado de consultar el estado de un envío en FBR
type StatusResult struct {
	SubmissionID *uuid.UUID             `json:"submission_id,omitempty"`
	Reference    string                 `json:"reference"`
	RemoteStatus string                 `json:"remote_status"`
	Status       SubmissionStatus       `json:"status,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}
