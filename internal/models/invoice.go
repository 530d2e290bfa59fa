package models

import (
	"time"

	"github.com/google/uuid"
)

// Buyer representa la contraparte de una factura (no es un tenant)
type Buyer struct {
	Name    string `json:"name"`
	NTN     string `json:"ntn,omitempty"`
	STRN    string `json:"strn,omitempty"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// InvoiceItem representa una línea de la factura local
type InvoiceItem struct {
	Description  string  `json:"description"`
	HSCode       string  `json:"hs_code,omitempty"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalValue   float64 `json:"total_value,omitempty"`
	SalesTax     float64 `json:"sales_tax,omitempty"`
	SalesTaxRate float64 `json:"sales_tax_rate,omitempty"`
	ExtraTax     float64 `json:"extra_tax,omitempty"`
	Discount     float64 `json:"discount,omitempty"`
}

// Invoice representa una factura del back office lista para enviarse a FBR.
// Los totales son los informados por quien llama y nunca se usan sin recalcular.
type Invoice struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	SellerID       uuid.UUID     `json:"seller_id" db:"seller_id"`
	InvoiceNumber  string        `json:"invoice_number" db:"invoice_number"`
	InvoiceDate    time.Time     `json:"invoice_date" db:"invoice_date"`
	Buyer          Buyer         `json:"buyer" db:"buyer"`
	Items          []InvoiceItem `json:"items" db:"items"`
	TotalAmount    float64       `json:"total_amount,omitempty" db:"total_amount"`
	SalesTax       float64       `json:"sales_tax,omitempty" db:"sales_tax"`
	ExtraTax       float64       `json:"extra_tax,omitempty" db:"extra_tax"`
	Discount       float64       `json:"discount,omitempty" db:"discount"`
	FinalAmount    float64       `json:"final_amount,omitempty" db:"final_amount"`
	Currency       string        `json:"currency,omitempty" db:"currency"`
	Notes          string        `json:"notes,omitempty" db:"notes"`
	FBRReference   *string       `json:"fbr_reference,omitempty" db:"fbr_reference"`
	FBRSubmittedAt *time.Time    `json:"fbr_submitted_at,omitempty" db:"fbr_submitted_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// ValidationResult representa el resultado de validar una factura
type ValidationResult struct {
	IsValid  bool          `json:"is_valid"`
	Errors   []ErrorDetail `json:"errors"`
	Warnings []ErrorDetail `json:"warnings"`
}

// AddError agrega un error y marca el resultado como inválido
func (v *ValidationResult) AddError(field, issue string) {
	v.Errors = append(v.Errors, ErrorDetail{Field: field, Issue: issue})
	v.IsValid = false
}

// AddWarning agrega una advertencia
func (v *ValidationResult) AddWarning(field, issue string) {
	v.Warnings = append(v.Warnings, ErrorDetail{Field: field, Issue: issue})
}

// Merge combina otro resultado en este
func (v *ValidationResult) Merge(other ValidationResult) {
	for _, e := range other.Errors {
		v.AddError(e.Field, e.Issue)
	}
	v.Warnings = append(v.Warnings, other.Warnings...)
}
