package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvoiceDateLayout es el formato de fecha aceptado en las solicitudes
const InvoiceDateLayout = "2006-01-02"

// InvoiceRequest representa la factura que envía el back office.
// La fecha llega como YYYY-MM-DD; vacía equivale a hoy.
type InvoiceRequest struct {
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   string        `json:"invoice_date"`
	Buyer         Buyer         `json:"buyer"`
	Items         []InvoiceItem `json:"items"`
	TotalAmount   float64       `json:"total_amount"`
	SalesTax      float64       `json:"sales_tax"`
	ExtraTax      float64       `json:"extra_tax"`
	Discount      float64       `json:"discount"`
	FinalAmount   float64       `json:"final_amount"`
	Currency      string        `json:"currency"`
	Notes         string        `json:"notes"`
}

// ToInvoice convierte la solicitud en la factura del vendedor
func (r *InvoiceRequest) ToInvoice(sellerID uuid.UUID) (*Invoice, error) {
	invoice := &Invoice{
		SellerID:      sellerID,
		InvoiceNumber: r.InvoiceNumber,
		Buyer:         r.Buyer,
		Items:         r.Items,
		TotalAmount:   r.TotalAmount,
		SalesTax:      r.SalesTax,
		ExtraTax:      r.ExtraTax,
		Discount:      r.Discount,
		FinalAmount:   r.FinalAmount,
		Currency:      r.Currency,
		Notes:         r.Notes,
	}
	if date := strings.TrimSpace(r.InvoiceDate); date != "" {
		parsed, err := time.Parse(InvoiceDateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("%w: invoice_date must be YYYY-MM-DD", ErrUsage)
		}
		invoice.InvoiceDate = parsed
	}
	return invoice, nil
}

// CreateSellerRequest representa el registro de un vendedor
type CreateSellerRequest struct {
	BusinessName string      `json:"business_name" binding:"required"`
	NTN          string      `json:"ntn" binding:"required"`
	STRN         string      `json:"strn"`
	Email        *string     `json:"email,omitempty" binding:"omitempty,email"`
	Phone        *string     `json:"phone,omitempty"`
	Address      *string     `json:"address,omitempty"`
	Environment  Environment `json:"environment"`
}

// CreateSellerResponse incluye la API key inicial; se muestra una sola vez
type CreateSellerResponse struct {
	Seller *Seller `json:"seller"`
	APIKey string  `json:"api_key"`
}

// CreateAPIKeyRequest representa la creación de una API key adicional
type CreateAPIKeyRequest struct {
	Name            string `json:"name" binding:"required"`
	RateLimitPerMin int    `json:"rate_limit_per_min"`
}

// APIKeyResponse retorna la clave en claro junto con sus metadatos
type APIKeyResponse struct {
	APIKey *APIKey `json:"api_key"`
	Key    string  `json:"key"`
}

// SubmissionListResponse es la página de envíos del vendedor
type SubmissionListResponse struct {
	Items []SubmissionRecord `json:"items"`
	Count int                `json:"count"`
}
