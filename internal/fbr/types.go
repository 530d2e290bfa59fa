package fbr

import (
	"context"

	"github.com/hypernova-labs/fbr-service/internal/models"
)

const (
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeRefreshToken      = "refresh_token"
	DefaultScope               = "fbr_invoice_api"
	DefaultTokenTTLSeconds     = 3600
)

// Gateway es el acceso a la API de facturación electrónica de FBR.
// El ambiente selecciona la URL base; todas las llamadas con token usan Bearer.
type Gateway interface {
	RequestToken(ctx context.Context, env models.Environment, req TokenRequest) (*TokenResponse, error)
	ValidateInvoice(ctx context.Context, env models.Environment, token string, payload *InvoicePayload) (*ValidationResponse, error)
	SubmitInvoice(ctx context.Context, env models.Environment, token string, payload *InvoicePayload) (*SubmitResponse, error)
	InvoiceStatus(ctx context.Context, env models.Environment, token, reference string) (*StatusResponse, error)
	Health(ctx context.Context, env models.Environment, token string) error
}

// TokenRequest representa el intercambio de credenciales de /auth/token
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenResponse representa la respuesta de /auth/token
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type,omitempty"`
}

// Party representa al comprador o vendedor en el formato de FBR
type Party struct {
	NTN     string `json:"ntn,omitempty"`
	STRN    string `json:"strn,omitempty"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// InvoiceItem representa una línea en el formato de FBR
type InvoiceItem struct {
	Description string  `json:"description"`
	HSCode      string  `json:"hs_code"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalValue  float64 `json:"total_value"`
	SalesTax    float64 `json:"sales_tax"`
	ExtraTax    float64 `json:"extra_tax"`
	Discount    float64 `json:"discount"`
}

// InvoicePayload es la factura tal como la espera FBR
type InvoicePayload struct {
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   string        `json:"invoice_date"`
	Buyer         Party         `json:"buyer"`
	Seller        Party         `json:"seller"`
	Items         []InvoiceItem `json:"items"`
	TotalAmount   float64       `json:"total_amount"`
	SalesTax      float64       `json:"sales_tax"`
	ExtraTax      float64       `json:"extra_tax"`
	Discount      float64       `json:"discount"`
	FinalAmount   float64       `json:"final_amount"`
	Currency      string        `json:"currency"`
	Notes         string        `json:"notes,omitempty"`
	Environment   string        `json:"environment,omitempty"`
}

// ValidationResponse representa la respuesta de /invoice/validate
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// SubmitResponse representa la respuesta de /invoice/submit
type SubmitResponse struct {
	InvoiceID string `json:"invoice_id"`
	UniqueID  string `json:"unique_id,omitempty"`
	IRN       string `json:"irn,omitempty"`
	QRCode    string `json:"qr_code,omitempty"`
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
}

// StatusResponse representa la respuesta de /invoice/status/{reference}
type StatusResponse struct {
	Status  string                 `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}
