package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthState representa el estado de la sesión con FBR
type AuthState string

const (
	AuthStateUnauthenticated AuthState = "UNAUTHENTICATED"
	AuthStateAuthenticating  AuthState = "AUTHENTICATING"
	AuthStateAuthenticated   AuthState = "AUTHENTICATED"
	AuthStateExpired         AuthState = "EXPIRED"
)

// Credentials representa las credenciales de un vendedor ante FBR
type Credentials struct {
	ClientID     string      `json:"client_id" binding:"required"`
	ClientSecret string      `json:"client_secret" binding:"required"`
	SellerNTN    string      `json:"seller_ntn" binding:"required"`
	SellerSTRN   string      `json:"seller_strn"`
	BusinessName string      `json:"business_name" binding:"required"`
	Environment  Environment `json:"environment"`
}

// SellerInfo es el resumen del vendedor sin secretos
type SellerInfo struct {
	BusinessName string      `json:"business_name"`
	SellerNTN    string      `json:"seller_ntn"`
	SellerSTRN   string      `json:"seller_strn"`
	Environment  Environment `json:"environment"`
}

// AuthSession representa el estado de credenciales cacheado de un vendedor.
// Los campos sensibles nunca se serializan.
type AuthSession struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	SellerID         uuid.UUID   `json:"seller_id" db:"seller_id"`
	Environment      Environment `json:"environment" db:"environment"`
	ClientID         string      `json:"-" db:"client_id"`
	ClientSecret     string      `json:"-" db:"client_secret"`
	AccessToken      string      `json:"-" db:"access_token"`
	RefreshToken     string      `json:"-" db:"refresh_token"`
	TokenExpiry      *time.Time  `json:"token_expiry,omitempty" db:"token_expiry"`
	IsAuthenticated  bool        `json:"is_authenticated" db:"is_authenticated"`
	BusinessName     string      `json:"business_name" db:"business_name"`
	SellerNTN        string      `json:"seller_ntn" db:"seller_ntn"`
	SellerSTRN       string      `json:"seller_strn" db:"seller_strn"`
	LastLoginAttempt *time.Time  `json:"last_login_attempt,omitempty" db:"last_login_attempt"`
	LastTokenRefresh *time.Time  `json:"last_token_refresh,omitempty" db:"last_token_refresh"`
	LastError        *string     `json:"last_error,omitempty" db:"last_error"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// Summary retorna la información redactada del vendedor
func (s *AuthSession) Summary() SellerInfo {
	return SellerInfo{
		BusinessName: s.BusinessName,
		SellerNTN:    s.SellerNTN,
		SellerSTRN:   s.SellerSTRN,
		Environment:  s.Environment,
	}
}

// AuthStatus es la respuesta pública del estado de autenticación
type AuthStatus struct {
	State           AuthState   `json:"state"`
	IsAuthenticated bool        `json:"is_authenticated"`
	TokenExpiry     *time.Time  `json:"token_expiry,omitempty"`
	LastError       *string     `json:"last_error,omitempty"`
	Seller          *SellerInfo `json:"seller,omitempty"`
}

// ConnectionTest es el resultado de probar la conexión con FBR
type ConnectionTest struct {
	Connected   bool        `json:"connected"`
	Environment Environment `json:"environment"`
	LatencyMS   int64       `json:"latency_ms"`
	Message     string      `json:"message,omitempty"`
}
