package models

import (
	"time"

	"github.com/google/uuid"
)

// Environment representa el ambiente de FBR (sandbox o producción)
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// Valid indica si el ambiente es reconocido
func (e Environment) Valid() bool {
	return e == EnvironmentSandbox || e == EnvironmentProduction
}

// ParseEnvironment normaliza un ambiente; vacío equivale a sandbox
func ParseEnvironment(value string) (Environment, bool) {
	if value == "" {
		return EnvironmentSandbox, true
	}
	env := Environment(value)
	return env, env.Valid()
}

// Seller representa un negocio (tenant) que envía facturas a FBR
type Seller struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	BusinessName string      `json:"business_name" db:"business_name"`
	NTN          string      `json:"ntn" db:"ntn"`
	STRN         string      `json:"strn" db:"strn"`
	Email        *string     `json:"email,omitempty" db:"email"`
	Phone        *string     `json:"phone,omitempty" db:"phone"`
	Address      *string     `json:"address,omitempty" db:"address"`
	Environment  Environment `json:"environment" db:"environment"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// APIKey representa una clave de API de un vendedor
type APIKey struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	SellerID        uuid.UUID  `json:"seller_id" db:"seller_id"`
	Name            string     `json:"name" db:"name"`
	KeyHash         string     `json:"-" db:"key_hash"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	RateLimitPerMin int        `json:"rate_limit_per_min" db:"rate_limit_per_min"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}
