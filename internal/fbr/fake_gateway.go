package fbr

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
)

// FakeGateway simula FBR en memoria para desarrollo local. Las referencias
// tienen la forma FBR-MOCK-n y cada consulta de estado avanza
// submitted → processing → accepted.
type FakeGateway struct {
	mu          sync.Mutex
	sequence    int
	tokens      map[string]bool
	statusCalls map[string]int
}

// NewFakeGateway crea un gateway simulado
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		tokens:      make(map[string]bool),
		statusCalls: make(map[string]int),
	}
}

var fakeProgression = []string{"submitted", "processing", "accepted"}

// RequestToken emite un token para cualquier credencial no vacía
func (f *FakeGateway) RequestToken(_ context.Context, _ models.Environment, req TokenRequest) (*TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch req.GrantType {
	case GrantTypeRefreshToken:
		if req.RefreshToken == "" {
			return nil, &HTTPError{StatusCode: http.StatusBadRequest, Method: http.MethodPost, Path: "/auth/token", Body: `{"error":"refresh_token required"}`}
		}
	default:
		if req.ClientID == "" || req.ClientSecret == "" {
			return nil, &HTTPError{StatusCode: http.StatusUnauthorized, Method: http.MethodPost, Path: "/auth/token", Body: `{"error":"invalid client credentials"}`}
		}
	}

	token := "fake-" + uuid.NewString()
	f.tokens[token] = true
	return &TokenResponse{
		AccessToken:  token,
		RefreshToken: "fake-refresh-" + uuid.NewString(),
		ExpiresIn:    DefaultTokenTTLSeconds,
		TokenType:    "Bearer",
	}, nil
}

// ValidateInvoice acepta toda factura con al menos una línea
func (f *FakeGateway) ValidateInvoice(_ context.Context, _ models.Environment, token string, payload *InvoicePayload) (*ValidationResponse, error) {
	if err := f.checkToken(token, "/invoice/validate"); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return &ValidationResponse{Valid: false, Errors: []string{"items are required"}}, nil
	}
	return &ValidationResponse{Valid: true, Errors: []string{}, Warnings: []string{}}, nil
}

// SubmitInvoice registra la factura y retorna una referencia simulada
func (f *FakeGateway) SubmitInvoice(_ context.Context, _ models.Environment, token string, payload *InvoicePayload) (*SubmitResponse, error) {
	if err := f.checkToken(token, "/invoice/submit"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.sequence++
	reference := fmt.Sprintf("FBR-MOCK-%d", f.sequence)
	f.statusCalls[reference] = 0
	return &SubmitResponse{
		InvoiceID: reference,
		UniqueID:  uuid.NewString(),
		IRN:       fmt.Sprintf("IRN-%s-%d", payload.InvoiceNumber, f.sequence),
		Status:    "submitted",
	}, nil
}

// InvoiceStatus avanza el estado simulado en cada consulta
func (f *FakeGateway) InvoiceStatus(_ context.Context, _ models.Environment, token, reference string) (*StatusResponse, error) {
	if err := f.checkToken(token, "/invoice/status"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	calls, ok := f.statusCalls[reference]
	if !ok {
		return nil, &HTTPError{StatusCode: http.StatusNotFound, Method: http.MethodGet, Path: "/invoice/status/" + reference, Body: `{"message":"invoice not found"}`}
	}
	step := calls
	if step >= len(fakeProgression) {
		step = len(fakeProgression) - 1
	}
	f.statusCalls[reference] = calls + 1

	return &StatusResponse{
		Status:  fakeProgression[step],
		Details: map[string]interface{}{"reference": reference, "mock": true},
	}, nil
}

// Health siempre responde
func (f *FakeGateway) Health(context.Context, models.Environment, string) error {
	return nil
}

func (f *FakeGateway) checkToken(token, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.tokens[token] {
		return &HTTPError{StatusCode: http.StatusUnauthorized, Path: path, Body: `{"message":"invalid or expired token"}`}
	}
	return nil
}
