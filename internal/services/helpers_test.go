package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/fbr"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type gatewayMock struct {
	mock.Mock
}

func (m *gatewayMock) RequestToken(ctx context.Context, env models.Environment, req fbr.TokenRequest) (*fbr.TokenResponse, error) {
	args := m.Called(ctx, env, req)
	resp, _ := args.Get(0).(*fbr.TokenResponse)
	return resp, args.Error(1)
}

func (m *gatewayMock) ValidateInvoice(ctx context.Context, env models.Environment, token string, payload *fbr.InvoicePayload) (*fbr.ValidationResponse, error) {
	args := m.Called(ctx, env, token, payload)
	resp, _ := args.Get(0).(*fbr.ValidationResponse)
	return resp, args.Error(1)
}

func (m *gatewayMock) SubmitInvoice(ctx context.Context, env models.Environment, token string, payload *fbr.InvoicePayload) (*fbr.SubmitResponse, error) {
	args := m.Called(ctx, env, token, payload)
	resp, _ := args.Get(0).(*fbr.SubmitResponse)
	return resp, args.Error(1)
}

func (m *gatewayMock) InvoiceStatus(ctx context.Context, env models.Environment, token, reference string) (*fbr.StatusResponse, error) {
	args := m.Called(ctx, env, token, reference)
	resp, _ := args.Get(0).(*fbr.StatusResponse)
	return resp, args.Error(1)
}

func (m *gatewayMock) Health(ctx context.Context, env models.Environment, token string) error {
	args := m.Called(ctx, env, token)
	return args.Error(0)
}

// memorySubmissionStore guarda copias para que los cambios del servicio
// solo sean visibles después de Update
type memorySubmissionStore struct {
	mu       sync.Mutex
	records  map[uuid.UUID]models.SubmissionRecord
	statuses map[uuid.UUID][]models.SubmissionStatus
}

func newMemorySubmissionStore() *memorySubmissionStore {
	return &memorySubmissionStore{
		records:  make(map[uuid.UUID]models.SubmissionRecord),
		statuses: make(map[uuid.UUID][]models.SubmissionStatus),
	}
}

func (s *memorySubmissionStore) Create(_ context.Context, record *models.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return fmt.Errorf("submission %s already exists", record.ID)
	}
	s.records[record.ID] = *record
	s.statuses[record.ID] = append(s.statuses[record.ID], record.Status)
	return nil
}

func (s *memorySubmissionStore) Update(_ context.Context, record *models.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, exists := s.records[record.ID]
	if !exists {
		return fmt.Errorf("submission %s: %w", record.ID, models.ErrNotFound)
	}
	if prev.Status != record.Status {
		s.statuses[record.ID] = append(s.statuses[record.ID], record.Status)
	}
	s.records[record.ID] = *record
	return nil
}

func (s *memorySubmissionStore) GetByID(_ context.Context, id uuid.UUID) (*models.SubmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, models.ErrNotFound)
	}
	return &record, nil
}

func (s *memorySubmissionStore) GetByReference(_ context.Context, sellerID uuid.UUID, reference string) (*models.SubmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.SellerID == sellerID && record.FBRReference != nil && *record.FBRReference == reference {
			r := record
			return &r, nil
		}
	}
	return nil, fmt.Errorf("submission %s: %w", reference, models.ErrNotFound)
}

func (s *memorySubmissionStore) List(_ context.Context, sellerID uuid.UUID, filter models.SubmissionFilter) ([]models.SubmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.SubmissionRecord{}
	for _, record := range s.records {
		if record.SellerID != sellerID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *memorySubmissionStore) ListByStatus(_ context.Context, status models.SubmissionStatus) ([]models.SubmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.SubmissionRecord{}
	for _, record := range s.records {
		if record.Status == status {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *memorySubmissionStore) Stats(_ context.Context, sellerID uuid.UUID) (*models.SubmissionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.SubmissionStats{}
	for _, record := range s.records {
		if record.SellerID != sellerID {
			continue
		}
		stats.Total++
		switch record.Status {
		case models.SubmissionStatusAccepted:
			stats.Accepted++
		case models.SubmissionStatusRejected:
			stats.Rejected++
		case models.SubmissionStatusSubmitted:
			stats.Submitted++
		}
	}
	return stats, nil
}

func (s *memorySubmissionStore) get(id uuid.UUID) models.SubmissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

func (s *memorySubmissionStore) history(id uuid.UUID) []models.SubmissionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SubmissionStatus(nil), s.statuses[id]...)
}

func (s *memorySubmissionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]models.AuthSession
	saves    int
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[sessionKey]models.AuthSession)}
}

func (s *memorySessionStore) Get(_ context.Context, sellerID uuid.UUID, env models.Environment) (*models.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionKey{sellerID: sellerID, env: env}]
	if !ok {
		return nil, fmt.Errorf("session: %w", models.ErrNotFound)
	}
	return &session, nil
}

func (s *memorySessionStore) Save(_ context.Context, session *models.AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey{sellerID: session.SellerID, env: session.Environment}] = *session
	s.saves++
	return nil
}

type memoryInvoiceStore struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]models.Invoice
}

func newMemoryInvoiceStore(invoices ...models.Invoice) *memoryInvoiceStore {
	s := &memoryInvoiceStore{invoices: make(map[uuid.UUID]models.Invoice)}
	for _, inv := range invoices {
		s.invoices[inv.ID] = inv
	}
	return s
}

func (s *memoryInvoiceStore) GetByID(_ context.Context, sellerID, id uuid.UUID) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok || inv.SellerID != sellerID {
		return nil, fmt.Errorf("invoice %s: %w", id, models.ErrNotFound)
	}
	return &inv, nil
}

func (s *memoryInvoiceStore) ListAvailableForSubmission(_ context.Context, sellerID uuid.UUID) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Invoice{}
	for _, inv := range s.invoices {
		if inv.SellerID == sellerID && inv.FBRReference == nil {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *memoryInvoiceStore) MarkSubmitted(_ context.Context, id uuid.UUID, previousReference, reference string, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, models.ErrNotFound)
	}
	if inv.FBRReference != nil && *inv.FBRReference != previousReference {
		return fmt.Errorf("invoice %s already submitted: %w", id, models.ErrConflict)
	}
	inv.FBRReference = &reference
	inv.FBRSubmittedAt = &submittedAt
	s.invoices[id] = inv
	return nil
}

type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *memoryStorage) UploadFile(_ context.Context, fileName string, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[fileName] = data
	return "https://storage.test/" + fileName, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []models.SubmissionStatus
}

func (n *recordingNotifier) SendSubmissionNotice(_ context.Context, _ uuid.UUID, record *models.SubmissionRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, record.Status)
	return nil
}

var testSellerID = uuid.MustParse("7b0c7f52-2f57-4a53-9f6b-3c55b8c8a001")

func authenticatedSession(now time.Time) *models.AuthSession {
	expiry := now.Add(time.Hour)
	return &models.AuthSession{
		ID:              uuid.New(),
		SellerID:        testSellerID,
		Environment:     models.EnvironmentSandbox,
		ClientID:        "client",
		ClientSecret:    "secret",
		AccessToken:     "tok",
		RefreshToken:    "refresh",
		TokenExpiry:     &expiry,
		IsAuthenticated: true,
		BusinessName:    "Hypernova Consulting",
		SellerNTN:       "1234567-8",
		SellerSTRN:      "17-00-1234-567-89",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		ID:            uuid.New(),
		SellerID:      testSellerID,
		InvoiceNumber: "INV-1",
		InvoiceDate:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Buyer:         models.Buyer{Name: "Acme", Address: "X"},
		Items: []models.InvoiceItem{
			{Description: "Tax Filing", Quantity: 1, UnitPrice: 5000},
		},
	}
}
