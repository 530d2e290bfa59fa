package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
)

// SubmissionStore persiste los registros de envío a FBR
type SubmissionStore interface {
	Create(ctx context.Context, record *models.SubmissionRecord) error
	Update(ctx context.Context, record *models.SubmissionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SubmissionRecord, error)
	GetByReference(ctx context.Context, sellerID uuid.UUID, reference string) (*models.SubmissionRecord, error)
	List(ctx context.Context, sellerID uuid.UUID, filter models.SubmissionFilter) ([]models.SubmissionRecord, error)
	ListByStatus(ctx context.Context, status models.SubmissionStatus) ([]models.SubmissionRecord, error)
	Stats(ctx context.Context, sellerID uuid.UUID) (*models.SubmissionStats, error)
}

// SessionStore persiste las sesiones de autenticación con FBR
type SessionStore interface {
	Get(ctx context.Context, sellerID uuid.UUID, env models.Environment) (*models.AuthSession, error)
	Save(ctx context.Context, session *models.AuthSession) error
}

// InvoiceStore da acceso a las facturas locales del back office
type InvoiceStore interface {
	GetByID(ctx context.Context, sellerID, id uuid.UUID) (*models.Invoice, error)
	ListAvailableForSubmission(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error)
	// MarkSubmitted solo reemplaza una referencia previa del mismo envío
	MarkSubmitted(ctx context.Context, id uuid.UUID, previousReference, reference string, submittedAt time.Time) error
}

// Notifier avisa al vendedor el resultado de un envío
type Notifier interface {
	SendSubmissionNotice(ctx context.Context, sellerID uuid.UUID, record *models.SubmissionRecord) error
}

// ArtifactStorage guarda archivos derivados del envío (imagen QR)
type ArtifactStorage interface {
	UploadFile(ctx context.Context, fileName string, contentType string, data []byte) (string, error)
}
