package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// qrData es el contenido codificado en el QR de una factura registrada
type qrData struct {
	UUID           string  `json:"uuid,omitempty"`
	IRN            string  `json:"irn,omitempty"`
	FBRReference   string  `json:"fbrReference"`
	InvoiceNumber  string  `json:"invoiceNumber"`
	SellerNTN      string  `json:"sellerNTN,omitempty"`
	BuyerNTN       string  `json:"buyerNTN,omitempty"`
	TotalAmount    float64 `json:"totalAmount"`
	SalesTax       float64 `json:"salesTax"`
	FinalAmount    float64 `json:"finalAmount"`
	SubmissionDate string  `json:"submissionDate"`
}

// BuildQRPayload arma el JSON del QR a partir de un envío aceptado por FBR
func BuildQRPayload(record *models.SubmissionRecord, sellerNTN string) (string, error) {
	data := qrData{
		FBRReference:  deref(record.FBRReference),
		UUID:          deref(record.FBRUniqueID),
		IRN:           deref(record.IRN),
		InvoiceNumber: record.InvoiceNumber,
		SellerNTN:     sellerNTN,
		BuyerNTN:      record.Buyer.NTN,
		TotalAmount:   record.Subtotal,
		SalesTax:      record.SalesTax,
		FinalAmount:   record.FinalAmount,
	}
	if record.SubmittedAt != nil {
		data.SubmissionDate = record.SubmittedAt.UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("error encoding QR payload: %w", err)
	}
	return string(payload), nil
}

// QRService genera la imagen QR de un envío y la publica en el almacenamiento
type QRService struct {
	storage ArtifactStorage
	logger  *logrus.Logger
}

// NewQRService crea una nueva instancia del servicio
func NewQRService(storage ArtifactStorage, logger *logrus.Logger) *QRService {
	return &QRService{
		storage: storage,
		logger:  logger,
	}
}

// Render genera el PNG del contenido
func (q *QRService) Render(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("error rendering QR code: %w", err)
	}
	return png, nil
}

// Publish genera y sube la imagen QR del envío; retorna su URL
func (q *QRService) Publish(ctx context.Context, record *models.SubmissionRecord) (string, error) {
	if record.QRPayload == nil || *record.QRPayload == "" {
		return "", fmt.Errorf("submission %s has no QR payload", record.ID)
	}

	png, err := q.Render(*record.QRPayload)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%s/%s.png", record.SellerID, record.ID)
	url, err := q.storage.UploadFile(ctx, fileName, "image/png", png)
	if err != nil {
		return "", fmt.Errorf("error uploading QR image: %w", err)
	}

	q.logger.WithFields(logrus.Fields{
		"submission_id": record.ID,
		"file":          fileName,
		"size":          len(png),
	}).Info("QR image published")

	return url, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
