package email

import (
	"context"
	"fmt"
	"html"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// SellerLookup obtiene los datos de contacto del vendedor
type SellerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

// ResendService envía los avisos de envío a FBR usando Resend API
type ResendService struct {
	client    *resend.Client
	fromEmail string
	sellers   SellerLookup
	logger    *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(apiKey string, fromEmail string, sellers SellerLookup, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		sellers:   sellers,
		logger:    logger,
	}
}

// SendSubmissionNotice avisa al vendedor el resultado de un envío. Los
// vendedores sin email se omiten.
func (s *ResendService) SendSubmissionNotice(ctx context.Context, sellerID uuid.UUID, record *models.SubmissionRecord) error {
	seller, err := s.sellers.GetByID(ctx, sellerID)
	if err != nil {
		return fmt.Errorf("error loading seller for notice: %w", err)
	}
	if seller.Email == nil || *seller.Email == "" {
		s.logger.WithField("seller_id", sellerID).Debug("Seller has no email, skipping submission notice")
		return nil
	}

	subject, body := renderNotice(seller, record)
	request := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{*seller.Email},
		Subject: subject,
		Html:    body,
	}

	result, err := s.client.Emails.SendWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id":      result.Id,
		"seller_id":     sellerID,
		"submission_id": record.ID,
		"status":        record.Status,
	}).Info("Submission notice sent via Resend")
	return nil
}

func renderNotice(seller *models.Seller, record *models.SubmissionRecord) (string, string) {
	invoiceNumber := html.EscapeString(record.InvoiceNumber)

	var subject, summary string
	switch record.Status {
	case models.SubmissionStatusSubmitted, models.SubmissionStatusAccepted:
		subject = fmt.Sprintf("Invoice %s registered with FBR", record.InvoiceNumber)
		summary = fmt.Sprintf("<p>Invoice <strong>%s</strong> was registered with FBR under reference <strong>%s</strong>.</p>",
			invoiceNumber, html.EscapeString(deref(record.FBRReference)))
		if record.IRN != nil {
			summary += fmt.Sprintf("<p>IRN: %s</p>", html.EscapeString(*record.IRN))
		}
		if record.QRImageURL != nil {
			summary += fmt.Sprintf(`<p><img src="%s" alt="FBR QR code" width="160" height="160"></p>`, html.EscapeString(*record.QRImageURL))
		}
	default:
		subject = fmt.Sprintf("Invoice %s was not registered with FBR", record.InvoiceNumber)
		summary = fmt.Sprintf("<p>Invoice <strong>%s</strong> could not be registered.</p><p>%s</p>",
			invoiceNumber, html.EscapeString(deref(record.LastError)))
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>FBR submission</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>%s</h2>
  %s
  <p>Total: %s %.2f · Environment: %s · Retries: %d</p>
  <p style="font-size: 12px; color: #666;">This is an automatic message from the FBR e-invoicing service.</p>
</body>
</html>`,
		html.EscapeString(seller.BusinessName),
		summary,
		html.EscapeString(record.Currency), record.FinalAmount, record.Environment, record.RetryCount,
	)
	return subject, body
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
