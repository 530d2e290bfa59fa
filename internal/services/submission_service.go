package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/fbr"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
)

// SubmissionOption configura el SubmissionService
type SubmissionOption func(*SubmissionService)

// WithInvoiceStore habilita el acceso a las facturas locales
func WithInvoiceStore(store InvoiceStore) SubmissionOption {
	return func(s *SubmissionService) {
		s.invoices = store
	}
}

// WithQRService habilita la publicación de la imagen QR
func WithQRService(qr *QRService) SubmissionOption {
	return func(s *SubmissionService) {
		s.qr = qr
	}
}

// WithNotifier habilita los avisos por email
func WithNotifier(notifier Notifier) SubmissionOption {
	return func(s *SubmissionService) {
		s.notifier = notifier
	}
}

// WithRemoteValidation activa la validación en FBR antes de enviar
func WithRemoteValidation(enabled bool) SubmissionOption {
	return func(s *SubmissionService) {
		s.remoteValidation = enabled
	}
}

// WithSubmissionClock reemplaza la fuente de tiempo
func WithSubmissionClock(now func() time.Time) SubmissionOption {
	return func(s *SubmissionService) {
		s.now = now
	}
}

// SubmissionService orquesta validar, enviar y registrar el resultado en FBR.
// Los fallos del dominio se devuelven en SubmitResult, nunca como error.
type SubmissionService struct {
	formatter        *InvoiceFormatter
	gateway          fbr.Gateway
	submissions      SubmissionStore
	invoices         InvoiceStore
	qr               *QRService
	notifier         Notifier
	remoteValidation bool
	now              func() time.Time
	logger           *logrus.Logger
}

// NewSubmissionService crea una nueva instancia del servicio
func NewSubmissionService(formatter *InvoiceFormatter, gateway fbr.Gateway, submissions SubmissionStore, logger *logrus.Logger, opts ...SubmissionOption) *SubmissionService {
	s := &SubmissionService{
		formatter:   formatter,
		gateway:     gateway,
		submissions: submissions,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateInvoice valida localmente y, si hay sesión y la validación remota
// está activa, también contra FBR.
func (s *SubmissionService) ValidateInvoice(ctx context.Context, tm *TokenManager, invoice *models.Invoice) models.ValidationResult {
	result := s.formatter.Validate(invoice)
	if !result.IsValid || !s.remoteValidation || tm == nil {
		return result
	}

	token, ok := tm.GetToken()
	if !ok {
		result.AddWarning("fbr", "remote validation skipped: not authenticated with FBR")
		return result
	}

	payload := s.payloadFor(tm, invoice)
	resp, err := s.gateway.ValidateInvoice(ctx, tm.Environment(), token, payload)
	if err != nil {
		result.AddWarning("fbr", "remote validation unavailable: "+fbr.RemoteMessage(err))
		return result
	}
	result.Merge(remoteValidationResult(resp))
	return result
}

// Submit registra la factura en FBR con la sesión del vendedor
func (s *SubmissionService) Submit(ctx context.Context, tm *TokenManager, invoice *models.Invoice) *models.SubmitResult {
	token, err := tm.EnsureToken(ctx)
	if err != nil {
		return failedResult(nil, asSubmissionError(err))
	}

	now := s.now()
	record := &models.SubmissionRecord{
		ID:            uuid.New(),
		SellerID:      tm.SellerID(),
		InvoiceID:     invoice.ID,
		InvoiceNumber: strings.TrimSpace(invoice.InvoiceNumber),
		InvoiceDate:   invoice.InvoiceDate,
		Buyer:         invoice.Buyer,
		Notes:         invoice.Notes,
		Status:        models.SubmissionStatusDraft,
		Environment:   tm.Environment(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.submissions.Create(ctx, record); err != nil {
		s.logger.WithError(err).WithField("invoice_number", record.InvoiceNumber).Error("Error creating submission record")
		return failedResult(nil, models.NewSubmissionError(models.ErrorKindInternal, "could not create submission record"))
	}

	return s.run(ctx, tm, token, record, invoice)
}

// SubmitInvoiceByID envía una factura local que aún no tiene referencia de FBR
func (s *SubmissionService) SubmitInvoiceByID(ctx context.Context, tm *TokenManager, invoiceID uuid.UUID) (*models.SubmitResult, error) {
	if s.invoices == nil {
		return nil, fmt.Errorf("%w: local invoices are not available", models.ErrUsage)
	}
	invoice, err := s.invoices.GetByID(ctx, tm.SellerID(), invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.FBRReference != nil {
		return nil, fmt.Errorf("%w: invoice %s already submitted to FBR as %s", models.ErrConflict, invoice.InvoiceNumber, *invoice.FBRReference)
	}
	return s.Submit(ctx, tm, invoice), nil
}

// Retry vuelve a ejecutar el envío completo, validación incluida, sobre un
// registro rechazado. Incrementa el contador y fija la fecha del reintento
// sin importar el resultado.
func (s *SubmissionService) Retry(ctx context.Context, tm *TokenManager, submissionID uuid.UUID) (*models.SubmitResult, error) {
	record, err := s.ownedRecord(ctx, tm, submissionID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.SubmissionStatusRejected {
		return nil, fmt.Errorf("%w: only rejected submissions can be retried (status %s)", models.ErrUsage, record.Status)
	}

	now := s.now()
	record.RetryCount++
	record.LastRetryDate = &now
	record.UpdatedAt = now
	if err := s.submissions.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("error recording retry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"submission_id": record.ID,
		"retry_count":   record.RetryCount,
	}).Info("Retrying FBR submission")

	token, err := tm.EnsureToken(ctx)
	if err != nil {
		subErr := asSubmissionError(err)
		s.recordFailure(ctx, record, subErr)
		return failedResult(record, subErr), nil
	}

	return s.run(ctx, tm, token, record, s.invoiceForRetry(ctx, record)), nil
}

// CheckStatus consulta en FBR el estado de un envío. Requiere referencia
// externa; consultar un envío sin ella es un error de uso.
func (s *SubmissionService) CheckStatus(ctx context.Context, tm *TokenManager, submissionID uuid.UUID) (*models.StatusResult, error) {
	record, err := s.ownedRecord(ctx, tm, submissionID)
	if err != nil {
		return nil, err
	}
	if record.FBRReference == nil || *record.FBRReference == "" {
		return nil, fmt.Errorf("%w: submission %s has no FBR reference", models.ErrUsage, submissionID)
	}

	token, err := tm.EnsureToken(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.gateway.InvoiceStatus(ctx, record.Environment, token, *record.FBRReference)
	if err != nil {
		return nil, classifyGatewayError(err)
	}

	s.applyRemoteStatus(ctx, record, resp)

	return &models.StatusResult{
		SubmissionID: &record.ID,
		Reference:    *record.FBRReference,
		RemoteStatus: resp.Status,
		Status:       record.Status,
		Details:      resp.Details,
	}, nil
}

// CheckStatusByReference consulta por referencia externa; si existe el
// registro local también lo actualiza.
func (s *SubmissionService) CheckStatusByReference(ctx context.Context, tm *TokenManager, reference string) (*models.StatusResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: FBR reference is required", models.ErrUsage)
	}

	record, err := s.submissions.GetByReference(ctx, tm.SellerID(), reference)
	switch {
	case err == nil:
		return s.CheckStatus(ctx, tm, record.ID)
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("error looking up submission: %w", err)
	}

	token, err := tm.EnsureToken(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.gateway.InvoiceStatus(ctx, tm.Environment(), token, reference)
	if err != nil {
		return nil, classifyGatewayError(err)
	}
	return &models.StatusResult{
		Reference:    reference,
		RemoteStatus: resp.Status,
		Details:      resp.Details,
	}, nil
}

// Reconcile revisa los envíos que quedaron en SUBMITTING tras un reinicio.
// Con referencia se consulta el estado; sin ella el resultado es desconocido
// y el registro se marca rechazado para revisión manual. Nunca reenvía.
func (s *SubmissionService) Reconcile(ctx context.Context, auth *AuthService) (int, error) {
	records, err := s.submissions.ListByStatus(ctx, models.SubmissionStatusSubmitting)
	if err != nil {
		return 0, fmt.Errorf("error listing in-flight submissions: %w", err)
	}

	reconciled := 0
	for i := range records {
		record := &records[i]
		fields := logrus.Fields{"submission_id": record.ID, "seller_id": record.SellerID}

		if record.FBRReference == nil || *record.FBRReference == "" {
			s.recordFailure(ctx, record, models.NewSubmissionError(models.ErrorKindTransient,
				"submission outcome unknown after interruption; verify with FBR before retrying"))
			s.logger.WithFields(fields).Warn("In-flight submission without reference marked for review")
			reconciled++
			continue
		}

		tm, err := auth.Manager(ctx, record.SellerID, record.Environment)
		if err != nil {
			s.logger.WithFields(fields).WithError(err).Warn("Could not load FBR session for reconciliation")
			continue
		}
		if _, err := s.CheckStatus(ctx, tm, record.ID); err != nil {
			s.logger.WithFields(fields).WithError(err).Warn("Could not reconcile submission status")
			continue
		}
		reconciled++
	}

	return reconciled, nil
}

// GetSubmission obtiene un envío del vendedor
func (s *SubmissionService) GetSubmission(ctx context.Context, sellerID, id uuid.UUID) (*models.SubmissionRecord, error) {
	record, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.SellerID != sellerID {
		return nil, fmt.Errorf("submission %s: %w", id, models.ErrNotFound)
	}
	return record, nil
}

// ListSubmissions lista los envíos del vendedor
func (s *SubmissionService) ListSubmissions(ctx context.Context, sellerID uuid.UUID, filter models.SubmissionFilter) ([]models.SubmissionRecord, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.submissions.List(ctx, sellerID, filter)
}

// Stats retorna los contadores de envíos del vendedor
func (s *SubmissionService) Stats(ctx context.Context, sellerID uuid.UUID) (*models.SubmissionStats, error) {
	return s.submissions.Stats(ctx, sellerID)
}

// AvailableInvoices lista las facturas locales sin referencia de FBR
func (s *SubmissionService) AvailableInvoices(ctx context.Context, sellerID uuid.UUID) ([]models.Invoice, error) {
	if s.invoices == nil {
		return []models.Invoice{}, nil
	}
	return s.invoices.ListAvailableForSubmission(ctx, sellerID)
}

// run ejecuta VALIDATING → SUBMITTING → SUBMITTED | REJECTED sobre el registro
func (s *SubmissionService) run(ctx context.Context, tm *TokenManager, token string, record *models.SubmissionRecord, invoice *models.Invoice) *models.SubmitResult {
	// El registro debe terminar en un estado consistente aunque el cliente abandone
	ctx = context.WithoutCancel(ctx)
	fields := logrus.Fields{
		"submission_id":  record.ID,
		"seller_id":      record.SellerID,
		"invoice_number": record.InvoiceNumber,
		"environment":    record.Environment,
	}

	payload := s.payloadFor(tm, invoice)
	snapshotPayload(record, invoice, payload)

	if err := s.transition(ctx, record, models.SubmissionStatusValidating); err != nil {
		s.logger.WithFields(fields).WithError(err).Error("Error moving submission to VALIDATING")
		return failedResult(record, models.NewSubmissionError(models.ErrorKindInternal, "could not update submission record"))
	}

	validation := s.formatter.Validate(invoice)
	if !validation.IsValid {
		subErr := models.NewSubmissionError(models.ErrorKindValidation, "invoice failed validation", validation.Errors...)
		s.recordFailure(ctx, record, subErr)
		s.logger.WithFields(fields).WithField("errors", len(validation.Errors)).Info("Submission rejected by local validation")
		result := failedResult(record, subErr)
		result.Validation = &validation
		return result
	}

	if s.remoteValidation {
		resp, err := s.gateway.ValidateInvoice(ctx, record.Environment, token, payload)
		if err != nil {
			subErr := classifyGatewayError(err)
			s.recordFailure(ctx, record, subErr)
			s.notify(ctx, record)
			return failedResult(record, subErr)
		}
		if !resp.Valid {
			remote := remoteValidationResult(resp)
			subErr := models.NewSubmissionError(models.ErrorKindRemoteRejection, strings.Join(resp.Errors, "; "), remote.Errors...)
			s.recordFailure(ctx, record, subErr)
			s.notify(ctx, record)
			result := failedResult(record, subErr)
			validation.Merge(remote)
			result.Validation = &validation
			return result
		}
	}

	if err := s.transition(ctx, record, models.SubmissionStatusSubmitting); err != nil {
		s.logger.WithFields(fields).WithError(err).Error("Error moving submission to SUBMITTING")
		return failedResult(record, models.NewSubmissionError(models.ErrorKindInternal, "could not update submission record"))
	}

	resp, err := s.gateway.SubmitInvoice(ctx, record.Environment, token, payload)
	if err != nil {
		subErr := classifyGatewayError(err)
		s.recordFailure(ctx, record, subErr)
		s.logger.WithFields(fields).WithField("error_kind", subErr.Kind).Warn("FBR submission failed")
		s.notify(ctx, record)
		return failedResult(record, subErr)
	}

	s.recordSuccess(ctx, tm, record, resp)
	s.logger.WithFields(fields).WithField("fbr_reference", resp.InvoiceID).Info("Invoice submitted to FBR")

	result := &models.SubmitResult{
		Success:           true,
		SubmissionID:      &record.ID,
		Status:            record.Status,
		ExternalReference: resp.InvoiceID,
		UniqueID:          resp.UniqueID,
		IRN:               resp.IRN,
		QRPayload:         deref(record.QRPayload),
		RetryCount:        record.RetryCount,
		Validation:        &validation,
	}
	return result
}

func (s *SubmissionService) recordSuccess(ctx context.Context, tm *TokenManager, record *models.SubmissionRecord, resp *fbr.SubmitResponse) {
	now := s.now()
	previousReference := ""
	if record.FBRReference != nil {
		previousReference = *record.FBRReference
	}
	record.FBRReference = stringPtr(resp.InvoiceID)
	record.FBRUniqueID = optionalString(resp.UniqueID)
	record.IRN = optionalString(resp.IRN)
	record.SubmittedAt = &now
	record.LastError = nil
	record.ErrorKind = nil

	if resp.QRCode != "" {
		record.QRPayload = stringPtr(resp.QRCode)
	} else if qr, err := BuildQRPayload(record, tm.SellerInfo().SellerNTN); err == nil {
		record.QRPayload = &qr
	} else {
		s.logger.WithError(err).WithField("submission_id", record.ID).Warn("Could not build QR payload")
	}

	if err := s.transition(ctx, record, models.SubmissionStatusSubmitted); err != nil {
		// FBR ya tiene la factura; la reconciliación corrige el registro
		s.logger.WithError(err).WithField("submission_id", record.ID).Error("Error storing FBR submission result")
	} else if mapRemoteStatus(resp.Status) == models.SubmissionStatusAccepted {
		if err := s.transition(ctx, record, models.SubmissionStatusAccepted); err != nil {
			s.logger.WithError(err).WithField("submission_id", record.ID).Error("Error storing FBR acceptance")
		}
	}

	if s.invoices != nil && record.InvoiceID != uuid.Nil {
		if err := s.invoices.MarkSubmitted(ctx, record.InvoiceID, previousReference, resp.InvoiceID, now); err != nil {
			s.logger.WithError(err).WithField("invoice_id", record.InvoiceID).Error("Error marking local invoice as submitted")
		}
	}

	if s.qr != nil && record.QRPayload != nil {
		if url, err := s.qr.Publish(ctx, record); err != nil {
			s.logger.WithError(err).WithField("submission_id", record.ID).Warn("Could not publish QR image")
		} else {
			record.QRImageURL = &url
			if err := s.submissions.Update(ctx, record); err != nil {
				s.logger.WithError(err).WithField("submission_id", record.ID).Warn("Error storing QR image URL")
			}
		}
	}

	s.notify(ctx, record)
}

func (s *SubmissionService) recordFailure(ctx context.Context, record *models.SubmissionRecord, subErr *models.SubmissionError) {
	text := subErr.StoredText()
	kind := subErr.Kind
	record.LastError = &text
	record.ErrorKind = &kind

	if record.Status == models.SubmissionStatusRejected {
		record.UpdatedAt = s.now()
		if err := s.submissions.Update(ctx, record); err != nil {
			s.logger.WithError(err).WithField("submission_id", record.ID).Error("Error storing submission failure")
		}
		return
	}
	if err := s.transition(ctx, record, models.SubmissionStatusRejected); err != nil {
		s.logger.WithError(err).WithField("submission_id", record.ID).Error("Error storing submission failure")
	}
}

func (s *SubmissionService) applyRemoteStatus(ctx context.Context, record *models.SubmissionRecord, resp *fbr.StatusResponse) {
	if details, err := json.Marshal(resp.Details); err == nil && len(resp.Details) > 0 {
		d := string(details)
		record.StatusDetails = &d
	}

	target := mapRemoteStatus(resp.Status)
	if target == models.SubmissionStatusRejected {
		subErr := models.NewSubmissionError(models.ErrorKindRemoteRejection, remoteReason(resp))
		text := subErr.StoredText()
		kind := subErr.Kind
		record.LastError = &text
		record.ErrorKind = &kind
	}
	if record.Status == models.SubmissionStatusSubmitting && target != models.SubmissionStatusRejected {
		if err := s.transition(ctx, record, models.SubmissionStatusSubmitted); err != nil {
			s.logger.WithError(err).WithField("submission_id", record.ID).Error("Error updating submission status")
			return
		}
	}

	if target != record.Status && models.CanTransition(record.Status, target) {
		if err := s.transition(ctx, record, target); err != nil {
			s.logger.WithError(err).WithField("submission_id", record.ID).Error("Error updating submission status")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"submission_id": record.ID,
			"status":        record.Status,
			"remote_status": resp.Status,
		}).Info("Submission status updated from FBR")
		return
	}

	record.UpdatedAt = s.now()
	if err := s.submissions.Update(ctx, record); err != nil {
		s.logger.WithError(err).WithField("submission_id", record.ID).Error("Error storing status details")
	}
}

func (s *SubmissionService) transition(ctx context.Context, record *models.SubmissionRecord, to models.SubmissionStatus) error {
	if !models.CanTransition(record.Status, to) {
		return fmt.Errorf("%w: submission cannot move from %s to %s", models.ErrUsage, record.Status, to)
	}
	record.Status = to
	record.UpdatedAt = s.now()
	return s.submissions.Update(ctx, record)
}

func (s *SubmissionService) ownedRecord(ctx context.Context, tm *TokenManager, id uuid.UUID) (*models.SubmissionRecord, error) {
	return s.GetSubmission(ctx, tm.SellerID(), id)
}

// invoiceForRetry usa la factura local vigente si existe; si no, reconstruye
// la factura desde la instantánea del registro.
func (s *SubmissionService) invoiceForRetry(ctx context.Context, record *models.SubmissionRecord) *models.Invoice {
	if s.invoices != nil && record.InvoiceID != uuid.Nil {
		invoice, err := s.invoices.GetByID(ctx, record.SellerID, record.InvoiceID)
		if err == nil {
			return invoice
		}
		s.logger.WithError(err).WithField("invoice_id", record.InvoiceID).Warn("Local invoice unavailable, retrying from snapshot")
	}

	items := make([]models.InvoiceItem, 0, len(record.Items))
	for _, it := range record.Items {
		items = append(items, models.InvoiceItem{
			Description: it.Description,
			HSCode:      it.HSCode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalValue:  it.TotalValue,
			SalesTax:    it.SalesTax,
			ExtraTax:    it.ExtraTax,
			Discount:    it.Discount,
		})
	}
	return &models.Invoice{
		ID:            record.InvoiceID,
		SellerID:      record.SellerID,
		InvoiceNumber: record.InvoiceNumber,
		InvoiceDate:   record.InvoiceDate,
		Buyer:         record.Buyer,
		Items:         items,
		Currency:      record.Currency,
		Notes:         record.Notes,
	}
}

func (s *SubmissionService) payloadFor(tm *TokenManager, invoice *models.Invoice) *fbr.InvoicePayload {
	payload := s.formatter.Format(invoice)
	seller := tm.SellerInfo()
	payload.Seller = fbr.Party{
		NTN:  seller.SellerNTN,
		STRN: seller.SellerSTRN,
		Name: seller.BusinessName,
	}
	return payload
}

func (s *SubmissionService) notify(ctx context.Context, record *models.SubmissionRecord) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendSubmissionNotice(ctx, record.SellerID, record); err != nil {
		s.logger.WithError(err).WithField("submission_id", record.ID).Warn("Could not send submission notice")
	}
}

// snapshotPayload copia al registro las líneas y totales recalculados
func snapshotPayload(record *models.SubmissionRecord, invoice *models.Invoice, payload *fbr.InvoicePayload) {
	record.InvoiceNumber = payload.InvoiceNumber
	record.InvoiceDate = invoice.InvoiceDate
	record.Buyer = invoice.Buyer
	record.Notes = invoice.Notes
	record.Currency = payload.Currency
	record.Subtotal = payload.TotalAmount
	record.SalesTax = payload.SalesTax
	record.ExtraTax = payload.ExtraTax
	record.Discount = payload.Discount
	record.FinalAmount = payload.FinalAmount

	record.Items = make([]models.SubmissionItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		record.Items = append(record.Items, models.SubmissionItem{
			Description: it.Description,
			HSCode:      it.HSCode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalValue:  it.TotalValue,
			SalesTax:    it.SalesTax,
			ExtraTax:    it.ExtraTax,
			Discount:    it.Discount,
		})
	}
}

func remoteValidationResult(resp *fbr.ValidationResponse) models.ValidationResult {
	result := models.ValidationResult{IsValid: resp.Valid, Errors: []models.ErrorDetail{}, Warnings: []models.ErrorDetail{}}
	for _, e := range resp.Errors {
		result.AddError("fbr", e)
	}
	for _, w := range resp.Warnings {
		result.AddWarning("fbr", w)
	}
	if !resp.Valid && len(result.Errors) == 0 {
		result.AddError("fbr", "invoice rejected by FBR validation")
	}
	return result
}

// classifyGatewayError separa "FBR dijo que no" de "no pudimos llegar a FBR"
func classifyGatewayError(err error) *models.SubmissionError {
	switch {
	case fbr.IsUnauthorized(err):
		return models.NewSubmissionError(models.ErrorKindAuth, fbr.RemoteMessage(err))
	case fbr.IsTransient(err):
		return models.NewSubmissionError(models.ErrorKindTransient, err.Error())
	case fbr.IsHTTPError(err):
		return models.NewSubmissionError(models.ErrorKindRemoteRejection, fbr.RemoteMessage(err))
	default:
		// Configuración local o errores de codificación; FBR nunca respondió
		return models.NewSubmissionError(models.ErrorKindInternal, err.Error())
	}
}

func asSubmissionError(err error) *models.SubmissionError {
	var subErr *models.SubmissionError
	if errors.As(err, &subErr) {
		return subErr
	}
	return models.NewSubmissionError(models.ErrorKindAuth, err.Error())
}

func failedResult(record *models.SubmissionRecord, subErr *models.SubmissionError) *models.SubmitResult {
	result := &models.SubmitResult{Success: false, Error: subErr}
	if record != nil {
		result.SubmissionID = &record.ID
		result.Status = record.Status
		result.RetryCount = record.RetryCount
	}
	return result
}

func mapRemoteStatus(status string) models.SubmissionStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "accepted", "approved", "valid", "completed":
		return models.SubmissionStatusAccepted
	case "rejected", "invalid", "cancelled", "canceled", "failed":
		return models.SubmissionStatusRejected
	default:
		return models.SubmissionStatusSubmitted
	}
}

func remoteReason(resp *fbr.StatusResponse) string {
	for _, key := range []string{"reason", "message", "error"} {
		if v, ok := resp.Details[key]; ok {
			return fmt.Sprint(v)
		}
	}
	return "status " + resp.Status
}

func stringPtr(s string) *string {
	return &s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
