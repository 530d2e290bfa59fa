package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQRPayload(t *testing.T) {
	ref := "FBR-1"
	irn := "IRN-1"
	submitted := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	record := &models.SubmissionRecord{
		InvoiceNumber: "INV-1",
		Buyer:         models.Buyer{Name: "Acme", NTN: "7654321-0"},
		Subtotal:      5000,
		SalesTax:      800,
		FinalAmount:   5800,
		FBRReference:  &ref,
		IRN:           &irn,
		SubmittedAt:   &submitted,
	}

	payload, err := BuildQRPayload(record, "1234567-8")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, "FBR-1", decoded["fbrReference"])
	assert.Equal(t, "IRN-1", decoded["irn"])
	assert.Equal(t, "1234567-8", decoded["sellerNTN"])
	assert.Equal(t, "7654321-0", decoded["buyerNTN"])
	assert.Equal(t, 5800.0, decoded["finalAmount"])
	assert.Equal(t, "2026-10-16T09:30:00Z", decoded["submissionDate"])
	assert.NotContains(t, decoded, "uuid")
}

func TestPublishUploadsPNG(t *testing.T) {
	storage := &memoryStorage{}
	svc := NewQRService(storage, newTestLogger())
	content := `{"fbrReference":"FBR-1"}`
	record := &models.SubmissionRecord{ID: uuid.New(), SellerID: testSellerID, QRPayload: &content}

	url, err := svc.Publish(context.Background(), record)
	require.NoError(t, err)

	fileName := testSellerID.String() + "/" + record.ID.String() + ".png"
	assert.Equal(t, "https://storage.test/"+fileName, url)
	require.Contains(t, storage.files, fileName)
	assert.True(t, bytes.HasPrefix(storage.files[fileName], []byte("\x89PNG")))
}

func TestPublishWithoutPayload(t *testing.T) {
	svc := NewQRService(&memoryStorage{}, newTestLogger())

	_, err := svc.Publish(context.Background(), &models.SubmissionRecord{ID: uuid.New()})
	assert.Error(t, err)
}
