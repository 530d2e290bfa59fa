package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/hypernova-labs/fbr-service/internal/services"
	"github.com/sirupsen/logrus"
)

// Login autentica al vendedor contra FBR. La respuesta nunca incluye tokens.
func (api *API) Login(c *gin.Context) {
	var creds models.Credentials
	if !api.bindJSON(c, &creds) {
		return
	}
	if creds.Environment == "" {
		env, ok := api.environment(c)
		if !ok {
			return
		}
		creds.Environment = env
	}

	info, err := api.auth.Authenticate(c.Request.Context(), api.sellerID(c), creds)
	if err != nil {
		api.respondError(c, err, "Error authenticating with FBR")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"seller":        info,
	})
}

// AuthStatus retorna el estado de la sesión con FBR
func (api *API) AuthStatus(c *gin.Context) {
	env, ok := api.environment(c)
	if !ok {
		return
	}
	status, err := api.auth.Status(c.Request.Context(), api.sellerID(c), env)
	if err != nil {
		api.respondError(c, err, "Error retrieving FBR session")
		return
	}
	c.JSON(http.StatusOK, status)
}

// Logout invalida los tokens de FBR del vendedor
func (api *API) Logout(c *gin.Context) {
	env, ok := api.environment(c)
	if !ok {
		return
	}
	if err := api.auth.Logout(c.Request.Context(), api.sellerID(c), env); err != nil {
		api.respondError(c, err, "Error closing FBR session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out from FBR"})
}

// TestConnection verifica que la API de FBR responda
func (api *API) TestConnection(c *gin.Context) {
	env, ok := api.environment(c)
	if !ok {
		return
	}
	result, err := api.auth.TestConnection(c.Request.Context(), api.sellerID(c), env)
	if err != nil {
		api.respondError(c, err, "Error testing FBR connection")
		return
	}
	c.JSON(http.StatusOK, result)
}

// SellerInfo retorna los datos del vendedor registrados en la sesión
func (api *API) SellerInfo(c *gin.Context) {
	env, ok := api.environment(c)
	if !ok {
		return
	}
	info, err := api.auth.SellerInfo(c.Request.Context(), api.sellerID(c), env)
	if err != nil {
		api.respondError(c, err, "Error retrieving seller info")
		return
	}
	c.JSON(http.StatusOK, info)
}

// ValidateInvoice valida una factura sin enviarla
func (api *API) ValidateInvoice(c *gin.Context) {
	invoice, ok := api.bindInvoice(c)
	if !ok {
		return
	}
	tm, ok := api.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.submissions.ValidateInvoice(c.Request.Context(), tm, invoice))
}

// SubmitInvoice envía una factura a FBR
func (api *API) SubmitInvoice(c *gin.Context) {
	invoice, ok := api.bindInvoice(c)
	if !ok {
		return
	}
	tm, ok := api.manager(c)
	if !ok {
		return
	}
	api.respondSubmit(c, api.submissions.Submit(c.Request.Context(), tm, invoice))
}

// SubmitFromInvoice envía una factura local existente
func (api *API) SubmitFromInvoice(c *gin.Context) {
	invoiceID, ok := api.uuidParam(c, "invoiceId")
	if !ok {
		return
	}
	tm, ok := api.manager(c)
	if !ok {
		return
	}
	result, err := api.submissions.SubmitInvoiceByID(c.Request.Context(), tm, invoiceID)
	if err != nil {
		api.respondError(c, err, "Error submitting invoice")
		return
	}
	api.respondSubmit(c, result)
}

// AvailableInvoices lista las facturas locales que aún no se enviaron
func (api *API) AvailableInvoices(c *gin.Context) {
	invoices, err := api.submissions.AvailableInvoices(c.Request.Context(), api.sellerID(c))
	if err != nil {
		api.respondError(c, err, "Error listing available invoices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": invoices, "count": len(invoices)})
}

// ListSubmissions lista los envíos del vendedor
func (api *API) ListSubmissions(c *gin.Context) {
	filter := models.SubmissionFilter{Status: models.SubmissionStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid status filter", []models.ErrorDetail{
			{Field: "status", Issue: "Unknown submission status"},
		}))
		return
	}

	var ok bool
	if filter.Limit, ok = api.intQuery(c, "limit"); !ok {
		return
	}
	if filter.Offset, ok = api.intQuery(c, "offset"); !ok {
		return
	}

	records, err := api.submissions.ListSubmissions(c.Request.Context(), api.sellerID(c), filter)
	if err != nil {
		api.respondError(c, err, "Error listing submissions")
		return
	}
	c.JSON(http.StatusOK, models.SubmissionListResponse{Items: records, Count: len(records)})
}

// SubmissionStats retorna los contadores de envíos
func (api *API) SubmissionStats(c *gin.Context) {
	stats, err := api.submissions.Stats(c.Request.Context(), api.sellerID(c))
	if err != nil {
		api.respondError(c, err, "Error retrieving submission stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetSubmission obtiene un envío del vendedor
func (api *API) GetSubmission(c *gin.Context) {
	id, ok := api.uuidParam(c, "id")
	if !ok {
		return
	}
	record, err := api.submissions.GetSubmission(c.Request.Context(), api.sellerID(c), id)
	if err != nil {
		api.respondError(c, err, "Error retrieving submission")
		return
	}
	c.JSON(http.StatusOK, record)
}

// CheckSubmissionStatus consulta en FBR el estado de un envío
func (api *API) CheckSubmissionStatus(c *gin.Context) {
	tm, submissionID, ok := api.submissionManager(c)
	if !ok {
		return
	}
	result, err := api.submissions.CheckStatus(c.Request.Context(), tm, submissionID)
	if err != nil {
		api.respondError(c, err, "Error checking submission status")
		return
	}
	c.JSON(http.StatusOK, result)
}

// StatusByReference consulta en FBR el estado de una referencia
func (api *API) StatusByReference(c *gin.Context) {
	tm, ok := api.manager(c)
	if !ok {
		return
	}
	result, err := api.submissions.CheckStatusByReference(c.Request.Context(), tm, c.Param("reference"))
	if err != nil {
		api.respondError(c, err, "Error checking FBR status")
		return
	}
	c.JSON(http.StatusOK, result)
}

// RetrySubmission reintenta un envío rechazado
func (api *API) RetrySubmission(c *gin.Context) {
	tm, submissionID, ok := api.submissionManager(c)
	if !ok {
		return
	}
	result, err := api.submissions.Retry(c.Request.Context(), tm, submissionID)
	if err != nil {
		api.respondError(c, err, "Error retrying submission")
		return
	}
	api.respondSubmit(c, result)
}

// submissionManager resuelve la sesión en el ambiente en que se creó el envío
func (api *API) submissionManager(c *gin.Context) (*services.TokenManager, uuid.UUID, bool) {
	id, ok := api.uuidParam(c, "id")
	if !ok {
		return nil, id, false
	}
	sellerID := api.sellerID(c)
	record, err := api.submissions.GetSubmission(c.Request.Context(), sellerID, id)
	if err != nil {
		api.respondError(c, err, "Error retrieving submission")
		return nil, id, false
	}
	tm, err := api.auth.Manager(c.Request.Context(), sellerID, record.Environment)
	if err != nil {
		api.respondError(c, err, "Error loading FBR session")
		return nil, id, false
	}
	return tm, id, true
}

func (api *API) bindInvoice(c *gin.Context) (*models.Invoice, bool) {
	var req models.InvoiceRequest
	if !api.bindJSON(c, &req) {
		return nil, false
	}
	invoice, err := req.ToInvoice(api.sellerID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid invoice", []models.ErrorDetail{
			{Field: "invoice_date", Issue: "Must be YYYY-MM-DD"},
		}))
		return nil, false
	}
	return invoice, true
}

// respondSubmit responde 201 si el envío quedó registrado; si no, el código
// depende del tipo de error y el cuerpo sigue siendo el resultado.
func (api *API) respondSubmit(c *gin.Context, result *models.SubmitResult) {
	if result.Success {
		c.JSON(http.StatusCreated, result)
		return
	}
	status := http.StatusInternalServerError
	if result.Error != nil {
		status = submissionErrorStatus(result.Error.Kind)
		api.logger.WithFields(logrus.Fields{
			"seller_id":     api.sellerID(c),
			"submission_id": result.SubmissionID,
			"error_kind":    result.Error.Kind,
		}).Info("Invoice submission failed")
	}
	c.JSON(status, result)
}

func (api *API) intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid query parameter", []models.ErrorDetail{
			{Field: name, Issue: "Must be a non-negative integer"},
		}))
		return 0, false
	}
	return value, true
}
