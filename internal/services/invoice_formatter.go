package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/hypernova-labs/fbr-service/internal/fbr"
	"github.com/hypernova-labs/fbr-service/internal/hscode"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const fbrDateLayout = "2006-01-02"

// tolerancia de redondeo entre totales informados y recalculados
var totalTolerance = decimal.NewFromFloat(0.01)

// Classifier asigna un código HS a una descripción
type Classifier interface {
	Resolve(description string) string
}

// InvoiceFormatter valida facturas locales y las convierte al formato de FBR
type InvoiceFormatter struct {
	classifier Classifier
	currency   string
	now        func() time.Time
	logger     *logrus.Logger
}

// NewInvoiceFormatter crea una nueva instancia del formateador
func NewInvoiceFormatter(classifier Classifier, currency string, logger *logrus.Logger) *InvoiceFormatter {
	if currency == "" {
		currency = "PKR"
	}
	return &InvoiceFormatter{
		classifier: classifier,
		currency:   currency,
		now:        time.Now,
		logger:     logger,
	}
}

type computedLine struct {
	item     models.InvoiceItem
	hsCode   string
	total    decimal.Decimal
	tax      decimal.Decimal
	extraTax decimal.Decimal
	discount decimal.Decimal
}

type computedTotals struct {
	lines    []computedLine
	subtotal decimal.Decimal
	tax      decimal.Decimal
	extraTax decimal.Decimal
	discount decimal.Decimal
	final    decimal.Decimal
}

// Validate verifica los campos obligatorios. Los identificadores fiscales del
// comprador ausentes y los totales que no cuadran son advertencias.
func (f *InvoiceFormatter) Validate(invoice *models.Invoice) models.ValidationResult {
	result := models.ValidationResult{IsValid: true, Errors: []models.ErrorDetail{}, Warnings: []models.ErrorDetail{}}
	if invoice == nil {
		result.AddError("invoice", "is required")
		return result
	}

	if strings.TrimSpace(invoice.InvoiceNumber) == "" {
		result.AddError("invoice_number", "is required")
	}
	if strings.TrimSpace(invoice.Buyer.Name) == "" {
		result.AddError("buyer.name", "is required")
	}
	if strings.TrimSpace(invoice.Buyer.Address) == "" {
		result.AddError("buyer.address", "is required")
	}
	if strings.TrimSpace(invoice.Buyer.NTN) == "" {
		result.AddWarning("buyer.ntn", "buyer NTN is missing; submission is allowed but compliance is degraded")
	}
	if strings.TrimSpace(invoice.Buyer.STRN) == "" {
		result.AddWarning("buyer.strn", "buyer STRN is missing; submission is allowed but compliance is degraded")
	}

	if len(invoice.Items) == 0 {
		result.AddError("items", "at least one line item is required")
		return result
	}

	for i, item := range invoice.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Description) == "" {
			result.AddError(field+".description", "is required")
		}
		if item.Quantity <= 0 {
			result.AddError(field+".quantity", "must be greater than zero")
		}
		if item.UnitPrice <= 0 {
			result.AddError(field+".unit_price", "must be greater than zero")
		}
		if item.SalesTax < 0 || item.SalesTaxRate < 0 {
			result.AddError(field+".sales_tax", "cannot be negative")
		}
		if item.ExtraTax < 0 {
			result.AddError(field+".extra_tax", "cannot be negative")
		}
		if item.Discount < 0 {
			result.AddError(field+".discount", "cannot be negative")
		}
		switch code := strings.TrimSpace(item.HSCode); {
		case code == "":
			result.AddWarning(field+".hs_code", "missing; it will be resolved from the description")
		case !hscode.IsValidFormat(code):
			result.AddError(field+".hs_code", "must have the format NNNN.NN.NN")
		}
	}

	totals := f.computeTotals(invoice)
	if !totals.final.IsPositive() {
		result.AddError("final_amount", "must be greater than zero")
	}

	for i, line := range totals.lines {
		if line.item.TotalValue != 0 && diverges(line.item.TotalValue, line.total) {
			result.AddWarning(fmt.Sprintf("items[%d].total_value", i),
				fmt.Sprintf("supplied %.2f differs from quantity x unit price %s", line.item.TotalValue, line.total.StringFixed(2)))
		}
	}
	checks := []struct {
		field    string
		supplied float64
		computed decimal.Decimal
	}{
		{"total_amount", invoice.TotalAmount, totals.subtotal},
		{"sales_tax", invoice.SalesTax, totals.tax},
		{"extra_tax", invoice.ExtraTax, totals.extraTax},
		{"discount", invoice.Discount, totals.discount},
		{"final_amount", invoice.FinalAmount, totals.final},
	}
	for _, c := range checks {
		if c.supplied != 0 && diverges(c.supplied, c.computed) {
			result.AddWarning(c.field, fmt.Sprintf("supplied %.2f differs from line items total %s", c.supplied, c.computed.StringFixed(2)))
		}
	}

	return result
}

// Format convierte la factura al formato de FBR recalculando todos los montos
// desde las líneas. No tiene efectos secundarios.
func (f *InvoiceFormatter) Format(invoice *models.Invoice) *fbr.InvoicePayload {
	totals := f.computeTotals(invoice)

	date := invoice.InvoiceDate
	if date.IsZero() {
		date = f.now()
	}
	currency := invoice.Currency
	if currency == "" {
		currency = f.currency
	}

	items := make([]fbr.InvoiceItem, 0, len(totals.lines))
	for _, line := range totals.lines {
		items = append(items, fbr.InvoiceItem{
			Description: strings.TrimSpace(line.item.Description),
			HSCode:      line.hsCode,
			Quantity:    line.item.Quantity,
			UnitPrice:   line.item.UnitPrice,
			TotalValue:  line.total.InexactFloat64(),
			SalesTax:    line.tax.InexactFloat64(),
			ExtraTax:    line.extraTax.InexactFloat64(),
			Discount:    line.discount.InexactFloat64(),
		})
	}

	f.logger.WithFields(logrus.Fields{
		"invoice_number": invoice.InvoiceNumber,
		"items":          len(items),
		"final_amount":   totals.final.StringFixed(2),
	}).Debug("Invoice formatted for FBR")

	return &fbr.InvoicePayload{
		InvoiceNumber: strings.TrimSpace(invoice.InvoiceNumber),
		InvoiceDate:   date.Format(fbrDateLayout),
		Buyer: fbr.Party{
			NTN:     invoice.Buyer.NTN,
			STRN:    invoice.Buyer.STRN,
			Name:    invoice.Buyer.Name,
			Address: invoice.Buyer.Address,
			Phone:   invoice.Buyer.Phone,
			Email:   invoice.Buyer.Email,
		},
		Items:       items,
		TotalAmount: totals.subtotal.InexactFloat64(),
		SalesTax:    totals.tax.InexactFloat64(),
		ExtraTax:    totals.extraTax.InexactFloat64(),
		Discount:    totals.discount.InexactFloat64(),
		FinalAmount: totals.final.InexactFloat64(),
		Currency:    currency,
		Notes:       invoice.Notes,
	}
}

func (f *InvoiceFormatter) computeTotals(invoice *models.Invoice) computedTotals {
	totals := computedTotals{
		subtotal: decimal.Zero,
		tax:      decimal.Zero,
		extraTax: decimal.Zero,
		discount: decimal.Zero,
	}

	for _, item := range invoice.Items {
		line := computedLine{
			item:     item,
			hsCode:   strings.TrimSpace(item.HSCode),
			total:    decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitPrice)).Round(2),
			extraTax: decimal.NewFromFloat(item.ExtraTax).Round(2),
			discount: decimal.NewFromFloat(item.Discount).Round(2),
		}
		if line.hsCode == "" {
			line.hsCode = f.classifier.Resolve(item.Description)
		}
		if item.SalesTax != 0 {
			line.tax = decimal.NewFromFloat(item.SalesTax).Round(2)
		} else {
			line.tax = line.total.Mul(decimal.NewFromFloat(item.SalesTaxRate)).Div(decimal.NewFromInt(100)).Round(2)
		}

		totals.lines = append(totals.lines, line)
		totals.subtotal = totals.subtotal.Add(line.total)
		totals.tax = totals.tax.Add(line.tax)
		totals.extraTax = totals.extraTax.Add(line.extraTax)
		totals.discount = totals.discount.Add(line.discount)
	}

	totals.final = totals.subtotal.Sub(totals.discount).Add(totals.tax).Add(totals.extraTax)
	return totals
}

func diverges(supplied float64, computed decimal.Decimal) bool {
	return decimal.NewFromFloat(supplied).Sub(computed).Abs().GreaterThan(totalTolerance)
}
