package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/fbr-service/internal/models"
)

// LookupHSCode resuelve el código HS de una descripción
func (api *API) LookupHSCode(c *gin.Context) {
	description, ok := api.requiredQuery(c, "description")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, api.resolver.Lookup(description))
}

// SuggestHSCodes retorna los códigos más probables para una descripción
func (api *API) SuggestHSCodes(c *gin.Context) {
	description, ok := api.requiredQuery(c, "description")
	if !ok {
		return
	}
	limit, ok := api.intQuery(c, "limit")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"description": description,
		"suggestions": api.resolver.Suggest(description, limit),
	})
}

// ValidateHSCode verifica el formato NNNN.NN.NN de un código
func (api *API) ValidateHSCode(c *gin.Context) {
	code, ok := api.requiredQuery(c, "code")
	if !ok {
		return
	}
	valid := api.resolver.IsValidFormat(code)
	response := gin.H{
		"hs_code":  code,
		"is_valid": valid,
	}
	if valid {
		response["description"] = api.resolver.Describe(code)
	}
	c.JSON(http.StatusOK, response)
}

// ListHSCodes retorna la tabla, opcionalmente filtrada por categoría
func (api *API) ListHSCodes(c *gin.Context) {
	entries := api.resolver.All(c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"items": entries, "count": len(entries)})
}

// AutocompleteHSCodes completa descripciones (público)
func (api *API) AutocompleteHSCodes(c *gin.Context) {
	limit, ok := api.intQuery(c, "limit")
	if !ok {
		return
	}
	query := c.Query("q")
	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"suggestions": api.resolver.Autocomplete(query, limit),
	})
}

func (api *API) requiredQuery(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Missing query parameter", []models.ErrorDetail{
			{Field: name, Issue: "Required"},
		}))
		return "", false
	}
	return value, true
}
