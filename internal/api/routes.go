package api

import "github.com/gin-gonic/gin"

// RegisterRoutes monta los endpoints v1 sobre el grupo indicado
func (api *API) RegisterRoutes(v1 *gin.RouterGroup) {
	// Endpoints PÚBLICOS (sin API key)
	v1.POST("/sellers", api.CreateSeller)
	v1.GET("/hs-codes/autocomplete", api.AutocompleteHSCodes)

	// Endpoints protegidos por API key
	protected := v1.Group("")
	protected.Use(api.AuthMiddleware(), api.RateLimitMiddleware())
	{
		protected.POST("/sellers/apikeys", api.CreateAPIKey)

		auth := protected.Group("/fbr/auth")
		auth.POST("/login", api.Login)
		auth.GET("/status", api.AuthStatus)
		auth.POST("/logout", api.Logout)
		auth.GET("/test-connection", api.TestConnection)
		auth.GET("/seller-info", api.SellerInfo)

		invoices := protected.Group("/fbr/invoices")
		invoices.POST("/validate", api.ValidateInvoice)
		invoices.POST("/submit", api.SubmitInvoice)
		invoices.POST("/from-invoice/:invoiceId", api.SubmitFromInvoice)
		invoices.GET("/available", api.AvailableInvoices)

		submissions := protected.Group("/fbr/submissions")
		submissions.GET("", api.ListSubmissions)
		submissions.GET("/stats", api.SubmissionStats)
		submissions.GET("/:id", api.GetSubmission)
		submissions.POST("/:id/status", api.CheckSubmissionStatus)
		submissions.POST("/:id/retry", api.RetrySubmission)

		protected.GET("/fbr/status/:reference", api.StatusByReference)

		hsCodes := protected.Group("/hs-codes")
		hsCodes.GET("", api.ListHSCodes)
		hsCodes.GET("/lookup", api.LookupHSCode)
		hsCodes.GET("/suggestions", api.SuggestHSCodes)
		hsCodes.GET("/validate", api.ValidateHSCode)
	}
}
