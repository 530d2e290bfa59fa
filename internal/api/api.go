package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hypernova-labs/fbr-service/internal/database"
	"github.com/hypernova-labs/fbr-service/internal/hscode"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/hypernova-labs/fbr-service/internal/services"
	"github.com/sirupsen/logrus"
)

const (
	sellerIDKey     = "seller_id"
	apiKeyKey       = "api_key"
	environmentHdr  = "X-FBR-Environment"
	rateLimitWindow = time.Minute
)

// APIKeyStore valida y crea las API keys de los vendedores
type APIKeyStore interface {
	Create(ctx context.Context, sellerID uuid.UUID, name string, rateLimit int) (*models.APIKey, string, error)
	GetByHash(ctx context.Context, hash string) (*models.APIKey, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}

// SellerStore registra vendedores junto con su primera API key
type SellerStore interface {
	CreateWithAPIKey(ctx context.Context, seller *models.Seller, keyName string, rateLimit int) (*models.APIKey, string, error)
}

// RateLimiter consume solicitudes de una ventana por clave
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*database.RateLimitResult, error)
}

// API maneja todos los endpoints de la API
type API struct {
	auth             *services.AuthService
	submissions      *services.SubmissionService
	resolver         *hscode.Resolver
	apiKeys          APIKeyStore
	sellers          SellerStore
	limiter          RateLimiter
	defaultRateLimit int
	logger           *logrus.Logger
}

// Option configura dependencias opcionales de la API
type Option func(*API)

// WithRateLimiter activa el rate limiting por API key
func WithRateLimiter(limiter RateLimiter, defaultLimit int) Option {
	return func(api *API) {
		api.limiter = limiter
		api.defaultRateLimit = defaultLimit
	}
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	auth *services.AuthService,
	submissions *services.SubmissionService,
	resolver *hscode.Resolver,
	apiKeys APIKeyStore,
	sellers SellerStore,
	logger *logrus.Logger,
	opts ...Option,
) *API {
	api := &API{
		auth:             auth,
		submissions:      submissions,
		resolver:         resolver,
		apiKeys:          apiKeys,
		sellers:          sellers,
		defaultRateLimit: 120,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

// AuthMiddleware valida el header X-API-Key y deja el vendedor en el contexto
func (api *API) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := c.GetHeader("X-API-Key")
		if rawKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewUnauthorizedError("API key required"))
			return
		}

		key, err := api.apiKeys.GetByHash(c.Request.Context(), database.HashAPIKey(rawKey))
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				api.logger.WithError(err).Error("Error validating API key")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewUnauthorizedError("Invalid API key"))
			return
		}

		if err := api.apiKeys.UpdateLastUsed(c.Request.Context(), key.ID); err != nil {
			api.logger.WithError(err).WithField("api_key_id", key.ID).Warn("Error updating API key last used")
		}

		c.Set(sellerIDKey, key.SellerID)
		c.Set(apiKeyKey, key)
		c.Next()
	}
}

// RateLimitMiddleware aplica el límite por minuto de la API key. Si Redis
// falla la solicitud se deja pasar.
func (api *API) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if api.limiter == nil {
			c.Next()
			return
		}
		value, ok := c.Get(apiKeyKey)
		if !ok {
			c.Next()
			return
		}
		key := value.(*models.APIKey)

		limit := key.RateLimitPerMin
		if limit <= 0 {
			limit = api.defaultRateLimit
		}

		result, err := api.limiter.Allow(c.Request.Context(), key.ID.String(), limit, rateLimitWindow)
		if err != nil {
			api.logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			api.logger.WithFields(logrus.Fields{
				"seller_id":  key.SellerID,
				"api_key_id": key.ID,
				"count":      result.Count,
			}).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.NewRateLimitedError("Rate limit exceeded", result.RetryAfter))
			return
		}
		c.Next()
	}
}

// CreateSeller registra un vendedor y su API key inicial (público)
func (api *API) CreateSeller(c *gin.Context) {
	var req models.CreateSellerRequest
	if !api.bindJSON(c, &req) {
		return
	}

	env, ok := models.ParseEnvironment(string(req.Environment))
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid environment", []models.ErrorDetail{
			{Field: "environment", Issue: "Must be sandbox or production"},
		}))
		return
	}

	seller := &models.Seller{
		BusinessName: req.BusinessName,
		NTN:          req.NTN,
		STRN:         req.STRN,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Environment:  env,
	}
	_, rawKey, err := api.sellers.CreateWithAPIKey(c.Request.Context(), seller, "default", api.defaultRateLimit)
	if err != nil {
		api.logger.WithError(err).Error("Error creating seller")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error creating seller"))
		return
	}

	c.JSON(http.StatusCreated, models.CreateSellerResponse{Seller: seller, APIKey: rawKey})
}

// CreateAPIKey crea una API key adicional para el vendedor autenticado
func (api *API) CreateAPIKey(c *gin.Context) {
	sellerID := api.sellerID(c)

	var req models.CreateAPIKeyRequest
	if !api.bindJSON(c, &req) {
		return
	}
	rateLimit := req.RateLimitPerMin
	if rateLimit <= 0 {
		rateLimit = api.defaultRateLimit
	}

	key, rawKey, err := api.apiKeys.Create(c.Request.Context(), sellerID, req.Name, rateLimit)
	if err != nil {
		api.logger.WithError(err).WithField("seller_id", sellerID).Error("Error creating API key")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error creating API key"))
		return
	}

	c.JSON(http.StatusCreated, models.APIKeyResponse{APIKey: key, Key: rawKey})
}

// sellerID retorna el vendedor que dejó AuthMiddleware en el contexto
func (api *API) sellerID(c *gin.Context) uuid.UUID {
	return c.MustGet(sellerIDKey).(uuid.UUID)
}

// environment lee el ambiente del query o del header; por defecto sandbox
func (api *API) environment(c *gin.Context) (models.Environment, bool) {
	value := c.Query("environment")
	if value == "" {
		value = c.GetHeader(environmentHdr)
	}
	env, ok := models.ParseEnvironment(value)
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid environment", []models.ErrorDetail{
			{Field: "environment", Issue: "Must be sandbox or production"},
		}))
		return "", false
	}
	return env, true
}

// manager obtiene la sesión de FBR del vendedor en el ambiente pedido
func (api *API) manager(c *gin.Context) (*services.TokenManager, bool) {
	env, ok := api.environment(c)
	if !ok {
		return nil, false
	}
	tm, err := api.auth.Manager(c.Request.Context(), api.sellerID(c), env)
	if err != nil {
		api.respondError(c, err, "Error loading FBR session")
		return nil, false
	}
	return tm, true
}

func (api *API) bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		api.logger.WithError(err).Debug("Error binding request body")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return false
	}
	return true
}

func (api *API) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid ID", []models.ErrorDetail{
			{Field: name, Issue: "Must be a valid UUID"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

// respondError traduce los errores de servicio a respuestas HTTP
func (api *API) respondError(c *gin.Context, err error, message string) {
	var subErr *models.SubmissionError
	switch {
	case errors.As(err, &subErr):
		c.JSON(submissionErrorStatus(subErr.Kind), models.NewSubmissionErrorResponse(subErr))
	case errors.Is(err, models.ErrUsage):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrorCodeInvalidRequest, err.Error()))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(err.Error()))
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, models.NewConflictError(err.Error()))
	default:
		api.logger.WithError(err).Error(message)
		c.JSON(http.StatusInternalServerError, models.NewInternalError(message))
	}
}

func submissionErrorStatus(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorKindValidation, models.ErrorKindRemoteRejection:
		return http.StatusUnprocessableEntity
	case models.ErrorKindAuth:
		return http.StatusUnauthorized
	case models.ErrorKindTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
