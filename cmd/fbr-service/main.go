package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/fbr-service/internal/api"
	"github.com/hypernova-labs/fbr-service/internal/config"
	"github.com/hypernova-labs/fbr-service/internal/database"
	"github.com/hypernova-labs/fbr-service/internal/email"
	"github.com/hypernova-labs/fbr-service/internal/fbr"
	"github.com/hypernova-labs/fbr-service/internal/hscode"
	"github.com/hypernova-labs/fbr-service/internal/services"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting FBR Service...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()
	db.LogStats(logger)

	// Conectar a Redis; sin Redis no hay rate limiting
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warnf("Error connecting to Redis: %v", err)
		redis = nil
	} else {
		defer redis.Close()
		redis.LogStats(logger)
	}

	// Repositorios
	sellerRepo := database.NewSellerRepository(db, logger)
	apiKeyRepo := database.NewAPIKeyRepository(db, logger)
	sessionRepo := database.NewSessionRepository(db, logger)
	submissionRepo := database.NewSubmissionRepository(db, logger)
	invoiceRepo := database.NewInvoiceRepository(db, logger)

	gateway := setupGateway(cfg, logger)
	resolver := hscode.Default()

	submissionOpts := []services.SubmissionOption{
		services.WithInvoiceStore(invoiceRepo),
		services.WithRemoteValidation(cfg.FBR.RemoteValidation),
	}

	// Inicializar cliente de Supabase para las imágenes QR
	if cfg.Supabase.StorageEndpoint != "" && cfg.Supabase.AccessKeyID != "" && cfg.Supabase.SecretAccessKey != "" {
		supabaseClient, err := database.NewSupabaseClient(&cfg.Supabase, logger)
		if err != nil {
			logger.Warnf("Error initializing Supabase client: %v", err)
		} else {
			if err := supabaseClient.HealthCheck(context.Background()); err != nil {
				logger.Warnf("Supabase health check failed: %v", err)
			} else {
				logger.Info("Supabase storage connection healthy")
			}
			submissionOpts = append(submissionOpts, services.WithQRService(services.NewQRService(supabaseClient, logger)))
		}
	} else {
		logger.Warn("Supabase storage credentials not provided, QR images will not be published")
	}

	// Inicializar servicio de Resend
	if cfg.Email.ResendAPIKey != "" {
		resendService := email.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, sellerRepo, logger)
		submissionOpts = append(submissionOpts, services.WithNotifier(resendService))
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, submission notices will not be sent")
	}

	// Inicializar servicios
	authService := services.NewAuthService(gateway, sessionRepo, cfg.FBR.Scope, logger)
	formatter := services.NewInvoiceFormatter(resolver, cfg.FBR.DefaultCurrency, logger)
	submissionService := services.NewSubmissionService(formatter, gateway, submissionRepo, logger, submissionOpts...)

	// Los envíos interrumpidos por un reinicio se consultan, nunca se reenvían
	reconcileCtx, cancelReconcile := context.WithTimeout(context.Background(), 2*time.Minute)
	if count, err := submissionService.Reconcile(reconcileCtx, authService); err != nil {
		logger.WithError(err).Error("Error reconciling interrupted submissions")
	} else if count > 0 {
		logger.WithField("count", count).Info("Interrupted submissions reconciled")
	}
	cancelReconcile()

	// Inicializar API
	apiOpts := []api.Option{}
	if redis != nil {
		apiOpts = append(apiOpts, api.WithRateLimiter(redis, cfg.RateLimit.Default))
	}
	apiHandler := api.NewAPI(authService, submissionService, resolver, apiKeyRepo, sellerRepo, logger, apiOpts...)

	// Configurar router
	router := setupRouter(apiHandler, db, redis, cfg)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg.FBR.Timeout),
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// writeTimeout cubre un envío completo: refresh de token, validación remota
// y envío (cada uno acotado por FBR_TIMEOUT), más la imagen QR y el email.
func writeTimeout(fbrTimeout time.Duration) time.Duration {
	return 3*fbrTimeout + 30*time.Second
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupGateway elige el cliente de FBR. El simulado nunca se usa en producción.
func setupGateway(cfg *config.Config, logger *logrus.Logger) fbr.Gateway {
	if cfg.FBR.Fake {
		if cfg.IsProduction() {
			logger.Warn("FBR_FAKE ignored in production")
		} else {
			logger.Warn("Using simulated FBR gateway")
			return fbr.NewFakeGateway()
		}
	}
	return fbr.NewHTTPGatewayFromConfig(&cfg.FBR, logger)
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, db *database.DB, redis *database.Redis, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-API-Key, X-FBR-Environment")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status, summary := http.StatusOK, "ok"
		checks := gin.H{"database": "ok"}
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			status, summary = http.StatusServiceUnavailable, "degraded"
			checks["database"] = "unavailable"
		}
		if redis != nil {
			checks["redis"] = "ok"
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				checks["redis"] = "unavailable"
			}
		}

		c.JSON(status, gin.H{
			"status":    summary,
			"timestamp": time.Now().UTC(),
			"service":   "fbr-service",
			"version":   "1.0.0",
			"checks":    checks,
		})
	})

	apiHandler.RegisterRoutes(router.Group("/v1"))

	return router
}
