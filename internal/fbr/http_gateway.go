package fbr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hypernova-labs/fbr-service/internal/config"
	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 1 << 20

// Option configura el HTTPGateway
type Option func(*HTTPGateway)

// HTTPGateway implementa Gateway contra la API HTTP de FBR
type HTTPGateway struct {
	httpClient    *http.Client
	baseURLs      map[models.Environment]string
	limiters      map[models.Environment]*rate.Limiter
	healthTimeout time.Duration
	statusRetries int
	logger        *logrus.Logger
}

// WithHTTPClient reemplaza el cliente HTTP
func WithHTTPClient(client *http.Client) Option {
	return func(g *HTTPGateway) {
		g.httpClient = client
	}
}

// WithBaseURL define la URL base de un ambiente
func WithBaseURL(env models.Environment, baseURL string) Option {
	return func(g *HTTPGateway) {
		g.baseURLs[env] = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTimeout define el timeout de cada llamada
func WithTimeout(timeout time.Duration) Option {
	return func(g *HTTPGateway) {
		g.httpClient.Timeout = timeout
	}
}

// WithHealthTimeout define el timeout de la prueba de conexión
func WithHealthTimeout(timeout time.Duration) Option {
	return func(g *HTTPGateway) {
		g.healthTimeout = timeout
	}
}

// WithRateLimit limita las llamadas salientes por ambiente
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(g *HTTPGateway) {
		for _, env := range []models.Environment{models.EnvironmentSandbox, models.EnvironmentProduction} {
			g.limiters[env] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		}
	}
}

// WithStatusRetries define los reintentos de las consultas idempotentes
func WithStatusRetries(retries int) Option {
	return func(g *HTTPGateway) {
		g.statusRetries = retries
	}
}

// NewHTTPGateway crea el gateway HTTP de FBR
func NewHTTPGateway(logger *logrus.Logger, opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURLs:      make(map[models.Environment]string),
		limiters:      make(map[models.Environment]*rate.Limiter),
		healthTimeout: 10 * time.Second,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewHTTPGatewayFromConfig crea el gateway con la configuración de FBR
func NewHTTPGatewayFromConfig(cfg *config.FBRConfig, logger *logrus.Logger) *HTTPGateway {
	return NewHTTPGateway(logger,
		WithBaseURL(models.EnvironmentSandbox, cfg.SandboxURL),
		WithBaseURL(models.EnvironmentProduction, cfg.ProductionURL),
		WithTimeout(cfg.Timeout),
		WithHealthTimeout(cfg.HealthTimeout),
		WithRateLimit(cfg.RequestsPerSecond, cfg.Burst),
		WithStatusRetries(cfg.StatusRetries),
	)
}

// RequestToken intercambia credenciales o un refresh token por un access token
func (g *HTTPGateway) RequestToken(ctx context.Context, env models.Environment, req TokenRequest) (*TokenResponse, error) {
	var resp TokenResponse
	if err := g.do(ctx, env, http.MethodPost, "/auth/token", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &TransportError{Op: "POST /auth/token", Err: errors.New("response missing access_token")}
	}
	if resp.ExpiresIn <= 0 {
		resp.ExpiresIn = DefaultTokenTTLSeconds
	}
	return &resp, nil
}

// ValidateInvoice valida la factura en FBR sin registrarla
func (g *HTTPGateway) ValidateInvoice(ctx context.Context, env models.Environment, token string, payload *InvoicePayload) (*ValidationResponse, error) {
	var resp ValidationResponse
	if err := g.do(ctx, env, http.MethodPost, "/invoice/validate", token, withEnvironment(payload, env), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitInvoice registra la factura en FBR
func (g *HTTPGateway) SubmitInvoice(ctx context.Context, env models.Environment, token string, payload *InvoicePayload) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := g.do(ctx, env, http.MethodPost, "/invoice/submit", token, withEnvironment(payload, env), &resp); err != nil {
		return nil, err
	}
	if resp.InvoiceID == "" {
		return nil, &TransportError{Op: "POST /invoice/submit", Err: errors.New("response missing invoice_id")}
	}
	return &resp, nil
}

// InvoiceStatus consulta el estado de una factura registrada. Es idempotente,
// por lo que las fallas transitorias se reintentan dentro del timeout.
func (g *HTTPGateway) InvoiceStatus(ctx context.Context, env models.Environment, token, reference string) (*StatusResponse, error) {
	path := "/invoice/status/" + url.PathEscape(reference)

	var raw map[string]interface{}
	err := g.retryIdempotent(ctx, func(ctx context.Context) error {
		raw = nil
		return g.do(ctx, env, http.MethodGet, path, token, nil, &raw)
	})
	if err != nil {
		return nil, err
	}

	resp := &StatusResponse{Details: make(map[string]interface{})}
	for k, v := range raw {
		if k == "status" {
			resp.Status = fmt.Sprint(v)
			continue
		}
		resp.Details[k] = v
	}
	return resp, nil
}

// Health verifica que la API de FBR responda
func (g *HTTPGateway) Health(ctx context.Context, env models.Environment, token string) error {
	ctx, cancel := context.WithTimeout(ctx, g.healthTimeout)
	defer cancel()

	return g.retryIdempotent(ctx, func(ctx context.Context) error {
		return g.do(ctx, env, http.MethodGet, "/health", token, nil, nil)
	})
}

// retryIdempotent acota el total de intentos al timeout del cliente, no solo
// el inicio de cada intento.
func (g *HTTPGateway) retryIdempotent(ctx context.Context, operation func(ctx context.Context) error) error {
	if g.statusRetries <= 0 {
		return operation(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, g.httpClient.Timeout)
	defer cancel()

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 200 * time.Millisecond
	expBackoff.MaxInterval = 2 * time.Second
	expBackoff.MaxElapsedTime = g.httpClient.Timeout

	return backoff.Retry(func() error {
		err := operation(ctx)
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(g.statusRetries)), ctx))
}

func (g *HTTPGateway) do(ctx context.Context, env models.Environment, method, path, token string, body, target interface{}) error {
	op := method + " " + path
	baseURL, ok := g.baseURLs[env]
	if !ok || baseURL == "" {
		return fmt.Errorf("no FBR base URL configured for environment %q", env)
	}

	if limiter := g.limiters[env]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding %s request: %w", op, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("error creating %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		g.logger.WithFields(logrus.Fields{
			"operation":   op,
			"environment": env,
			"duration":    duration,
		}).WithError(err).Warn("FBR request failed")
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("error reading response: %w", err)}
	}

	fields := logrus.Fields{
		"operation":   op,
		"environment": env,
		"status":      resp.StatusCode,
		"duration":    duration,
	}
	if resp.StatusCode >= http.StatusBadRequest {
		g.logger.WithFields(fields).Warn("FBR returned an error response")
		return &HTTPError{StatusCode: resp.StatusCode, Method: method, Path: path, Body: string(respBody)}
	}
	g.logger.WithFields(fields).Debug("FBR request completed")

	if target == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("error decoding response: %w", err)}
	}
	return nil
}

func withEnvironment(payload *InvoicePayload, env models.Environment) *InvoicePayload {
	out := *payload
	out.Environment = string(env)
	return &out
}
