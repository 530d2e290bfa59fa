package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode representa el código de error
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeConflict       ErrorCode = "CONFLICT"
	ErrorCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrorCodeInternal       ErrorCode = "INTERNAL"
	ErrorCodeAuthRequired   ErrorCode = "AUTH_REQUIRED"
	ErrorCodeUpstream       ErrorCode = "UPSTREAM_UNAVAILABLE"
)

var (
	// ErrNotFound se envuelve en los errores de recursos inexistentes
	ErrNotFound = errors.New("not found")
	// ErrUsage indica un uso incorrecto de la operación, no una falla transitoria
	ErrUsage = errors.New("invalid usage")
	// ErrConflict indica que el recurso ya está en el estado pedido
	ErrConflict = errors.New("conflict")
)

// ErrorKind clasifica las fallas del flujo de envío a FBR
type ErrorKind string

const (
	ErrorKindValidation      ErrorKind = "validation"
	ErrorKindAuth            ErrorKind = "auth"
	ErrorKindRemoteRejection ErrorKind = "remote_rejection"
	ErrorKindTransient       ErrorKind = "transient"
	ErrorKindInternal        ErrorKind = "internal"
)

// SubmissionError es el error tipado del flujo de envío
type SubmissionError struct {
	Kind    ErrorKind     `json:"kind"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// Error implementa la interfaz error
func (e *SubmissionError) Error() string {
	return e.StoredText()
}

// StoredText retorna el texto que se persiste en el registro; distingue
// un rechazo de FBR de una falla de conexión.
func (e *SubmissionError) StoredText() string {
	switch e.Kind {
	case ErrorKindValidation:
		issues := make([]string, 0, len(e.Details))
		for _, d := range e.Details {
			issues = append(issues, fmt.Sprintf("%s: %s", d.Field, d.Issue))
		}
		if len(issues) == 0 {
			return "validation failed: " + e.Message
		}
		return "validation failed: " + strings.Join(issues, "; ")
	case ErrorKindAuth:
		return "authentication required: " + e.Message
	case ErrorKindRemoteRejection:
		return "FBR rejected submission: " + e.Message
	case ErrorKindInternal:
		return "internal error: " + e.Message
	default:
		return "FBR unreachable: " + e.Message
	}
}

// NewSubmissionError crea un error tipado del flujo de envío
func NewSubmissionError(kind ErrorKind, message string, details ...ErrorDetail) *SubmissionError {
	return &SubmissionError{Kind: kind, Message: message, Details: details}
}

// IsAuthError indica si el error requiere volver a autenticarse
func IsAuthError(err error) bool {
	var subErr *SubmissionError
	return errors.As(err, &subErr) && subErr.Kind == ErrorKindAuth
}

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// APIError implementa la interfaz error para uso en la API
type APIError struct {
	ErrorResponse
}

// Error implementa la interfaz error
func (e APIError) Error() string {
	return e.ErrorResponse.Error.Message
}

// NewAPIError crea un nuevo error de API
func NewAPIError(errResp ErrorResponse) error {
	return &APIError{ErrorResponse: errResp}
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewConflictError crea un error de conflicto (idempotencia)
func NewConflictError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeConflict),
			Message: message,
		},
	}
}

// NewUnauthorizedError crea un error de autenticación
func NewUnauthorizedError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeUnauthorized),
			Message: message,
		},
	}
}

// NewForbiddenError crea un error de permisos
func NewForbiddenError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeForbidden),
			Message: message,
		},
	}
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeNotFound),
			Message: message,
		},
	}
}

// NewRateLimitedError crea un error de rate limiting
func NewRateLimitedError(message string, retryAfter time.Duration) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeRateLimited),
			Message: message,
			Details: []ErrorDetail{
				{Field: "retry_after", Issue: fmt.Sprintf("%ds", int(retryAfter.Seconds()))},
			},
		},
	}
}

// NewAuthRequiredError crea un error cuando no hay sesión válida con FBR
func NewAuthRequiredError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeAuthRequired, message)
}

// NewUpstreamError crea un error cuando FBR no responde
func NewUpstreamError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeUpstream, message)
}

// NewSubmissionErrorResponse convierte un error de envío en respuesta de API
func NewSubmissionErrorResponse(err *SubmissionError) ErrorResponse {
	code := ErrorCodeInvalidRequest
	switch err.Kind {
	case ErrorKindAuth:
		code = ErrorCodeAuthRequired
	case ErrorKindTransient:
		code = ErrorCodeUpstream
	case ErrorKindInternal:
		code = ErrorCodeInternal
	}
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: err.StoredText(),
			Details: err.Details,
		},
	}
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInternal),
			Message: message,
		},
	}
}
