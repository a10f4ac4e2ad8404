package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation     Code = "VALIDATION_ERROR"
	CodeInvalidInput   Code = "INVALID_INPUT"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeForbidden      Code = "FORBIDDEN"
	CodeNotFound       Code = "RESOURCE_NOT_FOUND"
	CodeConflict       Code = "RESOURCE_CONFLICT"
	CodeRateLimit      Code = "RATE_LIMITED"
	CodeTimeout        Code = "REQUEST_TIMEOUT"
	CodeUnavailable    Code = "SERVICE_UNAVAILABLE"
	CodeNotImplemented Code = "NOT_IMPLEMENTED"

	CodeInsufficientStock      Code = "INSUFFICIENT_STOCK"
	CodeReservationNotFound    Code = "RESERVATION_NOT_FOUND"
	CodeReservationExpired     Code = "RESERVATION_EXPIRED"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
	CodeWarehouseNotFound      Code = "WAREHOUSE_NOT_FOUND"
	CodeInvalidWarehouseOp     Code = "INVALID_WAREHOUSE_OPERATION"
	CodeTransferNotFound       Code = "TRANSFER_NOT_FOUND"
	CodeTransferConflict       Code = "TRANSFER_STATE_CONFLICT"
	CodeBusinessRule           Code = "BUSINESS_RULE_VIOLATION"

	CodeBackgroundJob Code = "BACKGROUND_JOB_ERROR"
	CodeDatabase      Code = "DATABASE_ERROR"
	CodeMigration     Code = "MIGRATION_ERROR"
	CodeConfig        Code = "CONFIG_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	Documentation  string
}

const docsBase = "https://docs.yourapi.com/errors"

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
		Documentation:  docsBase + "/validation",
	},
	CodeInvalidInput: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "invalid input",
		DetailsAllowed: false,
		Documentation:  docsBase + "/validation",
	},
	CodeUnauthorized: {
		HTTPStatus:     http.StatusUnauthorized,
		Retryable:      false,
		PublicMessage:  "authentication required",
		DetailsAllowed: false,
		Documentation:  docsBase + "/authentication",
	},
	CodeForbidden: {
		HTTPStatus:     http.StatusForbidden,
		Retryable:      false,
		PublicMessage:  "access denied",
		DetailsAllowed: false,
		Documentation:  docsBase + "/authorization",
	},
	CodeNotFound: {
		HTTPStatus:     http.StatusNotFound,
		Retryable:      false,
		PublicMessage:  "resource not found",
		DetailsAllowed: false,
		Documentation:  docsBase + "/not-found",
	},
	CodeConflict: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "resource already exists",
		DetailsAllowed: false,
	},
	CodeRateLimit: {
		HTTPStatus:     http.StatusTooManyRequests,
		Retryable:      true,
		PublicMessage:  "rate limit exceeded",
		DetailsAllowed: false,
		Documentation:  docsBase + "/rate-limiting",
	},
	CodeTimeout: {
		HTTPStatus:     http.StatusRequestTimeout,
		Retryable:      true,
		PublicMessage:  "request timed out",
		DetailsAllowed: false,
	},
	CodeUnavailable: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "service temporarily unavailable",
		DetailsAllowed: false,
	},
	CodeNotImplemented: {
		HTTPStatus:     http.StatusNotImplemented,
		Retryable:      false,
		PublicMessage:  "not implemented",
		DetailsAllowed: false,
	},
	CodeInsufficientStock: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "insufficient stock",
		DetailsAllowed: false,
	},
	CodeReservationNotFound: {
		HTTPStatus:     http.StatusNotFound,
		Retryable:      false,
		PublicMessage:  "reservation not found",
		DetailsAllowed: false,
	},
	CodeReservationExpired: {
		HTTPStatus:     http.StatusGone,
		Retryable:      false,
		PublicMessage:  "reservation expired",
		DetailsAllowed: false,
	},
	CodeConcurrentModification: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      true,
		PublicMessage:  "resource was modified concurrently",
		DetailsAllowed: false,
	},
	CodeWarehouseNotFound: {
		HTTPStatus:     http.StatusNotFound,
		Retryable:      false,
		PublicMessage:  "warehouse not found",
		DetailsAllowed: false,
	},
	CodeInvalidWarehouseOp: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "invalid warehouse operation",
		DetailsAllowed: false,
	},
	CodeTransferNotFound: {
		HTTPStatus:     http.StatusNotFound,
		Retryable:      false,
		PublicMessage:  "transfer not found",
		DetailsAllowed: false,
	},
	CodeTransferConflict: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "transfer already decided",
		DetailsAllowed: false,
	},
	CodeBusinessRule: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		Retryable:      false,
		PublicMessage:  "business rule violation",
		DetailsAllowed: false,
	},
	CodeBackgroundJob: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      true,
		PublicMessage:  "background job failed",
		DetailsAllowed: false,
	},
	CodeDatabase: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      true,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
	CodeMigration: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      false,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
	CodeConfig: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      false,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
	CodeInternal: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      true,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, format string, args ...any) *Error {
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, "%s", message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
