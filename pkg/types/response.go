package types

import (
	"time"

	"github.com/angelmondragon/dealerstock-backend/pkg/pagination"
)

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type PaginatedEnvelope struct {
	Data       any             `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

type APIError struct {
	Code          string    `json:"code"`
	Message       string    `json:"message"`
	ErrorID       string    `json:"error_id"`
	Details       any       `json:"details,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	Documentation string    `json:"documentation,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
