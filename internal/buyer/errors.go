package buyer

import (
	"fmt"
	"strings"
	"time"
)

// FieldError is one failed rule, keyed by the field path it applies to.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// StructuralInputError means the payload could not be read as a record at
// all, so no field checks ran.
type StructuralInputError struct {
	Reason string
	Err    error
}

func (e *StructuralInputError) Error() string {
	if e.Err != nil {
		return "invalid input: " + e.Reason + ": " + e.Err.Error()
	}
	return "invalid input: " + e.Reason
}

func (e *StructuralInputError) Unwrap() error { return e.Err }

// FieldValidationError carries every field failure found in one record.
type FieldValidationError struct {
	Errors []FieldError
}

func (e *FieldValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed.
func (e *FieldValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// NotFoundError reports a missing buyer.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("buyer not found: %s", e.ID)
}

// OwnershipError reports that the actor does not own the buyer it tried to change.
type OwnershipError struct {
	BuyerID string
	UserID  string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("forbidden: user %s does not own buyer %s", e.UserID, e.BuyerID)
}

// ConcurrencyConflictError reports a write based on a stale read.
type ConcurrencyConflictError struct {
	BuyerID string
	Client  time.Time
	Stored  time.Time
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("conflict: buyer %s was modified at %s after client copy from %s",
		e.BuyerID, e.Stored.Format(time.RFC3339Nano), e.Client.Format(time.RFC3339Nano))
}

// RateLimitError reports a throttled operation.
type RateLimitError struct {
	UserID     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded for user " + e.UserID
}

// BatchSizeError reports an import with too many data rows.
type BatchSizeError struct {
	Rows int
	Max  int
}

func (e *BatchSizeError) Error() string {
	return fmt.Sprintf("Maximum %d rows allowed (got %d)", e.Max, e.Rows)
}

// RowError groups the field failures of one import row. Row is the 1-based
// line number in the source file, header included.
type RowError struct {
	Row    int          `json:"row"`
	Errors []FieldError `json:"errors"`
}

// BatchValidationError rejects an import in which at least one row failed.
type BatchValidationError struct {
	Rows       []RowError
	ValidCount int
	TotalCount int
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d of %d rows invalid",
		e.TotalCount-e.ValidCount, e.TotalCount)
}

// UnknownCodeError is returned by LabelFor for codes outside a domain.
type UnknownCodeError struct {
	Field Field
	Code  string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("invalid enum: %q is not a %s code", e.Code, e.Field)
}
