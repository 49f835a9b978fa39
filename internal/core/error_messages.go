package core

// error_messages.go maps errors to user-facing messages with a support code.
//
// Codes by category:
//
//	VAL001  request body could not be read (StructuralInputError)
//	VAL002  one or more fields failed validation (FieldValidationError)
//	VAL003  import has too many rows (BatchSizeError)
//	VAL004  one or more import rows failed validation (BatchValidationError)
//	BUY001  buyer not found
//	BUY002  buyer owned by someone else
//	BUY003  buyer changed since it was loaded
//	RATE001 per-user rate limit exceeded
//	RATE002 per-IP rate limit exceeded (web middleware)
//	IMP001  all import slots busy
//	AUTH001 no valid session
//	DB001-DB008  database failures, matched on the driver message
//	FILE001-FILE004  upload problems
//	REQ001-REQ002  cancelled or timed-out requests
//	ERR000  anything else; check the logs for the original error
//
// Typed errors are matched first with errors.As. Untyped errors fall back
// to case-insensitive substring patterns, first match wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/buyerleads/internal/auth"
	"github.com/JonMunkholm/buyerleads/internal/buyer"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var (
	msgInvalidInput = UserMessage{
		Message: "The request could not be read",
		Action:  "Check that the request body is a JSON object",
		Code:    "VAL001",
	}
	msgValidation = UserMessage{
		Message: "Some fields are invalid",
		Action:  "Correct the listed fields and try again",
		Code:    "VAL002",
	}
	msgBatchSize = UserMessage{
		Message: fmt.Sprintf("Imports are limited to %d rows", buyer.MaxImportRows),
		Action:  "Split the file into smaller files",
		Code:    "VAL003",
	}
	msgBatchValidation = UserMessage{
		Message: "Some rows in the file are invalid",
		Action:  "Fix the listed rows and import the file again",
		Code:    "VAL004",
	}
	msgNotFound = UserMessage{
		Message: "Buyer not found",
		Action:  "The buyer may have been deleted",
		Code:    "BUY001",
	}
	msgForbidden = UserMessage{
		Message: "You can only change buyers you own",
		Code:    "BUY002",
	}
	msgConflict = UserMessage{
		Message: "This buyer was changed by someone else",
		Action:  "Reload the buyer and reapply your changes",
		Code:    "BUY003",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
	msgImportsBusy = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}
	msgUnauthenticated = UserMessage{
		Message: "You are not signed in",
		Action:  "Sign in and try again",
		Code:    "AUTH001",
	}
)

// typedMessage maps the domain taxonomy.
func typedMessage(err error) (UserMessage, bool) {
	var (
		structural *buyer.StructuralInputError
		validation *buyer.FieldValidationError
		batchSize  *buyer.BatchSizeError
		batchRows  *buyer.BatchValidationError
		notFound   *buyer.NotFoundError
		ownership  *buyer.OwnershipError
		conflict   *buyer.ConcurrencyConflictError
		rateLimit  *buyer.RateLimitError
	)
	switch {
	case errors.As(err, &validation):
		return msgValidation, true
	case errors.As(err, &batchSize):
		return msgBatchSize, true
	case errors.As(err, &batchRows):
		return msgBatchValidation, true
	case errors.As(err, &structural):
		return msgInvalidInput, true
	case errors.As(err, &notFound):
		return msgNotFound, true
	case errors.As(err, &ownership):
		return msgForbidden, true
	case errors.As(err, &conflict):
		return msgConflict, true
	case errors.As(err, &rateLimit):
		return msgRateLimited, true
	case errors.Is(err, ErrTooManyImports):
		return msgImportsBusy, true
	case errors.Is(err, auth.ErrNoToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired):
		return msgUnauthenticated, true
	}
	return UserMessage{}, false
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered specific before general.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Reload the page and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Sign out and sign in again",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates check constraint",
		msg: UserMessage{
			Message: "A value was rejected by the database",
			Action:  "Check the submitted values against the allowed options",
			Code:    "DB008",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "http: request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Upload a smaller file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the file path",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or XLSX file to import",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Unsupported file type",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FILE004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err into a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if msg, ok := typedMessage(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as one line for terminals.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Action == "" {
		return fmt.Sprintf("%s (Code: %s)", msg.Message, msg.Code)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than the
// generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
