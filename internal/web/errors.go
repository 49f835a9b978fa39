package web

// errors.go provides unified error responses for the web layer.
//
// The technical error is logged with the request id for correlation. The
// client receives the mapped user message, as JSON for API callers and as
// an HTML fragment for HTMX requests.

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/buyerleads/internal/auth"
	"github.com/JonMunkholm/buyerleads/internal/buyer"
	"github.com/JonMunkholm/buyerleads/internal/core"
	"github.com/JonMunkholm/buyerleads/internal/logging"
	"github.com/JonMunkholm/buyerleads/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message"`
	Action  string             `json:"action,omitempty"`
	Code    string             `json:"code"`
	Details []buyer.FieldError `json:"details,omitempty"`
}

// ImportErrorResponse is returned when at least one import row is invalid.
type ImportErrorResponse struct {
	Success    bool             `json:"success"`
	Errors     []buyer.RowError `json:"errors"`
	ValidCount int              `json:"validCount"`
	TotalCount int              `json:"totalCount"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		structural *buyer.StructuralInputError
		validation *buyer.FieldValidationError
		batchSize  *buyer.BatchSizeError
		batch      *buyer.BatchValidationError
		notFound   *buyer.NotFoundError
		ownership  *buyer.OwnershipError
		conflict   *buyer.ConcurrencyConflictError
		rateLimit  *buyer.RateLimitError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &structural), errors.As(err, &validation),
		errors.As(err, &batchSize), errors.As(err, &batch):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &ownership):
		return http.StatusForbidden
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	var rateLimit *buyer.RateLimitError
	if errors.As(err, &rateLimit) {
		w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(rateLimit)))
	}

	var validation *buyer.FieldValidationError
	hasDetails := errors.As(err, &validation)

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w); err != nil {
			logger.Error("render error alert", "error", err)
			return
		}
		if hasDetails {
			byField, order := fieldErrorMap(validation.Errors)
			if err := templates.FieldErrors(byField, order).Render(r.Context(), w); err != nil {
				logger.Error("render field errors", "error", err)
			}
		}
		return
	}

	if !wantsJSON(r) {
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", status)
		return
	}

	var batch *buyer.BatchValidationError
	if errors.As(err, &batch) {
		writeJSON(w, r, status, ImportErrorResponse{
			Success:    false,
			Errors:     batch.Rows,
			ValidCount: batch.ValidCount,
			TotalCount: batch.TotalCount,
		})
		return
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if hasDetails {
		resp.Details = validation.Errors
	}
	writeJSON(w, r, status, resp)
}

func retrySeconds(e *buyer.RateLimitError) int {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// fieldErrorMap joins multiple messages for one field and keeps first-seen order.
func fieldErrorMap(errs []buyer.FieldError) (map[string]string, []string) {
	byField := make(map[string]string, len(errs))
	var order []string
	for _, fe := range errs {
		if prev, ok := byField[fe.Field]; ok {
			byField[fe.Field] = prev + "; " + fe.Message
			continue
		}
		byField[fe.Field] = fe.Message
		order = append(order, fe.Field)
	}
	return byField, order
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client asked for or sent JSON.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
