package server

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	pcberrors "github.com/pcbshop/boardopts/pkg/errors"
	"github.com/pcbshop/boardopts/pkg/serializer"
)

// WriteError writes an ErrorResponse with the given status and code.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code pcberrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr maps err to an ErrorResponse. Structured errors keep their
// code, message and context; anything else is reported as INTERNAL with
// fallbackMessage. The cause text is added to details under "error".
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, extraDetails map[string]any) {
	var se *pcberrors.StructuredError
	if !stderrors.As(err, &se) {
		slog.Error("unhandled error", "path", r.URL.Path, "error", err)
		WriteError(w, r, http.StatusInternalServerError, pcberrors.ErrCodeInternal, fallbackMessage,
			retryableFromCode(pcberrors.ErrCodeInternal),
			mergeDetails(extraDetails, map[string]any{"error": err.Error()}))
		return
	}

	details := mergeDetails(se.Context, extraDetails)
	if se.Cause != nil {
		details = mergeDetails(details, map[string]any{"error": se.Cause.Error()})
	}
	WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code), details)
}

// HTTPStatusFromCode maps an error code to an HTTP status.
func HTTPStatusFromCode(code pcberrors.ErrorCode) int {
	switch code {
	case pcberrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case pcberrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case pcberrors.ErrCodeNotFound:
		return http.StatusNotFound
	case pcberrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case pcberrors.ErrCodeConflict:
		return http.StatusConflict
	case pcberrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case pcberrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case pcberrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code pcberrors.ErrorCode) bool {
	switch code {
	case pcberrors.ErrCodeTimeout, pcberrors.ErrCodeUnavailable,
		pcberrors.ErrCodeRateLimitExceeded, pcberrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a new map with the entries of a then b, or nil when
// both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
