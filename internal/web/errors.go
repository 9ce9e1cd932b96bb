package web

// errors.go turns service errors into HTTP responses.
//
// Every error is logged with its technical detail and the request id, then
// mapped through importer.MapError to a message, an action and a support
// code. A structural mismatch keeps its own text, which names the missing
// and the found headers, so operators can fix the file without a lookup.
//
// Two codes exist only at this layer: REQ001 for malformed requests the
// importer never sees, and RATE001 for rate-limited clients.

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/logging"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/sheet"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message,omitempty"`
	Action  string           `json:"action,omitempty"`
	Code    string           `json:"code"`
	Missing []string         `json:"missing,omitempty"` // structural mismatch only
	Found   []string         `json:"found,omitempty"`   // structural mismatch only
	Report  *importer.Report `json:"report,omitempty"`  // rejected imports
}

// requestError is a client mistake detected by the transport itself.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{status: http.StatusBadRequest, err: err}
}

// statusFor picks the HTTP status of err.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.Is(err, importer.ErrStructuralMismatch), errors.Is(err, importer.ErrInvalidRows):
		return http.StatusUnprocessableEntity
	case errors.Is(err, importer.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, importer.ErrTooManyImports):
		return http.StatusTooManyRequests
	case errors.Is(err, importer.ErrUnknownSchema):
		return http.StatusNotFound
	case errors.Is(err, importer.ErrNoFile),
		errors.Is(err, sheet.ErrUnreadable),
		errors.Is(err, sheet.ErrNoSheets):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &reqErr):
		return reqErr.status
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its JSON response. report, when not
// nil, is attached so a rejected file still shows its row problems.
func respondError(w http.ResponseWriter, r *http.Request, err error, report *importer.Report) {
	status := statusFor(err)
	msg := importer.MapError(err)

	logger := logging.FromContext(r.Context())
	level := logger.Warn
	if status >= http.StatusInternalServerError {
		level = logger.Error
	}
	level("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	body := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Report:  report,
	}

	var mismatch *importer.StructuralMismatchError
	var reqErr *requestError
	switch {
	case errors.As(err, &mismatch):
		body.Error = mismatch.Error()
		body.Missing = mismatch.Missing
		body.Found = mismatch.Found
	case errors.As(err, &reqErr) && msg.Code == "ERR000":
		body.Error = reqErr.Error()
		body.Code = "REQ001"
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, r, status, body)
}
