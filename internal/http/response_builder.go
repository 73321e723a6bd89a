package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"economad/internal/core"
	"economad/internal/storage"
)

// ResponseBuilder assembles a response before writing it in one go.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
	err        error
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.headers["Content-Type"] = "application/json"
	b.body, b.err = json.Marshal(v)
	return b
}

// Attachment sets a downloadable body.
func (b *ResponseBuilder) Attachment(contentType, filename string, data []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	b.body = data
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		slog.Error("Failed to encode response", "error", b.err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message, Status: statusCode})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

var (
	badRequestErrors = []error{
		errBadRequestBody,
		core.ErrInvalidMonthDescription,
		core.ErrInvalidStatisticsType,
		core.ErrInvalidInstallment,
		core.ErrInvalidDate,
		core.ErrInvalidDay,
		core.ErrInvalidMonth,
		core.ErrInvalidAmount,
	}
	unprocessableErrors = []error{
		core.ErrSalaryNotSet,
		core.ErrInvalidDateRange,
		core.ErrEmptyOrigin,
		core.ErrEmptyPaymentType,
		core.ErrDescriptionTooLong,
	}
)

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	for _, target := range unprocessableErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ErrorFor builds the response for err. Internal errors are logged and
// reported without detail.
func ErrorFor(r *http.Request, err error) *ResponseBuilder {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		return InternalServerError("internal error")
	}
	return ErrorResponse(status, err.Error())
}
