package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"economad/internal/core"
)

// maxBodyBytes bounds request bodies; an expense form is a few hundred bytes.
const maxBodyBytes = 64 << 10

var errBadRequestBody = errors.New("invalid request body")

// RequestBodyParser reads a JSON or form-encoded body once and exposes its
// fields by name.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it looks like a JSON object and as
// form data otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") || strings.Contains(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errBadRequestBody, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadRequestBody, p.err)
	}
	return p.err
}

// Get returns the named field as trimmed, sanitized text.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetInt returns the named field as an int; absent fields yield 0.
func (p *RequestBodyParser) GetInt(key string) (int, error) {
	v := p.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequestBody, key)
	}
	return n, nil
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// ParseExpenseForm reads the creation body. Field names follow the JSON
// representation of an expense.
func ParseExpenseForm(r *http.Request) (core.ExpenseForm, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.ExpenseForm{}, err
	}
	n, err := p.GetInt("installmentNumber")
	if err != nil {
		return core.ExpenseForm{}, err
	}
	return core.ExpenseForm{
		Value:             p.Get("value"),
		OriginName:        p.Get("origin"),
		PaymentTypeName:   p.Get("paymentType"),
		Date:              p.Get("date"),
		DueDate:           p.Get("dueDate"),
		Description:       p.Get("description"),
		InstallmentNumber: n,
	}, nil
}

// ParseExpenseFilter builds a listing filter from query parameters.
// Missing parameters leave the matching constraint unset.
func ParseExpenseFilter(query url.Values) (*core.ExpenseFilter, error) {
	f := &core.ExpenseFilter{
		Description:     sanitizeInput(query.Get("description")),
		OriginName:      sanitizeInput(query.Get("origin")),
		PaymentTypeName: sanitizeInput(query.Get("paymentType")),
	}
	var err error
	if f.InitialDate, err = parseOptionalDate(query, "initialDate"); err != nil {
		return nil, err
	}
	if f.FinalDate, err = parseOptionalDate(query, "finalDate"); err != nil {
		return nil, err
	}
	return f, nil
}

// ParsePageRequest reads page and size; invalid numbers fall back to the
// defaults the same way absent ones do.
func ParsePageRequest(query url.Values) core.PageRequest {
	var p core.PageRequest
	if v, err := strconv.Atoi(strings.TrimSpace(query.Get("page"))); err == nil {
		p.Number = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(query.Get("size"))); err == nil {
		p.Size = v
	}
	return p.Normalize()
}

// ParseDateRange reads the mandatory initialDate and finalDate parameters.
func ParseDateRange(query url.Values) (core.Date, core.Date, error) {
	initial, err := parseRequiredDate(query, "initialDate")
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	final, err := parseRequiredDate(query, "finalDate")
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	return initial, final, nil
}

func parseOptionalDate(query url.Values, key string) (*core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &d, nil
}

func parseRequiredDate(query url.Values, key string) (core.Date, error) {
	d, err := parseOptionalDate(query, key)
	if err != nil {
		return core.Date{}, err
	}
	if d == nil {
		return core.Date{}, fmt.Errorf("%s: %w", key, core.ErrInvalidDate)
	}
	return *d, nil
}
