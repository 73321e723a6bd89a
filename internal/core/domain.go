package core

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Origin is the counterparty an expense was paid to (a shop, a vendor).
	Origin struct {
		ID   int64
		Name string
	}

	// PaymentType is the method an expense was paid with (card, cash...).
	PaymentType struct {
		ID   int64
		Name string
	}

	Expense struct {
		ID          int64
		Amount      Money
		Origin      Origin
		PaymentType PaymentType
		Date        Date // purchase date
		DueDate     Date // billing date, advanced month by month for installments
		Description string
		Installment Installment
	}

	// Account holds the per-user settings the aggregations depend on.
	// A nil Salary means the user has not configured it yet.
	Account struct {
		ID     int64
		Name   string
		Salary *Money
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyOrigin        = errors.New("empty origin")
	ErrEmptyPaymentType   = errors.New("empty payment type")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrSalaryNotSet       = errors.New("please insert Month Salary information before moving forward")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddMonths advances the date by n calendar months. A day past the end of
// the target month is clamped to its last day (Jan 31 + 1 month = Feb 28).
func (d Date) AddMonths(n int) Date {
	year, month, day := d.Time.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, d.Time.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return Date{Time: time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, d.Time.Location())}
}

// DaysUntil returns the number of whole days from d to other.
// It is negative when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.DueDate.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Origin.Name) == "" {
		return ErrEmptyOrigin
	}
	if strings.TrimSpace(e.PaymentType.Name) == "" {
		return ErrEmptyPaymentType
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return e.Installment.Validate()
}

// HasSalary reports whether the account salary has been configured.
func (a *Account) HasSalary() bool {
	return a != nil && a.Salary != nil
}

// copyForInstallment builds the sibling of e that carries installment inst
// and is due on due. Every field is listed explicitly; the ID is left unset
// so the sibling gets its own identity when saved.
func (e Expense) copyForInstallment(inst Installment, due Date) Expense {
	return Expense{
		Amount:      e.Amount,
		Origin:      e.Origin,
		PaymentType: e.PaymentType,
		Date:        e.Date,
		DueDate:     due,
		Description: e.Description,
		Installment: inst,
	}
}
