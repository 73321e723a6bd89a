package core

import "strings"

// ExpenseForm is the user input an expense is created from. Value and the
// dates are raw text; DueDate defaults to Date and InstallmentNumber to 1.
type ExpenseForm struct {
	Value             string
	OriginName        string
	PaymentTypeName   string
	Date              string
	DueDate           string
	Description       string
	InstallmentNumber int
}

// ToExpense parses and validates the form into the first expense of its
// installment plan.
func (f ExpenseForm) ToExpense() (Expense, error) {
	amount, err := ParseMoney(f.Value)
	if err != nil {
		return Expense{}, err
	}
	date, err := ParseDate(f.Date)
	if err != nil {
		return Expense{}, err
	}
	due := date
	if strings.TrimSpace(f.DueDate) != "" {
		if due, err = ParseDate(f.DueDate); err != nil {
			return Expense{}, err
		}
	}
	n := f.InstallmentNumber
	if n == 0 {
		n = 1
	}
	inst, err := FirstInstallment(n)
	if err != nil {
		return Expense{}, err
	}

	e := Expense{
		Amount:      amount,
		Origin:      Origin{Name: strings.TrimSpace(f.OriginName)},
		PaymentType: PaymentType{Name: strings.TrimSpace(f.PaymentTypeName)},
		Date:        date,
		DueDate:     due,
		Description: strings.TrimSpace(f.Description),
		Installment: inst,
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}
