package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInstallment is returned for descriptors that are not "k/N"
// with 1 <= k <= N <= MaxInstallments.
var ErrInvalidInstallment = errors.New("invalid installment")

// MaxInstallments caps a plan at thirty years of monthly payments.
const MaxInstallments = 360

// Installment identifies one payment of a plan, rendered as "current/total".
type Installment struct {
	Current int
	Total   int
}

// SingleInstallment is the descriptor of an expense paid at once.
var SingleInstallment = Installment{Current: 1, Total: 1}

// FirstInstallment returns "1/total".
func FirstInstallment(total int) (Installment, error) {
	inst := Installment{Current: 1, Total: total}
	if err := inst.Validate(); err != nil {
		return Installment{}, err
	}
	return inst, nil
}

// ParseInstallment parses a "current/total" descriptor.
func ParseInstallment(s string) (Installment, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return Installment{}, fmt.Errorf("%w: %q", ErrInvalidInstallment, s)
	}
	current, err := strconv.Atoi(parts[0])
	if err != nil {
		return Installment{}, fmt.Errorf("%w: %q", ErrInvalidInstallment, s)
	}
	total, err := strconv.Atoi(parts[1])
	if err != nil {
		return Installment{}, fmt.Errorf("%w: %q", ErrInvalidInstallment, s)
	}
	inst := Installment{Current: current, Total: total}
	if err := inst.Validate(); err != nil {
		return Installment{}, err
	}
	return inst, nil
}

func (i Installment) Validate() error {
	if i.Current < 1 || i.Total < 1 || i.Current > i.Total || i.Total > MaxInstallments {
		return fmt.Errorf("%w: %d/%d", ErrInvalidInstallment, i.Current, i.Total)
	}
	return nil
}

func (i Installment) String() string {
	return strconv.Itoa(i.Current) + "/" + strconv.Itoa(i.Total)
}

// Next returns the following installment of the same plan.
func (i Installment) Next() (Installment, error) {
	next := Installment{Current: i.Current + 1, Total: i.Total}
	if err := next.Validate(); err != nil {
		return Installment{}, err
	}
	return next, nil
}

// ExpandInstallments returns the remaining siblings of first, which must be
// the opening installment of its plan. Sibling k is due k-1 months after
// first and carries descriptor "k/N". A single-installment expense has no
// siblings.
func ExpandInstallments(first Expense) ([]Expense, error) {
	inst := first.Installment
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if inst.Current != 1 {
		return nil, fmt.Errorf("%w: expansion must start from 1/%d, got %s", ErrInvalidInstallment, inst.Total, inst)
	}

	siblings := make([]Expense, 0, inst.Total-1)
	for step := 1; step < inst.Total; step++ {
		next, err := inst.Next()
		if err != nil {
			return nil, err
		}
		inst = next
		siblings = append(siblings, first.copyForInstallment(inst, first.DueDate.AddMonths(step)))
	}
	return siblings, nil
}
