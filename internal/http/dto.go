package http

import (
	"economad/internal/core"
)

type namedResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type expenseResponse struct {
	ID          int64         `json:"id"`
	Value       string        `json:"value"`
	Origin      namedResponse `json:"origin"`
	PaymentType namedResponse `json:"paymentType"`
	Date        string        `json:"date"`
	DueDate     string        `json:"dueDate"`
	Description string        `json:"description"`
	Installment string        `json:"installment"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Value:       e.Amount.String(),
		Origin:      namedResponse{ID: e.Origin.ID, Name: e.Origin.Name},
		PaymentType: namedResponse{ID: e.PaymentType.ID, Name: e.PaymentType.Name},
		Date:        e.Date.String(),
		DueDate:     e.DueDate.String(),
		Description: e.Description,
		Installment: e.Installment.String(),
	}
}

func toExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

type pageResponse struct {
	Content       []expenseResponse `json:"content"`
	Number        int               `json:"number"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

func toPageResponse(p core.Page[core.Expense]) pageResponse {
	return pageResponse{
		Content:       toExpenseResponses(p.Items),
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

type statisticsEntryResponse struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// toStatisticsResponse lists the groups followed by TOTAL and Money left.
func toStatisticsResponse(s core.Statistics) []statisticsEntryResponse {
	entries := s.Entries()
	out := make([]statisticsEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, statisticsEntryResponse{Label: e.Label, Value: e.Total.String()})
	}
	return out
}

type dailyIndexResponse struct {
	InitialDate string `json:"initialDate"`
	FinalDate   string `json:"finalDate"`
	Index       string `json:"index"`
}

type accountResponse struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Salary *string `json:"salary"`
}

func toAccountResponse(a core.Account) accountResponse {
	resp := accountResponse{ID: a.ID, Name: a.Name}
	if a.Salary != nil {
		s := a.Salary.String()
		resp.Salary = &s
	}
	return resp
}

func toNamedResponses[T any](items []T, id func(T) int64, name func(T) string) []namedResponse {
	out := make([]namedResponse, 0, len(items))
	for _, it := range items {
		out = append(out, namedResponse{ID: id(it), Name: name(it)})
	}
	return out
}
