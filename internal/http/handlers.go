package http

import (
	"net/http"
	"strings"

	"economad/internal/core"
	applog "economad/internal/log"
	"economad/internal/worksheet"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", "error", err)
		ErrorResponse(http.StatusServiceUnavailable, "storage unavailable").Write(w)
		return
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := ParseExpenseFilter(query)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	page, err := s.svc.ListAll(r.Context(), filter, ParsePageRequest(query))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewResponse().JSON(toPageResponse(page)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	form, err := ParseExpenseForm(r)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}

	saved, err := s.svc.Create(r.Context(), form)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	s.invalidateStatistics()

	first := saved[0]
	fields := applog.NewFields().
		WithExpense(first.ID, first.Description, first.Amount.Cents, first.Origin.Name, first.PaymentType.Name, first.Installment.String()).
		WithOperation(applog.OpCreate)
	applog.FromContext(r.Context()).WithComponent(applog.ComponentExpense).
		InfoContext(r.Context(), "Expense created", append(fields.ToSlice(), "saved", len(saved))...)

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses?initialDate="+first.DueDate.String()+"&finalDate="+first.DueDate.String()).
		JSON(toExpenseResponses(saved)).
		Write(w)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	month := query.Get("month")
	kind, err := core.ParseStatisticsType(query.Get("type"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}

	key := statisticsCacheKey(month, kind)
	if stats, ok := s.statsCache.Get(key); ok {
		NewResponse().Header("X-Cache", "HIT").JSON(toStatisticsResponse(stats)).Write(w)
		return
	}

	account, err := s.svc.Account(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	stats, err := s.svc.ListStatisticsByMonth(r.Context(), &account, month, kind)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	s.statsCache.Set(key, stats)

	NewResponse().Header("X-Cache", "MISS").JSON(toStatisticsResponse(stats)).Write(w)
}

func (s *Server) handleWorksheet(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))

	account, err := s.svc.Account(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	data, err := s.svc.GenerateMonthlyWorksheet(r.Context(), &account, month)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}

	NewResponse().Attachment(worksheet.ContentType, worksheetFilename(month), data).Write(w)
}

func worksheetFilename(month string) string {
	if month == "" {
		return "expenses.xlsx"
	}
	if window, err := core.ParseMonthWindow(month); err == nil {
		return "expenses-" + window.Start.Format("2006-01") + ".xlsx"
	}
	return "expenses.xlsx"
}

func (s *Server) handleDailyIndex(w http.ResponseWriter, r *http.Request) {
	initial, final, err := ParseDateRange(r.URL.Query())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	index, err := s.svc.CalculateRelativeDailyIndex(r.Context(), initial, final)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewResponse().JSON(dailyIndexResponse{
		InitialDate: initial.String(),
		FinalDate:   final.String(),
		Index:       index.StringFixed(2),
	}).Write(w)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.svc.Account(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewResponse().JSON(toAccountResponse(account)).Write(w)
}

func (s *Server) handleSetSalary(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	salary, err := core.ParseMoney(p.Get("salary"))
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}

	account, err := s.svc.SetSalary(r.Context(), salary)
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	s.invalidateStatistics()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Salary updated",
		applog.FieldOperation, applog.OpSalary,
		applog.FieldAmountCents, salary.Cents)
	NewResponse().JSON(toAccountResponse(account)).Write(w)
}

func (s *Server) handleListOrigins(w http.ResponseWriter, r *http.Request) {
	origins, err := s.svc.ListOrigins(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewResponse().JSON(toNamedResponses(origins,
		func(o core.Origin) int64 { return o.ID },
		func(o core.Origin) string { return o.Name })).Write(w)
}

func (s *Server) handleListPaymentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.svc.ListPaymentTypes(r.Context())
	if err != nil {
		ErrorFor(r, err).Write(w)
		return
	}
	NewResponse().JSON(toNamedResponses(types,
		func(p core.PaymentType) int64 { return p.ID },
		func(p core.PaymentType) string { return p.Name })).Write(w)
}
