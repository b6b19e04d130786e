package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	frontend_domain "github.com/microsmart/portal/frontend/internal/domain"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
	"github.com/microsmart/portal/shared/logger"
	"github.com/microsmart/portal/shared/utils"
	"github.com/microsmart/portal/shared/validation"
)

func (h *Handler) AdminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())

	var (
		metrics  *domain.DashboardMetrics
		stats    *domain.LoanStats
		activity *api.RecentActivityResponse
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		metrics, err = v.API.DashboardMetrics(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats, err = v.API.LoanStats(ctx)
		return err
	})
	g.Go(func() (err error) {
		activity, err = v.API.RecentActivity(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.apiError(w, r, err)
		return
	}

	h.renderTemplate(w, r, "admin_dashboard.html", &frontend_domain.AdminDashboardData{
		Metrics:     *metrics,
		StatusChart: frontend_domain.StatusSeries(stats.StatusDistribution),
		AmountChart: frontend_domain.AmountRangeSeries(stats.AmountStats),
		TrendChart:  frontend_domain.MonthlyTrendSeries(stats.MonthlyTrend),
		Financial:   frontend_domain.FinancialSeries(metrics.FinancialMetrics),
		AmountStats: stats.AmountStats,
		Activities:  frontend_domain.Activities(activity.Activities),
		RecentLoans: activity.RecentLoans,
	})
}

// Users

func (h *Handler) AdminUsersGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderUsers(w, r, &frontend_domain.UsersPageData{
		Form: api.CreateUserRequest{Role: domain.RoleClient},
	}, "")
}

func (h *Handler) AdminUsersPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	form := api.CreateUserRequest{
		Username:    strings.TrimSpace(r.FormValue("username")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Password:    r.FormValue("password"),
		FirstName:   strings.TrimSpace(r.FormValue("first_name")),
		LastName:    strings.TrimSpace(r.FormValue("last_name")),
		PhoneNumber: strings.TrimSpace(r.FormValue("phone_number")),
		Role:        domain.Role(r.FormValue("role")),
	}
	data := &frontend_domain.UsersPageData{Form: form}
	data.Form.Password = ""

	if err := utils.Validate(form); err != nil {
		h.renderUsers(w, r, data, err.Error())
		return
	}

	id, err := v.API.CreateUser(r.Context(), form)
	if err != nil {
		if h.formError(w, r, err) {
			return
		}
		h.renderUsers(w, r, data, err.Error())
		return
	}

	h.success(r, fmt.Sprintf("User %s created.", form.Username))
	seeOther(w, r, fmt.Sprintf("/admin/users/%d", id))
}

// renderUsers loads the user list under the create form. errMsg is the
// form's inline error, if any.
func (h *Handler) renderUsers(w http.ResponseWriter, r *http.Request, data *frontend_domain.UsersPageData, errMsg string) {
	v := visitor.FromContext(r.Context())
	users, err := v.API.ListUsers(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	data.Users = users
	if errMsg != "" {
		h.renderTemplateWithError(w, r, "admin_users.html", data, errMsg)
		return
	}
	h.renderTemplate(w, r, "admin_users.html", data)
}

func (h *Handler) AdminUserGetHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	user, err := v.API.GetUser(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	h.renderTemplate(w, r, "admin_user.html", &frontend_domain.UserPageData{User: *user})
}

func (h *Handler) AdminUserPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	user, err := v.API.GetUser(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err)
		return
	}

	req := api.UpdateUserRequest{
		FirstName:   changed(r.FormValue("first_name"), user.FirstName),
		LastName:    changed(r.FormValue("last_name"), user.LastName),
		Email:       changed(r.FormValue("email"), user.Email),
		PhoneNumber: changed(r.FormValue("phone_number"), user.PhoneNumber),
	}
	if role := domain.Role(r.FormValue("role")); role != "" && role != user.Role {
		req.Role = &role
	}
	if pw := r.FormValue("password"); pw != "" {
		req.Password = &pw
	}

	if req == (api.UpdateUserRequest{}) {
		h.success(r, "Nothing to update.")
		seeOther(w, r, r.URL.Path)
		return
	}
	if err := utils.Validate(req); err != nil {
		h.renderTemplateWithError(w, r, "admin_user.html", &frontend_domain.UserPageData{User: *user}, err.Error())
		return
	}
	if err := v.API.UpdateUser(r.Context(), id, req); err != nil {
		if h.formError(w, r, err) {
			return
		}
		h.renderTemplateWithError(w, r, "admin_user.html", &frontend_domain.UserPageData{User: *user}, err.Error())
		return
	}

	h.success(r, "User updated.")
	seeOther(w, r, r.URL.Path)
}

// Loans

func (h *Handler) AdminLoansHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	loans, err := v.API.ListAllLoans(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return
	}

	data := &frontend_domain.LoansPageData{Counts: make(map[domain.LoanStatus]int, len(domain.LoanStatuses))}
	for _, l := range loans {
		data.Counts[l.Status]++
	}
	// an unknown filter shows everything
	if status := domain.LoanStatus(r.URL.Query().Get("status")); status.Valid() {
		data.Status = status
		for _, l := range loans {
			if l.Status == status {
				data.Loans = append(data.Loans, l)
			}
		}
	} else {
		data.Loans = loans
	}
	h.renderTemplate(w, r, "admin_loans.html", data)
}

// adminLoan finds a loan in the full listing. The backend has no single-loan
// endpoint for admins.
func (h *Handler) adminLoan(w http.ResponseWriter, r *http.Request) (*domain.Loan, bool) {
	v := visitor.FromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return nil, false
	}
	loans, err := v.API.ListAllLoans(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return nil, false
	}
	i := slices.IndexFunc(loans, func(l domain.Loan) bool { return l.Id == id })
	if i < 0 {
		h.notFound(w, r)
		return nil, false
	}
	return &loans[i], true
}

func (h *Handler) AdminLoanGetHandler(w http.ResponseWriter, r *http.Request) {
	loan, ok := h.adminLoan(w, r)
	if !ok {
		return
	}
	h.renderTemplate(w, r, "admin_loan.html", &frontend_domain.LoanPageData{Loan: *loan})
}

func (h *Handler) AdminLoanPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	loan, ok := h.adminLoan(w, r)
	if !ok {
		return
	}
	data := &frontend_domain.LoanPageData{Loan: *loan}

	var req api.UpdateLoanRequest
	if status := domain.LoanStatus(r.FormValue("status")); status != "" && status != loan.Status {
		req.Status = &status
	}
	rate, ok := formFloat(r, "interest_rate")
	if !ok {
		h.renderTemplateWithError(w, r, "admin_loan.html", data, "interest rate must be a number")
		return
	}
	if rate != nil && *rate != loan.InterestRate {
		req.InterestRate = rate
	}
	term, ok := formInt(r, "term_months")
	if !ok {
		h.renderTemplateWithError(w, r, "admin_loan.html", data, "term months must be a whole number")
		return
	}
	if term != nil && *term != loan.TermMonths {
		req.TermMonths = term
	}

	if req == (api.UpdateLoanRequest{}) {
		h.success(r, "Nothing to update.")
		seeOther(w, r, r.URL.Path)
		return
	}
	if err := utils.Validate(req); err != nil {
		h.renderTemplateWithError(w, r, "admin_loan.html", data, err.Error())
		return
	}
	if err := v.API.UpdateLoan(r.Context(), loan.Id, req); err != nil {
		if h.formError(w, r, err) {
			return
		}
		h.renderTemplateWithError(w, r, "admin_loan.html", data, err.Error())
		return
	}

	h.success(r, fmt.Sprintf("Loan #%d updated.", loan.Id))
	seeOther(w, r, r.URL.Path)
}

// Excel analysis

func (h *Handler) AdminExcelGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderExcel(w, r, "")
}

func (h *Handler) AdminExcelPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderExcel(w, r, "Choose a spreadsheet to upload.")
		return
	}
	defer file.Close()

	if err := validation.Spreadsheet(file, header, h.Public.MaxUploadSize); err != nil {
		switch {
		case errors.Is(err, validation.ErrPayloadTooLarge):
			h.renderExcel(w, r, fmt.Sprintf("The file is larger than %d MB.", h.validation.MaxUploadMB))
		case errors.Is(err, validation.ErrUnsupportedType):
			h.renderExcel(w, r, fmt.Sprintf("Only %s files can be analysed.", strings.Join(ExcelExtensions, " and ")))
		default:
			logger.Log.Warn("reading excel upload", "error", err)
			h.renderExcel(w, r, "The file could not be read.")
		}
		return
	}

	if _, err := v.API.UploadExcel(r.Context(), filepath.Base(header.Filename), file); err != nil {
		if h.formError(w, r, err) {
			return
		}
		h.renderExcel(w, r, err.Error())
		return
	}

	h.success(r, fmt.Sprintf("%s uploaded. The analysis will appear once it is ready.", header.Filename))
	seeOther(w, r, "/admin/excel")
}

func (h *Handler) renderExcel(w http.ResponseWriter, r *http.Request, errMsg string) {
	v := visitor.FromContext(r.Context())
	files, err := v.API.ListExcelFiles(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	data := &frontend_domain.ExcelPageData{Files: files}
	if errMsg != "" {
		h.renderTemplateWithError(w, r, "admin_excel.html", data, errMsg)
		return
	}
	h.renderTemplate(w, r, "admin_excel.html", data)
}

func (h *Handler) AdminAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	results, err := v.API.GetAnalysisResults(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	h.renderTemplate(w, r, "admin_analysis.html", &frontend_domain.AnalysisPageData{
		File:     results.FileInfo,
		Sections: analysisSections(results.Results),
	})
}

// analysisSections pretty-prints each result, ordered by name.
func analysisSections(results map[string]json.RawMessage) []frontend_domain.AnalysisSection {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]frontend_domain.AnalysisSection, 0, len(names))
	for _, name := range names {
		sections = append(sections, frontend_domain.AnalysisSection{Name: name, Pretty: prettyJSON(results[name])})
	}
	return sections
}

// Messages

func (h *Handler) AdminMessagesGetHandler(w http.ResponseWriter, r *http.Request) {
	form := api.SendMessageRequest{MessageType: domain.MessageNotification}
	if id, ok := parseId(r.URL.Query().Get("user_id")); ok {
		form.UserId = id
	}
	h.renderMessages(w, r, &frontend_domain.AdminMessagesPageData{Form: form}, "")
}

func (h *Handler) AdminMessagesPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	form := api.SendMessageRequest{
		Content:     strings.TrimSpace(r.FormValue("content")),
		MessageType: domain.MessageType(r.FormValue("message_type")),
		DueDate:     strings.TrimSpace(r.FormValue("due_date")),
	}
	form.UserId, _ = parseId(r.FormValue("user_id"))
	data := &frontend_domain.AdminMessagesPageData{Form: form}

	amount, ok := formFloat(r, "payment_amount")
	if !ok {
		h.renderMessages(w, r, data, "payment amount must be a number")
		return
	}
	form.PaymentAmount = amount

	if err := utils.Validate(form); err != nil {
		h.renderMessages(w, r, data, err.Error())
		return
	}
	if _, err := v.API.SendMessage(r.Context(), form); err != nil {
		if h.formError(w, r, err) {
			return
		}
		h.renderMessages(w, r, data, err.Error())
		return
	}

	h.success(r, "Message sent.")
	seeOther(w, r, "/admin/messages")
}

// renderMessages lists the clients a message can be sent to.
func (h *Handler) renderMessages(w http.ResponseWriter, r *http.Request, data *frontend_domain.AdminMessagesPageData, errMsg string) {
	v := visitor.FromContext(r.Context())
	users, err := v.API.ListUsers(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	for _, u := range users {
		if u.Role == domain.RoleClient {
			data.Clients = append(data.Clients, u)
		}
	}
	if errMsg != "" {
		h.renderTemplateWithError(w, r, "admin_messages.html", data, errMsg)
		return
	}
	h.renderTemplate(w, r, "admin_messages.html", data)
}

// Financial metrics

func (h *Handler) AdminMetricsGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderMetrics(w, r, &frontend_domain.MetricsPageData{
		Form: api.CreateMetricRequest{MetricType: domain.MetricRevenue},
	}, "")
}

func (h *Handler) AdminMetricsPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	form := api.CreateMetricRequest{
		Name:       strings.TrimSpace(r.FormValue("name")),
		MetricType: domain.MetricType(r.FormValue("metric_type")),
	}
	data := &frontend_domain.MetricsPageData{Form: form}

	value, ok := formFloat(r, "value")
	if !ok || value == nil {
		h.renderMetrics(w, r, data, "value must be a number")
		return
	}
	form.Value = *value

	if err := utils.Validate(form); err != nil {
		h.renderMetrics(w, r, data, err.Error())
		return
	}
	if _, err := v.API.CreateMetric(r.Context(), form); err != nil {
		if h.formError(w, r, err) {
			return
		}
		h.renderMetrics(w, r, data, err.Error())
		return
	}

	h.success(r, fmt.Sprintf("Metric %s recorded.", form.Name))
	seeOther(w, r, "/admin/metrics")
}

func (h *Handler) renderMetrics(w http.ResponseWriter, r *http.Request, data *frontend_domain.MetricsPageData, errMsg string) {
	v := visitor.FromContext(r.Context())
	metrics, err := v.API.DashboardMetrics(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	data.Financial = frontend_domain.FinancialSeries(metrics.FinancialMetrics)
	if errMsg != "" {
		h.renderTemplateWithError(w, r, "admin_metrics.html", data, errMsg)
		return
	}
	h.renderTemplate(w, r, "admin_metrics.html", data)
}
