package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	frontend_domain "github.com/microsmart/portal/frontend/internal/domain"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
	"github.com/microsmart/portal/shared/utils"
)

func riskFlashKey(id domain.LoanId) string { return fmt.Sprintf("risk:%d", id) }

func (h *Handler) ClientDashboardHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())

	var (
		metrics *domain.DashboardMetrics
		stats   *domain.LoanStats
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
	if err := g.Wait(); err != nil {
		h.apiError(w, r, err)
		return
	}

	h.renderTemplate(w, r, "client_dashboard.html", &frontend_domain.ClientDashboardData{
		Metrics:      *metrics,
		StatusChart:  frontend_domain.StatusSeries(stats.StatusDistribution),
		PaymentChart: frontend_domain.PaymentHistorySeries(stats.PaymentHistory),
		Activities:   frontend_domain.Activities(metrics.RecentActivities),
	})
}

func (h *Handler) ClientLoansHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	loans, err := v.API.ListMyLoans(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	h.renderTemplate(w, r, "client_loans.html", &frontend_domain.ClientLoansData{Loans: loans})
}

func (h *Handler) LoanNewGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "client_loan_new.html", &frontend_domain.LoanApplyData{})
}

func (h *Handler) LoanNewPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	form := api.CreateLoanRequest{Purpose: strings.TrimSpace(r.FormValue("purpose"))}
	data := &frontend_domain.LoanApplyData{Form: form}

	amount, ok := formFloat(r, "amount")
	if !ok {
		h.renderTemplateWithError(w, r, "client_loan_new.html", data, "amount must be a number")
		return
	}
	if amount != nil {
		form.Amount = *amount
	}
	rate, ok := formFloat(r, "interest_rate")
	if !ok {
		h.renderTemplateWithError(w, r, "client_loan_new.html", data, "interest rate must be a number")
		return
	}
	if rate != nil {
		form.InterestRate = *rate
	}
	term, ok := formInt(r, "term_months")
	if !ok {
		h.renderTemplateWithError(w, r, "client_loan_new.html", data, "term months must be a whole number")
		return
	}
	if term != nil {
		form.TermMonths = *term
	}
	data.Form = form

	if err := utils.Validate(form); err != nil {
		h.renderTemplateWithError(w, r, "client_loan_new.html", data, err.Error())
		return
	}

	resp, err := v.API.ApplyForLoan(r.Context(), form)
	if err != nil {
		if h.formError(w, r, err) {
			return
		}
		h.renderTemplateWithError(w, r, "client_loan_new.html", data, err.Error())
		return
	}

	if risk := prettyJSON(resp.RiskAnalysis); risk != "" {
		v.SetFlash(riskFlashKey(resp.LoanId), risk)
	}
	h.success(r, "Your application has been submitted.")
	seeOther(w, r, fmt.Sprintf("/client/loans/%d", resp.LoanId))
}

func (h *Handler) ClientLoanHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	loan, err := v.API.GetMyLoan(r.Context(), id)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	h.renderTemplate(w, r, "client_loan.html", &frontend_domain.ClientLoanData{
		Loan: *loan,
		Risk: v.TakeFlash(riskFlashKey(id)),
	})
}

func (h *Handler) PaymentsGetHandler(w http.ResponseWriter, r *http.Request) {
	data := &frontend_domain.PaymentsPageData{}
	data.LoanId, _ = parseId(r.URL.Query().Get("loan_id"))
	h.renderPayments(w, r, data, "")
}

func (h *Handler) PaymentsPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	var form api.PaymentRequest
	form.LoanId, _ = parseId(r.FormValue("loan_id"))
	data := &frontend_domain.PaymentsPageData{LoanId: form.LoanId}

	amount, ok := formFloat(r, "amount")
	if !ok {
		h.renderPayments(w, r, data, "amount must be a number")
		return
	}
	if amount != nil {
		form.Amount = *amount
	}
	if err := utils.Validate(form); err != nil {
		h.renderPayments(w, r, data, err.Error())
		return
	}

	if _, err := v.API.MakePayment(r.Context(), form); err != nil {
		if h.formError(w, r, err) {
			return
		}
		h.renderPayments(w, r, data, err.Error())
		return
	}

	h.success(r, fmt.Sprintf("Payment of %s received.", money(form.Amount)))
	seeOther(w, r, fmt.Sprintf("/client/loans/%d", form.LoanId))
}

// renderPayments offers the loans that accept payments.
func (h *Handler) renderPayments(w http.ResponseWriter, r *http.Request, data *frontend_domain.PaymentsPageData, errMsg string) {
	v := visitor.FromContext(r.Context())
	loans, err := v.API.ListMyLoans(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	for _, l := range loans {
		if l.CanPay() {
			data.Payable = append(data.Payable, l)
		}
	}
	if errMsg != "" {
		h.renderTemplateWithError(w, r, "client_payments.html", data, errMsg)
		return
	}
	h.renderTemplate(w, r, "client_payments.html", data)
}

func (h *Handler) ClientMessagesHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	messages, err := v.API.ListMessages(r.Context())
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	data := &frontend_domain.ClientMessagesData{Messages: make([]frontend_domain.Message, 0, len(messages))}
	for _, m := range messages {
		data.Messages = append(data.Messages, frontend_domain.Message{
			Message: m,
			HTML:    h.TextProcessor.Render(m.Content),
		})
	}
	h.renderTemplate(w, r, "client_messages.html", data)
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
