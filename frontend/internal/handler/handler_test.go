package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	frontend_domain "github.com/microsmart/portal/frontend/internal/domain"
	"github.com/microsmart/portal/frontend/internal/guard"
	"github.com/microsmart/portal/frontend/internal/markdown"
	"github.com/microsmart/portal/frontend/internal/notify"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/config"
	"github.com/microsmart/portal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testClient = &domain.User{Id: 7, Username: "jdoe", Email: "j@doe.com", FirstName: "Jane", LastName: "Doe", Role: domain.RoleClient}
	testAdmin  = &domain.User{Id: 1, Username: "admin", Email: "admin@example.com", FirstName: "Ada", Role: domain.RoleAdmin}
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	templates, err := LoadTemplates(EmbeddedTemplates())
	require.NoError(t, err)
	return New(templates, config.Public{MaxUploadSize: 1 << 20}, markdown.New())
}

// backend is a scripted stand-in for the REST API.
type backend struct {
	t      *testing.T
	srv    *httptest.Server
	mux    *http.ServeMux
	bodies map[string][]byte
}

func newBackend(t *testing.T) *backend {
	b := &backend{t: t, mux: http.NewServeMux(), bodies: map[string][]byte{}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.bodies[r.Method+" "+r.URL.Path] = body
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) reply(pattern string, status int, v any) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	})
}

// newVisitor returns a visitor talking to the backend whose session is
// already resolved to user (nil for anonymous).
func (b *backend) newVisitor(user *domain.User) *visitor.Visitor {
	store := visitor.NewStore(b.srv.URL+"/api", time.Hour)
	v := store.Create()
	if user != nil {
		b.reply("GET /api/auth/user", http.StatusOK, api.UserResponse{User: user})
		v.Session.Probe(b.t.Context())
	} else {
		v.Session.Reset()
	}
	return v
}

func serve(h http.HandlerFunc, v *visitor.Visitor, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	ctx := visitor.NewContext(r.Context(), v)
	ctx = guard.WithUser(ctx, v.Session.Snapshot().User)
	w := httptest.NewRecorder()
	h(w, r.WithContext(ctx))
	return w
}

func TestTemplateFuncs(t *testing.T) {
	assert.Equal(t, "12.50", money(12.5))
	assert.Equal(t, "7.25%", percent(7.25))
	assert.Equal(t, "Payment reminder", label(domain.MessagePaymentReminder))
	assert.Equal(t, "Active", label(domain.LoanActive))
	assert.Equal(t, "", label(""))
	assert.Equal(t, "Élan vital", label("élan_vital"))
	assert.Equal(t, "Über loan", label("über loan"))
	assert.Equal(t, "2026-01-02", date("2026-01-02 15:04:05"))
	assert.Equal(t, "2026-01-02 15:04", datetime("2026-01-02 15:04:05"))
	var none *domain.Timestamp
	assert.Equal(t, "", date(none))

	_, err := dict("odd")
	assert.Error(t, err)
}

func TestTemplates_RenderEveryPage(t *testing.T) {
	h := newTestHandler(t)
	loan := domain.Loan{Id: 3, UserId: 7, Username: "Jane Doe", Amount: 1500, InterestRate: 12, TermMonths: 12, Status: domain.LoanActive, Purpose: "Shop", CreatedAt: "2026-01-02 15:04:05"}
	series := frontend_domain.Series{Labels: []string{"a"}, Values: []float64{1}}

	pages := map[string]any{
		"login.html":    &frontend_domain.LoginPageData{Username: "jdoe", Next: "/client/loans"},
		"register.html": &frontend_domain.RegisterPageData{},
		"logout.html":   nil,
		"profile.html":  &frontend_domain.ProfilePageData{User: *testClient},
		"loading.html":  &frontend_domain.LoadingPageData{Target: "/client/loans"},
		"error.html":    &errorPageData{Retry: "/client/loans"},
		"admin_dashboard.html": &frontend_domain.AdminDashboardData{
			StatusChart: series,
			Financial:   []frontend_domain.NamedSeries{{Name: "revenue", Series: series}},
			AmountStats: &domain.AmountStats{Average: 10},
			Activities:  frontend_domain.Activities([]domain.Activity{{Type: "login", Username: "jdoe"}}),
			RecentLoans: []domain.RecentLoan{{LoanId: 3, UserId: 7, Username: "jdoe", Amount: 10, Status: domain.LoanPending}},
		},
		"admin_users.html":    &frontend_domain.UsersPageData{Users: []domain.User{*testClient}},
		"admin_user.html":     &frontend_domain.UserPageData{User: domain.UserDetail{User: *testClient, Loans: []domain.Loan{loan}}},
		"admin_loans.html":    &frontend_domain.LoansPageData{Loans: []domain.Loan{loan}, Counts: map[domain.LoanStatus]int{domain.LoanActive: 1}},
		"admin_loan.html":     &frontend_domain.LoanPageData{Loan: loan},
		"admin_excel.html":    &frontend_domain.ExcelPageData{Files: []domain.ExcelFile{{Id: 2, Filename: "q1.xlsx", AnalysisComplete: true}}},
		"admin_analysis.html": &frontend_domain.AnalysisPageData{Sections: []frontend_domain.AnalysisSection{{Name: "summary", Pretty: "{}"}}},
		"admin_messages.html": &frontend_domain.AdminMessagesPageData{Clients: []domain.User{*testClient}},
		"admin_metrics.html":  &frontend_domain.MetricsPageData{},
		"client_dashboard.html": &frontend_domain.ClientDashboardData{
			PaymentChart: series,
		},
		"client_loans.html":    &frontend_domain.ClientLoansData{Loans: []domain.Loan{loan}},
		"client_loan_new.html": &frontend_domain.LoanApplyData{},
		"client_loan.html":     &frontend_domain.ClientLoanData{Loan: domain.LoanDetail{Loan: loan}, Risk: `{"score": 1}`},
		"client_payments.html": &frontend_domain.PaymentsPageData{Payable: []domain.Loan{loan}, LoanId: 3},
		"client_messages.html": &frontend_domain.ClientMessagesData{Messages: []frontend_domain.Message{{HTML: "<p>hi</p>"}}},
	}
	assert.Len(t, h.Templates, len(pages), "every page template has sample data")

	for name, data := range pages {
		t.Run(name, func(t *testing.T) {
			user := testClient
			if strings.HasPrefix(name, "admin_") {
				user = testAdmin
			}
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(guard.WithUser(r.Context(), user))
			w := httptest.NewRecorder()

			h.renderTemplate(w, r, name, data)

			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "</html>")
		})
	}
}

func TestRender_DropsNotificationRepeatingInlineError(t *testing.T) {
	h := newTestHandler(t)
	v := newBackend(t).newVisitor(nil)
	v.Notifications.Error("Invalid username or password")
	v.Notifications.Info("Welcome")

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r = r.WithContext(visitor.NewContext(r.Context(), v))
	common := h.initCommonTemplateData(r, "Invalid username or password", true)

	assert.Equal(t, []notify.Notification{{Kind: notify.KindInfo, Message: "Welcome"}}, common.Notifications)
	assert.Equal(t, 0, v.Notifications.Len())
}

func TestLoginPost_BadCredentialsStayInline(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("POST /api/auth/login", http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid username or password"})
	v := b.newVisitor(nil)

	w := serve(h.LoginPostHandler, v, http.MethodPost, "/login", url.Values{"username": {"jdoe"}, "password": {"bad"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
	assert.Equal(t, 0, v.Notifications.Len())
	assert.False(t, v.Session.Snapshot().Authenticated())
}

func TestLoginPost_SuccessRecordsActivityAndReturns(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("POST /api/auth/login", http.StatusOK, api.UserResponse{Message: "Login successful", User: testClient})
	b.reply("POST /api/dashboard/record-activity", http.StatusCreated, api.RecordActivityResponse{ActivityId: 1})
	v := b.newVisitor(nil)

	form := url.Values{"username": {"jdoe"}, "password": {"secret123"}, "next": {"/client/loans"}}
	w := serve(h.LoginPostHandler, v, http.MethodPost, "/login", form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/client/loans", w.Header().Get("Location"))
	assert.True(t, v.Session.Snapshot().Authenticated())
	assert.JSONEq(t, `{"activity_type":"login"}`, string(b.bodies["POST /api/dashboard/record-activity"]))
}

func TestLoginPost_RejectsForeignNext(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("POST /api/auth/login", http.StatusOK, api.UserResponse{User: testAdmin})
	v := b.newVisitor(nil)

	form := url.Values{"username": {"admin"}, "password": {"secret123"}, "next": {"//evil.example"}}
	w := serve(h.LoginPostHandler, v, http.MethodPost, "/login", form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, guard.RootPath, w.Header().Get("Location"))
}

func TestRegisterPost_RedirectsToLogin(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("POST /api/auth/register", http.StatusCreated, api.RegisterResponse{Message: "User registered successfully", UserId: 9})
	v := b.newVisitor(nil)

	form := url.Values{
		"username": {"newbie"}, "email": {"n@b.com"}, "password": {"secret123"},
		"first_name": {"New"}, "last_name": {"Bie"}, "phone_number": {"555"},
	}
	w := serve(h.RegisterPostHandler, v, http.MethodPost, "/register", form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, guard.LoginPath, w.Header().Get("Location"))
	assert.False(t, v.Session.Snapshot().Authenticated(), "registering does not log in")
	assert.Equal(t, 1, v.Notifications.Len())
}

func TestRegisterPost_ValidationIsInline(t *testing.T) {
	h := newTestHandler(t)
	v := newBackend(t).newVisitor(nil)

	w := serve(h.RegisterPostHandler, v, http.MethodPost, "/register", url.Values{"username": {"ab"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "form-error")
}

func TestProfileGet_ClientReadsStoredProfile(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	stored := *testClient
	stored.Role = ""
	stored.PhoneNumber = "555-0100"
	b.reply("GET /api/client/profile", http.StatusOK, api.ProfileResponse{Profile: stored})
	v := b.newVisitor(testClient)

	w := serve(h.ProfileGetHandler, v, http.MethodGet, "/profile", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="555-0100"`)
}

func TestProfileGet_ClientProfileUnavailable(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("GET /api/client/profile", http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to retrieve profile"})
	v := b.newVisitor(testClient)

	w := serve(h.ProfileGetHandler, v, http.MethodGet, "/profile", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to retrieve profile")
}

func TestProfileGet_AdminUsesSession(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	v := b.newVisitor(testAdmin)

	w := serve(h.ProfileGetHandler, v, http.MethodGet, "/profile", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Ada"`)
	_, called := b.bodies["GET /api/client/profile"]
	assert.False(t, called)
}

func TestProfilePost_SendsOnlyChangedFields(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	updated := *testClient
	updated.FirstName = "Janet"
	b.reply("PUT /api/auth/user", http.StatusOK, api.UserResponse{User: &updated})
	b.reply("POST /api/dashboard/record-activity", http.StatusCreated, api.RecordActivityResponse{ActivityId: 2})
	v := b.newVisitor(testClient)

	form := url.Values{"first_name": {"Janet"}, "last_name": {"Doe"}, "email": {"j@doe.com"}}
	w := serve(h.ProfilePostHandler, v, http.MethodPost, "/profile", form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.JSONEq(t, `{"first_name":"Janet"}`, string(b.bodies["PUT /api/auth/user"]))
	assert.Equal(t, "Janet", v.Session.Snapshot().User.FirstName)
	assert.JSONEq(t, `{"activity_type":"profile_update"}`, string(b.bodies["POST /api/dashboard/record-activity"]))
}

func TestLogoutPost(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("POST /api/auth/logout", http.StatusOK, api.MessageResponse{Message: "Logout successful"})
	v := b.newVisitor(testClient)

	w := serve(h.LogoutPostHandler, v, http.MethodPost, "/logout", url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, guard.LoginPath, w.Header().Get("Location"))
	assert.False(t, v.Session.Snapshot().Authenticated())
}

func TestLogoutPost_FailureKeepsSession(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("POST /api/auth/logout", http.StatusInternalServerError, api.ErrorResponse{Error: "db down"})
	v := b.newVisitor(testClient)

	w := serve(h.LogoutPostHandler, v, http.MethodPost, "/logout", url.Values{})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, guard.RootPath, w.Header().Get("Location"))
	assert.True(t, v.Session.Snapshot().Authenticated())
	assert.Equal(t, 1, v.Notifications.Len(), "the API client's notification is not repeated")
}

func TestApiError_UnauthorizedSendsToLogin(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("GET /api/client/loans", http.StatusUnauthorized, api.ErrorResponse{Error: "Authentication required"})
	v := b.newVisitor(testClient)

	w := serve(h.ClientLoansHandler, v, http.MethodGet, "/client/loans", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, guard.LoginURL("/client/loans"), w.Header().Get("Location"))
	assert.False(t, v.Session.Snapshot().Authenticated())
	assert.Equal(t, 0, v.Notifications.Len())
}

func TestApiError_ServerErrorRendersErrorPage(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("GET /api/client/loans", http.StatusInternalServerError, api.ErrorResponse{Error: "boom"})
	v := b.newVisitor(testClient)

	w := serve(h.ClientLoansHandler, v, http.MethodGet, "/client/loans", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "boom", "the queued notification is rendered")
	assert.True(t, v.Session.Snapshot().Authenticated())
}

func TestAdminLoans_FilterAndCounts(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("GET /api/admin/loans", http.StatusOK, api.LoansResponse{Loans: []domain.Loan{
		{Id: 1, Status: domain.LoanPending, Purpose: "first"},
		{Id: 2, Status: domain.LoanActive, Purpose: "second"},
		{Id: 3, Status: domain.LoanPending, Purpose: "third"},
	}})
	v := b.newVisitor(testAdmin)

	w := serve(h.AdminLoansHandler, v, http.MethodGet, "/admin/loans?status=active", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "#2")
	assert.NotContains(t, body, "#1<")
	assert.Contains(t, body, "Pending (2)")
}

func TestAdminLoan_MissingIsNotFound(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("GET /api/admin/loans", http.StatusOK, api.LoansResponse{Loans: []domain.Loan{{Id: 1}}})
	v := b.newVisitor(testAdmin)

	w := serve(h.AdminLoanGetHandler, v, http.MethodGet, "/admin/loans/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminExcelPost_RejectsExtension(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("GET /api/admin/excel-files", http.StatusOK, api.ExcelFilesResponse{})
	v := b.newVisitor(testAdmin)

	var buf strings.Builder
	buf.WriteString("--xyz\r\nContent-Disposition: form-data; name=\"file\"; filename=\"notes.txt\"\r\n\r\nhello\r\n--xyz--\r\n")
	r := httptest.NewRequest(http.MethodPost, "/admin/excel", strings.NewReader(buf.String()))
	r.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	r = r.WithContext(guard.WithUser(visitor.NewContext(r.Context(), v), testAdmin))
	w := httptest.NewRecorder()

	h.AdminExcelPostHandler(w, r)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Only .xls and .xlsx files can be analysed.")
	_, uploaded := b.bodies["POST /api/admin/excel-upload"]
	assert.False(t, uploaded)
}

func TestLoanNewPost_ShowsRiskOnce(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("POST /api/client/loans", http.StatusCreated, map[string]any{
		"message": "Loan application submitted", "loan_id": 5, "risk_analysis": map[string]any{"risk_level": "low"},
	})
	b.reply("GET /api/client/loans/5", http.StatusOK, api.LoanDetailResponse{Loan: domain.LoanDetail{Loan: domain.Loan{Id: 5, Status: domain.LoanPending}}})
	v := b.newVisitor(testClient)

	form := url.Values{"amount": {"1000"}, "term_months": {"12"}, "interest_rate": {"10"}, "purpose": {"Stock"}}
	w := serve(h.LoanNewPostHandler, v, http.MethodPost, "/client/loans/new", form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/client/loans/5", w.Header().Get("Location"))

	show := func() string {
		r := httptest.NewRequest(http.MethodGet, "/client/loans/5", nil)
		rctx := chiContext(r, "5")
		r = r.WithContext(guard.WithUser(visitor.NewContext(rctx, v), testClient))
		w := httptest.NewRecorder()
		h.ClientLoanHandler(w, r)
		return w.Body.String()
	}
	assert.Contains(t, show(), "risk_level")
	assert.NotContains(t, show(), "risk_level")
}

func TestClientMessages_RendersMarkdown(t *testing.T) {
	h := newTestHandler(t)
	b := newBackend(t)
	b.reply("GET /api/client/messages", http.StatusOK, api.MessagesResponse{Messages: []domain.Message{
		{Id: 1, Content: "Pay **now** <script>alert(1)</script>", MessageType: domain.MessageAlert},
	}})
	v := b.newVisitor(testClient)

	w := serve(h.ClientMessagesHandler, v, http.MethodGet, "/client/messages", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<strong>now</strong>")
	assert.NotContains(t, w.Body.String(), "<script>alert")
}

func TestSessionAndNotificationsJSON(t *testing.T) {
	h := newTestHandler(t)
	v := newBackend(t).newVisitor(testClient)
	v.Notifications.Success("Saved")

	w := serve(h.SessionHandler, v, http.MethodGet, "/api/session", nil)
	assert.JSONEq(t, `{"state":"authenticated","user":{"id":7,"username":"jdoe","email":"j@doe.com","first_name":"Jane","last_name":"Doe","role":"client"}}`, w.Body.String())

	w = serve(h.NotificationsHandler, v, http.MethodGet, "/api/notifications", nil)
	assert.JSONEq(t, `{"notifications":[{"kind":"success","message":"Saved"}]}`, w.Body.String())

	w = serve(h.NotificationsHandler, v, http.MethodGet, "/api/notifications", nil)
	assert.JSONEq(t, `{"notifications":[]}`, w.Body.String())
}
