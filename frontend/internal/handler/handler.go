package handler

import (
	"html/template"
	"net/http"

	frontend_domain "github.com/microsmart/portal/frontend/internal/domain"
	"github.com/microsmart/portal/frontend/internal/markdown"
	"github.com/microsmart/portal/shared/config"
	"github.com/microsmart/portal/shared/domain"
	"github.com/microsmart/portal/shared/utils"
	"github.com/microsmart/portal/shared/validation"
)

// ExcelExtensions are the spreadsheet types the backend can analyse.
var ExcelExtensions = validation.SpreadsheetExtensions

type Handler struct {
	Templates     map[string]*template.Template
	Public        config.Public
	TextProcessor *markdown.TextProcessor
	validation    frontend_domain.ValidationData
}

func New(templates map[string]*template.Template, publicCfg config.Public, textProcessor *markdown.TextProcessor) *Handler {
	return &Handler{
		Templates:     templates,
		Public:        publicCfg,
		TextProcessor: textProcessor,
		validation: frontend_domain.ValidationData{
			UsernameMinLen:  3,
			PasswordMinLen:  8,
			MaxTermMonths:   360,
			MaxInterestRate: 100,
			MaxMessageLen:   2000,
			MaxUploadMB:     validation.FormatSizeMB(publicCfg.MaxUploadSize),
			ExcelExtensions: ExcelExtensions,
			LoanStatuses:    domain.LoanStatuses,
			MessageTypes:    domain.MessageTypes,
			MetricTypes:     domain.MetricTypes,
			Roles:           []domain.Role{domain.RoleClient, domain.RoleAdmin},
		},
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
