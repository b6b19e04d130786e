package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
)

// Endpoints under /client are only served to client-role sessions.

func (c *APIClient) ListMyLoans(ctx context.Context) ([]domain.Loan, error) {
	var resp api.LoansResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/client/loans"}, &resp); err != nil {
		return nil, err
	}
	return resp.Loans, nil
}

func (c *APIClient) ApplyForLoan(ctx context.Context, data api.CreateLoanRequest) (*api.CreateLoanResponse, error) {
	var resp api.CreateLoanResponse
	if err := c.do(ctx, Request{Method: http.MethodPost, Path: "/client/loans", Body: data}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) GetMyLoan(ctx context.Context, id domain.LoanId) (*domain.LoanDetail, error) {
	var resp api.LoanDetailResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/client/loans/%d", id)}, &resp); err != nil {
		return nil, err
	}
	return &resp.Loan, nil
}

func (c *APIClient) MakePayment(ctx context.Context, data api.PaymentRequest) (*api.PaymentResponse, error) {
	var resp api.PaymentResponse
	if err := c.do(ctx, Request{Method: http.MethodPost, Path: "/client/payments", Body: data}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) ListMessages(ctx context.Context) ([]domain.Message, error) {
	var resp api.MessagesResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/client/messages"}, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *APIClient) GetProfile(ctx context.Context) (*domain.User, error) {
	var resp api.ProfileResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/client/profile"}, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}
