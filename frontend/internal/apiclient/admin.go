package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
)

func (c *APIClient) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp api.UsersResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/admin/users"}, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *APIClient) GetUser(ctx context.Context, id domain.UserId) (*domain.UserDetail, error) {
	var resp api.UserDetailResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/admin/users/%d", id)}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *APIClient) CreateUser(ctx context.Context, data api.CreateUserRequest) (domain.UserId, error) {
	var resp api.CreatedResponse
	if err := c.do(ctx, Request{Method: http.MethodPost, Path: "/admin/users", Body: data}, &resp); err != nil {
		return 0, err
	}
	return resp.UserId, nil
}

func (c *APIClient) UpdateUser(ctx context.Context, id domain.UserId, data api.UpdateUserRequest) error {
	return c.do(ctx, Request{Method: http.MethodPut, Path: fmt.Sprintf("/admin/users/%d", id), Body: data}, nil)
}

func (c *APIClient) ListAllLoans(ctx context.Context) ([]domain.Loan, error) {
	var resp api.LoansResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/admin/loans"}, &resp); err != nil {
		return nil, err
	}
	return resp.Loans, nil
}

func (c *APIClient) UpdateLoan(ctx context.Context, id domain.LoanId, data api.UpdateLoanRequest) error {
	return c.do(ctx, Request{Method: http.MethodPut, Path: fmt.Sprintf("/admin/loans/%d", id), Body: data}, nil)
}

// UploadExcel streams the spreadsheet to the backend as multipart field "file".
func (c *APIClient) UploadExcel(ctx context.Context, filename string, content io.Reader) (*api.ExcelUploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err == nil {
		_, err = io.Copy(part, content)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		e := &Error{Kind: RequestSetupFailure, Err: fmt.Errorf("failed to build upload: %w", err)}
		c.report(e)
		return nil, e
	}

	var resp api.ExcelUploadResponse
	r := Request{
		Method: http.MethodPost,
		Path:   "/admin/excel-upload",
		Body:   &buf,
		Header: http.Header{"Content-Type": {mw.FormDataContentType()}},
	}
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) ListExcelFiles(ctx context.Context) ([]domain.ExcelFile, error) {
	var resp api.ExcelFilesResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/admin/excel-files"}, &resp); err != nil {
		return nil, err
	}
	return resp.ExcelFiles, nil
}

func (c *APIClient) GetAnalysisResults(ctx context.Context, id domain.ExcelId) (*domain.AnalysisResults, error) {
	var resp domain.AnalysisResults
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/admin/excel-files/%d/results", id)}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) CreateMetric(ctx context.Context, data api.CreateMetricRequest) (domain.MetricId, error) {
	var resp api.CreatedResponse
	if err := c.do(ctx, Request{Method: http.MethodPost, Path: "/admin/metrics", Body: data}, &resp); err != nil {
		return 0, err
	}
	return resp.MetricId, nil
}

func (c *APIClient) SendMessage(ctx context.Context, data api.SendMessageRequest) (domain.MessageId, error) {
	var resp api.CreatedResponse
	if err := c.do(ctx, Request{Method: http.MethodPost, Path: "/admin/messages", Body: data}, &resp); err != nil {
		return 0, err
	}
	return resp.MessageId, nil
}
