package apiclient

import (
	"context"
	"net/http"

	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
)

func (c *APIClient) Register(ctx context.Context, data api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: data}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates the visitor. On success the backend session cookie is
// stored in the client's jar.
func (c *APIClient) Login(ctx context.Context, creds api.LoginRequest) (*domain.User, error) {
	return c.userCall(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: creds})
}

func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, Request{Method: http.MethodPost, Path: "/auth/logout"}, nil)
}

func (c *APIClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	return c.userCall(ctx, Request{Method: http.MethodGet, Path: "/auth/user"})
}

func (c *APIClient) UpdateProfile(ctx context.Context, data api.UpdateProfileRequest) (*domain.User, error) {
	return c.userCall(ctx, Request{Method: http.MethodPut, Path: "/auth/user", Body: data})
}

func (c *APIClient) userCall(ctx context.Context, r Request) (*domain.User, error) {
	var resp api.UserResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		e := &Error{Kind: ServerError, StatusCode: http.StatusOK, Message: "Response did not contain a user"}
		c.report(e)
		return nil, e
	}
	return resp.User, nil
}
