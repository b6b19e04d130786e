package setup

import (
	"context"
	"fmt"

	"github.com/microsmart/portal/frontend/internal/apiclient"
	"github.com/microsmart/portal/frontend/internal/handler"
	"github.com/microsmart/portal/frontend/internal/markdown"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/config"
	"github.com/microsmart/portal/shared/jwt"
	"github.com/microsmart/portal/shared/middleware/ratelimiter"
)

type Dependencies struct {
	Handler  *handler.Handler
	Visitors *visitor.Store
	Attach   *visitor.Middleware
	Jwt      jwt.JwtService
	Public   config.Public
	// CancelFunc stops background tasks (the visitor sweeper).
	CancelFunc context.CancelFunc
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	templates, err := handler.LoadTemplates(handler.EmbeddedTemplates())
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	h := handler.New(templates, cfg.Public, markdown.New())

	jwtSvc := jwt.New(cfg.SessionKey(), cfg.Public.VisitorTTL)

	store := visitor.NewStore(cfg.Public.APIBaseURL, cfg.Public.VisitorTTL,
		apiclient.WithTimeout(cfg.Public.RequestTimeout),
	)
	store.SetCapacity(cfg.Public.MaxVisitors)
	ctx, cancel := context.WithCancel(context.Background())
	store.StartSweeper(ctx, cfg.Public.SweepInterval)

	return &Dependencies{
		Handler:    h,
		Visitors:   store,
		Attach:     visitor.NewMiddleware(store, jwtSvc, cfg.Public.SecureCookies).LimitCreation(ratelimiter.Visitors()),
		Jwt:        jwtSvc,
		Public:     cfg.Public,
		CancelFunc: cancel,
	}, nil
}
