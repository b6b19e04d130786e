// Package session tracks who the visitor is logged in as.
//
// A Controller is a small state machine:
//
//	Unknown -> Probing -> Authenticated(User) | Anonymous
//
// State-changing operations are serialised; readers take an immutable
// Snapshot. Reset is the only transition that does not wait for in-flight
// operations, so it can be called from inside one (the API client's 401 hook).
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/microsmart/portal/frontend/internal/apiclient"
	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
	"github.com/microsmart/portal/shared/logger"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	StateUnknown State = iota
	StateProbing
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Resolved reports whether route evaluation may happen.
func (s State) Resolved() bool {
	return s == StateAuthenticated || s == StateAnonymous
}

// Snapshot is a consistent view of the controller at one point in time.
type Snapshot struct {
	State State
	User  *domain.User // nil unless State is StateAuthenticated
}

func (s Snapshot) Authenticated() bool { return s.State == StateAuthenticated }

// Backend is the subset of the API client the controller drives.
type Backend interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, creds api.LoginRequest) (*domain.User, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, data api.RegisterRequest) (*api.RegisterResponse, error)
	UpdateProfile(ctx context.Context, data api.UpdateProfileRequest) (*domain.User, error)
}

type Controller struct {
	backend Backend
	log     *slog.Logger

	ops    sync.Mutex // serialises state-changing operations
	probes singleflight.Group

	mu    sync.RWMutex
	state State
	user  *domain.User
}

func New(backend Backend) *Controller {
	return &Controller{
		backend: backend,
		log:     logger.Component("session"),
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{State: c.state, User: c.user}
}

func (c *Controller) set(state State, user *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.user = user
}

// Probe asks the backend who the visitor is. A missing session is the normal
// case for a fresh visitor and resolves to Anonymous silently; any other
// failure also resolves to Anonymous but is logged. Concurrent calls share
// one backend request.
func (c *Controller) Probe(ctx context.Context) Snapshot {
	v, _, _ := c.probes.Do("probe", func() (any, error) {
		c.ops.Lock()
		defer c.ops.Unlock()

		c.mu.Lock()
		if c.state == StateUnknown {
			c.state = StateProbing
		}
		c.mu.Unlock()

		user, err := c.backend.CurrentUser(ctx)
		switch {
		case err == nil:
			c.set(StateAuthenticated, user)
		case apiclient.KindOf(err) == apiclient.Unauthorized:
			c.set(StateAnonymous, nil)
		default:
			c.log.Warn("session probe failed", "error", err)
			c.set(StateAnonymous, nil)
		}
		return c.Snapshot(), nil
	})
	return v.(Snapshot)
}

// Login authenticates and returns the backend's user record. On failure the
// state is left as it was.
func (c *Controller) Login(ctx context.Context, creds api.LoginRequest) (*domain.User, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	user, err := c.backend.Login(ctx, creds)
	if err != nil {
		return nil, wrap(LabelLogin, err)
	}
	c.set(StateAuthenticated, user)
	c.log.Info("logged in", "user_id", user.Id, "role", user.Role)
	return user, nil
}

// Logout ends the backend session. A failing call keeps the local state, except
// a 401: the backend session is already gone and the 401 hook has reset us.
func (c *Controller) Logout(ctx context.Context) error {
	c.ops.Lock()
	defer c.ops.Unlock()

	if err := c.backend.Logout(ctx); err != nil {
		if apiclient.KindOf(err) == apiclient.Unauthorized {
			c.set(StateAnonymous, nil)
			return nil
		}
		return wrap(LabelLogout, err)
	}
	c.set(StateAnonymous, nil)
	return nil
}

// Register creates an account. It does not log the new user in.
func (c *Controller) Register(ctx context.Context, data api.RegisterRequest) (*api.RegisterResponse, error) {
	resp, err := c.backend.Register(ctx, data)
	if err != nil {
		return nil, wrap(LabelRegister, err)
	}
	return resp, nil
}

func (c *Controller) UpdateProfile(ctx context.Context, data api.UpdateProfileRequest) (*domain.User, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	if !c.Snapshot().Authenticated() {
		return nil, ErrNotAuthenticated
	}
	user, err := c.backend.UpdateProfile(ctx, data)
	if err != nil {
		return nil, wrap(LabelUpdateProfile, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a concurrent 401 may have reset us while the call was in flight
	if c.state == StateAuthenticated {
		c.user = user
	}
	return user, nil
}

// Reset drops the session after the backend answered 401 and returns the
// state it left. StateAnonymous means nothing changed, so repeated 401s only
// act once. The 401 that answers a fresh probe is routine and not logged.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.state
	if prev == StateAnonymous {
		return prev
	}
	c.state = StateAnonymous
	c.user = nil
	if prev == StateAuthenticated {
		c.log.Info("session reset after unauthorized response")
	}
	return prev
}
