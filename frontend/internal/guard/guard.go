// Package guard decides, from the session alone, whether a page is shown,
// redirected, or replaced by the loading placeholder.
package guard

import (
	"context"
	"net/url"
	"strings"

	"github.com/microsmart/portal/frontend/internal/session"
	"github.com/microsmart/portal/shared/domain"
)

type Access int

const (
	// AccessGuest routes are only shown to anonymous visitors.
	AccessGuest Access = iota
	// AccessUser routes need any authenticated user.
	AccessUser
	AccessAdmin
	AccessClient
)

type Route struct {
	Pattern string
	Access  Access
	// NoReturn routes are never offered as a post-login destination.
	NoReturn bool
}

// Allows reports whether u may see the route. Guest routes allow nobody who
// is logged in.
func (rt Route) Allows(u *domain.User) bool {
	switch rt.Access {
	case AccessGuest:
		return u == nil
	case AccessUser:
		return u != nil
	case AccessAdmin:
		return u != nil && u.Role == domain.RoleAdmin
	case AccessClient:
		return u != nil && u.Role == domain.RoleClient
	default:
		return false
	}
}

const (
	RootPath            = "/"
	LoginPath           = "/login"
	RegisterPath        = "/register"
	AdminDashboardPath  = "/admin/dashboard"
	ClientDashboardPath = "/client/dashboard"
)

// Routes is every page the portal serves behind the guard.
var Routes = []Route{
	{Pattern: LoginPath, Access: AccessGuest},
	{Pattern: RegisterPath, Access: AccessGuest},

	{Pattern: "/profile", Access: AccessUser},
	{Pattern: "/logout", Access: AccessUser, NoReturn: true},

	{Pattern: AdminDashboardPath, Access: AccessAdmin},
	{Pattern: "/admin/users", Access: AccessAdmin},
	{Pattern: "/admin/users/{id}", Access: AccessAdmin},
	{Pattern: "/admin/loans", Access: AccessAdmin},
	{Pattern: "/admin/loans/{id}", Access: AccessAdmin},
	{Pattern: "/admin/excel", Access: AccessAdmin},
	{Pattern: "/admin/excel/{id}", Access: AccessAdmin},
	{Pattern: "/admin/messages", Access: AccessAdmin},
	{Pattern: "/admin/metrics", Access: AccessAdmin},

	{Pattern: ClientDashboardPath, Access: AccessClient},
	{Pattern: "/client/loans", Access: AccessClient},
	{Pattern: "/client/loans/new", Access: AccessClient},
	{Pattern: "/client/loans/{id}", Access: AccessClient},
	{Pattern: "/client/payments", Access: AccessClient},
	{Pattern: "/client/messages", Access: AccessClient},
}

// Match finds the route for path. A {param} segment matches any non-empty
// segment; literal segments win over params. Paths are compared as they are,
// so "/client/loans/" is not "/client/loans".
func Match(path string) (Route, bool) {
	segs := splitPath(path)
	var best Route
	bestScore := -1
	for _, rt := range Routes {
		pat := splitPath(rt.Pattern)
		if len(pat) != len(segs) {
			continue
		}
		score, ok := 0, true
		for i, p := range pat {
			switch {
			case p == segs[i]:
				score++
			case strings.HasPrefix(p, "{") && segs[i] != "":
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok && score > bestScore {
			best, bestScore = rt, score
		}
	}
	return best, bestScore >= 0
}

func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

type Outcome int

const (
	Loading Outcome = iota
	Render
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "loading"
	}
}

type Resolution struct {
	Outcome  Outcome
	Route    Route  // set for Render
	Location string // set for Redirect
}

// Resolve decides what the visitor sees for target (a path with optional
// query) given the session. It has no side effects.
func Resolve(snap session.Snapshot, target string) Resolution {
	if !snap.State.Resolved() {
		return Resolution{Outcome: Loading}
	}

	u, err := url.Parse(target)
	if err != nil {
		return redirect(RootPath)
	}
	path := u.Path
	if path == "" {
		path = RootPath
	}

	var user *domain.User
	if snap.Authenticated() {
		user = snap.User
	}

	if path == RootPath {
		return redirect(HomeFor(user))
	}

	rt, ok := Match(path)
	if !ok {
		return redirect(RootPath)
	}

	switch {
	case rt.Access == AccessGuest && user != nil:
		return redirect(RootPath)
	case rt.Access != AccessGuest && user == nil:
		if rt.NoReturn {
			return redirect(LoginPath)
		}
		return redirect(LoginURL(u.RequestURI()))
	case !rt.Allows(user):
		return redirect(RootPath)
	}
	return Resolution{Outcome: Render, Route: rt}
}

func redirect(location string) Resolution {
	return Resolution{Outcome: Redirect, Location: location}
}

// HomeFor is where "/" leads.
func HomeFor(user *domain.User) string {
	switch {
	case user == nil:
		return LoginPath
	case user.Role == domain.RoleAdmin:
		return AdminDashboardPath
	case user.Role == domain.RoleClient:
		return ClientDashboardPath
	default:
		return "/profile"
	}
}

// LoginURL is the login page that returns to next after success.
func LoginURL(next string) string {
	return LoginPath + "?" + url.Values{"next": {next}}.Encode()
}

// SafeNext returns next if it is a local path worth returning to, else "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return RootPath
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return RootPath
	}
	if rt, ok := Match(u.Path); ok && (rt.Access == AccessGuest || rt.NoReturn) {
		return RootPath
	}
	return next
}

type userCtxKey struct{}

func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user the guard admitted, nil on guest pages.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userCtxKey{}).(*domain.User)
	return u
}
