package guard

import (
	"context"
	"testing"

	"github.com/microsmart/portal/frontend/internal/session"
	"github.com/microsmart/portal/shared/domain"
	"github.com/stretchr/testify/assert"
)

var (
	admin  = &domain.User{Id: 1, Username: "root", Role: domain.RoleAdmin}
	client = &domain.User{Id: 2, Username: "amina", Role: domain.RoleClient}

	anonymous   = session.Snapshot{State: session.StateAnonymous}
	asAdmin     = session.Snapshot{State: session.StateAuthenticated, User: admin}
	asClient    = session.Snapshot{State: session.StateAuthenticated, User: client}
	stillLoaded = session.Snapshot{State: session.StateProbing}
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		snap   session.Snapshot
		target string
		want   Resolution
	}{
		{"unknown shows loading", session.Snapshot{}, "/admin/users", Resolution{Outcome: Loading}},
		{"probing shows loading", stillLoaded, "/login", Resolution{Outcome: Loading}},

		{"root anonymous", anonymous, "/", redirect("/login")},
		{"root admin", asAdmin, "/", redirect("/admin/dashboard")},
		{"root client", asClient, "/", redirect("/client/dashboard")},

		{"login anonymous", anonymous, "/login", Resolution{Outcome: Render, Route: Route{Pattern: "/login", Access: AccessGuest}}},
		{"login authenticated", asClient, "/login", redirect("/")},
		{"register authenticated", asAdmin, "/register?x=1", redirect("/")},

		{"protected anonymous keeps target", anonymous, "/client/loans/7?tab=payments", redirect("/login?next=%2Fclient%2Floans%2F7%3Ftab%3Dpayments")},
		{"logout anonymous has no return", anonymous, "/logout", redirect("/login")},
		{"client on admin route", asClient, "/admin/dashboard", redirect("/")},
		{"admin on client route", asAdmin, "/client/loans/new", redirect("/")},
		{"client on own route", asClient, "/client/loans/new", Resolution{Outcome: Render, Route: Route{Pattern: "/client/loans/new", Access: AccessClient}}},
		{"param route", asAdmin, "/admin/users/42", Resolution{Outcome: Render, Route: Route{Pattern: "/admin/users/{id}", Access: AccessAdmin}}},
		{"profile for any user", asAdmin, "/profile", Resolution{Outcome: Render, Route: Route{Pattern: "/profile", Access: AccessUser}}},

		{"unknown path authenticated", asClient, "/nope", redirect("/")},
		{"unknown path anonymous", anonymous, "/admin/users/1/extra", redirect("/")},
		{"trailing slash is unknown", asClient, "/client/loans/", redirect("/")},
		{"trailing slash on param route", asAdmin, "/admin/users/4/", redirect("/")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.snap, tt.target))
		})
	}
}

func TestResolve_AuthenticatedWithoutUserIsAnonymous(t *testing.T) {
	// a snapshot only counts as logged in through its state
	snap := session.Snapshot{State: session.StateAnonymous, User: client}
	assert.Equal(t, redirect("/login?next=%2Fclient%2Floans"), Resolve(snap, "/client/loans"))
}

func TestRoute_Allows(t *testing.T) {
	assert.True(t, Route{Access: AccessGuest}.Allows(nil))
	assert.False(t, Route{Access: AccessGuest}.Allows(client))
	assert.True(t, Route{Access: AccessUser}.Allows(admin))
	assert.False(t, Route{Access: AccessUser}.Allows(nil))
	assert.True(t, Route{Access: AccessAdmin}.Allows(admin))
	assert.False(t, Route{Access: AccessAdmin}.Allows(client))
	assert.True(t, Route{Access: AccessClient}.Allows(client))
	assert.False(t, Route{Access: AccessClient}.Allows(admin))
}

func TestMatch(t *testing.T) {
	rt, ok := Match("/client/loans/new")
	assert.True(t, ok)
	assert.Equal(t, "/client/loans/new", rt.Pattern)

	rt, ok = Match("/client/loans/12")
	assert.True(t, ok)
	assert.Equal(t, "/client/loans/{id}", rt.Pattern)

	_, ok = Match("/client/loans/12/")
	assert.False(t, ok)
	_, ok = Match("/client/loans/")
	assert.False(t, ok)

	_, ok = Match("/client")
	assert.False(t, ok)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                        "/",
		"/client/loans/3?tab=pay": "/client/loans/3?tab=pay",
		"https://evil.example/":   "/",
		"//evil.example/path":     "/",
		"/\\evil.example":         "/",
		"client/loans":            "/",
		"/login":                  "/",
		"/logout":                 "/",
		"/admin/excel/4":          "/admin/excel/4",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeNext(in), "SafeNext(%q)", in)
	}
}

func TestHomeFor(t *testing.T) {
	assert.Equal(t, "/login", HomeFor(nil))
	assert.Equal(t, "/admin/dashboard", HomeFor(admin))
	assert.Equal(t, "/client/dashboard", HomeFor(client))
	assert.Equal(t, "/profile", HomeFor(&domain.User{Role: "auditor"}))
}

func TestUserFromContext(t *testing.T) {
	assert.Nil(t, UserFromContext(context.Background()))
	assert.Equal(t, client, UserFromContext(WithUser(context.Background(), client)))
}
