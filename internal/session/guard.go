package session

import "context"

// Routes the guard redirects to. LoginRoute doubles as the fallback for
// unrecognised roles.
const (
	LoginRoute              = "/login"
	AdminDashboardRoute     = "/adminDashboard"
	ProfessorDashboardRoute = "/professor/dashboard"
	AlunoDashboardRoute     = "/aluno/dashboard"
)

// RouteForRole maps a role to its landing page.
func RouteForRole(role Role) string {
	switch role {
	case RoleAdmin:
		return AdminDashboardRoute
	case RoleProfessor:
		return ProfessorDashboardRoute
	case RoleAluno:
		return AlunoDashboardRoute
	default:
		return LoginRoute
	}
}

// GuardState is the outcome of a guard check.
type GuardState int

const (
	// StateChecking is the transient initial state; a Decision never carries
	// it, but view layers may render it as a loading indicator while Check
	// runs.
	StateChecking GuardState = iota
	StateAuthorized
	StateRedirecting
)

// Decision is the final verdict for one navigation. Redirecting decisions are
// terminal: the navigation they trigger produces a fresh check elsewhere.
type Decision struct {
	State    GuardState
	Location string
	Claims   *Claims
}

// Guard gates a protected view behind authentication and an optional role
// requirement. A zero RequiredRole means any authenticated role may pass.
type Guard struct {
	Sessions     *Manager
	RequiredRole Role
}

// Check resolves the current session exactly once and decides whether the
// wrapped view may render. No session (absent, malformed or expired) redirects
// to login; a wrong role redirects to that role's own landing page.
func (g Guard) Check(ctx context.Context) Decision {
	claims := g.Sessions.CurrentClaims(ctx)
	if claims == nil {
		return Decision{State: StateRedirecting, Location: LoginRoute}
	}
	role := claims.Role()
	if role == RoleUnknown {
		return Decision{State: StateRedirecting, Location: LoginRoute}
	}
	if g.RequiredRole != "" && role != g.RequiredRole {
		return Decision{State: StateRedirecting, Location: RouteForRole(role), Claims: claims}
	}
	return Decision{State: StateAuthorized, Claims: claims}
}
