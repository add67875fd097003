package router

import (
	"context"
	"sync"

	"github.com/foxcodenine/iot-parking-console/internal/cli/flash"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/metric"
)

// State is the outcome of one guard pass.
type State int

// Guard states.
const (
	Idle State = iota
	BlockedUnauthenticated
	BlockedExpired
	Allowed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case BlockedUnauthenticated:
		return "blocked_unauthenticated"
	case BlockedExpired:
		return "blocked_expired"
	case Allowed:
		return "allowed"
	default:
		return "unknown"
	}
}

const expiredMessage = "Your session has expired. Please log in again."

// Session is the part of the session store the guard reads and clears.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	IsExpired(ctx context.Context) bool
	Clear(ctx context.Context) error
	SetRedirectTarget(route string)
}

// Flash is the part of the flash store the guard drives.
type Flash interface {
	Decay()
	SetSeverity(sev flash.Severity, messages ...string)
}

// Handler renders a route once navigation is allowed.
type Handler func(ctx context.Context) error

// Decision describes one navigation attempt.
type Decision struct {
	State State
	// To is the requested route.
	To string
	// Redirect is the route shown instead, if blocked.
	Redirect string
}

// Router tracks the current route and guards navigation.
type Router struct {
	session Session
	flash   Flash
	logger  logger.Logger
	metrics *metric.Registry

	mu        sync.Mutex
	current   string
	state     State
	handlers  map[string]Handler
	resets    []func(context.Context)
	redirects int
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// WithMetrics records guard decisions.
func WithMetrics(m *metric.Registry) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// New creates a router positioned on no route.
func New(sess Session, fl Flash, opts ...Option) *Router {
	r := &Router{
		session:  sess,
		flash:    fl,
		logger:   logger.Discard(),
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers the handler of a route.
func (r *Router) Handle(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// OnReset registers fn to run whenever session-dependent state must be
// dropped: on detected expiry and on hard redirect.
func (r *Router) OnReset(fn func(context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, fn)
}

// Route returns the current route name, or "" before the first navigation.
func (r *Router) Route() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// State returns the outcome of the last guard pass.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Redirects returns how many hard redirects have happened.
func (r *Router) Redirects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirects
}

// Navigate runs the guard for one attempt to reach nameOrPath and, when
// allowed, the route's handler. A blocked attempt is not an error: the
// decision says where the user was sent instead.
func (r *Router) Navigate(ctx context.Context, nameOrPath string) (Decision, error) {
	r.flash.Decay()

	route, ok := Lookup(nameOrPath)
	if !ok {
		return Decision{State: Idle, To: nameOrPath}, domain.ErrInvalidArgument.WithDetails("unknown route " + nameOrPath)
	}

	d := r.guard(ctx, route)
	r.metrics.ObserveGuard(d.State.String())

	r.mu.Lock()
	r.state = d.State
	if d.State == Allowed {
		r.current = route.Name
	} else {
		r.current = d.Redirect
	}
	h := r.handlers[route.Name]
	r.mu.Unlock()

	r.logger.Debug("navigation", "to", route.Name, "state", d.State.String(), "redirect", d.Redirect)

	if d.State != Allowed || h == nil {
		return d, nil
	}
	return d, h(ctx)
}

func (r *Router) guard(ctx context.Context, route Route) Decision {
	if !r.session.IsAuthenticated(ctx) {
		if route.Public {
			return Decision{State: Allowed, To: route.Name}
		}
		r.session.SetRedirectTarget(route.Name)
		return Decision{State: BlockedUnauthenticated, To: route.Name, Redirect: RouteLogin}
	}

	if r.session.IsExpired(ctx) {
		if err := r.session.Clear(ctx); err != nil {
			r.logger.Error("clear expired session", "error", err)
		}
		r.reset(ctx)
		if !route.Public {
			r.session.SetRedirectTarget(route.Name)
			r.flash.SetSeverity(flash.SeverityWarning, expiredMessage)
			return Decision{State: BlockedExpired, To: route.Name, Redirect: RouteLogin}
		}
	}

	return Decision{State: Allowed, To: route.Name}
}

// HardRedirect drops all session-dependent state and moves to path
// without a guard pass, as a full page reload would.
func (r *Router) HardRedirect(ctx context.Context, path string) {
	route, ok := Lookup(path)
	if !ok {
		route = byName[RouteLogin]
	}

	r.reset(ctx)

	r.mu.Lock()
	r.current = route.Name
	r.state = Idle
	r.redirects++
	r.mu.Unlock()

	r.metrics.ObserveHardRedirect()
	r.logger.Info("hard redirect", "to", route.Path)
}

func (r *Router) reset(ctx context.Context) {
	r.mu.Lock()
	hooks := append(([]func(context.Context))(nil), r.resets...)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
}
