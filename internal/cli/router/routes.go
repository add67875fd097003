package router

import "strings"

// Route names.
const (
	RouteLogin         = "login"
	RoutePasswordReset = "password-reset"
	RouteLogout        = "logout"
	RouteMap           = "map"
	RouteDevices       = "devices"
	RouteDevice        = "device"
	RouteUsers         = "users"
	RouteSettings      = "settings"
	RouteDebug         = "debug"
	RouteKeepalive     = "keepalive"
	RouteEnv           = "env"
	RouteAbout         = "about"
)

// Route is one navigation destination.
type Route struct {
	Name   string
	Path   string
	Title  string
	Public bool
}

// Routes is the route table. Only login and password reset are reachable
// without a session.
var Routes = []Route{
	{Name: RouteLogin, Path: "/login", Title: "Login", Public: true},
	{Name: RoutePasswordReset, Path: "/password-reset", Title: "Password Reset", Public: true},
	{Name: RouteLogout, Path: "/logout", Title: "Logout"},
	{Name: RouteMap, Path: "/", Title: "Map"},
	{Name: RouteDevices, Path: "/devices", Title: "Devices"},
	{Name: RouteDevice, Path: "/device", Title: "Device"},
	{Name: RouteUsers, Path: "/users", Title: "Users"},
	{Name: RouteSettings, Path: "/settings", Title: "Settings"},
	{Name: RouteDebug, Path: "/debug", Title: "Activity Logs"},
	{Name: RouteKeepalive, Path: "/keepalive", Title: "Keepalive Logs"},
	{Name: RouteEnv, Path: "/env", Title: "Environment"},
	{Name: RouteAbout, Path: "/about", Title: "About"},
}

var (
	byName = make(map[string]Route, len(Routes))
	byPath = make(map[string]Route, len(Routes))
)

func init() {
	for _, r := range Routes {
		byName[r.Name] = r
		byPath[r.Path] = r
	}
}

// Lookup resolves a route by name or path.
func Lookup(nameOrPath string) (Route, bool) {
	if r, ok := byName[nameOrPath]; ok {
		return r, true
	}
	p := nameOrPath
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	r, ok := byPath[p]
	return r, ok
}

// IsPublic reports whether the named route is reachable without a session.
func IsPublic(name string) bool {
	return byName[name].Public
}
