package store

import "sync"

// Dashboard tracks presentation flags shared by every view.
type Dashboard struct {
	mu       sync.Mutex
	loading  int
	userMenu bool
}

// NewDashboard creates a dashboard store.
func NewDashboard() *Dashboard {
	return &Dashboard{}
}

// SetLoading marks the start (true) or end (false) of a fetch. Nested
// fetches keep the flag raised until the last one ends.
func (d *Dashboard) SetLoading(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v {
		d.loading++
	} else if d.loading > 0 {
		d.loading--
	}
}

// Loading reports whether a fetch is in progress.
func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading > 0
}

// ToggleUserMenu flips the user menu and returns its new state.
func (d *Dashboard) ToggleUserMenu() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userMenu = !d.userMenu
	return d.userMenu
}

// SetUserMenu opens or closes the user menu.
func (d *Dashboard) SetUserMenu(open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userMenu = open
}

// UserMenuOpen reports whether the user menu is open.
func (d *Dashboard) UserMenuOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.userMenu
}

// track raises the loading flag for the duration of fn.
func track(d *Dashboard, fn func() error) error {
	if d == nil {
		return fn()
	}
	d.SetLoading(true)
	defer d.SetLoading(false)
	return fn()
}
