package login

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Theme is the persisted light/dark preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Storage keys for persisted login-page state
const (
	KeyTheme           = "theme"
	KeyRememberedEmail = "rememberedEmail"
)

// ErrInvalidCredentials is returned by SubmitForm when the email or
// password fails the format check
var ErrInvalidCredentials = errors.New("invalid credentials format")

// emailPattern requires localpart@domain.tld shape; this is
// presentation-layer validation only
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Storage is the small persistence capability the controller needs.
// A missing key is a normal state, never an error.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// View receives the visual consequences of controller state changes
type View interface {
	ApplyTheme(theme Theme)
	SetEmail(email string)
	SetPassword(password string)
	SetRememberMe(checked bool)
	SetPasswordVisible(visible bool)
	FadeOut()
}

// Options configures a Controller
type Options struct {
	DashboardPath string
	NavigateDelay time.Duration
	DemoEmail     string
	DemoPassword  string

	// PasswordVisible seeds the visibility toggle. It is never
	// persisted; adapters that rebuild the controller per request
	// carry it across themselves.
	PasswordVisible bool
}

// Controller mediates all interactive behavior of the login screen.
// It holds no business logic beyond input validation and local
// persistence.
type Controller struct {
	storage  Storage
	view     View
	navigate func(path string)
	opts     Options

	passwordVisible bool

	// after defers the redirect without blocking other handlers;
	// tests replace it to drop the delay
	after func(d time.Duration)
}

// NewController creates a login page controller with explicit
// collaborators instead of implicit globals.
func NewController(storage Storage, view View, navigate func(string), opts Options) *Controller {
	if opts.DashboardPath == "" {
		opts.DashboardPath = "/dashboard"
	}
	return &Controller{
		storage:         storage,
		view:            view,
		navigate:        navigate,
		opts:            opts,
		passwordVisible: opts.PasswordVisible,
		after:           time.Sleep,
	}
}

// Initialize applies persisted state to the view. Invoked once when
// the page becomes ready. Empty storage is not a failure: everything
// falls back to defaults.
func (c *Controller) Initialize() {
	c.view.ApplyTheme(c.CurrentTheme())

	if email, ok := c.storage.Get(KeyRememberedEmail); ok && email != "" {
		c.view.SetEmail(email)
		c.view.SetRememberMe(true)
	}

	c.view.SetPasswordVisible(c.passwordVisible)
}

// CurrentTheme reads the persisted theme, falling back to light when
// absent or invalid
func (c *Controller) CurrentTheme() Theme {
	value, ok := c.storage.Get(KeyTheme)
	if !ok || Theme(value) != ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ToggleTheme flips the persisted theme and re-renders the toggle.
// The persisted value and the rendered theme always agree afterwards.
func (c *Controller) ToggleTheme() Theme {
	next := ThemeDark
	if c.CurrentTheme() == ThemeDark {
		next = ThemeLight
	}
	c.storage.Set(KeyTheme, string(next))
	c.view.ApplyTheme(next)
	return next
}

// TogglePasswordVisibility flips the password field between masked and
// plain rendering. Purely visual; the stored value is untouched.
func (c *Controller) TogglePasswordVisibility() bool {
	c.passwordVisible = !c.passwordVisible
	c.view.SetPasswordVisible(c.passwordVisible)
	return c.passwordVisible
}

// ValidateCredentials reports whether the pair passes the basic
// format check. A true result is not proof of valid authentication
// credentials.
func ValidateCredentials(email, password string) bool {
	if email == "" || password == "" {
		return false
	}
	return emailPattern.MatchString(email)
}

// SubmitForm validates the submitted credentials, updates the
// remembered email according to the checkbox, and navigates to the
// dashboard. Returns ErrInvalidCredentials when the format check
// fails so callers can surface an inline message.
func (c *Controller) SubmitForm(email, password string, rememberMe bool) error {
	email = strings.TrimSpace(email)

	if !ValidateCredentials(email, password) {
		return ErrInvalidCredentials
	}

	if rememberMe {
		c.storage.Set(KeyRememberedEmail, email)
	} else {
		c.storage.Remove(KeyRememberedEmail)
	}

	c.navigateToDashboard()
	return nil
}

// QuickLogin injects the fixed demo credentials and goes straight to
// the dashboard, skipping validation and persistence. Demo-only path.
func (c *Controller) QuickLogin() {
	c.view.SetEmail(c.opts.DemoEmail)
	c.view.SetPassword(c.opts.DemoPassword)
	c.navigateToDashboard()
}

// navigateToDashboard fades the page out, waits for the transition to
// render, then fires the one-way redirect. No retry, no cancellation.
func (c *Controller) navigateToDashboard() {
	c.view.FadeOut()
	if c.opts.NavigateDelay > 0 {
		c.after(c.opts.NavigateDelay)
	}
	c.navigate(c.opts.DashboardPath)
}
