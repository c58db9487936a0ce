// handlers/web/auth.go
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"aromi/config"
	"aromi/login"
	"aromi/storage"
	"aromi/utils"
)

// showPasswordCookie carries the password-visibility toggle between
// requests; it expires with the browser session on purpose
const showPasswordCookie = "showPassword"

type AuthHandler struct {
	config *config.Config
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg}
}

// loginPage implements login.View for server-side rendering: the
// controller mutates it, the template renders it.
type loginPage struct {
	Theme           login.Theme
	Email           string
	Password        string
	RememberMe      bool
	PasswordVisible bool
	FadingOut       bool

	transient *storage.CookieStore
}

func (p *loginPage) ApplyTheme(theme login.Theme) { p.Theme = theme }

func (p *loginPage) SetEmail(email string) { p.Email = email }

func (p *loginPage) SetPassword(password string) { p.Password = password }

func (p *loginPage) SetRememberMe(checked bool) { p.RememberMe = checked }

func (p *loginPage) FadeOut() { p.FadingOut = true }

var _ login.View = (*loginPage)(nil)

func (p *loginPage) SetPasswordVisible(visible bool) {
	p.PasswordVisible = visible
	if p.transient == nil {
		return
	}
	if visible {
		p.transient.Set(showPasswordCookie, "1")
	} else if _, ok := p.transient.Get(showPasswordCookie); ok {
		p.transient.Remove(showPasswordCookie)
	}
}

// newController wires a controller to the request's cookies. The
// redirect target lands in *redirect instead of firing directly so
// the handler stays in charge of the response.
func (h *AuthHandler) newController(c *fiber.Ctx, page *loginPage, redirect *string) *login.Controller {
	page.transient = storage.NewTransientCookieStore(c)

	return login.NewController(
		storage.NewCookieStore(c),
		page,
		func(path string) {
			if redirect != nil {
				*redirect = path
			}
		},
		login.Options{
			DashboardPath:   h.config.Demo.DashboardPath,
			NavigateDelay:   time.Duration(h.config.Demo.NavigateDelayMs) * time.Millisecond,
			DemoEmail:       h.config.Demo.Email,
			DemoPassword:    h.config.Demo.Password,
			PasswordVisible: c.Cookies(showPasswordCookie) == "1",
		},
	)
}

func (h *AuthHandler) renderLogin(c *fiber.Ctx, page *loginPage, errorMessage string) error {
	localizer := c.Locals("localizer").(*i18n.Localizer)

	themeLabel := utils.T(localizer, "theme_label_light")
	if page.Theme == login.ThemeDark {
		themeLabel = utils.T(localizer, "theme_label_dark")
	}

	return c.Render("login", fiber.Map{
		"Theme":           string(page.Theme),
		"ThemeLabel":      themeLabel,
		"Email":           page.Email,
		"RememberMe":      page.RememberMe,
		"PasswordVisible": page.PasswordVisible,
		"Error":           errorMessage,
		"Lang":            c.Locals("lang"),
		"CSRFToken":       c.Locals("csrf"),
	})
}

// ShowLogin renders the login page from persisted preferences
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	page := &loginPage{}
	ctrl := h.newController(c, page, nil)
	ctrl.Initialize()

	return h.renderLogin(c, page, "")
}

// HandleLogin processes the login form. Validation failures re-render
// the form with an inline message; nothing is authenticated here,
// this is a demo front door.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	rememberMe := c.FormValue("remember") == "on"

	var redirect string
	page := &loginPage{}
	ctrl := h.newController(c, page, &redirect)

	if err := ctrl.SubmitForm(email, password, rememberMe); err != nil {
		localizer := c.Locals("localizer").(*i18n.Localizer)
		utils.Log.Debug("Login form rejected for %q", email)

		// Re-render with the persisted theme, the entered email and
		// an inline message instead of dropping the submission
		// silently.
		ctrl.Initialize()
		page.Email = email
		page.RememberMe = rememberMe
		c.Status(fiber.StatusBadRequest)
		return h.renderLogin(c, page, utils.T(localizer, "error_invalid_credentials"))
	}

	utils.Log.Info("Login submitted, redirecting to %s", redirect)
	return c.Redirect(redirect)
}

// HandleToggleTheme flips the persisted theme and returns to the page
// the visitor came from
func (h *AuthHandler) HandleToggleTheme(c *fiber.Ctx) error {
	page := &loginPage{}
	ctrl := h.newController(c, page, nil)

	theme := ctrl.ToggleTheme()
	utils.Log.Debug("Theme toggled to %s", theme)

	return h.redirectBack(c)
}

// HandleTogglePassword flips the password field between masked and
// plain rendering
func (h *AuthHandler) HandleTogglePassword(c *fiber.Ctx) error {
	page := &loginPage{}
	ctrl := h.newController(c, page, nil)

	ctrl.TogglePasswordVisibility()

	return h.redirectBack(c)
}

// HandleQuickLogin injects the demo credentials and goes straight to
// the dashboard. No validation, no persistence.
func (h *AuthHandler) HandleQuickLogin(c *fiber.Ctx) error {
	var redirect string
	page := &loginPage{}
	ctrl := h.newController(c, page, &redirect)

	ctrl.QuickLogin()

	utils.Log.Info("Quick login used")
	return c.Redirect(redirect)
}

// ShowDashboard renders the post-login destination page
func (h *AuthHandler) ShowDashboard(c *fiber.Ctx) error {
	page := &loginPage{}
	ctrl := h.newController(c, page, nil)
	ctrl.Initialize()

	return c.Render("dashboard", fiber.Map{
		"Theme": string(page.Theme),
		"Email": page.Email,
		"Lang":  c.Locals("lang"),
	})
}

func (h *AuthHandler) redirectBack(c *fiber.Ctx) error {
	referer := c.Get("Referer")
	if referer == "" {
		referer = "/login"
	}
	return c.Redirect(referer)
}
