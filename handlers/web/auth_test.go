package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"aromi/config"
	"aromi/middleware"
	"aromi/utils"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Demo.Email = "demo@aromi.health"
	cfg.Demo.Password = "wellness123"
	cfg.Demo.DashboardPath = "/dashboard"
	cfg.Demo.NavigateDelayMs = 0
	return cfg
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	// Minimal templates so renders can be asserted on field by field.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.html"),
		[]byte("theme={{.Theme}};label={{.ThemeLabel}};email={{.Email}};remember={{.RememberMe}};visible={{.PasswordVisible}};error={{.Error}}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.html"),
		[]byte("theme={{.Theme}};email={{.Email}}"), 0644))

	if utils.Bundle == nil {
		utils.Bundle = i18n.NewBundle(language.English)
	}
	utils.Bundle.AddMessages(language.English,
		&i18n.Message{ID: "theme_label_light", Other: "Light Mode"},
		&i18n.Message{ID: "theme_label_dark", Other: "Dark Mode"},
		&i18n.Message{ID: "error_invalid_credentials", Other: "Please enter a valid email and password"},
	)

	app := fiber.New(fiber.Config{Views: html.New(dir, ".html")})
	app.Use(middleware.LocaleMiddleware())

	handler := NewAuthHandler(testConfig())
	app.Get("/login", handler.ShowLogin)
	app.Post("/login", handler.HandleLogin)
	app.Post("/login/theme", handler.HandleToggleTheme)
	app.Post("/login/password", handler.HandleTogglePassword)
	app.Post("/login/quick", handler.HandleQuickLogin)
	app.Get("/dashboard", handler.ShowDashboard)

	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()

	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestShowLoginFresh(t *testing.T) {
	app := newTestApp(t)

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/login", nil))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "theme=light")
	assert.Contains(t, body, "label=Light Mode")
	assert.Contains(t, body, "email=;")
	assert.Contains(t, body, "remember=false")
	assert.Contains(t, body, "visible=false")
}

func TestShowLoginDoesNotExpireAbsentVisibilityCookie(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doRequest(t, app, httptest.NewRequest("GET", "/login", nil))

	// Nothing to clear, so no expiring Set-Cookie is emitted.
	assert.Nil(t, findCookie(resp, "showPassword"))
}

func TestShowLoginWithPersistedState(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/login", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	req.AddCookie(&http.Cookie{Name: "rememberedEmail", Value: "a@b.com"})

	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "theme=dark")
	assert.Contains(t, body, "label=Dark Mode")
	assert.Contains(t, body, "email=a@b.com")
	assert.Contains(t, body, "remember=true")
}

func TestToggleThemePersistsDark(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doRequest(t, app, formRequest("/login/theme", url.Values{}))

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	cookie := findCookie(resp, "theme")
	require.NotNil(t, cookie)
	assert.Equal(t, "dark", cookie.Value)
}

func TestToggleThemeBackToLight(t *testing.T) {
	app := newTestApp(t)

	req := formRequest("/login/theme", url.Values{})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	resp, _ := doRequest(t, app, req)

	cookie := findCookie(resp, "theme")
	require.NotNil(t, cookie)
	assert.Equal(t, "light", cookie.Value)
}

func TestTogglePasswordVisibility(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doRequest(t, app, formRequest("/login/password", url.Values{}))

	cookie := findCookie(resp, "showPassword")
	require.NotNil(t, cookie)
	assert.Equal(t, "1", cookie.Value)
	// transient: no Max-Age, gone when the browser closes
	assert.Equal(t, 0, cookie.MaxAge)

	// Toggling again clears the flag.
	req := formRequest("/login/password", url.Values{})
	req.AddCookie(&http.Cookie{Name: "showPassword", Value: "1"})

	resp, _ = doRequest(t, app, req)
	cookie = findCookie(resp, "showPassword")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestHandleLoginRemembersEmail(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doRequest(t, app, formRequest("/login", url.Values{
		"email":    {" a@b.com "},
		"password": {"x"},
		"remember": {"on"},
	}))

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	cookie := findCookie(resp, "rememberedEmail")
	require.NotNil(t, cookie)
	assert.Equal(t, "a@b.com", cookie.Value)
}

func TestHandleLoginForgetsEmail(t *testing.T) {
	app := newTestApp(t)

	req := formRequest("/login", url.Values{
		"email":    {"c@d.com"},
		"password": {"y"},
	})
	req.AddCookie(&http.Cookie{Name: "rememberedEmail", Value: "a@b.com"})

	resp, _ := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	cookie := findCookie(resp, "rememberedEmail")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestHandleLoginInvalidShowsInlineError(t *testing.T) {
	app := newTestApp(t)

	resp, body := doRequest(t, app, formRequest("/login", url.Values{
		"email":    {"not-an-email"},
		"password": {"x"},
	}))

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "error=Please enter a valid email and password")
	// the entered email is kept so the visitor can correct it
	assert.Contains(t, body, "email=not-an-email")
	// nothing was persisted
	assert.Nil(t, findCookie(resp, "rememberedEmail"))
}

func TestQuickLoginSkipsPersistence(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doRequest(t, app, formRequest("/login/quick", url.Values{}))

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	assert.Nil(t, findCookie(resp, "rememberedEmail"))
}

func TestShowDashboardUsesTheme(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	resp, body := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "theme=dark")
}
