package login

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory Storage fake
type memStorage struct {
	values map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string]string)}
}

func (m *memStorage) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *memStorage) Set(key, value string) { m.values[key] = value }

func (m *memStorage) Remove(key string) { delete(m.values, key) }

// recordingView captures every visual mutation the controller makes
type recordingView struct {
	theme           Theme
	themeApplied    int
	email           string
	password        string
	rememberMe      bool
	passwordVisible bool
	fadedOut        bool
}

func (v *recordingView) ApplyTheme(theme Theme) {
	v.theme = theme
	v.themeApplied++
}

func (v *recordingView) SetEmail(email string) { v.email = email }

func (v *recordingView) SetPassword(password string) { v.password = password }

func (v *recordingView) SetRememberMe(checked bool) { v.rememberMe = checked }

func (v *recordingView) SetPasswordVisible(visible bool) { v.passwordVisible = visible }

func (v *recordingView) FadeOut() { v.fadedOut = true }

type fixture struct {
	storage *memStorage
	view    *recordingView
	ctrl    *Controller
	visited []string
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		storage: newMemStorage(),
		view:    &recordingView{},
	}
	f.ctrl = NewController(f.storage, f.view, func(path string) {
		f.visited = append(f.visited, path)
	}, opts)
	f.ctrl.after = func(time.Duration) {}
	return f
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"valid pair", "user@example.com", "hunter2", true},
		{"valid with any password", "user@example.com", "x", true},
		{"empty email", "", "hunter2", false},
		{"empty password", "user@example.com", "", false},
		{"both empty", "", "", false},
		{"missing at sign", "userexample.com", "hunter2", false},
		{"missing dot", "user@examplecom", "hunter2", false},
		{"missing local part", "@example.com", "hunter2", false},
		{"missing tld", "user@example.", "hunter2", false},
		{"whitespace in domain", "user@exa mple.com", "hunter2", false},
		{"double at sign", "user@@example.com", "hunter2", false},
		{"plain word", "hello", "hunter2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCredentials(tt.email, tt.password))
		})
	}
}

func TestInitializeFreshStorage(t *testing.T) {
	f := newFixture(Options{})
	f.ctrl.Initialize()

	assert.Equal(t, ThemeLight, f.view.theme)
	assert.Empty(t, f.view.email)
	assert.False(t, f.view.rememberMe)
	assert.False(t, f.view.passwordVisible)
}

func TestInitializeDarkTheme(t *testing.T) {
	f := newFixture(Options{})
	f.storage.Set(KeyTheme, "dark")

	f.ctrl.Initialize()

	assert.Equal(t, ThemeDark, f.view.theme)
}

func TestInitializeInvalidThemeFallsBackToLight(t *testing.T) {
	f := newFixture(Options{})
	f.storage.Set(KeyTheme, "solarized")

	f.ctrl.Initialize()

	assert.Equal(t, ThemeLight, f.view.theme)
}

func TestInitializeRememberedEmail(t *testing.T) {
	f := newFixture(Options{})
	f.storage.Set(KeyRememberedEmail, "a@b.com")

	f.ctrl.Initialize()

	assert.Equal(t, "a@b.com", f.view.email)
	assert.True(t, f.view.rememberMe)
}

func TestToggleThemeFlipsAndPersists(t *testing.T) {
	f := newFixture(Options{})

	got := f.ctrl.ToggleTheme()
	assert.Equal(t, ThemeDark, got)

	stored, ok := f.storage.Get(KeyTheme)
	require.True(t, ok)
	assert.Equal(t, "dark", stored)
	assert.Equal(t, ThemeDark, f.view.theme)
}

func TestToggleThemeTwiceIsIdentity(t *testing.T) {
	f := newFixture(Options{})
	f.ctrl.Initialize()
	original := f.view.theme

	f.ctrl.ToggleTheme()
	f.ctrl.ToggleTheme()

	assert.Equal(t, original, f.view.theme)
	assert.Equal(t, original, f.ctrl.CurrentTheme())
}

func TestTogglePasswordVisibility(t *testing.T) {
	f := newFixture(Options{})

	assert.True(t, f.ctrl.TogglePasswordVisibility())
	assert.True(t, f.view.passwordVisible)

	assert.False(t, f.ctrl.TogglePasswordVisibility())
	assert.False(t, f.view.passwordVisible)
}

func TestPasswordVisibilitySeed(t *testing.T) {
	f := newFixture(Options{PasswordVisible: true})

	f.ctrl.Initialize()
	assert.True(t, f.view.passwordVisible)

	assert.False(t, f.ctrl.TogglePasswordVisibility())
}

func TestSubmitFormRemembersEmail(t *testing.T) {
	f := newFixture(Options{})

	require.NoError(t, f.ctrl.SubmitForm("a@b.com", "x", true))

	remembered, ok := f.storage.Get(KeyRememberedEmail)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", remembered)

	// A later opted-out submission clears the remembered email.
	require.NoError(t, f.ctrl.SubmitForm("c@d.com", "y", false))

	_, ok = f.storage.Get(KeyRememberedEmail)
	assert.False(t, ok)
}

func TestSubmitFormTrimsEmail(t *testing.T) {
	f := newFixture(Options{})

	require.NoError(t, f.ctrl.SubmitForm("  a@b.com  ", "x", true))

	remembered, _ := f.storage.Get(KeyRememberedEmail)
	assert.Equal(t, "a@b.com", remembered)
}

func TestSubmitFormInvalidCredentials(t *testing.T) {
	f := newFixture(Options{})
	f.storage.Set(KeyRememberedEmail, "kept@b.com")

	err := f.ctrl.SubmitForm("not-an-email", "x", true)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Failed submissions change nothing and navigate nowhere.
	remembered, _ := f.storage.Get(KeyRememberedEmail)
	assert.Equal(t, "kept@b.com", remembered)
	assert.Empty(t, f.visited)
	assert.False(t, f.view.fadedOut)
}

func TestSubmitFormNavigatesToDashboard(t *testing.T) {
	f := newFixture(Options{DashboardPath: "/dashboard"})

	require.NoError(t, f.ctrl.SubmitForm("a@b.com", "x", false))

	assert.Equal(t, []string{"/dashboard"}, f.visited)
	assert.True(t, f.view.fadedOut)
}

func TestQuickLoginBypassesValidation(t *testing.T) {
	f := newFixture(Options{
		DashboardPath: "/dashboard",
		DemoEmail:     "demo@aromi.health",
		DemoPassword:  "wellness123",
	})

	f.ctrl.QuickLogin()

	assert.Equal(t, "demo@aromi.health", f.view.email)
	assert.Equal(t, "wellness123", f.view.password)
	assert.Equal(t, []string{"/dashboard"}, f.visited)

	// Nothing is persisted on the quick path.
	_, ok := f.storage.Get(KeyRememberedEmail)
	assert.False(t, ok)
}

func TestNavigateDelayIsConfigurable(t *testing.T) {
	f := newFixture(Options{NavigateDelay: 200 * time.Millisecond})

	var waited time.Duration
	f.ctrl.after = func(d time.Duration) { waited = d }

	f.ctrl.QuickLogin()

	assert.Equal(t, 200*time.Millisecond, waited)
}

func TestDefaultDashboardPath(t *testing.T) {
	f := newFixture(Options{})

	require.NoError(t, f.ctrl.SubmitForm("a@b.com", "x", false))
	assert.Equal(t, []string{"/dashboard"}, f.visited)
}
