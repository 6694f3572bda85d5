package profile

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoProfilePortal/GoProfilePortal/internal/config"
	usercontroller "github.com/GoProfilePortal/GoProfilePortal/internal/db/controller/user"
	"github.com/GoProfilePortal/GoProfilePortal/internal/db/models"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/handler"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// noOpViews is a minimal Fiber Views engine used for tests.
type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, _ interface{}, _ ...string) error {
	_, _ = io.WriteString(w, name)

	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate user model: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Title: "Profile Portal",
		Webserver: config.Webserver{
			URL:           "http://localhost",
			Port:          3000,
			SessionSecret: testSecret,
			Session:       config.Session{ExpiryTime: time.Minute},
		},
	}
}

func newTestService(t *testing.T) (*Service, *fiber.App, *gorm.DB, *session.Codec) {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	codec := session.NewCodec(testSecret)

	app := fiber.New(fiber.Config{Views: noOpViews{}})
	app.Use(handler.SessionMiddleware(codec))

	var s Service
	s.Init(app, cfg, db, codec)

	return &s, app, db, codec
}

func encodeSession(t *testing.T, codec *session.Codec, data *session.Data) string {
	t.Helper()

	encoded, err := codec.Encode(data)
	if err != nil {
		t.Fatalf("failed to encode session: %v", err)
	}

	return encoded
}

func sessionCookieValue(t *testing.T, resp *http.Response) (string, bool) {
	t.Helper()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == session.CookieName {
			return cookie.Value, true
		}
	}

	return "", false
}

func performGet(t *testing.T, app *fiber.App, target, cookie string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func performPost(t *testing.T, app *fiber.App, target, cookie string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func TestGet_Anonymous_Returns401(t *testing.T) {
	_, app, _, _ := newTestService(t)

	resp := performGet(t, app, Path, "")

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 Unauthorized, got %d", resp.StatusCode)
	}
}

func TestGet_TamperedCookie_Returns401(t *testing.T) {
	_, app, _, codec := newTestService(t)

	cookie := encodeSession(t, codec, &session.Data{Subject: "sub-1"})
	tampered := cookie + "x"

	resp := performGet(t, app, Path, tampered)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 Unauthorized for tampered cookie, got %d", resp.StatusCode)
	}
}

func TestGet_MintsFormTokenAndReissuesCookie(t *testing.T) {
	_, app, _, codec := newTestService(t)

	cookie := encodeSession(t, codec, &session.Data{Subject: "sub-1", Email: "a@example.com"})

	resp := performGet(t, app, Path, cookie)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	reissued, ok := sessionCookieValue(t, resp)
	if !ok {
		t.Fatalf("expected a re-issued session cookie carrying the form token")
	}

	data := codec.Decode(reissued)
	if data.Subject != "sub-1" {
		t.Fatalf("re-issued cookie lost the subject: %+v", data)
	}

	if data.CSRFToken == "" {
		t.Fatalf("re-issued cookie has no form token")
	}
}

func TestGet_KeepsExistingFormToken(t *testing.T) {
	_, app, _, codec := newTestService(t)

	cookie := encodeSession(t, codec, &session.Data{Subject: "sub-1", CSRFToken: "existing-token"})

	resp := performGet(t, app, Path, cookie)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}

	// Token already present, nothing to re-issue.
	if _, ok := sessionCookieValue(t, resp); ok {
		t.Fatalf("did not expect a re-issued session cookie when the token already exists")
	}
}

func TestPost_Anonymous_Returns401(t *testing.T) {
	_, app, db, _ := newTestService(t)

	form := url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Doe"},
	}
	resp := performPost(t, app, UpdatePath, "", form)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 Unauthorized, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)

	if count != 0 {
		t.Fatalf("anonymous request must not touch the directory, got %d rows", count)
	}
}

func TestPost_MissingFormToken_Returns403AndWritesNothing(t *testing.T) {
	_, app, db, codec := newTestService(t)

	cookie := encodeSession(t, codec, &session.Data{Subject: "sub-1", CSRFToken: "good-token"})

	form := url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Doe"},
	}
	resp := performPost(t, app, UpdatePath, cookie, form)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 Forbidden, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)

	if count != 0 {
		t.Fatalf("rejected request must not touch the directory, got %d rows", count)
	}
}

func TestPost_WrongFormToken_Returns403(t *testing.T) {
	_, app, _, codec := newTestService(t)

	cookie := encodeSession(t, codec, &session.Data{Subject: "sub-1", CSRFToken: "good-token"})

	form := url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Doe"},
		"csrf_token": {"evil-token"},
	}
	resp := performPost(t, app, UpdatePath, cookie, form)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 Forbidden, got %d", resp.StatusCode)
	}
}

func TestPost_MissingFields_Returns400(t *testing.T) {
	_, app, _, codec := newTestService(t)

	cookie := encodeSession(t, codec, &session.Data{Subject: "sub-1", CSRFToken: "good-token"})

	form := url.Values{
		"first_name": {"Alice"},
		"csrf_token": {"good-token"},
	}
	resp := performPost(t, app, UpdatePath, cookie, form)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 Bad Request, got %d", resp.StatusCode)
	}
}

func TestPost_Success_PersistsNamesAndRedirects(t *testing.T) {
	_, app, db, codec := newTestService(t)

	cookie := encodeSession(t, codec, &session.Data{
		Subject:   "sub-1",
		Email:     "alice@example.com",
		CSRFToken: "good-token",
	})

	form := url.Values{
		"first_name": {"Alice"},
		"last_name":  {"Doe"},
		"csrf_token": {"good-token"},
	}
	resp := performPost(t, app, UpdatePath, cookie, form)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 See Other, got %d", resp.StatusCode)
	}

	if loc := resp.Header.Get("Location"); loc != Path {
		t.Fatalf("expected redirect to %s, got %s", Path, loc)
	}

	user, err := usercontroller.GetBySubject(db, "sub-1")
	if err != nil {
		t.Fatalf("expected user row after update: %v", err)
	}

	if user.FirstName != "Alice" || user.LastName != "Doe" {
		t.Fatalf("names not persisted: %+v", user)
	}

	reissued, ok := sessionCookieValue(t, resp)
	if !ok {
		t.Fatalf("expected a re-issued session cookie after update")
	}

	data := codec.Decode(reissued)
	if data.DisplayName != "Alice Doe" {
		t.Fatalf("expected refreshed display name, got %q", data.DisplayName)
	}

	if data.CSRFToken != "good-token" {
		t.Fatalf("form token must survive the update, got %q", data.CSRFToken)
	}
}
