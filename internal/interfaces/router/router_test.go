package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"slackvite/internal/application/emails"
	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/database"
	"slackvite/internal/infrastructure/slack"
	"slackvite/internal/interfaces/views"
	"slackvite/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSlack stands in for the admin client and the OAuth provider.
type fakeSlack struct {
	mu      sync.Mutex
	posts   []slack.Message
	invites []string
}

func (f *fakeSlack) TeamInfo(ctx context.Context) (*slack.Team, error) {
	return &slack.Team{ID: "T1", Name: "Gophers", Domain: "gophers"}, nil
}

func (f *fakeSlack) PostMessage(ctx context.Context, msg slack.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, msg)
	return nil
}

func (f *fakeSlack) InviteUser(ctx context.Context, teamDomain, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites = append(f.invites, teamDomain+"/"+email)
	return nil
}

func (f *fakeSlack) Exchange(ctx context.Context, code string) (string, error) {
	return "xoxp-" + code, nil
}

func (f *fakeSlack) Identity(ctx context.Context, token string) (*slack.Identity, error) {
	id := &slack.Identity{}
	id.User.ID = "U1"
	id.User.Name = "admin"
	id.Team.ID = "T1"
	return id, nil
}

func (f *fakeSlack) Ping(ctx context.Context) error { return nil }

type recordingSender struct {
	sent []emails.Message
}

func (r *recordingSender) Send(ctx context.Context, msg emails.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	slack *fakeSlack
	mail  *recordingSender
}

func setup(t *testing.T, withEmail bool) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	fs := &fakeSlack{}
	rec := &recordingSender{}
	deps := Deps{
		DB:             db,
		Rdb:            rdb,
		Session:        middleware.SessionConfig{Secret: "test-secret"},
		Teams:          fs,
		Chat:           fs,
		NotifyChannel:  "C-admins",
		Identity:       fs,
		Site:           views.Site{LoginURL: "https://slack.com/oauth/authorize?client_id=k"},
		SlackPinger:    fs,
		HealthAdminKey: "k",
	}
	if withEmail {
		deps.Mailer = &emails.Mailer{From: "admin@example.com", Sender: rec}
	}
	return &testEnv{app: New(deps), db: db, slack: fs, mail: rec}
}

func (e *testEnv) do(t *testing.T, method, path string, form url.Values, cookies []*http.Cookie) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	resp := e.do(t, "GET", "/oauth?code=abc", nil, nil)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	require.Equal(t, "/applications", resp.Header.Get("Location"))
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestSubmitThenApprove_EndToEnd(t *testing.T) {
	env := setup(t, true)

	resp := env.do(t, "POST", "/", url.Values{"email": {"a@x.com"}, "name": {"Alice"}, "reason": {"friend"}}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Thanks, Alice!")

	var app domain.Application
	require.NoError(t, env.db.First(&app).Error)
	assert.Equal(t, domain.StateNew, app.State)
	require.Len(t, env.slack.posts, 1)
	posted := env.slack.posts[0]
	assert.Equal(t, "C-admins", posted.Channel)
	require.Len(t, posted.Attachments, 1)
	var values []string
	for _, f := range posted.Attachments[0].Fields {
		values = append(values, f.Value)
	}
	assert.ElementsMatch(t, []string{"Alice", "a@x.com", "friend"}, values)
	assert.Empty(t, env.mail.sent, "submission sends no email")

	cookies := env.login(t)

	resp = env.do(t, "GET", "/applications", nil, cookies)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "a@x.com")

	resp = env.do(t, "POST", "/applications", url.Values{"id": {"1"}, "action": {"approve"}}, cookies)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/applications", resp.Header.Get("Location"))

	require.NoError(t, env.db.First(&app, 1).Error)
	assert.Equal(t, domain.StateApprovedMailed, app.State)
	var provisioned []domain.Member
	require.NoError(t, env.db.Where("application_id = ?", 1).Find(&provisioned).Error)
	require.Len(t, provisioned, 1)
	assert.True(t, provisioned[0].Active)
	assert.Nil(t, provisioned[0].SlackID)
	assert.Len(t, env.slack.posts, 2)
	assert.Equal(t, []string{"gophers/a@x.com"}, env.slack.invites)
	require.Len(t, env.mail.sent, 1)
	assert.Equal(t, "Welcome to Gophers!", env.mail.sent[0].Subject)

	resp = env.do(t, "GET", "/applications/approved-and-emailed", nil, cookies)
	body := readBody(t, resp)
	assert.Contains(t, body, "Application from a@x.com approved!")
	assert.Contains(t, body, "a@x.com")

	resp = env.do(t, "POST", "/applications", url.Values{"id": {"1"}, "action": {"approve"}}, cookies)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Len(t, env.slack.posts, 2, "repeat approve posts nothing")
	assert.Len(t, env.slack.invites, 1)
	assert.Len(t, env.mail.sent, 1)
	var count int64
	require.NoError(t, env.db.Model(&domain.Member{}).Where("application_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp = env.do(t, "GET", "/applications", nil, cookies)
	assert.Contains(t, readBody(t, resp), "Application from a@x.com was already processed.")
}

func TestReject_WithoutEmail(t *testing.T) {
	env := setup(t, false)
	resp := env.do(t, "POST", "/", url.Values{"email": {"b@x.com"}, "name": {"Bob"}, "reason": {"spam"}}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookies := env.login(t)
	resp = env.do(t, "POST", "/applications", url.Values{"id": {"1"}, "action": {"reject"}}, cookies)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var app domain.Application
	require.NoError(t, env.db.First(&app, 1).Error)
	assert.Equal(t, domain.StateRejectedMailed, app.State)
	assert.Empty(t, env.slack.invites)
	assert.Empty(t, env.mail.sent)
	var count int64
	require.NoError(t, env.db.Model(&domain.Member{}).Where("application_id IS NOT NULL").Count(&count).Error)
	assert.Zero(t, count)
}

func TestDuplicateSubmissionIsServerError(t *testing.T) {
	env := setup(t, false)
	form := url.Values{"email": {"a@x.com"}, "name": {"Alice"}, "reason": {"friend"}}
	require.Equal(t, fiber.StatusOK, env.do(t, "POST", "/", form, nil).StatusCode)

	resp := env.do(t, "POST", "/", form, nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Len(t, env.slack.posts, 1, "duplicate is not announced")
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	env := setup(t, false)
	for _, r := range []struct{ method, path string }{
		{"GET", "/applications"},
		{"GET", "/applications/rejected"},
		{"POST", "/applications"},
		{"GET", "/logout"},
	} {
		resp := env.do(t, r.method, r.path, nil, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, r.path)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	env := setup(t, false)
	cookies := env.login(t)

	resp := env.do(t, "GET", "/logout", nil, cookies)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	resp = env.do(t, "GET", "/applications", nil, cookies)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestIndexShowsLoggedInNav(t *testing.T) {
	env := setup(t, false)
	resp := env.do(t, "GET", "/", nil, nil)
	assert.Contains(t, readBody(t, resp), "Sign in with Slack")

	cookies := env.login(t)
	resp = env.do(t, "GET", "/", nil, cookies)
	assert.Contains(t, readBody(t, resp), "Log out")
}

func TestHealthJSON(t *testing.T) {
	env := setup(t, false)
	resp := env.do(t, "GET", "/health/json", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `"service":"slackvite"`)
	assert.Contains(t, body, `"status":"ok"`)
}
